package attachment

import (
	"errors"
	"fmt"
)

var (
	// ErrUnterminatedBlock means a start marker has no closing marker
	// after it.
	ErrUnterminatedBlock = errors.New("attachment block has no closing marker")

	// ErrDecodeFailure means the payload between the markers is not
	// valid base64.
	ErrDecodeFailure = errors.New("attachment payload is not valid base64")

	// ErrEmptyFilename is returned when encoding without a usable name.
	ErrEmptyFilename = errors.New("attachment filename must not be empty")

	// ErrInvalidFilename is returned when a name would break the block
	// grammar even after sanitizing.
	ErrInvalidFilename = errors.New("attachment filename cannot be embedded")
)

// SizeRejectedError reports a payload above the hard size ceiling. The
// attach attempt must be abandoned.
type SizeRejectedError struct {
	SizeKB float64
	MaxKB  float64
}

func (e *SizeRejectedError) Error() string {
	return fmt.Sprintf(
		"attachment too big: %.2fKB exceeds the %.0fKB maximum",
		e.SizeKB, e.MaxKB,
	)
}

// NeedsConfirmationError is not a failure: the payload sits between the
// warn and max thresholds and the caller must ask before encoding with
// EncodeOptions.Confirmed set.
type NeedsConfirmationError struct {
	SizeKB float64
	WarnKB float64
	MaxKB  float64
}

func (e *NeedsConfirmationError) Error() string {
	return fmt.Sprintf(
		"attachment is %.2fKB, above the %.0fKB warning threshold "+
			"(maximum message size is %.0fKB)",
		e.SizeKB, e.WarnKB, e.MaxKB,
	)
}

// MalformedBlockError reports where scanning stopped. Blocks found
// before Offset are still returned by Scan.
type MalformedBlockError struct {
	Offset int
	Err    error
}

func (e *MalformedBlockError) Error() string {
	return fmt.Sprintf("malformed attachment block at offset %d: %v", e.Offset, e.Err)
}

func (e *MalformedBlockError) Unwrap() error {
	return e.Err
}

// IsSizeRejected reports whether err (or any error in its chain) is a
// SizeRejectedError.
func IsSizeRejected(err error) bool {
	var target *SizeRejectedError
	return errors.As(err, &target)
}

// IsNeedsConfirmation reports whether err (or any error in its chain) is
// a NeedsConfirmationError.
func IsNeedsConfirmation(err error) bool {
	var target *NeedsConfirmationError
	return errors.As(err, &target)
}

// IsMalformed reports whether err (or any error in its chain) is a
// MalformedBlockError.
func IsMalformed(err error) bool {
	var target *MalformedBlockError
	return errors.As(err, &target)
}
