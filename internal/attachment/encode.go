package attachment

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// EncodeOptions carries the caller's answer to a NeedsConfirmationError.
type EncodeOptions struct {
	// Confirmed allows payloads between the warn and max thresholds.
	Confirmed bool
}

// Encoded is a rendered block together with the payload it carries.
type Encoded struct {
	Text    string
	Payload Payload
}

// Encoder renders attachments into text blocks. It is immutable and safe
// for concurrent use.
type Encoder struct {
	limits Limits
}

// NewEncoder creates an Encoder enforcing the given size limits.
func NewEncoder(limits Limits) (*Encoder, error) {
	if err := limits.Validate(); err != nil {
		return nil, fmt.Errorf("creating encoder: %w", err)
	}
	return &Encoder{limits: limits}, nil
}

// Limits returns the thresholds the encoder enforces.
func (e *Encoder) Limits() Limits {
	return e.limits
}

// Encode checks the payload size, sniffs its type and renders a block.
//
// Payloads above the warn threshold return a *NeedsConfirmationError
// unless opts.Confirmed is set; payloads above the maximum always return
// a *SizeRejectedError.
func (e *Encoder) Encode(
	filename string, data []byte, opts EncodeOptions,
) (*Encoded, error) {
	sizeKB := SizeKB(len(data))

	switch e.limits.Check(len(data)) {
	case VerdictRejected:
		return nil, &SizeRejectedError{SizeKB: sizeKB, MaxKB: e.limits.MaxKB}
	case VerdictNeedsConfirmation:
		if !opts.Confirmed {
			return nil, &NeedsConfirmationError{
				SizeKB: sizeKB,
				WarnKB: e.limits.WarnKB,
				MaxKB:  e.limits.MaxKB,
			}
		}
	}

	name, err := embeddableName(filename)
	if err != nil {
		return nil, err
	}

	kind := Sniff(data)
	payload := Payload{
		Filename:       name,
		DeclaredSizeKB: roundKB(sizeKB),
		IsImage:        kind.IsImage,
		MediaSubtype:   kind.Subtype,
		Data:           bytes.Clone(data),
	}

	return &Encoded{Text: Render(payload), Payload: payload}, nil
}

// Render writes p in the block format. It performs no size or name
// checks; use Encoder.Encode for untrusted input.
func Render(p Payload) string {
	kind := MediaKind{IsImage: p.IsImage, Subtype: p.MediaSubtype}
	if kind.Subtype == "" || strings.ContainsAny(kind.Subtype, ";,'\" \r\n") {
		kind.Subtype = GenericSubtype
	}

	sizeKB := p.DeclaredSizeKB
	if sizeKB == 0 && len(p.Data) > 0 {
		sizeKB = roundKB(SizeKB(len(p.Data)))
	}

	var b strings.Builder
	b.Grow(base64.StdEncoding.EncodedLen(len(p.Data)) + 2*len(p.Filename) + 128)

	b.WriteString(headerFilename + p.Filename + "\n")
	b.WriteString(headerFilesize + strconv.FormatFloat(sizeKB, 'f', 2, 64) + "KB\n")
	b.WriteString(headerEncoding + "\n\n")

	b.WriteString("<" + kind.tag() + " " + markerAlt + p.Filename + markerSrc)
	b.WriteString("'" + markerData + kind.kind() + "/" + kind.Subtype + markerPayload)
	b.WriteString(base64.StdEncoding.EncodeToString(p.Data))
	b.WriteString(markerEnd)

	return b.String()
}

// Append joins a message body and rendered blocks with blank lines so
// every block stays independently scannable.
func Append(body string, blocks ...string) string {
	parts := make([]string, 0, len(blocks)+1)
	if body != "" {
		parts = append(parts, body)
	}
	for _, block := range blocks {
		if block != "" {
			parts = append(parts, block)
		}
	}
	return strings.Join(parts, Separator)
}

// embeddableName sanitizes filename and rejects names that would still
// confuse the scanner.
func embeddableName(filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", ErrEmptyFilename
	}

	name := SanitizeFilename(filename)
	if strings.ContainsAny(name, "\"\r\n") || strings.Contains(name, markerStart) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return name, nil
}
