package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nhle/bmattach/internal/attachment"
)

// ErrDeclined is returned when the user refuses an oversized attachment.
var ErrDeclined = errors.New("attachment discarded")

// EncodeFile reads path and renders it as an attachment block. Files
// above the warn threshold are only encoded after the prompter agrees.
func (a *App) EncodeFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("opening attachment %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("attachment %s is a directory", path)
	}

	// Reject from the size alone so huge files are never read.
	limits := a.encoder.Limits()
	if limits.Check(int(info.Size())) == attachment.VerdictRejected {
		return "", &attachment.SizeRejectedError{
			SizeKB: attachment.SizeKB(int(info.Size())),
			MaxKB:  limits.MaxKB,
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading attachment %s: %w", path, err)
	}
	name := filepath.Base(path)

	encoded, err := a.encoder.Encode(name, data, attachment.EncodeOptions{})

	var confirm *attachment.NeedsConfirmationError
	if errors.As(err, &confirm) {
		ok, promptErr := a.prompter.Confirm(
			fmt.Sprintf("%s is %.2fKB. Attach it anyway?", name, confirm.SizeKB),
			fmt.Sprintf(
				"The maximum message size including attachments, body, and headers is %.0fKB. "+
					"If you reach over this limit, your message won't send.",
				confirm.MaxKB,
			),
		)
		if promptErr != nil {
			return "", promptErr
		}
		if !ok {
			return "", ErrDeclined
		}
		encoded, err = a.encoder.Encode(name, data, attachment.EncodeOptions{Confirmed: true})
	}
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", path, err)
	}

	a.logger.Debug("encoded attachment",
		"file", encoded.Payload.Filename,
		"image", encoded.Payload.IsImage,
		"subtype", encoded.Payload.MediaSubtype,
		"kb", encoded.Payload.DeclaredSizeKB,
	)
	return encoded.Text, nil
}

// EncodeFiles encodes every path in order. Declined files are skipped
// with a notice; any other failure stops the run.
func (a *App) EncodeFiles(paths []string) ([]string, error) {
	blocks := make([]string, 0, len(paths))
	for _, path := range paths {
		block, err := a.EncodeFile(path)
		if errors.Is(err, ErrDeclined) {
			a.notef("%s\n", a.styles.Warning.Render(
				fmt.Sprintf("Attachment %s discarded.", filepath.Base(path))))
			continue
		}
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// Compose appends the encoded files to a message body.
func (a *App) Compose(body string, paths []string) (string, error) {
	blocks, err := a.EncodeFiles(paths)
	if err != nil {
		return "", err
	}
	return attachment.Append(body, blocks...), nil
}
