package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/nhle/bmattach/internal/attachment"
	"github.com/nhle/bmattach/internal/extract"
)

// SaveMode selects what Read does with detected attachments.
type SaveMode int

const (
	// SaveAsk prompts for every attachment.
	SaveAsk SaveMode = iota
	// SaveAll saves every attachment without asking.
	SaveAll
	// SaveNone only displays the message.
	SaveNone
)

// Read offers to save each attachment in message and then prints the
// message with the attachment data redacted. messageRef is recorded in
// the catalog. The message is always printed; failed saves and a
// malformed block are reported after it.
func (a *App) Read(
	ctx context.Context, messageRef, message string, mode SaveMode,
) error {
	redacted, blocks, scanErr := attachment.ScanAndRedact(message)

	_, saveErr := a.saveBlocks(ctx, messageRef, blocks, mode)

	a.printf("%s\n", a.styledPlaceholders(redacted))

	if scanErr != nil {
		a.notef("%s\n", a.styles.Warning.Render("Warning: "+scanErr.Error()))
		scanErr = fmt.Errorf("reading %s: %w", messageRef, scanErr)
	}
	return errors.Join(saveErr, scanErr)
}

// Extract saves every attachment in message without prompting.
func (a *App) Extract(
	ctx context.Context, messageRef, message string,
) ([]*extract.Result, error) {
	blocks, scanErr := attachment.Scan(message)

	results, saveErr := a.saveBlocks(ctx, messageRef, blocks, SaveAll)
	if len(blocks) == 0 && scanErr == nil {
		a.notef("No attachments found in %s.\n", messageRef)
	}
	if scanErr != nil {
		scanErr = fmt.Errorf("extracting from %s: %w", messageRef, scanErr)
	}
	return results, errors.Join(saveErr, scanErr)
}

// ListBlocks prints one line per attachment found in message.
func (a *App) ListBlocks(messageRef, message string) error {
	blocks, scanErr := attachment.Scan(message)

	a.printf("%s\n", a.styles.Header.Render(
		fmt.Sprintf("%s: %d attachment(s)", messageRef, len(blocks))))
	for i, block := range blocks {
		p := block.Payload
		kind := "file"
		if p.IsImage {
			kind = "image/" + p.MediaSubtype
		}
		a.printf("%2d. %s  %s  %s  [%d:%d]\n",
			i+1,
			a.styles.Kind(p.IsImage).Render(p.Filename),
			kind,
			humanize.IBytes(uint64(len(p.Data))),
			block.Span.Start, block.Span.End,
		)
	}

	if scanErr != nil {
		return fmt.Errorf("scanning %s: %w", messageRef, scanErr)
	}
	return nil
}

// saveBlocks persists the blocks chosen by mode, in message order. A
// failed save does not stop the remaining blocks; the failures are
// returned joined. A prompt failure stops immediately.
func (a *App) saveBlocks(
	ctx context.Context,
	messageRef string,
	blocks []attachment.Block,
	mode SaveMode,
) ([]*extract.Result, error) {
	var results []*extract.Result
	var saveErrs []error

	for _, block := range blocks {
		p := block.Payload

		save, err := a.shouldSave(p, mode)
		if err != nil {
			return results, errors.Join(append(saveErrs, err)...)
		}
		if !save {
			continue
		}

		res, err := a.saver.Save(ctx, p, messageRef)
		if err != nil {
			err = fmt.Errorf("saving %s: %w", p.Filename, err)
			a.notef("%s\n", a.styles.Error.Render(err.Error()))
			saveErrs = append(saveErrs, err)
			continue
		}
		results = append(results, res)

		if res.Reused {
			a.notef("%s already saved as %s\n", p.Filename, a.styles.Path.Render(res.Record.Path))
		} else {
			a.notef("Successfully saved %s\n", a.styles.Path.Render(res.Record.Path))
		}
	}

	return results, errors.Join(saveErrs...)
}

// shouldSave resolves the save decision for one attachment.
func (a *App) shouldSave(p attachment.Payload, mode SaveMode) (bool, error) {
	switch mode {
	case SaveAll:
		return true, nil
	case SaveNone:
		return false, nil
	}

	return a.prompter.Confirm(
		fmt.Sprintf("Attachment detected: %s (%s). Save it?",
			p.Filename, humanize.IBytes(uint64(len(p.Data)))),
		fmt.Sprintf("Attachments are written to %s.", a.saver.Dir()),
	)
}
