// Package app wires the attachment codec, the saver and the catalog into
// the bmattach command line.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/nhle/bmattach/internal/attachment"
	"github.com/nhle/bmattach/internal/extract"
	"github.com/nhle/bmattach/internal/model"
	"github.com/nhle/bmattach/internal/store"
	"github.com/nhle/bmattach/internal/theme"
)

// App runs the attachment workflows on behalf of the commands.
type App struct {
	encoder  *attachment.Encoder
	saver    *extract.Saver
	store    store.Store
	prompter Prompter
	styles   theme.Styles
	out      io.Writer
	errOut   io.Writer
	logger   *slog.Logger
}

// Options supplies the collaborators of an App. Store may be nil for
// commands that never touch the catalog.
type Options struct {
	Store    store.Store
	Prompter Prompter

	// Out receives command results, Err receives notices and warnings.
	Out io.Writer
	Err io.Writer

	Logger *slog.Logger
}

// New creates an App from the loaded configuration.
func New(cfg *model.AppConfig, opts Options) (*App, error) {
	encoder, err := attachment.NewEncoder(cfg.Attachments.Limits())
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Prompter == nil {
		opts.Prompter = FixedPrompter(false)
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Err == nil {
		opts.Err = io.Discard
	}

	saver := extract.NewSaver(extract.Options{
		Dir:       cfg.Attachments.SaveDir,
		Overwrite: cfg.Attachments.Overwrite,
	}, opts.Store, opts.Logger)

	return &App{
		encoder:  encoder,
		saver:    saver,
		store:    opts.Store,
		prompter: opts.Prompter,
		styles:   theme.New(cfg.Display.Theme),
		out:      opts.Out,
		errOut:   opts.Err,
		logger:   opts.Logger,
	}, nil
}

// printf writes formatted output, ignoring write errors like fmt.Printf.
func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

// notef writes a notice to the error stream.
func (a *App) notef(format string, args ...any) {
	_, _ = fmt.Fprintf(a.errOut, format, args...)
}

// styledPlaceholders renders every placeholder in redacted text.
func (a *App) styledPlaceholders(redacted string) string {
	return strings.ReplaceAll(
		redacted,
		attachment.Placeholder,
		a.styles.Placeholder.Render(attachment.Placeholder),
	)
}
