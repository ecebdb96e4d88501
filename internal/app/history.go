package app

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/nhle/bmattach/internal/store"
)

// History prints catalogued saves, newest first.
func (a *App) History(ctx context.Context, filter store.AttachmentFilter) error {
	if a.store == nil {
		return fmt.Errorf("attachment catalog is not open")
	}

	filter.SortDesc = true
	records, err := a.store.ListAttachments(ctx, filter)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		a.printf("%s\n", a.styles.Help.Render("No saved attachments."))
		return nil
	}

	for _, rec := range records {
		a.printf("%s  %s  %s  %s\n",
			rec.SavedAt.Local().Format("2006-01-02 15:04"),
			a.styles.Kind(rec.IsImage).Render(rec.Filename),
			humanize.IBytes(uint64(rec.SizeBytes)),
			a.styles.Path.Render(rec.Path),
		)
	}
	return nil
}
