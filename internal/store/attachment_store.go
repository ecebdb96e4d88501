package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/bmattach/internal/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

const attachmentColumns = `id, filename, path, size_bytes, is_image,
	media_subtype, digest, message_ref, saved_at`

// RecordAttachment inserts a saved attachment.
func (s *SQLiteStore) RecordAttachment(
	ctx context.Context,
	att *model.SavedAttachment,
) error {
	if strings.TrimSpace(att.Path) == "" {
		return fmt.Errorf("attachment path must not be empty")
	}
	if att.Digest == "" {
		return fmt.Errorf("attachment digest must not be empty")
	}
	if att.ID == "" {
		att.ID = uuid.New().String()
	}
	if att.SavedAt.IsZero() {
		att.SavedAt = time.Now()
	}
	att.SavedAt = att.SavedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saved_attachments (`+attachmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		att.ID, att.Filename, att.Path, att.SizeBytes, att.IsImage,
		att.MediaSubtype, att.Digest, att.MessageRef, att.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("recording attachment %s: %w", att.Filename, err)
	}
	return nil
}

// GetAttachment retrieves a single record by ID.
func (s *SQLiteStore) GetAttachment(
	ctx context.Context,
	id string,
) (*model.SavedAttachment, error) {
	var att model.SavedAttachment
	err := s.db.GetContext(ctx, &att,
		"SELECT "+attachmentColumns+" FROM saved_attachments WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attachment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting attachment %s: %w", id, err)
	}
	return &att, nil
}

// FindByDigest returns every record whose payload hashed to digest.
func (s *SQLiteStore) FindByDigest(
	ctx context.Context,
	digest string,
) ([]model.SavedAttachment, error) {
	return s.ListAttachments(ctx, AttachmentFilter{
		Digest:   &digest,
		SortDesc: true,
	})
}

// ListAttachments retrieves records matching the provided filter options.
func (s *SQLiteStore) ListAttachments(
	ctx context.Context,
	filter AttachmentFilter,
) ([]model.SavedAttachment, error) {
	var conditions []string
	var args []interface{}

	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, "filename LIKE ?")
		args = append(args, "%"+*filter.Query+"%")
	}
	if filter.MessageRef != nil {
		conditions = append(conditions, "message_ref = ?")
		args = append(args, *filter.MessageRef)
	}
	if filter.Digest != nil {
		conditions = append(conditions, "digest = ?")
		args = append(args, *filter.Digest)
	}
	if filter.ImagesOnly {
		conditions = append(conditions, "is_image = 1")
	}

	query := "SELECT " + attachmentColumns + " FROM saved_attachments"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	sortBy := "saved_at"
	allowedSorts := map[string]bool{
		"saved_at":   true,
		"filename":   true,
		"size_bytes": true,
	}
	if allowedSorts[filter.SortBy] {
		sortBy = filter.SortBy
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	// rowid breaks ties between records saved in the same instant.
	query += fmt.Sprintf(" ORDER BY %s %s, rowid %s", sortBy, direction, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	var out []model.SavedAttachment
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("querying saved attachments: %w", err)
	}
	return out, nil
}

// DeleteAttachment removes a record. The file on disk is left alone.
func (s *SQLiteStore) DeleteAttachment(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM saved_attachments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting attachment %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("attachment %s: %w", id, ErrNotFound)
	}
	return nil
}
