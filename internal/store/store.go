package store

import (
	"context"

	"github.com/nhle/bmattach/internal/model"
)

// AttachmentFilter controls filtering, sorting, and pagination for
// saved-attachment queries.
type AttachmentFilter struct {
	Query      *string // substring match on filename
	MessageRef *string
	Digest     *string
	ImagesOnly bool
	SortBy     string // "saved_at", "filename", "size_bytes"
	SortDesc   bool
	Limit      int
	Offset     int
}

// Store defines the persistence interface for the catalog of attachments
// extracted from messages.
type Store interface {
	// RecordAttachment inserts a saved attachment. An empty ID is filled
	// with a new UUID and SavedAt with the current time.
	RecordAttachment(ctx context.Context, att *model.SavedAttachment) error

	GetAttachment(ctx context.Context, id string) (*model.SavedAttachment, error)

	// FindByDigest returns every record whose payload hashed to digest,
	// newest first.
	FindByDigest(ctx context.Context, digest string) ([]model.SavedAttachment, error)

	ListAttachments(ctx context.Context, filter AttachmentFilter) ([]model.SavedAttachment, error)
	DeleteAttachment(ctx context.Context, id string) error
}
