package model

import "time"

// SavedAttachment records one attachment written to disk from a message.
type SavedAttachment struct {
	// ID is the internal unique identifier for this record.
	ID string `json:"id" db:"id"`

	// Filename is the name carried by the block, before sanitizing.
	Filename string `json:"filename" db:"filename"`

	// Path is where the decoded bytes were written.
	Path string `json:"path" db:"path"`

	// SizeBytes is the decoded payload length.
	SizeBytes int64 `json:"size_bytes" db:"size_bytes"`

	IsImage      bool   `json:"is_image" db:"is_image"`
	MediaSubtype string `json:"media_subtype" db:"media_subtype"`

	// Digest is the hex BLAKE3-256 hash of the payload.
	Digest string `json:"digest" db:"digest"`

	// MessageRef identifies the message the block came from, usually its
	// file path or message ID. Empty when unknown.
	MessageRef string `json:"message_ref" db:"message_ref"`

	SavedAt time.Time `json:"saved_at" db:"saved_at"`
}
