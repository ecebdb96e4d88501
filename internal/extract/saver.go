// Package extract writes decoded attachment payloads to disk and records
// them in the catalog.
package extract

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/nhle/bmattach/internal/attachment"
	"github.com/nhle/bmattach/internal/model"
	"github.com/nhle/bmattach/internal/store"
)

// maxNameAttempts bounds the search for a free "name (n).ext".
const maxNameAttempts = 1000

// Options controls where and how payloads are written.
type Options struct {
	Dir       string
	Overwrite bool
}

// Result describes one saved payload.
type Result struct {
	Record model.SavedAttachment

	// Reused is set when identical bytes were already saved under the
	// same name and nothing new was written. The save is still catalogued
	// against the new message.
	Reused bool
}

// Saver persists payloads as raw files under their sanitized names.
type Saver struct {
	opts   Options
	store  store.Store
	logger *slog.Logger
}

// NewSaver creates a Saver. st may be nil to skip cataloguing.
func NewSaver(opts Options, st store.Store, logger *slog.Logger) *Saver {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Saver{opts: opts, store: st, logger: logger}
}

// Dir returns the directory payloads are written to.
func (s *Saver) Dir() string {
	return s.opts.Dir
}

// Save writes p.Data into the save directory. messageRef identifies the
// source message in the catalog and may be empty.
func (s *Saver) Save(
	ctx context.Context, p attachment.Payload, messageRef string,
) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	digest := Digest(p.Data)
	name := SafeName(p.Filename)

	if existing, ok := s.findExisting(ctx, name, digest); ok {
		record := newRecord(p, existing.Path, digest, messageRef)
		if err := s.catalog(ctx, &record); err != nil {
			return nil, err
		}
		s.logger.Info("attachment already saved",
			"filename", p.Filename, "path", existing.Path, "message", messageRef)
		return &Result{Record: record, Reused: true}, nil
	}

	if err := os.MkdirAll(s.opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating attachment directory %s: %w", s.opts.Dir, err)
	}

	path, err := s.write(name, p.Data)
	if err != nil {
		return nil, err
	}

	record := newRecord(p, path, digest, messageRef)
	if err := s.catalog(ctx, &record); err != nil {
		return nil, err
	}

	s.logger.Info("saved attachment",
		"filename", p.Filename, "path", path, "bytes", len(p.Data))
	return &Result{Record: record}, nil
}

func newRecord(
	p attachment.Payload, path, digest, messageRef string,
) model.SavedAttachment {
	return model.SavedAttachment{
		Filename:     p.Filename,
		Path:         path,
		SizeBytes:    int64(len(p.Data)),
		IsImage:      p.IsImage,
		MediaSubtype: p.MediaSubtype,
		Digest:       digest,
		MessageRef:   messageRef,
	}
}

// catalog records a save when a store is configured.
func (s *Saver) catalog(ctx context.Context, record *model.SavedAttachment) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.RecordAttachment(ctx, record); err != nil {
		return fmt.Errorf("cataloguing %s: %w", record.Path, err)
	}
	return nil
}

// findExisting returns a catalogued record saved under the same name
// whose file still holds the same bytes inside the save directory.
func (s *Saver) findExisting(
	ctx context.Context, name, digest string,
) (model.SavedAttachment, bool) {
	if s.store == nil {
		return model.SavedAttachment{}, false
	}

	records, err := s.store.FindByDigest(ctx, digest)
	if err != nil {
		s.logger.Warn("looking up attachment digest", "error", err)
		return model.SavedAttachment{}, false
	}

	dir := filepath.Clean(s.opts.Dir)
	for _, rec := range records {
		if SafeName(rec.Filename) != name || filepath.Dir(rec.Path) != dir {
			continue
		}
		data, err := os.ReadFile(rec.Path)
		if err != nil {
			continue
		}
		if Digest(data) == digest {
			return rec, true
		}
	}
	return model.SavedAttachment{}, false
}

// write stores data under name, or under "name (n).ext" when name is
// taken and overwriting is off.
func (s *Saver) write(name string, data []byte) (string, error) {
	if s.opts.Overwrite {
		path := filepath.Join(s.opts.Dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("writing attachment %s: %w", path, err)
		}
		return path, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for n := 0; n < maxNameAttempts; n++ {
		candidate := name
		if n > 0 {
			candidate = stem + " (" + strconv.Itoa(n) + ")" + ext
		}
		path := filepath.Join(s.opts.Dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating attachment %s: %w", path, err)
		}

		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("writing attachment %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("closing attachment %s: %w", path, err)
		}
		return path, nil
	}

	return "", fmt.Errorf("no free filename for %s in %s", name, s.opts.Dir)
}

// SafeName sanitizes a display filename for the local filesystem. Names
// that are empty or refer to a directory become attachment.DefaultFilename.
func SafeName(filename string) string {
	name := strings.TrimSpace(attachment.SanitizeFilename(filename))
	if name == "" || name == "." || name == ".." {
		return attachment.DefaultFilename
	}
	return name
}

// Digest returns the hex BLAKE3-256 hash of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
