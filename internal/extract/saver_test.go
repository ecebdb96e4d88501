package extract

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/bmattach/internal/attachment"
	"github.com/nhle/bmattach/internal/store"
	"github.com/nhle/bmattach/tests/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSaver(t *testing.T, st store.Store, overwrite bool) *Saver {
	t.Helper()
	return NewSaver(Options{Dir: t.TempDir(), Overwrite: overwrite}, st, discardLogger())
}

func TestSaveWritesRawBytesUnderSanitizedName(t *testing.T) {
	st := testutil.NewTestStore(t)
	saver := newTestSaver(t, st, false)

	payload := attachment.Payload{Filename: "a/b:c*d.txt", Data: []byte("raw bytes"), MediaSubtype: "file"}
	res, err := saver.Save(context.Background(), payload, "inbox/1")
	require.NoError(t, err)
	assert.False(t, res.Reused)

	assert.Equal(t, filepath.Join(saver.Dir(), "a~b~c~d.txt"), res.Record.Path)
	got, err := os.ReadFile(res.Record.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("raw bytes"), got)

	rec, err := st.GetAttachment(context.Background(), res.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, "a/b:c*d.txt", rec.Filename)
	assert.Equal(t, "inbox/1", rec.MessageRef)
	assert.Equal(t, Digest([]byte("raw bytes")), rec.Digest)
	assert.Equal(t, int64(9), rec.SizeBytes)
}

func TestSavePicksFreeNameInsteadOfClobbering(t *testing.T) {
	saver := newTestSaver(t, nil, false)
	ctx := context.Background()

	first, err := saver.Save(ctx, attachment.Payload{Filename: "notes.txt", Data: []byte("one")}, "")
	require.NoError(t, err)
	second, err := saver.Save(ctx, attachment.Payload{Filename: "notes.txt", Data: []byte("two")}, "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(saver.Dir(), "notes.txt"), first.Record.Path)
	assert.Equal(t, filepath.Join(saver.Dir(), "notes (1).txt"), second.Record.Path)

	data, err := os.ReadFile(first.Record.Path)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestSaveOverwrite(t *testing.T) {
	saver := newTestSaver(t, nil, true)
	ctx := context.Background()

	_, err := saver.Save(ctx, attachment.Payload{Filename: "notes.txt", Data: []byte("one")}, "")
	require.NoError(t, err)
	res, err := saver.Save(ctx, attachment.Payload{Filename: "notes.txt", Data: []byte("two")}, "")
	require.NoError(t, err)

	data, err := os.ReadFile(res.Record.Path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestSaveReusesIdenticalContent(t *testing.T) {
	st := testutil.NewTestStore(t)
	saver := newTestSaver(t, st, false)
	ctx := context.Background()

	payload := attachment.Payload{Filename: "same.bin", Data: []byte{1, 2, 3}}
	first, err := saver.Save(ctx, payload, "m1")
	require.NoError(t, err)
	second, err := saver.Save(ctx, payload, "m2")
	require.NoError(t, err)

	assert.True(t, second.Reused)
	assert.Equal(t, first.Record.Path, second.Record.Path)
	assert.NotEqual(t, first.Record.ID, second.Record.ID)
	assert.Equal(t, "m2", second.Record.MessageRef)

	entries, err := os.ReadDir(saver.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	records, err := st.FindByDigest(ctx, Digest(payload.Data))
	require.NoError(t, err)
	refs := make([]string, 0, len(records))
	for _, rec := range records {
		refs = append(refs, rec.MessageRef)
	}
	assert.ElementsMatch(t, []string{"m1", "m2"}, refs)
}

func TestSaveWritesIdenticalContentUnderNewName(t *testing.T) {
	st := testutil.NewTestStore(t)
	saver := newTestSaver(t, st, false)
	ctx := context.Background()

	data := []byte("same bytes")
	first, err := saver.Save(ctx, attachment.Payload{Filename: "a.txt", Data: data}, "m1")
	require.NoError(t, err)
	second, err := saver.Save(ctx, attachment.Payload{Filename: "b.txt", Data: data}, "m2")
	require.NoError(t, err)

	assert.False(t, second.Reused)
	assert.Equal(t, filepath.Join(saver.Dir(), "a.txt"), first.Record.Path)
	assert.Equal(t, filepath.Join(saver.Dir(), "b.txt"), second.Record.Path)

	got, err := os.ReadFile(second.Record.Path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	rec, err := st.GetAttachment(ctx, second.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, "m2", rec.MessageRef)
	assert.Equal(t, "b.txt", rec.Filename)
}

func TestSaveRewritesWhenCataloguedFileChanged(t *testing.T) {
	st := testutil.NewTestStore(t)
	saver := newTestSaver(t, st, false)
	ctx := context.Background()

	payload := attachment.Payload{Filename: "same.bin", Data: []byte{1, 2, 3}}
	first, err := saver.Save(ctx, payload, "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(first.Record.Path, []byte("edited"), 0o644))

	second, err := saver.Save(ctx, payload, "")
	require.NoError(t, err)
	assert.False(t, second.Reused)
	assert.NotEqual(t, first.Record.Path, second.Record.Path)
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	saver := newTestSaver(t, nil, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := saver.Save(ctx, attachment.Payload{Filename: "x", Data: []byte("x")}, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "a~b", SafeName("a/b"))
	assert.Equal(t, attachment.DefaultFilename, SafeName(""))
	assert.Equal(t, attachment.DefaultFilename, SafeName(" .. "))
	assert.Equal(t, "~~", SafeName("//"))
}
