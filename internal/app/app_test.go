package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/bmattach/internal/attachment"
	"github.com/nhle/bmattach/internal/model"
	"github.com/nhle/bmattach/internal/store"
	"github.com/nhle/bmattach/tests/testutil"
)

const notesBlock = "Filename:notes.txt\nFilesize:0.01KB\nEncoding:base64\n\n" +
	"<attachment alt = \"notes.txt\" src='data:file/file;base64, MDEyMzQ1Njc4OQ==' />"

// scriptedPrompter answers prompts from a fixed list and records titles.
type scriptedPrompter struct {
	answers []bool
	asked   []string
}

func (p *scriptedPrompter) Confirm(title, _ string) (bool, error) {
	p.asked = append(p.asked, title)
	if len(p.answers) == 0 {
		return false, errors.New("unexpected prompt: " + title)
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

type testApp struct {
	*App
	out    *bytes.Buffer
	errOut *bytes.Buffer
	dir    string
}

func newTestApp(t *testing.T, prompter Prompter, st store.Store) *testApp {
	t.Helper()

	cfg := model.DefaultAppConfig()
	cfg.Attachments.SaveDir = filepath.Join(t.TempDir(), "attachments")
	cfg.Display.Theme = "plain"

	var out, errOut bytes.Buffer
	a, err := New(cfg, Options{
		Store:    st,
		Prompter: prompter,
		Out:      &out,
		Err:      &errOut,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	return &testApp{App: a, out: &out, errOut: &errOut, dir: cfg.Attachments.SaveDir}
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestNewRejectsInvalidLimits(t *testing.T) {
	cfg := model.DefaultAppConfig()
	cfg.Attachments.WarnKB = 300

	_, err := New(cfg, Options{})
	assert.Error(t, err)
}

func TestComposeAppendsBlocksToBody(t *testing.T) {
	a := newTestApp(t, &scriptedPrompter{}, nil)
	path := writeFile(t, "notes.txt", []byte("0123456789"))

	text, err := a.Compose("Hello", []string{path})
	require.NoError(t, err)
	assert.Equal(t, "Hello\n\n"+notesBlock, text)
}

func TestComposeWithoutBody(t *testing.T) {
	a := newTestApp(t, &scriptedPrompter{}, nil)
	first := writeFile(t, "notes.txt", []byte("0123456789"))
	second := writeFile(t, "notes.txt", []byte("0123456789"))

	text, err := a.Compose("", []string{first, second})
	require.NoError(t, err)
	assert.Equal(t, notesBlock+"\n\n"+notesBlock, text)
}

func TestEncodeFileAsksAboveWarnThreshold(t *testing.T) {
	path := writeFile(t, "big.txt", bytes.Repeat([]byte("a"), 250*1024))

	t.Run("accepted", func(t *testing.T) {
		prompter := &scriptedPrompter{answers: []bool{true}}
		a := newTestApp(t, prompter, nil)

		block, err := a.EncodeFile(path)
		require.NoError(t, err)
		assert.Contains(t, block, "Filesize:250.00KB")
		assert.Len(t, prompter.asked, 1)
		assert.Contains(t, prompter.asked[0], "big.txt")
	})

	t.Run("declined", func(t *testing.T) {
		a := newTestApp(t, &scriptedPrompter{answers: []bool{false}}, nil)

		_, err := a.EncodeFile(path)
		assert.ErrorIs(t, err, ErrDeclined)
	})
}

func TestEncodeFileRejectsOversizeWithoutPrompting(t *testing.T) {
	prompter := &scriptedPrompter{}
	a := newTestApp(t, prompter, nil)
	path := writeFile(t, "huge.bin", make([]byte, 256*1024+1))

	_, err := a.EncodeFile(path)
	require.Error(t, err)
	assert.True(t, attachment.IsSizeRejected(err))
	assert.Empty(t, prompter.asked)
}

func TestEncodeFileRejectsDirectory(t *testing.T) {
	a := newTestApp(t, &scriptedPrompter{}, nil)

	_, err := a.EncodeFile(t.TempDir())
	assert.ErrorContains(t, err, "is a directory")
}

func TestEncodeFilesSkipsDeclined(t *testing.T) {
	a := newTestApp(t, &scriptedPrompter{answers: []bool{false}}, nil)
	big := writeFile(t, "big.txt", bytes.Repeat([]byte("a"), 250*1024))
	small := writeFile(t, "notes.txt", []byte("0123456789"))

	blocks, err := a.EncodeFiles([]string{big, small})
	require.NoError(t, err)
	assert.Equal(t, []string{notesBlock}, blocks)
	assert.Contains(t, a.errOut.String(), "Attachment big.txt discarded.")
	assert.Empty(t, a.out.String())
}

func TestReadSavesAndRedacts(t *testing.T) {
	st := testutil.NewTestStore(t)
	prompter := &scriptedPrompter{answers: []bool{true}}
	a := newTestApp(t, prompter, st)
	ctx := context.Background()

	message := "Hello\n\n" + notesBlock + "\n\nBye"
	require.NoError(t, a.Read(ctx, "inbox/7", message, SaveAsk))

	assert.Equal(t, "Hello\n\n"+attachment.Placeholder+"\n\nBye\n", a.out.String())
	require.Len(t, prompter.asked, 1)
	assert.Contains(t, prompter.asked[0], "notes.txt")

	got, err := os.ReadFile(filepath.Join(a.dir, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789"), got)

	records, err := st.ListAttachments(ctx, store.AttachmentFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "inbox/7", records[0].MessageRef)
}

func TestReadDeclinedSaveWritesNothing(t *testing.T) {
	a := newTestApp(t, &scriptedPrompter{answers: []bool{false}}, nil)

	require.NoError(t, a.Read(context.Background(), "m", notesBlock, SaveAsk))
	assert.NoDirExists(t, a.dir)
	assert.Equal(t, attachment.Placeholder+"\n", a.out.String())
}

func TestReadNoSaveNeverPrompts(t *testing.T) {
	prompter := &scriptedPrompter{}
	a := newTestApp(t, prompter, nil)

	require.NoError(t, a.Read(context.Background(), "m", notesBlock, SaveNone))
	assert.Empty(t, prompter.asked)
	assert.NoDirExists(t, a.dir)
}

func TestReadReportsMalformedBlockAfterDisplay(t *testing.T) {
	a := newTestApp(t, &scriptedPrompter{}, nil)
	message := notesBlock + "\n\ntrailing ;base64, QUJD"

	err := a.Read(context.Background(), "m", message, SaveNone)
	require.Error(t, err)
	assert.True(t, attachment.IsMalformed(err))
	assert.ErrorIs(t, err, attachment.ErrUnterminatedBlock)

	assert.Equal(t, attachment.Placeholder+"\n\ntrailing ;base64, QUJD\n", a.out.String())
	assert.Contains(t, a.errOut.String(), "Warning:")
}

func TestReadKeepsGoingAfterFailedSave(t *testing.T) {
	a := newTestApp(t, nil, nil)
	broken := "<attachment alt = \"bad\x00name\" src='data:file/file;base64, AAEC' />"
	message := "Hello\n\n" + broken + "\n\n" + notesBlock + "\n\nBye"

	err := a.Read(context.Background(), "m", message, SaveAll)
	require.Error(t, err)
	assert.ErrorContains(t, err, "saving bad")

	want := "Hello\n\n" + attachment.Placeholder + "\n\n" + attachment.Placeholder + "\n\nBye\n"
	assert.Equal(t, want, a.out.String())
	assert.FileExists(t, filepath.Join(a.dir, "notes.txt"))
	assert.Contains(t, a.errOut.String(), "Successfully saved")
}

func TestExtractReusesIdenticalContent(t *testing.T) {
	st := testutil.NewTestStore(t)
	a := newTestApp(t, nil, st)
	ctx := context.Background()

	first, err := a.Extract(ctx, "m1", notesBlock)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.False(t, first[0].Reused)

	second, err := a.Extract(ctx, "m2", notesBlock)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.True(t, second[0].Reused)
	assert.Equal(t, first[0].Record.Path, second[0].Record.Path)
}

func TestExtractWithoutAttachments(t *testing.T) {
	a := newTestApp(t, nil, nil)

	results, err := a.Extract(context.Background(), "m", "just text")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Contains(t, a.errOut.String(), "No attachments found in m.")
}

func TestListBlocks(t *testing.T) {
	a := newTestApp(t, nil, nil)
	message := "Hi\n\n" + notesBlock

	require.NoError(t, a.ListBlocks("m", message))
	out := a.out.String()
	assert.Contains(t, out, "m: 1 attachment(s)")
	assert.Contains(t, out, "notes.txt")
	assert.Contains(t, out, "10 B")
	assert.Contains(t, out, "[4:")
}

func TestHistoryListsSaves(t *testing.T) {
	st := testutil.NewTestStore(t)
	a := newTestApp(t, nil, st)
	ctx := context.Background()

	require.NoError(t, a.History(ctx, store.AttachmentFilter{}))
	assert.Contains(t, a.out.String(), "No saved attachments.")

	_, err := a.Extract(ctx, "m", notesBlock)
	require.NoError(t, err)

	a.out.Reset()
	require.NoError(t, a.History(ctx, store.AttachmentFilter{}))
	assert.Contains(t, a.out.String(), "notes.txt")
	assert.Contains(t, a.out.String(), filepath.Join(a.dir, "notes.txt"))
}

func TestHistoryWithoutStore(t *testing.T) {
	a := newTestApp(t, nil, nil)
	assert.Error(t, a.History(context.Background(), store.AttachmentFilter{}))
}
