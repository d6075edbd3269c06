package grabber

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/tube-grabber/internal/constants"
)

func touch(t *testing.T, path string, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(path, []byte(content), constants.DefaultFilePermissions))
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names
}

// TestScratch_NewSession tests token format and uniqueness.
func TestScratch_NewSession(t *testing.T) {
	t.Parallel()

	scratch, err := NewScratch(filepath.Join(t.TempDir(), "nested", "scratch"))
	require.NoError(t, err)

	first, second := scratch.NewSession(), scratch.NewSession()

	assert.Regexp(t, regexp.MustCompile(`^\d{13}-[0-9a-f-]{36}$`), first.Token())
	assert.NotEqual(t, first.Token(), second.Token())
	assert.Equal(t, filepath.Join(scratch.Dir(), first.Token()+".%(ext)s"), first.OutputTemplate())
}

// TestSession_FindOutput tests output discovery by token prefix.
func TestSession_FindOutput(t *testing.T) {
	t.Parallel()

	scratch, err := NewScratch(t.TempDir())
	require.NoError(t, err)

	session := scratch.NewSession()

	_, err = session.FindOutput()
	require.ErrorIs(t, err, ErrNoOutput)

	prefix := filepath.Join(scratch.Dir(), session.Token())

	touch(t, prefix+".f137.mp4", "video")
	touch(t, prefix+".f140.m4a.part", "audio")
	touch(t, prefix+".temp.mp4", "merging")
	touch(t, prefix+".mp4.ytdl", "state")
	touch(t, prefix+".webm", "")

	_, err = session.FindOutput()
	require.ErrorIs(t, err, ErrNoOutput, "intermediate, partial and empty files are not outputs")

	touch(t, prefix+".mp4", "merged")
	touch(t, filepath.Join(scratch.Dir(), "other-request.mp4"), "foreign")

	output, err := session.FindOutput()
	require.NoError(t, err)
	assert.Equal(t, prefix+".mp4", output)
	assert.Contains(t, session.Artifacts(), TempArtifact{Path: output, Purpose: PurposeRaw})
}

// TestSession_Cleanup tests that only the session's files are removed.
func TestSession_Cleanup(t *testing.T) {
	t.Parallel()

	scratch, err := NewScratch(t.TempDir())
	require.NoError(t, err)

	session := scratch.NewSession()
	other := scratch.NewSession()

	registered := session.NewPath("video.mp4", PurposeStream)
	touch(t, registered, "v")
	touch(t, filepath.Join(scratch.Dir(), session.Token()+".f140.m4a.part"), "a")
	touch(t, filepath.Join(scratch.Dir(), other.Token()+".mp4"), "keep")

	// A registered path that was never written must not break cleanup.
	session.NewPath("never-written.mp3", PurposeTranscoded)

	session.Cleanup(t.Context())

	assert.Equal(t, []string{other.Token() + ".mp4"}, listDir(t, scratch.Dir()))
	assert.Len(t, session.Artifacts(), 2)
}

// TestScratch_Sweep tests removal of stale token files.
func TestScratch_Sweep(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	scratch, err := NewScratch(dir)
	require.NoError(t, err)

	stale := scratch.NewSession()
	fresh := scratch.NewSession()

	stalePath := filepath.Join(dir, stale.Token()+".webm")
	touch(t, stalePath, "old")
	touch(t, filepath.Join(dir, fresh.Token()+".webm"), "new")
	touch(t, filepath.Join(dir, "notes.txt"), "not ours")

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stalePath, old, old))

	removed, err := scratch.Sweep(t.Context(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	names := listDir(t, dir)
	assert.Len(t, names, 2)

	for _, name := range names {
		assert.False(t, strings.HasPrefix(name, stale.Token()))
	}
}
