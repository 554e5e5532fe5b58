package seeder

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/marker-watch/pkg/logger"
	"github.com/0xmhha/marker-watch/pkg/marker"
	"github.com/0xmhha/marker-watch/pkg/pathfilter"
)

func testConfig() Config {
	return Config{
		Interval:      time.Minute,
		MarkerText:    "Please update this note. " + marker.Token,
		SkipNameParts: []string{"Prompt", "Goal"},
		SkipWords:     []string{"Leitfragen"},
		DeleteEmpty:   true,
	}
}

func newTestSeeder(t *testing.T, root string, cfg Config) *Seeder {
	t.Helper()

	s, err := New(root, cfg, pathfilter.New("."), logger.Noop())
	require.NoError(t, err)
	return s
}

func write(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewRejectsTextWithoutToken(t *testing.T) {
	cfg := testConfig()
	cfg.MarkerText = "no token here"

	_, err := New(t.TempDir(), cfg, pathfilter.New("."), logger.Noop())
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNewRejectsNonDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	_, err := New(file, testConfig(), pathfilter.New("."), logger.Noop())
	assert.ErrorIs(t, err, ErrNotADirectory)
}

func TestRunOnceMarksEligibleFile(t *testing.T) {
	root := t.TempDir()
	path := write(t, root, "notes/a.md", "# Notes\n\nsome content\n")

	s := newTestSeeder(t, root, testConfig())

	assert.True(t, s.RunOnce())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.True(t, marker.Contains(content))
	assert.True(t, strings.HasSuffix(content, "Please update this note. claude!\n"))
	assert.Contains(t, content, "some content")
}

func TestRunOnceSkipsIneligibleFiles(t *testing.T) {
	root := t.TempDir()

	write(t, root, "WritingPrompt.md", "content")
	write(t, root, "GoalList.md", "content")
	write(t, root, "marked.md", "already claude! done")
	write(t, root, "questions.md", "Die Leitfragen stehen hier")
	write(t, root, ".hidden/b.md", "hidden content")
	write(t, root, "readme.txt", "not markdown")

	s := newTestSeeder(t, root, testConfig())

	assert.False(t, s.RunOnce())

	// None of the skipped files may have been touched.
	for _, rel := range []string{"WritingPrompt.md", "GoalList.md", "questions.md", ".hidden/b.md", "readme.txt"} {
		data, err := os.ReadFile(filepath.Join(root, rel))
		require.NoError(t, err)
		if rel == "marked.md" {
			continue
		}
		assert.False(t, marker.Contains(string(data)), "file %s was seeded", rel)
	}
}

func TestRunOnceSkipWordIsWholeWord(t *testing.T) {
	root := t.TempDir()

	// "Leitfragenkatalog" does not match the word-boundary rule, so the
	// file is eligible.
	path := write(t, root, "a.md", "Der Leitfragenkatalog folgt")

	s := newTestSeeder(t, root, testConfig())

	assert.True(t, s.RunOnce())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, marker.Contains(string(data)))
}

func TestRunOnceDeletesBlankFile(t *testing.T) {
	root := t.TempDir()
	path := write(t, root, "empty.md", "  \n\t\n")

	s := newTestSeeder(t, root, testConfig())

	assert.True(t, s.RunOnce())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "blank file was not deleted")
}

func TestRunOnceKeepsBlankFileWhenDeleteDisabled(t *testing.T) {
	root := t.TempDir()
	path := write(t, root, "empty.md", "")

	cfg := testConfig()
	cfg.DeleteEmpty = false

	s := newTestSeeder(t, root, cfg)

	assert.False(t, s.RunOnce())

	_, err := os.Stat(path)
	assert.NoError(t, err, "blank file should survive with delete disabled")
}

func TestRunOnceStopsAfterFirstAction(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.md", "content a")
	write(t, root, "b.md", "content b")
	write(t, root, "c.md", "content c")

	s := newTestSeeder(t, root, testConfig())

	assert.True(t, s.RunOnce())

	seeded := 0
	for _, rel := range []string{"a.md", "b.md", "c.md"} {
		data, err := os.ReadFile(filepath.Join(root, rel))
		require.NoError(t, err)
		if marker.Contains(string(data)) {
			seeded++
		}
	}

	assert.Equal(t, 1, seeded, "exactly one file per pass should be seeded")
}

func TestRunOnceEmptyTree(t *testing.T) {
	s := newTestSeeder(t, t.TempDir(), testConfig())
	assert.False(t, s.RunOnce())
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newTestSeeder(t, t.TempDir(), testConfig())

	ctx, cancel := context.WithCancel(context.Background())

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Run(ctx)
	}()

	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return on cancellation")
	}
}
