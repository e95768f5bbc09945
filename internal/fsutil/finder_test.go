package fsutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFiles(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	for _, name := range []string{"b.csv", "a.xlsx", "notes.md", "nested/c.csv"} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
	tables := func(path string) bool { return !strings.HasSuffix(path, ".md") }

	// --- Act ---
	files, err := FindFiles(root, tables)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.xlsx"),
		filepath.Join(root, "b.csv"),
		filepath.Join(root, "nested", "c.csv"),
	}, files)
}

func TestFindFiles_MissingRoot(t *testing.T) {
	_, err := FindFiles(filepath.Join(t.TempDir(), "nope"), func(string) bool { return true })

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindFiles_NilMatchPanics(t *testing.T) {
	assert.Panics(t, func() { _, _ = FindFiles(t.TempDir(), nil) })
}
