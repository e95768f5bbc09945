package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/transtab/internal/failure"
	"github.com/vk/transtab/internal/table"
)

func TestCSV_Read(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		opts     Options
		expected [][]string
	}{
		{
			name:     "bom and ragged rows",
			content:  "\uFEFFitem,price\nOrange,90\nPen\n",
			opts:     Options{HasHeader: true},
			expected: [][]string{{"item", "price"}, {"Orange", "90"}, {"Pen", ""}},
		},
		{
			name:     "lazy quotes",
			content:  "a,b\n5\" pipe,x\n",
			opts:     Options{HasHeader: true},
			expected: [][]string{{"a", "b"}, {"5\" pipe", "x"}},
		},
		{
			name:     "windows-1252",
			content:  "name\ncaf\xe9\n",
			opts:     Options{HasHeader: true, Encoding: "windows-1252"},
			expected: [][]string{{"name"}, {"café"}},
		},
		{
			name:     "no header",
			content:  "1,2\n3,4\n",
			opts:     Options{},
			expected: [][]string{{"1", "2"}, {"3", "4"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			path := filepath.Join(t.TempDir(), "in.csv")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))

			// --- Act ---
			tbl, err := CSV{}.Read(context.Background(), path, tc.opts)

			// --- Assert ---
			require.NoError(t, err)
			assert.Equal(t, tc.opts.HasHeader, tbl.HasHeader())
			assert.Equal(t, tc.expected, tbl.Strings())
		})
	}
}

func TestCSV_Write(t *testing.T) {
	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "out.csv")
	tbl := table.FromStrings(true, [][]string{{"name", "note"}, {"café", "two\nlines"}})

	// --- Act ---
	err := CSV{}.Write(context.Background(), path, tbl, Options{Encoding: "iso-8859-1"})

	// --- Assert ---
	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,note\ncaf\xe9,\"two\nlines\"\n", string(got))
}

func TestCSV_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := CSV{}.Read(context.Background(), filepath.Join(dir, "missing.csv"), Options{})
	var readErr *failure.ReadError
	assert.ErrorAs(t, err, &readErr)

	err = CSV{}.Write(context.Background(), filepath.Join(dir, "out.csv"), sample(), Options{Encoding: "ebcdic"})
	var writeErr *failure.WriteError
	assert.ErrorAs(t, err, &writeErr)
	assert.ErrorContains(t, err, "unsupported encoding")
}
