package testutil

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/vk/transtab/internal/adapter"
)

// ReadTable reads a written file back as canonical text rows. The first
// row is kept as a plain row.
func ReadTable(t *testing.T, path string) [][]string {
	t.Helper()

	format, err := adapter.ForPath(path)
	require.NoError(t, err)
	tbl, err := format.Read(context.Background(), path, adapter.Options{})
	require.NoError(t, err, "failed to read output %s", path)
	return tbl.Strings()
}

// AssertOutput compares the file at path with the expected rows.
func AssertOutput(t *testing.T, path string, expected [][]string) {
	t.Helper()

	if diff := cmp.Diff(expected, ReadTable(t, path)); diff != "" {
		t.Errorf("output %s mismatch (-want +got):\n%s", path, diff)
	}
}
