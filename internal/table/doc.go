// Package table holds the in-memory table that commands mutate.
//
// A Table is a rectangular grid of Values with an optional header. Columns
// are addressed through a Ref, either by header name or by zero-based
// position (spreadsheet letters "A", "B", ... map to 0, 1, ...). Name lookups
// always consult the current header, so renames, insertions and deletions
// are visible to every later lookup.
package table
