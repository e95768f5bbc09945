package table

import (
	"fmt"
	"iter"
	"slices"
	"strconv"

	"github.com/vk/transtab/internal/failure"
)

// Table is a rectangular grid of values with an optional header.
type Table struct {
	hasHeader bool
	header    []string
	rows      [][]Value
	width     int
}

// New builds a table from raw records. When hasHeader is set, the first
// record becomes the header. Short records are padded with empty values so
// the result is rectangular.
func New(hasHeader bool, records [][]Value) *Table {
	t := &Table{hasHeader: hasHeader}
	for _, rec := range records {
		t.width = max(t.width, len(rec))
	}
	if hasHeader {
		t.header = make([]string, t.width)
		if len(records) > 0 {
			for i, v := range records[0] {
				t.header[i] = v.String()
			}
			records = records[1:]
		}
	}
	t.rows = make([][]Value, 0, len(records))
	for _, rec := range records {
		row := make([]Value, t.width)
		copy(row, rec)
		t.rows = append(t.rows, row)
	}
	return t
}

// FromStrings builds a table from text records. Empty strings become empty
// values.
func FromStrings(hasHeader bool, records [][]string) *Table {
	values := make([][]Value, len(records))
	for i, rec := range records {
		values[i] = make([]Value, len(rec))
		for j, s := range rec {
			values[i][j] = Text(s)
		}
	}
	return New(hasHeader, values)
}

func (t *Table) HasHeader() bool { return t.hasHeader }

// Width returns the number of columns.
func (t *Table) Width() int { return t.width }

// Len returns the number of data rows, not counting the header.
func (t *Table) Len() int { return len(t.rows) }

// Header returns a copy of the current header, or nil without one.
func (t *Table) Header() []string {
	if !t.hasHeader {
		return nil
	}
	return slices.Clone(t.header)
}

// ColumnName returns the header title of column i, or its letters when the
// table has no header.
func (t *Table) ColumnName(i int) string {
	if t.hasHeader {
		return t.header[i]
	}
	return Letters(i)
}

// ColumnIndex returns the position of the first column titled name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	if !t.hasHeader {
		return -1, false
	}
	i := slices.Index(t.header, name)
	return i, i >= 0
}

// Lookup resolves ref against the current state of the table.
func (t *Table) Lookup(ref Ref) (int, bool) {
	if i, ok := ref.Index(); ok {
		return i, i >= 0 && i < t.width
	}
	return t.ColumnIndex(ref.Name())
}

// Resolve is Lookup with a ReferenceError for missing columns.
func (t *Table) Resolve(ref Ref) (int, error) {
	i, ok := t.Lookup(ref)
	if !ok {
		return -1, &failure.ReferenceError{Kind: "column", Ref: ref.String()}
	}
	return i, nil
}

// Cell returns the value at data row r, column c.
func (t *Table) Cell(r, c int) Value { return t.rows[r][c] }

// SetCell replaces the value at data row r, column c.
func (t *Table) SetCell(r, c int, v Value) { t.rows[r][c] = v }

// Row returns a copy of data row r.
func (t *Table) Row(r int) []Value { return slices.Clone(t.rows[r]) }

// SetRow replaces data row r. The row must match the table width.
func (t *Table) SetRow(r int, row []Value) error {
	if len(row) != t.width {
		return fmt.Errorf("row %d has %d cells, table has %d columns", r, len(row), t.width)
	}
	t.rows[r] = slices.Clone(row)
	return nil
}

// All yields data rows in order. Each step reads the live table, so
// deletions made by the caller during iteration are observed.
func (t *Table) All() iter.Seq2[int, []Value] {
	return func(yield func(int, []Value) bool) {
		for i := 0; i < len(t.rows); i++ {
			if !yield(i, t.rows[i]) {
				return
			}
		}
	}
}

// InsertRow inserts a row before data row pos. Short rows are padded.
func (t *Table) InsertRow(pos int, row []Value) error {
	if pos < 0 || pos > len(t.rows) {
		return &failure.ReferenceError{Kind: "row", Ref: strconv.Itoa(pos)}
	}
	if len(row) > t.width {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), t.width)
	}
	padded := make([]Value, t.width)
	copy(padded, row)
	t.rows = slices.Insert(t.rows, pos, padded)
	return nil
}

// DeleteRow removes data row pos.
func (t *Table) DeleteRow(pos int) error {
	if pos < 0 || pos >= len(t.rows) {
		return &failure.ReferenceError{Kind: "row", Ref: strconv.Itoa(pos)}
	}
	t.rows = slices.Delete(t.rows, pos, pos+1)
	return nil
}

// DeleteRows removes the given data rows, all expressed in the coordinates
// before the call. Duplicates are ignored.
func (t *Table) DeleteRows(positions []int) error {
	for _, pos := range descending(positions) {
		if err := t.DeleteRow(pos); err != nil {
			return err
		}
	}
	return nil
}

// PromoteFirstRow replaces the header with the first data row. A table with
// a header and no data loses its header.
func (t *Table) PromoteFirstRow() {
	if len(t.rows) == 0 {
		t.hasHeader = false
		t.header = nil
		return
	}
	first := t.rows[0]
	t.header = make([]string, t.width)
	for i, v := range first {
		t.header[i] = v.String()
	}
	t.hasHeader = true
	t.rows = slices.Delete(t.rows, 0, 1)
}

// InsertColumn inserts an empty column titled name before position pos.
func (t *Table) InsertColumn(pos int, name string) error {
	if pos < 0 || pos > t.width {
		return &failure.ReferenceError{Kind: "column", Ref: Letters(pos)}
	}
	if t.hasHeader {
		t.header = slices.Insert(t.header, pos, name)
	}
	for i := range t.rows {
		t.rows[i] = slices.Insert(t.rows[i], pos, Value{})
	}
	t.width++
	return nil
}

// AppendColumn adds an empty column titled name and returns its position.
func (t *Table) AppendColumn(name string) int {
	pos := t.width
	// pos == width is always a valid insertion point.
	_ = t.InsertColumn(pos, name)
	return pos
}

// DeleteColumn removes column pos from the header and every row.
func (t *Table) DeleteColumn(pos int) error {
	if pos < 0 || pos >= t.width {
		return &failure.ReferenceError{Kind: "column", Ref: Letters(pos)}
	}
	if t.hasHeader {
		t.header = slices.Delete(t.header, pos, pos+1)
	}
	for i := range t.rows {
		t.rows[i] = slices.Delete(t.rows[i], pos, pos+1)
	}
	t.width--
	return nil
}

// DeleteColumns removes the given columns, all expressed in the coordinates
// before the call. Duplicates are ignored.
func (t *Table) DeleteColumns(positions []int) error {
	for _, pos := range descending(positions) {
		if err := t.DeleteColumn(pos); err != nil {
			return err
		}
	}
	return nil
}

// Rename sets the header title of column pos. It reports false when the
// table has no header.
func (t *Table) Rename(pos int, name string) bool {
	if !t.hasHeader {
		return false
	}
	t.header[pos] = name
	return true
}

// Records returns the whole table as rows, the header first as text.
func (t *Table) Records() [][]Value {
	out := make([][]Value, 0, len(t.rows)+1)
	if t.hasHeader {
		h := make([]Value, t.width)
		for i, s := range t.header {
			h[i] = Text(s)
		}
		out = append(out, h)
	}
	for _, row := range t.rows {
		out = append(out, slices.Clone(row))
	}
	return out
}

// Strings returns Records in canonical text form.
func (t *Table) Strings() [][]string {
	recs := t.Records()
	out := make([][]string, len(recs))
	for i, rec := range recs {
		out[i] = make([]string, len(rec))
		for j, v := range rec {
			out[i][j] = v.String()
		}
	}
	return out
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	c := &Table{
		hasHeader: t.hasHeader,
		header:    slices.Clone(t.header),
		rows:      make([][]Value, len(t.rows)),
		width:     t.width,
	}
	for i, row := range t.rows {
		c.rows[i] = slices.Clone(row)
	}
	return c
}

// Equal reports whether both tables have the same header and cells.
func (t *Table) Equal(o *Table) bool {
	if t.hasHeader != o.hasHeader || t.width != o.width || len(t.rows) != len(o.rows) {
		return false
	}
	if !slices.Equal(t.header, o.header) {
		return false
	}
	for i := range t.rows {
		if !slices.EqualFunc(t.rows[i], o.rows[i], Value.Equal) {
			return false
		}
	}
	return true
}

func descending(positions []int) []int {
	out := slices.Clone(positions)
	slices.Sort(out)
	out = slices.Compact(out)
	slices.Reverse(out)
	return out
}
