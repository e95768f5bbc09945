package executor

import (
	"slices"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/vk/transtab/internal/command"
	"github.com/vk/transtab/internal/failure"
	"github.com/vk/transtab/internal/table"
)

// deleteRows removes rows by their 1-based number. With a header, row 1 is
// the header and deleting it promotes the first data row.
func deleteRows(t *table.Table, c command.DeleteRows) error {
	var data []int
	dropHeader := false
	for _, n := range c.Rows {
		i := n - 1
		if t.HasHeader() {
			i = n - 2
		}
		switch {
		case t.HasHeader() && i == -1:
			dropHeader = true
		case i >= 0 && i < t.Len():
			data = append(data, i)
		case !c.Lenient:
			return &failure.ReferenceError{Kind: "row", Ref: strconv.Itoa(n)}
		}
	}
	if err := t.DeleteRows(data); err != nil {
		return err
	}
	if dropHeader {
		t.PromoteFirstRow()
	}
	return nil
}

func dropLastRow(t *table.Table) error {
	if t.Len() == 0 {
		return nil
	}
	return t.DeleteRow(t.Len() - 1)
}

// deleteDuplicates keeps the first row of every duplicate group. Without
// keys whole rows are compared; with keys a row goes when any key column
// repeats a value seen earlier in that column.
func deleteDuplicates(t *table.Table, keys []table.Ref) error {
	if len(keys) == 0 {
		return t.DeleteRows(duplicateRows(t))
	}

	cols, err := resolveAll(t, keys)
	if err != nil {
		return err
	}
	seen := make([]map[string]bool, len(cols))
	for k := range seen {
		seen[k] = make(map[string]bool)
	}

	var doomed []int
	for i, row := range t.All() {
		dup := false
		for k, col := range cols {
			key := valueKey(row[col])
			if seen[k][key] {
				dup = true
				continue
			}
			seen[k][key] = true
		}
		if dup {
			doomed = append(doomed, i)
		}
	}
	return t.DeleteRows(doomed)
}

// duplicateRows returns the indexes of rows equal to an earlier row.
func duplicateRows(t *table.Table) []int {
	buckets := make(map[uint64][]int)
	var doomed []int
	for i, row := range t.All() {
		h := fingerprint(row)
		dup := slices.ContainsFunc(buckets[h], func(j int) bool {
			return slices.EqualFunc(t.Row(j), row, table.Value.Equal)
		})
		if dup {
			doomed = append(doomed, i)
			continue
		}
		buckets[h] = append(buckets[h], i)
	}
	return doomed
}

func fingerprint(row []table.Value) uint64 {
	var b strings.Builder
	for _, v := range row {
		b.WriteString(valueKey(v))
		b.WriteByte(0x1f)
	}
	return xxh3.HashString(b.String())
}

// valueKey identifies a value by kind and canonical text, so the number 90
// and the text "90" stay distinct.
func valueKey(v table.Value) string {
	return strconv.Itoa(int(v.Kind())) + ":" + v.String()
}

// deleteRowsByValue removes the rows whose column matches the literal: an
// empty literal matches empty cells, any other literal matches cells that
// contain it.
func deleteRowsByValue(t *table.Table, c command.DeleteRowsByValue) error {
	col, err := t.Resolve(c.Column)
	if err != nil {
		return err
	}
	var doomed []int
	for i, row := range t.All() {
		cell := row[col]
		if c.Value == "" && cell.IsEmpty() || c.Value != "" && strings.Contains(cell.String(), c.Value) {
			doomed = append(doomed, i)
		}
	}
	return t.DeleteRows(doomed)
}

// sumAndDedupe writes each group's total into the group's first row, then
// drops the rest of the group. Empty cells count as zero.
func sumAndDedupe(t *table.Table, c command.SumAndDedupe) error {
	sumCol, err := t.Resolve(c.Sum)
	if err != nil {
		return err
	}
	uniqueCol, err := t.Resolve(c.Unique)
	if err != nil {
		return err
	}

	first := make(map[string]int)
	totals := make(map[string]float64)
	var order []string
	for i, row := range t.All() {
		var n float64
		if cell := row[sumCol]; !cell.IsEmpty() {
			f, ok := cell.Float()
			if !ok {
				return &failure.TypeError{
					Column: t.ColumnName(sumCol),
					Row:    rowNumber(t, i),
					Value:  cell.String(),
					Msg:    "cannot sum a non-numeric value",
				}
			}
			n = f
		}
		key := valueKey(row[uniqueCol])
		if _, ok := first[key]; !ok {
			first[key] = i
			order = append(order, key)
		}
		totals[key] += n
	}

	for _, key := range order {
		t.SetCell(first[key], sumCol, table.Number(totals[key]))
	}
	return deleteDuplicates(t, []table.Ref{c.Unique})
}
