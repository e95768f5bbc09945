package executor

import (
	"context"
	"strings"

	"github.com/vk/transtab/internal/command"
	"github.com/vk/transtab/internal/ctxlog"
	"github.com/vk/transtab/internal/dates"
	"github.com/vk/transtab/internal/failure"
	"github.com/vk/transtab/internal/table"
)

func normalizeDates(t *table.Table, c command.DeclareDates) error {
	cols, err := resolveAll(t, c.Columns)
	if err != nil {
		return err
	}
	for i, row := range t.All() {
		for _, col := range cols {
			v, err := dates.Normalize(row[col])
			if err != nil {
				return &failure.TypeError{
					Column: t.ColumnName(col),
					Row:    rowNumber(t, i),
					Value:  row[col].String(),
					Msg:    err.Error(),
				}
			}
			row[col] = v
		}
	}
	return nil
}

func newColumn(ctx context.Context, t *table.Table, c command.NewColumn) {
	if _, exists := t.ColumnIndex(c.Name); exists {
		ctxlog.FromContext(ctx).Warn("Column already exists, nothing to add.", "column", c.Name)
		return
	}
	t.AppendColumn(c.Name)
}

func clearColumn(t *table.Table, c command.ClearColumn) error {
	col, err := t.Resolve(c.Column)
	if err != nil {
		return err
	}
	for _, row := range t.All() {
		row[col] = table.Value{}
	}
	return nil
}

func deleteColumns(t *table.Table, c command.DeleteColumns) error {
	var positions []int
	for _, ref := range c.Columns {
		col, err := t.Resolve(ref)
		if err != nil {
			if c.Lenient {
				continue
			}
			return err
		}
		positions = append(positions, col)
	}
	return t.DeleteColumns(positions)
}

func renameColumn(t *table.Table, c command.RenameColumn) error {
	col, err := t.Resolve(c.Column)
	if err == nil && !t.HasHeader() {
		err = &failure.ReferenceError{Kind: "header of column", Ref: c.Column.String()}
	}
	if err != nil {
		if c.Lenient {
			return nil
		}
		return err
	}
	t.Rename(col, c.NewName)
	return nil
}

// copyColumn copies src into dest, creating a named dest when absent. With
// cut set src is cleared afterwards.
func copyColumn(t *table.Table, src, dest table.Ref, cut bool) error {
	from, err := t.Resolve(src)
	if err != nil {
		return err
	}
	to, err := destination(t, dest)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}
	for _, row := range t.All() {
		row[to] = row[from]
		if cut {
			row[from] = table.Value{}
		}
	}
	return nil
}

func concatenate(t *table.Table, c command.Concatenate) error {
	sources, err := resolveAll(t, c.Sources)
	if err != nil {
		return err
	}
	var to int
	if c.Append {
		to = t.AppendColumn(c.Dest.Name())
	} else if to, err = destination(t, c.Dest); err != nil {
		return err
	}

	parts := make([]string, len(sources))
	for _, row := range t.All() {
		for j, col := range sources {
			parts[j] = row[col].String()
		}
		row[to] = table.Text(strings.Join(parts, c.Joiner))
	}
	return nil
}

// destination resolves a target column, appending it when a named column
// does not exist yet.
func destination(t *table.Table, ref table.Ref) (int, error) {
	if col, ok := t.Lookup(ref); ok {
		return col, nil
	}
	if _, positional := ref.Index(); positional || !t.HasHeader() {
		return -1, &failure.ReferenceError{Kind: "column", Ref: ref.String()}
	}
	return t.AppendColumn(ref.Name()), nil
}

func resolveAll(t *table.Table, refs []table.Ref) ([]int, error) {
	cols := make([]int, len(refs))
	for i, ref := range refs {
		col, err := t.Resolve(ref)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return cols, nil
}
