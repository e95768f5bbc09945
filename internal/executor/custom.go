package executor

import (
	"context"
	"errors"

	"github.com/vk/transtab/internal/command"
	"github.com/vk/transtab/internal/ctxlog"
	"github.com/vk/transtab/internal/failure"
	"github.com/vk/transtab/internal/registry"
	"github.com/vk/transtab/internal/table"
)

// runCustom calls op once per row, replacing the row or, for cell-scoped
// operations, the named cell.
func runCustom(ctx context.Context, t *table.Table, c command.Custom, op *registry.Operation) error {
	if c.Column != nil {
		return runCellHook(ctx, t, c, op)
	}
	for i := range t.All() {
		out, err := op.Row(rowMap(t, i), i, c.QuitOnError)
		if err != nil {
			return &failure.HookError{Operation: op.Name, Row: rowNumber(t, i), Err: err}
		}
		if out == nil {
			return &failure.HookError{Operation: op.Name, Row: rowNumber(t, i), Err: errors.New("returned no row")}
		}
		if err := writeBack(t, i, out); err != nil {
			return &failure.HookError{Operation: op.Name, Row: rowNumber(t, i), Err: err}
		}
	}
	return nil
}

func runCellHook(ctx context.Context, t *table.Table, c command.Custom, op *registry.Operation) error {
	logger := ctxlog.FromContext(ctx)
	col, err := t.Resolve(*c.Column)
	if err != nil {
		return err
	}
	name := t.ColumnName(col)
	for i, row := range t.All() {
		out, err := op.Cell(row[col].Any(), rowMap(t, i), i, name, c.QuitOnError)
		if err != nil {
			return &failure.HookError{Operation: op.Name, Row: rowNumber(t, i), Err: err}
		}
		v, err := table.FromAny(out)
		if err != nil {
			return &failure.TypeError{Column: name, Row: rowNumber(t, i), Value: "", Msg: err.Error()}
		}
		if v.IsEmpty() && !row[col].IsEmpty() {
			logger.Debug("Operation cleared a value.",
				"operation", op.Name, "column", name, "row", rowNumber(t, i), "value", row[col].String())
		}
		row[col] = v
	}
	return nil
}

// rowMap renders row i as the map handed to operations. Columns are keyed
// by title; the first of several equally titled columns wins.
func rowMap(t *table.Table, i int) map[string]any {
	m := make(map[string]any, t.Width())
	for j := range t.Width() {
		name := t.ColumnName(j)
		if _, dup := m[name]; !dup {
			m[name] = t.Cell(i, j).Any()
		}
	}
	return m
}

// writeBack stores an operation's returned row into row i.
func writeBack(t *table.Table, i int, out map[string]any) error {
	row := t.Row(i)
	for name, x := range out {
		col, ok := t.Lookup(columnKey(t, name))
		if !ok {
			return &failure.ReferenceError{Kind: "column", Ref: "'" + name + "'"}
		}
		v, err := table.FromAny(x)
		if err != nil {
			return &failure.TypeError{Column: name, Row: rowNumber(t, i), Msg: err.Error()}
		}
		row[col] = v
	}
	return t.SetRow(i, row)
}

// columnKey turns a row map key back into a column reference.
func columnKey(t *table.Table, name string) table.Ref {
	if !t.HasHeader() {
		if ref, err := table.ParseLetters(name); err == nil {
			return ref
		}
	}
	return table.Named(name)
}
