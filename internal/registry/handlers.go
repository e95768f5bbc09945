package registry

import (
	"fmt"
	"log/slog"
)

// GlobalOrigin marks operations compiled into the binary.
const GlobalOrigin = "global"

// RowHook is a row-scoped operation. It receives the row, its zero-based
// index and the quit-on-error flag, and returns the replacement row.
type RowHook func(row map[string]any, rowIndex int, quitOnError bool) (map[string]any, error)

// CellHook is a cell-scoped operation. It receives the cell, the whole row,
// the row index, the column title and the quit-on-error flag, and returns
// the replacement cell.
type CellHook func(value any, row map[string]any, rowIndex int, column string, quitOnError bool) (any, error)

// Operation is a resolved, callable operation. Exactly one of Row and Cell
// is set.
type Operation struct {
	Name   string
	Row    RowHook
	Cell   CellHook
	Origin string
}

// Scoped describes whether the operation works on rows or cells.
func (o *Operation) Scoped() string {
	if o.Cell != nil {
		return "cell"
	}
	return "row"
}

// RegisterRowHook registers a global row-scoped operation.
func (r *Registry) RegisterRowHook(name string, fn RowHook) {
	r.register(&Operation{Name: name, Row: fn, Origin: GlobalOrigin})
}

// RegisterCellHook registers a global cell-scoped operation.
func (r *Registry) RegisterCellHook(name string, fn CellHook) {
	r.register(&Operation{Name: name, Cell: fn, Origin: GlobalOrigin})
}

func (r *Registry) register(op *Operation) {
	if _, exists := r.operations[op.Name]; exists {
		panic(fmt.Sprintf("operation with name '%s' already registered", op.Name))
	}
	slog.Debug("Registering operation.", "name", op.Name, "scope", op.Scoped())
	r.operations[op.Name] = op
}
