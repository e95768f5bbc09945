package executor

import (
	"context"
	"fmt"

	"github.com/vk/transtab/internal/command"
	"github.com/vk/transtab/internal/ctxlog"
	"github.com/vk/transtab/internal/failure"
	"github.com/vk/transtab/internal/registry"
	"github.com/vk/transtab/internal/table"
)

// Resolver binds operation names to callables.
type Resolver interface {
	Resolve(ctx context.Context, name string) (*registry.Operation, error)
}

// Executor applies commands to tables.
type Executor struct {
	resolver Resolver
}

// New creates an executor that binds custom operations through resolver.
func New(resolver Resolver) *Executor {
	return &Executor{resolver: resolver}
}

// Run applies cmds to t in order.
func (e *Executor) Run(ctx context.Context, t *table.Table, cmds []command.Command) error {
	logger := ctxlog.FromContext(ctx)

	ops, err := e.bind(ctx, cmds)
	if err != nil {
		return err
	}

	for i, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Debug("Applying command.", "index", i+1, "command", cmd.String())
		if err := e.apply(ctx, t, cmd, ops); err != nil {
			return fmt.Errorf("command %d (%s): %w", i+1, cmd, err)
		}
	}

	logger.Debug("All commands applied.", "commands", len(cmds), "rows", t.Len(), "columns", t.Width())
	return nil
}

// bind resolves every custom operation up front and checks that its scope
// fits the command.
func (e *Executor) bind(ctx context.Context, cmds []command.Command) (map[string]*registry.Operation, error) {
	ops := make(map[string]*registry.Operation)
	for _, cmd := range cmds {
		c, ok := cmd.(command.Custom)
		if !ok {
			continue
		}
		op, ok := ops[c.Operation]
		if !ok {
			if e.resolver == nil {
				return nil, &failure.UnknownOperationError{Name: c.Operation}
			}
			var err error
			op, err = e.resolver.Resolve(ctx, c.Operation)
			if err != nil {
				return nil, err
			}
			ops[c.Operation] = op
		}
		switch {
		case c.Column != nil && op.Cell == nil:
			return nil, &failure.UnknownOperationError{Name: c.Operation, Reason: "is a row operation and cannot be applied on a column"}
		case c.Column == nil && op.Row == nil:
			return nil, &failure.UnknownOperationError{Name: c.Operation, Reason: "is a cell operation and needs 'on <column>'"}
		}
	}
	return ops, nil
}

func (e *Executor) apply(ctx context.Context, t *table.Table, cmd command.Command, ops map[string]*registry.Operation) error {
	switch c := cmd.(type) {
	case command.DeclareDates:
		return normalizeDates(t, c)
	case command.NewColumn:
		newColumn(ctx, t, c)
		return nil
	case command.ClearColumn:
		return clearColumn(t, c)
	case command.DeleteRows:
		return deleteRows(t, c)
	case command.DeleteColumns:
		return deleteColumns(t, c)
	case command.DropLastRow:
		return dropLastRow(t)
	case command.RenameColumn:
		return renameColumn(t, c)
	case command.Copy:
		return copyColumn(t, c.Src, c.Dest, false)
	case command.CutPaste:
		return copyColumn(t, c.Src, c.Dest, true)
	case command.Concatenate:
		return concatenate(t, c)
	case command.Replace:
		return replace(t, c)
	case command.DeleteDuplicates:
		return deleteDuplicates(t, c.Keys)
	case command.DeleteRowsByValue:
		return deleteRowsByValue(t, c)
	case command.SumAndDedupe:
		return sumAndDedupe(t, c)
	case command.Custom:
		return runCustom(ctx, t, c, ops[c.Operation])
	}
	return fmt.Errorf("unsupported command %T", cmd)
}

// rowNumber converts a data row index into the 1-based row number users
// see, the header counting as row 1.
func rowNumber(t *table.Table, i int) int {
	if t.HasHeader() {
		return i + 2
	}
	return i + 1
}
