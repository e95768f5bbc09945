package hcl_adapter

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/transtab/internal/command"
	"github.com/vk/transtab/internal/ctxlog"
	"github.com/vk/transtab/internal/registry"
	"github.com/vk/transtab/internal/table"
)

// Column and row markers.
const (
	markDrop   = "drop"
	markUnique = "unique"
	markClear  = "clear"
)

// Descriptor actions.
const (
	actionReplace     = "replace"
	actionOperation   = "operation"
	actionCutPaste    = "cutpaste"
	actionConcatenate = "concatenate"
)

// translator turns a decoded document into commands. Commands are emitted
// phase by phase: row drops, header titles, unique dedupe, cut-paste,
// operations, replace, replace based on another column, clear, new
// columns and finally column drops.
type translator struct {
	ctx       context.Context
	filename  string
	src       []byte
	hasHeader bool
}

// columnPlan collects the column section grouped by phase.
type columnPlan struct {
	unique    []table.Ref
	cutpaste  []command.Command
	operation []command.Command
	replace   []command.Command
	basedOn   []command.Command
	clear     []command.Command
	drop      []table.Ref
}

func (t *translator) translate(doc *document) ([]command.Command, error) {
	var cmds []command.Command

	rows, err := t.rows(doc.Rows)
	if err != nil {
		return nil, err
	}
	cmds = append(cmds, rows...)

	headers, err := t.headerRows(doc.HeaderRows)
	if err != nil {
		return nil, err
	}
	cmds = append(cmds, headers...)

	plan, err := t.columns(doc.Columns)
	if err != nil {
		return nil, err
	}
	if len(plan.unique) > 0 {
		cmds = append(cmds, command.DeleteDuplicates{Keys: plan.unique})
	}
	cmds = append(cmds, plan.cutpaste...)
	cmds = append(cmds, plan.operation...)
	cmds = append(cmds, plan.replace...)
	cmds = append(cmds, plan.basedOn...)
	cmds = append(cmds, plan.clear...)

	added, err := t.newColumns(doc.NewColumns)
	if err != nil {
		return nil, err
	}
	cmds = append(cmds, added...)

	if len(plan.drop) > 0 {
		cmds = append(cmds, command.DeleteColumns{Columns: plan.drop, Lenient: true})
	}
	return cmds, nil
}

// section evaluates a top-level mapping attribute.
func (t *translator) section(expr hcl.Expression, name string) ([]entry, error) {
	if !isExprDefined(t.ctx, expr, name) {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, syntaxError(t.filename, t.src, diags)
	}
	out, err := entries(val)
	if err != nil {
		return nil, t.errorf(expr, "%s: %v", name, err)
	}
	return out, nil
}

func (t *translator) errorf(expr hcl.Expression, format string, args ...any) error {
	return rangeError(t.filename, t.src, expr.Range(), fmt.Sprintf(format, args...))
}

func (t *translator) rows(expr hcl.Expression) ([]command.Command, error) {
	items, err := t.section(expr, "rows")
	if err != nil || len(items) == 0 {
		return nil, err
	}
	var drops []int
	for _, it := range items {
		n, err := strconv.Atoi(it.key)
		if err != nil || n < 1 {
			return nil, t.errorf(expr, "rows: %q is not a row number", it.key)
		}
		mark, ok := asString(it.val)
		if !ok || mark != markDrop {
			return nil, t.errorf(expr, "rows: row %d: only %q is supported", n, markDrop)
		}
		drops = append(drops, n)
	}
	slices.Sort(drops)
	return []command.Command{command.DeleteRows{Rows: drops, Lenient: true}}, nil
}

func (t *translator) headerRows(expr hcl.Expression) ([]command.Command, error) {
	items, err := t.section(expr, "header_rows")
	if err != nil || len(items) == 0 {
		return nil, err
	}
	if !t.hasHeader {
		ctxlog.FromContext(t.ctx).Warn("Ignoring header_rows for a specification without a header row.", "path", t.filename)
		return nil, nil
	}
	var cmds []command.Command
	for _, it := range items {
		ref, err := t.column(expr, "header_rows", it.key)
		if err != nil {
			return nil, err
		}
		if action, _ := asString(attr(it.val, "action")); !isMapping(it.val) || action != actionReplace {
			return nil, t.errorf(expr, "header_rows: %s: expected {action = %q, with = <title>}", it.key, actionReplace)
		}
		title, ok := asString(attr(it.val, "with"))
		if !ok {
			return nil, t.errorf(expr, "header_rows: %s: 'with' must be a title", it.key)
		}
		cmds = append(cmds, command.RenameColumn{Column: ref, NewName: title, Lenient: true})
	}
	return cmds, nil
}

func (t *translator) columns(expr hcl.Expression) (*columnPlan, error) {
	plan := &columnPlan{}
	items, err := t.section(expr, "columns")
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		ref, err := t.column(expr, "columns", it.key)
		if err != nil {
			return nil, err
		}

		if mark, ok := asString(it.val); ok {
			switch mark {
			case markUnique:
				plan.unique = append(plan.unique, ref)
			case markDrop:
				plan.drop = append(plan.drop, ref)
			case markClear:
				plan.clear = append(plan.clear, command.ClearColumn{Column: ref})
			default:
				return nil, t.errorf(expr, "columns: %s: unknown marker %q", it.key, mark)
			}
			continue
		}
		if !isMapping(it.val) {
			return nil, t.errorf(expr, "columns: %s: expected a marker or an action descriptor", it.key)
		}

		action, _ := asString(attr(it.val, "action"))
		switch action {
		case actionReplace:
			cmd, err := t.replace(expr, "columns", it.key, it.val)
			if err != nil {
				return nil, err
			}
			cmd.Column = ref
			if cmd.BasedOn != nil {
				plan.basedOn = append(plan.basedOn, cmd)
			} else {
				plan.replace = append(plan.replace, cmd)
			}
		case actionOperation:
			name, ok := asString(attr(it.val, "function"))
			if !ok || !registry.IsIdentifier(name) {
				return nil, t.errorf(expr, "columns: %s: 'function' must name an operation", it.key)
			}
			quit, ok := asBool(attr(it.val, "quit_on_error"))
			if !ok {
				return nil, t.errorf(expr, "columns: %s: 'quit_on_error' must be a boolean", it.key)
			}
			col := ref
			plan.operation = append(plan.operation, command.Custom{Operation: name, Column: &col, QuitOnError: quit})
		case actionCutPaste:
			from, ok := asString(attr(it.val, "from"))
			if !ok {
				return nil, t.errorf(expr, "columns: %s: 'from' must name a column", it.key)
			}
			src, err := t.column(expr, "columns", from)
			if err != nil {
				return nil, err
			}
			plan.cutpaste = append(plan.cutpaste, command.CutPaste{Src: src, Dest: ref})
		default:
			return nil, t.errorf(expr, "columns: %s: unknown action %q", it.key, action)
		}
	}
	return plan, nil
}

func (t *translator) newColumns(expr hcl.Expression) ([]command.Command, error) {
	items, err := t.section(expr, "new_columns")
	if err != nil || len(items) == 0 {
		return nil, err
	}
	var replaced, joined []command.Command
	for _, it := range items {
		if !isMapping(it.val) {
			return nil, t.errorf(expr, "new_columns: %s: expected an action descriptor", it.key)
		}
		title := it.key
		if s, ok := asString(attr(it.val, "header_title")); ok {
			title = s
		}

		action, _ := asString(attr(it.val, "action"))
		switch action {
		case actionReplace:
			cmd, err := t.replace(expr, "new_columns", it.key, it.val)
			if err != nil {
				return nil, err
			}
			if cmd.BasedOn == nil {
				return nil, t.errorf(expr, "new_columns: %s: replace needs 'based_on'", it.key)
			}
			cmd.Column = table.Named(title)
			cmd.Append = true
			replaced = append(replaced, cmd)
		case actionConcatenate:
			names, ok := asStrings(attr(it.val, "based_on"))
			if !ok || len(names) == 0 {
				return nil, t.errorf(expr, "new_columns: %s: 'based_on' must list columns", it.key)
			}
			sources := make([]table.Ref, len(names))
			for i, name := range names {
				if sources[i], err = t.column(expr, "new_columns", name); err != nil {
					return nil, err
				}
			}
			joiner := ""
			if v := attr(it.val, "join_string"); !v.IsNull() {
				if joiner, ok = asString(v); !ok {
					return nil, t.errorf(expr, "new_columns: %s: 'join_string' must be text", it.key)
				}
			}
			joined = append(joined, command.Concatenate{Sources: sources, Dest: table.Named(title), Joiner: joiner, Append: true})
		default:
			return nil, t.errorf(expr, "new_columns: %s: unknown action %q", it.key, action)
		}
	}
	return append(replaced, joined...), nil
}

// replace decodes a replace descriptor. The caller sets the target column.
func (t *translator) replace(expr hcl.Expression, section, key string, val cty.Value) (command.Replace, error) {
	var cmd command.Replace

	with := attr(val, "with")
	if with.IsNull() || !isMapping(with) {
		return cmd, t.errorf(expr, "%s: %s: 'with' must be a mapping", section, key)
	}
	pairs, _ := entries(with)
	cmd.Mapping = make(map[string]table.Value, len(pairs))
	for _, p := range pairs {
		v, err := toValue(p.val)
		if err != nil {
			return cmd, t.errorf(expr, "%s: %s: with %q: %v", section, key, p.key, err)
		}
		cmd.Mapping[p.key] = v
	}

	if v := attr(val, "based_on"); !v.IsNull() {
		name, ok := asString(v)
		if !ok {
			return cmd, t.errorf(expr, "%s: %s: 'based_on' must name a column", section, key)
		}
		ref, err := t.column(expr, section, name)
		if err != nil {
			return cmd, err
		}
		cmd.BasedOn = &ref
	}

	if v := attr(val, "default"); !v.IsNull() {
		d, err := toValue(v)
		if err != nil {
			return cmd, t.errorf(expr, "%s: %s: default: %v", section, key, err)
		}
		cmd.Default = &d
	}

	ci, ok := asBool(attr(val, "case_insensitive"))
	if !ok {
		return cmd, t.errorf(expr, "%s: %s: 'case_insensitive' must be a boolean", section, key)
	}
	cmd.CaseInsensitive = ci
	return cmd, nil
}

// column parses a column letter reference.
func (t *translator) column(expr hcl.Expression, section, key string) (table.Ref, error) {
	ref, err := table.ParseLetters(key)
	if err != nil {
		return table.Ref{}, t.errorf(expr, "%s: %v", section, err)
	}
	return ref, nil
}
