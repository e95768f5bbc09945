package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/transtab/internal/command"
	"github.com/vk/transtab/internal/ctxlog"
	"github.com/vk/transtab/internal/failure"
	"github.com/vk/transtab/internal/registry"
	"github.com/vk/transtab/internal/table"
)

func groceries() *table.Table {
	return table.FromStrings(true, [][]string{
		{"item", "type", "price"},
		{"Orange", "Fruit", "90"},
		{"Cucumber", "Vegetable", "67"},
		{"Pen", "Stationery", "50"},
	})
}

func named(name string) table.Ref { return table.Named(name) }
func refs(names ...string) []table.Ref {
	out := make([]table.Ref, len(names))
	for i, n := range names {
		out[i] = table.Named(n)
	}
	return out
}
func ptr[T any](v T) *T { return &v }

func run(t *testing.T, tbl *table.Table, cmds ...command.Command) error {
	t.Helper()
	return New(testRegistry()).Run(context.Background(), tbl, cmds)
}

func testRegistry() *registry.Lookup {
	r := registry.New()
	r.RegisterCellHook("upper", func(v any, _ map[string]any, _ int, _ string, _ bool) (any, error) {
		s, _ := v.(string)
		return strings.ToUpper(s), nil
	})
	r.RegisterCellHook("strict", func(v any, _ map[string]any, _ int, col string, quit bool) (any, error) {
		if v == "bad" {
			if quit {
				return nil, fmt.Errorf("%s holds a bad value", col)
			}
			return "", nil
		}
		return v, nil
	})
	r.RegisterRowHook("label", func(row map[string]any, i int, _ bool) (map[string]any, error) {
		row["type"] = fmt.Sprintf("%d:%v", i, row["item"])
		return row, nil
	})
	r.RegisterRowHook("add_column", func(row map[string]any, _ int, _ bool) (map[string]any, error) {
		row["nope"] = 1
		return row, nil
	})
	return &registry.Lookup{Global: r}
}

func assertGrid(t *testing.T, want [][]string, tbl *table.Table) {
	t.Helper()
	if diff := cmp.Diff(want, tbl.Strings()); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Scenarios(t *testing.T) {
	testCases := []struct {
		name     string
		table    func() *table.Table
		commands []command.Command
		expected [][]string
	}{
		{
			name:     "drop removes the last row",
			table:    groceries,
			commands: []command.Command{command.DropLastRow{}},
			expected: [][]string{
				{"item", "type", "price"},
				{"Orange", "Fruit", "90"},
				{"Cucumber", "Vegetable", "67"},
			},
		},
		{
			name:     "delete rows by value removes matches",
			table:    groceries,
			commands: []command.Command{command.DeleteRowsByValue{Column: named("item"), Value: "Cucumber"}},
			expected: [][]string{
				{"item", "type", "price"},
				{"Orange", "Fruit", "90"},
				{"Pen", "Stationery", "50"},
			},
		},
		{
			name:     "delete rows by value matches substrings",
			table:    groceries,
			commands: []command.Command{command.DeleteRowsByValue{Column: named("type"), Value: "table"}},
			expected: [][]string{
				{"item", "type", "price"},
				{"Orange", "Fruit", "90"},
			},
		},
		{
			name: "delete rows by empty value matches empty cells only",
			table: func() *table.Table {
				return table.FromStrings(true, [][]string{{"a"}, {""}, {"x"}, {""}})
			},
			commands: []command.Command{command.DeleteRowsByValue{Column: named("a"), Value: ""}},
			expected: [][]string{{"a"}, {"x"}},
		},
		{
			name: "replace case-insensitive with default",
			table: func() *table.Table {
				return table.FromStrings(true, [][]string{{"item"}, {"Orange"}, {"Cucumber"}})
			},
			commands: []command.Command{command.Replace{
				Column:          named("item"),
				Mapping:         map[string]table.Value{"ORANGE": table.Text("OR")},
				CaseInsensitive: true,
				Default:         ptr(table.Text("CODE")),
			}},
			expected: [][]string{{"item"}, {"OR"}, {"CODE"}},
		},
		{
			name: "sum and dedupe",
			table: func() *table.Table {
				return table.FromStrings(true, [][]string{{"item", "price"}, {"Orange", "90"}, {"Orange", "90"}, {"Cucumber", "67"}})
			},
			commands: []command.Command{command.SumAndDedupe{Sum: named("price"), Unique: named("item")}},
			expected: [][]string{{"item", "price"}, {"Orange", "180"}, {"Cucumber", "67"}},
		},
		{
			name:  "rename then later commands see the new name",
			table: groceries,
			commands: []command.Command{
				command.RenameColumn{Column: named("item"), NewName: "name"},
				command.DeleteColumns{Columns: refs("type")},
				command.ClearColumn{Column: named("name")},
			},
			expected: [][]string{{"name", "price"}, {"", "90"}, {"", "67"}, {"", "50"}},
		},
		{
			name:  "copy creates destination",
			table: groceries,
			commands: []command.Command{
				command.Copy{Src: named("price"), Dest: named("cost")},
			},
			expected: [][]string{
				{"item", "type", "price", "cost"},
				{"Orange", "Fruit", "90", "90"},
				{"Cucumber", "Vegetable", "67", "67"},
				{"Pen", "Stationery", "50", "50"},
			},
		},
		{
			name:  "cutpaste clears the source",
			table: groceries,
			commands: []command.Command{
				command.CutPaste{Src: named("type"), Dest: named("item")},
			},
			expected: [][]string{
				{"item", "type", "price"},
				{"Fruit", "", "90"},
				{"Vegetable", "", "67"},
				{"Stationery", "", "50"},
			},
		},
		{
			name:     "cutpaste onto itself is a no-op",
			table:    groceries,
			commands: []command.Command{command.CutPaste{Src: named("type"), Dest: named("type")}},
			expected: groceries().Strings(),
		},
		{
			name:  "concatenate with joiner",
			table: groceries,
			commands: []command.Command{
				command.Concatenate{Sources: refs("item", "price"), Dest: named("label"), Joiner: "-"},
			},
			expected: [][]string{
				{"item", "type", "price", "label"},
				{"Orange", "Fruit", "90", "Orange-90"},
				{"Cucumber", "Vegetable", "67", "Cucumber-67"},
				{"Pen", "Stationery", "50", "Pen-50"},
			},
		},
		{
			name:  "new column then duplicate new is a no-op",
			table: groceries,
			commands: []command.Command{
				command.NewColumn{Name: "code"},
				command.NewColumn{Name: "code"},
			},
			expected: [][]string{
				{"item", "type", "price", "code"},
				{"Orange", "Fruit", "90", ""},
				{"Cucumber", "Vegetable", "67", ""},
				{"Pen", "Stationery", "50", ""},
			},
		},
		{
			name:     "delete row counts the header as row 1",
			table:    groceries,
			commands: []command.Command{command.DeleteRows{Rows: []int{3}}},
			expected: [][]string{
				{"item", "type", "price"},
				{"Orange", "Fruit", "90"},
				{"Pen", "Stationery", "50"},
			},
		},
		{
			name:     "delete row 1 promotes the first data row",
			table:    groceries,
			commands: []command.Command{command.DeleteRows{Rows: []int{1}}},
			expected: [][]string{
				{"Orange", "Fruit", "90"},
				{"Cucumber", "Vegetable", "67"},
				{"Pen", "Stationery", "50"},
			},
		},
		{
			name:     "lenient row deletion skips missing rows",
			table:    groceries,
			commands: []command.Command{command.DeleteRows{Rows: []int{9, 2, 4}, Lenient: true}},
			expected: [][]string{
				{"item", "type", "price"},
				{"Cucumber", "Vegetable", "67"},
			},
		},
		{
			name: "dedupe keyed keeps first occurrence",
			table: func() *table.Table {
				return table.FromStrings(true, [][]string{{"k", "v"}, {"a", "1"}, {"b", "2"}, {"a", "3"}})
			},
			commands: []command.Command{command.DeleteDuplicates{Keys: refs("k")}},
			expected: [][]string{{"k", "v"}, {"a", "1"}, {"b", "2"}},
		},
		{
			name: "dedupe whole rows",
			table: func() *table.Table {
				return table.FromStrings(true, [][]string{{"k", "v"}, {"a", "1"}, {"a", "2"}, {"a", "1"}})
			},
			commands: []command.Command{command.DeleteDuplicates{}},
			expected: [][]string{{"k", "v"}, {"a", "1"}, {"a", "2"}},
		},
		{
			name:  "cell hook",
			table: groceries,
			commands: []command.Command{
				command.Custom{Operation: "upper", Column: ptr(named("item"))},
			},
			expected: [][]string{
				{"item", "type", "price"},
				{"ORANGE", "Fruit", "90"},
				{"CUCUMBER", "Vegetable", "67"},
				{"PEN", "Stationery", "50"},
			},
		},
		{
			name:     "row hook sees the row index",
			table:    groceries,
			commands: []command.Command{command.Custom{Operation: "label"}},
			expected: [][]string{
				{"item", "type", "price"},
				{"Orange", "0:Orange", "90"},
				{"Cucumber", "1:Cucumber", "67"},
				{"Pen", "2:Pen", "50"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			tbl := tc.table()

			// --- Act ---
			err := run(t, tbl, tc.commands...)

			// --- Assert ---
			require.NoError(t, err)
			assertGrid(t, tc.expected, tbl)
		})
	}
}

func TestRun_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		commands []command.Command
		check    func(t *testing.T, err error)
	}{
		{
			name:     "clear unknown column",
			commands: []command.Command{command.ClearColumn{Column: named("nope")}},
			check: func(t *testing.T, err error) {
				var refErr *failure.ReferenceError
				require.ErrorAs(t, err, &refErr)
				assert.Equal(t, "'nope'", refErr.Ref)
			},
		},
		{
			name:     "strict row deletion out of range",
			commands: []command.Command{command.DeleteRows{Rows: []int{7}}},
			check: func(t *testing.T, err error) {
				var refErr *failure.ReferenceError
				require.ErrorAs(t, err, &refErr)
				assert.Equal(t, "row", refErr.Kind)
			},
		},
		{
			name:     "replace without default",
			commands: []command.Command{command.Replace{Column: named("item"), Mapping: map[string]table.Value{"Orange": table.Text("OR")}}},
			check: func(t *testing.T, err error) {
				var lookupErr *failure.LookupError
				require.ErrorAs(t, err, &lookupErr)
				assert.Equal(t, "Cucumber", lookupErr.Key)
				assert.Equal(t, 3, lookupErr.Row)
			},
		},
		{
			name:     "sum over text",
			commands: []command.Command{command.SumAndDedupe{Sum: named("type"), Unique: named("item")}},
			check: func(t *testing.T, err error) {
				var typeErr *failure.TypeError
				require.ErrorAs(t, err, &typeErr)
				assert.Equal(t, "type", typeErr.Column)
			},
		},
		{
			name:     "unparsable date",
			commands: []command.Command{command.DeclareDates{Columns: refs("item")}},
			check: func(t *testing.T, err error) {
				var typeErr *failure.TypeError
				require.ErrorAs(t, err, &typeErr)
				assert.Equal(t, "Orange", typeErr.Value)
			},
		},
		{
			name:     "missing concatenate source",
			commands: []command.Command{command.Concatenate{Sources: refs("item", "nope"), Dest: named("x")}},
			check: func(t *testing.T, err error) {
				var refErr *failure.ReferenceError
				require.ErrorAs(t, err, &refErr)
			},
		},
		{
			name:     "row hook adding unknown column",
			commands: []command.Command{command.Custom{Operation: "add_column"}},
			check: func(t *testing.T, err error) {
				var hookErr *failure.HookError
				require.ErrorAs(t, err, &hookErr)
				assert.Equal(t, 2, hookErr.Row)
			},
		},
		{
			name:     "cell hook used as row hook",
			commands: []command.Command{command.Custom{Operation: "upper"}},
			check: func(t *testing.T, err error) {
				var unknown *failure.UnknownOperationError
				require.ErrorAs(t, err, &unknown)
				assert.Contains(t, unknown.Reason, "needs 'on <column>'")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := run(t, groceries(), tc.commands...)
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestRun_UnknownOperationFailsBeforeAnyRowChanges(t *testing.T) {
	// --- Arrange ---
	tbl := groceries()
	before := tbl.Clone()
	cmds := []command.Command{
		command.DropLastRow{},
		command.Custom{Operation: "does_not_exist"},
	}

	// --- Act ---
	err := run(t, tbl, cmds...)

	// --- Assert ---
	var unknown *failure.UnknownOperationError
	require.ErrorAs(t, err, &unknown)
	assert.True(t, before.Equal(tbl), "no command may run when binding fails")
}

func TestRun_QuitOnErrorIsThreadedToHooks(t *testing.T) {
	newTable := func() *table.Table {
		return table.FromStrings(true, [][]string{{"c"}, {"ok"}, {"bad"}})
	}

	lenient := newTable()
	require.NoError(t, run(t, lenient, command.Custom{Operation: "strict", Column: ptr(named("c"))}))
	assertGrid(t, [][]string{{"c"}, {"ok"}, {""}}, lenient)

	err := run(t, newTable(), command.Custom{Operation: "strict", Column: ptr(named("c")), QuitOnError: true})
	var hookErr *failure.HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, 3, hookErr.Row)
	assert.Contains(t, hookErr.Error(), "c holds a bad value")
}

func TestRun_EmptyCommandsLeaveTableUnchanged(t *testing.T) {
	tbl := groceries()
	require.NoError(t, run(t, tbl))
	assert.True(t, groceries().Equal(tbl))
}

func TestRun_RenameTwiceRestoresHeader(t *testing.T) {
	tbl := groceries()
	require.NoError(t, run(t, tbl,
		command.RenameColumn{Column: named("item"), NewName: "x"},
		command.RenameColumn{Column: named("x"), NewName: "item"},
	))
	assert.Equal(t, groceries().Header(), tbl.Header())
}

func TestRun_DeleteDuplicatesIsIdempotent(t *testing.T) {
	base := table.FromStrings(true, [][]string{{"k", "v"}, {"a", "1"}, {"a", "1"}, {"b", "2"}, {"b", "2"}, {"a", "3"}})

	once := base.Clone()
	require.NoError(t, run(t, once, command.DeleteDuplicates{}))
	twice := once.Clone()
	require.NoError(t, run(t, twice, command.DeleteDuplicates{}))

	assert.True(t, once.Equal(twice))
	assert.Equal(t, 3, once.Len())
}

func TestRun_CopyThenDeleteRestoresTable(t *testing.T) {
	tbl := groceries()
	require.NoError(t, run(t, tbl,
		command.Copy{Src: named("item"), Dest: named("backup")},
		command.DeleteColumns{Columns: refs("backup")},
	))
	assert.True(t, groceries().Equal(tbl))
}

func TestRun_DeleteColumnsIgnoresGivenOrder(t *testing.T) {
	orders := [][]string{{"A", "C"}, {"C", "A"}}
	for _, order := range orders {
		t.Run(strings.Join(order, ""), func(t *testing.T) {
			var cols []table.Ref
			for _, l := range order {
				ref, err := table.ParseLetters(l)
				require.NoError(t, err)
				cols = append(cols, ref)
			}
			tbl := groceries()
			require.NoError(t, run(t, tbl, command.DeleteColumns{Columns: cols}))
			assert.Equal(t, []string{"type"}, tbl.Header())
		})
	}
}

func TestRun_ReplaceIntegralFallback(t *testing.T) {
	tbl := table.New(true, [][]table.Value{
		{table.Text("code"), table.Text("label")},
		{table.Number(20), table.Value{}},
		{table.Text("20.0"), table.Value{}},
	})

	err := run(t, tbl, command.Replace{
		Column:  named("label"),
		BasedOn: ptr(named("code")),
		Mapping: map[string]table.Value{"20": table.Text("twenty")},
	})

	require.NoError(t, err)
	assert.Equal(t, "twenty", tbl.Cell(0, 1).String())
	assert.Equal(t, "twenty", tbl.Cell(1, 1).String())
}

func TestRun_DatesNormalizeDeclaredColumns(t *testing.T) {
	tbl := table.FromStrings(true, [][]string{{"when"}, {"2017-01-05"}, {""}})

	require.NoError(t, run(t, tbl, command.DeclareDates{Columns: refs("when")}))

	got, ok := tbl.Cell(0, 0).Time()
	require.True(t, ok)
	assert.True(t, time.Date(2017, 1, 5, 0, 0, 0, 0, time.UTC).Equal(got))
	assert.True(t, tbl.Cell(1, 0).IsEmpty())
}

func TestRun_LogsEveryCommand(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	err := New(testRegistry()).Run(ctx, groceries(), []command.Command{command.DropLastRow{}, command.NewColumn{Name: "item"}})

	require.NoError(t, err)
	assert.Contains(t, logs.String(), `command=drop`)
	assert.Contains(t, logs.String(), "Column already exists")
}

func TestRun_LogsClearedCellsThroughContextLogger(t *testing.T) {
	// --- Arrange ---
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)
	tbl := table.FromStrings(true, [][]string{{"code"}, {"ok"}, {"bad"}})

	// --- Act ---
	err := New(testRegistry()).Run(ctx, tbl, []command.Command{command.Custom{Operation: "strict", Column: ptr(named("code"))}})

	// --- Assert ---
	require.NoError(t, err)
	assertGrid(t, [][]string{{"code"}, {"ok"}, {""}}, tbl)
	assert.Contains(t, logs.String(), "Operation cleared a value.")
	assert.Contains(t, logs.String(), "operation=strict")
	assert.Contains(t, logs.String(), "row=3")
	assert.Contains(t, logs.String(), "value=bad")
	assert.Equal(t, 1, strings.Count(logs.String(), "Operation cleared a value."))
}

func TestRun_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(nil).Run(ctx, groceries(), []command.Command{command.DropLastRow{}})

	assert.True(t, errors.Is(err, context.Canceled))
}
