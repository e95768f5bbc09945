package command

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/vk/transtab/internal/table"
)

// Command is one parsed transformation instruction.
type Command interface {
	// Keyword is the command's name in the textual language.
	Keyword() string
	fmt.Stringer
	command()
}

// DeclareDates normalizes the listed columns into date/time values.
type DeclareDates struct {
	Columns []table.Ref
}

// NewColumn appends an empty column.
type NewColumn struct {
	Name string
}

// ClearColumn empties every cell of a column, keeping its header.
type ClearColumn struct {
	Column table.Ref
}

// DeleteRows removes rows numbered from 1, the header counting as row 1
// when present. Lenient deletions skip rows that do not exist.
type DeleteRows struct {
	Rows    []int
	Lenient bool
}

// DeleteColumns removes columns. Lenient deletions skip unknown columns.
type DeleteColumns struct {
	Columns []table.Ref
	Lenient bool
}

// DropLastRow removes the final data row.
type DropLastRow struct{}

// RenameColumn sets a column's header title. Lenient renames skip unknown
// columns.
type RenameColumn struct {
	Column  table.Ref
	NewName string
	Lenient bool
}

// Copy duplicates Src into Dest, creating Dest when absent.
type Copy struct {
	Src, Dest table.Ref
}

// CutPaste copies Src into Dest, then clears Src.
type CutPaste struct {
	Src, Dest table.Ref
}

// Concatenate joins the text forms of Sources into Dest. With Append set a
// new column titled Dest's name is always added.
type Concatenate struct {
	Sources []table.Ref
	Dest    table.Ref
	Joiner  string
	Append  bool
}

// Replace rewrites Column through Mapping. The lookup key is the column's own
// value, or the value of BasedOn when set. With Append set a new column
// titled Column's name receives the results.
type Replace struct {
	Column          table.Ref
	BasedOn         *table.Ref
	Mapping         map[string]table.Value
	CaseInsensitive bool
	Default         *table.Value
	Append          bool
}

// DeleteDuplicates keeps the first of every group of duplicate rows. Without
// Keys whole rows are compared. With Keys a row is removed when any key
// column repeats a value seen in an earlier row.
type DeleteDuplicates struct {
	Keys []table.Ref
}

// DeleteRowsByValue removes rows whose Column matches Value: an empty Value
// matches empty cells only, any other Value matches by containment.
type DeleteRowsByValue struct {
	Column table.Ref
	Value  string
}

// SumAndDedupe sums Sum over groups of equal Unique values into the first
// row of each group, then removes the rest of the group.
type SumAndDedupe struct {
	Sum, Unique table.Ref
}

// Custom runs a named operation once per row. With Column set the operation
// is cell-scoped.
type Custom struct {
	Operation   string
	Column      *table.Ref
	QuitOnError bool
}

func (DeclareDates) command()      {}
func (NewColumn) command()         {}
func (ClearColumn) command()       {}
func (DeleteRows) command()        {}
func (DeleteColumns) command()     {}
func (DropLastRow) command()       {}
func (RenameColumn) command()      {}
func (Copy) command()              {}
func (CutPaste) command()          {}
func (Concatenate) command()       {}
func (Replace) command()           {}
func (DeleteDuplicates) command()  {}
func (DeleteRowsByValue) command() {}
func (SumAndDedupe) command()      {}
func (Custom) command()            {}

func (DeclareDates) Keyword() string      { return "dates" }
func (NewColumn) Keyword() string         { return "new" }
func (ClearColumn) Keyword() string       { return "clear" }
func (DeleteRows) Keyword() string        { return "delete" }
func (DeleteColumns) Keyword() string     { return "delete" }
func (DropLastRow) Keyword() string       { return "drop" }
func (RenameColumn) Keyword() string      { return "rename" }
func (Copy) Keyword() string              { return "copy" }
func (CutPaste) Keyword() string          { return "cutpaste" }
func (Concatenate) Keyword() string       { return "concatenate" }
func (Replace) Keyword() string           { return "replace" }
func (DeleteDuplicates) Keyword() string  { return "delete-duplicate-rows" }
func (DeleteRowsByValue) Keyword() string { return "delete-rows-by-column-val" }
func (SumAndDedupe) Keyword() string      { return "sum-col-and-delete-duplicate-rows" }
func (Custom) Keyword() string            { return "do" }

func (c DeclareDates) String() string {
	return "dates = " + refList(c.Columns)
}

func (c NewColumn) String() string {
	return "new col " + quote(c.Name)
}

func (c ClearColumn) String() string {
	return "clear " + c.Column.String()
}

func (c DeleteRows) String() string {
	rows := make([]string, len(c.Rows))
	for i, r := range c.Rows {
		rows[i] = strconv.Itoa(r)
	}
	return "delete row " + strings.Join(rows, ",")
}

func (c DeleteColumns) String() string {
	return "delete " + refList(c.Columns)
}

func (DropLastRow) String() string { return "drop" }

func (c RenameColumn) String() string {
	return fmt.Sprintf("rename %s as %s", c.Column, quote(c.NewName))
}

func (c Copy) String() string {
	return fmt.Sprintf("copy %s to %s", c.Src, c.Dest)
}

func (c CutPaste) String() string {
	return fmt.Sprintf("cutpaste %s to %s", c.Src, c.Dest)
}

func (c Concatenate) String() string {
	s := fmt.Sprintf("concatenate %s and store in %s", refList(c.Sources), c.Dest)
	if c.Joiner != "" {
		s += " using " + quote(c.Joiner)
	}
	return s
}

func (c Replace) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "replace %s ", c.Column)
	if c.BasedOn != nil {
		fmt.Fprintf(&b, "based on %s ", c.BasedOn)
	}
	b.WriteString("{")
	for i, k := range slices.Sorted(maps.Keys(c.Mapping)) {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s:%s", quote(k), quote(c.Mapping[k].String()))
	}
	b.WriteString("}")
	if c.CaseInsensitive {
		b.WriteString(" case-insensitive")
	}
	if c.Default != nil {
		b.WriteString(" default " + quote(c.Default.String()))
	}
	return b.String()
}

func (c DeleteDuplicates) String() string {
	if len(c.Keys) == 0 {
		return "delete-duplicate-rows"
	}
	return "delete-duplicate-rows unique " + refList(c.Keys)
}

func (c DeleteRowsByValue) String() string {
	return fmt.Sprintf("delete-rows-by-column-val col %s val %s", c.Column, quote(c.Value))
}

func (c SumAndDedupe) String() string {
	return fmt.Sprintf("sum-col-and-delete-duplicate-rows sum %s unique %s", c.Sum, c.Unique)
}

func (c Custom) String() string {
	s := "do " + c.Operation
	if c.Column != nil {
		s += " on " + c.Column.String()
	}
	if c.QuitOnError {
		s += " quit-on-error"
	}
	return s
}

func refList(refs []table.Ref) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

func quote(s string) string { return "'" + s + "'" }
