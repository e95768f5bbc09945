package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vk/transtab/internal/table"
)

// DefaultSheet names the output sheet or table when none is configured.
const DefaultSheet = "Sheet1"

// Options tune how a table is read or written.
type Options struct {
	// HasHeader reports whether the first row read is the header.
	HasHeader bool
	// Sheet names the output worksheet or database table.
	Sheet string
	// InputSheet selects the worksheet or database table to read. Empty
	// means the first one.
	InputSheet string
	// Encoding is the character set of CSV files.
	Encoding string
}

func (o Options) sheet() string {
	if o.Sheet == "" {
		return DefaultSheet
	}
	return o.Sheet
}

// Format reads and writes one file type.
type Format interface {
	Name() string
	Read(ctx context.Context, path string, opts Options) (*table.Table, error)
	Write(ctx context.Context, path string, t *table.Table, opts Options) error
}

var formats = map[string]Format{
	".csv":     CSV{},
	".xlsx":    XLSX{},
	".parquet": Parquet{},
	".db":      SQLite{},
	".sqlite":  SQLite{},
	".sqlite3": SQLite{},
}

// ForPath returns the format matching the extension of path.
func ForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := formats[ext]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("unsupported file type %q for %s", ext, path)
}

// Supported reports whether path has an extension ForPath accepts.
func Supported(path string) bool {
	_, ok := formats[strings.ToLower(filepath.Ext(path))]
	return ok
}

// writeAtomic calls write with a temporary path next to path and renames
// the result over path once write succeeds.
func writeAtomic(path string, write func(tmp string) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := write(tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// columnNames returns unique titles for every column: the header when
// present, letters otherwise. Repeated titles get a numeric suffix.
func columnNames(t *table.Table) []string {
	names := make([]string, t.Width())
	used := make(map[string]bool, t.Width())
	for i := range names {
		name := t.ColumnName(i)
		if name == "" {
			name = table.Letters(i)
		}
		unique := name
		for n := 2; used[unique]; n++ {
			unique = name + "_" + strconv.Itoa(n)
		}
		used[unique] = true
		names[i] = unique
	}
	return names
}

// columnKind is the storage type inferred for a column.
type columnKind int

const (
	kindText columnKind = iota
	kindInteger
	kindReal
	kindTime
)

// inferKind picks the narrowest type holding every non-empty cell of
// column col. Columns without values are text.
func inferKind(t *table.Table, col int) columnKind {
	kind, seen := kindInteger, false
	for _, row := range t.All() {
		v := row[col]
		switch {
		case v.IsEmpty():
			continue
		case v.Kind() == table.KindTime:
			if seen && kind != kindTime {
				return kindText
			}
			kind = kindTime
		case v.IsNumber():
			if kind == kindTime {
				return kindText
			}
			if !v.IsIntegral() {
				kind = kindReal
			}
		default:
			return kindText
		}
		seen = true
	}
	if !seen {
		return kindText
	}
	return kind
}
