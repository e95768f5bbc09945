package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/vk/transtab/internal/ctxlog"
	"github.com/vk/transtab/internal/failure"
	"github.com/vk/transtab/internal/table"
)

// SQLite reads one table of a SQLite database file. Writes produce a fresh
// database holding a single table named after Options.Sheet.
type SQLite struct{}

func (SQLite) Name() string { return "sqlite" }

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sqlType(kind columnKind) string {
	switch kind {
	case kindInteger:
		return "INTEGER"
	case kindReal:
		return "REAL"
	}
	return "TEXT"
}

func (SQLite) Write(ctx context.Context, path string, t *table.Table, opts Options) error {
	names := columnNames(t)
	kinds := make([]columnKind, len(names))
	for i := range names {
		kinds[i] = inferKind(t, i)
	}

	err := writeAtomic(path, func(tmp string) error {
		db, err := sql.Open("sqlite", tmp)
		if err != nil {
			return fmt.Errorf("sqlite: open: %w", err)
		}
		defer db.Close()
		if err := insertTable(ctx, db, opts.sheet(), names, kinds, t); err != nil {
			return err
		}
		return db.Close()
	})
	if err != nil {
		return &failure.WriteError{Resource: path, Err: err}
	}
	ctxlog.FromContext(ctx).Debug("SQLite table written.", "path", path, "table", opts.sheet(), "rows", t.Len())
	return nil
}

// insertTable creates the table and inserts every data row inside one
// transaction.
func insertTable(ctx context.Context, db *sql.DB, name string, cols []string, kinds []columnKind, t *table.Table) error {
	defs := make([]string, len(cols))
	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
		defs[i] = quoted[i] + " " + sqlType(kinds[i])
		placeholders[i] = "?"
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return fmt.Errorf("sqlite: drop: %w", err)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("sqlite: create: %w", err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(name), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for _, row := range t.All() {
		for i, v := range row {
			args[i] = sqlValue(kinds[i], v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("sqlite: insert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func sqlValue(kind columnKind, v table.Value) any {
	if v.IsEmpty() {
		return nil
	}
	switch kind {
	case kindInteger:
		f, _ := v.Float()
		return int64(f)
	case kindReal:
		f, _ := v.Float()
		return f
	}
	return v.String()
}

// Read loads Options.InputSheet, or the first table of the database.
func (SQLite) Read(ctx context.Context, path string, opts Options) (*table.Table, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, &failure.ReadError{Resource: path, Err: err}
	}
	defer db.Close()

	name := opts.InputSheet
	if name == "" {
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY rowid LIMIT 1",
		).Scan(&name)
		if err != nil {
			return nil, &failure.ReadError{Resource: path, Err: fmt.Errorf("sqlite: no table found: %w", err)}
		}
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(name))
	if err != nil {
		return nil, &failure.ReadError{Resource: path, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &failure.ReadError{Resource: path, Err: err}
	}

	var records [][]table.Value
	if opts.HasHeader {
		header := make([]table.Value, len(cols))
		for i, c := range cols {
			header[i] = table.Text(c)
		}
		records = append(records, header)
	}

	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &failure.ReadError{Resource: path, Err: err}
		}
		rec := make([]table.Value, len(cols))
		for i, x := range raw {
			if b, ok := x.([]byte); ok {
				x = string(b)
			}
			v, err := table.FromAny(x)
			if err != nil {
				return nil, &failure.ReadError{Resource: path, Err: fmt.Errorf("column %s: %w", cols[i], err)}
			}
			rec[i] = v
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &failure.ReadError{Resource: path, Err: err}
	}

	ctxlog.FromContext(ctx).Debug("SQLite table read.", "path", path, "table", name, "records", len(records))
	return table.New(opts.HasHeader, records), nil
}
