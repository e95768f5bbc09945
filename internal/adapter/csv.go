package adapter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/vk/transtab/internal/ctxlog"
	"github.com/vk/transtab/internal/failure"
	"github.com/vk/transtab/internal/table"
)

// utf8BOM is stripped from the first cell if present.
const utf8BOM = "\uFEFF"

// CSV reads and writes comma separated files. Every cell is read as text.
type CSV struct{}

func (CSV) Name() string { return "csv" }

// charset returns the decoder/encoder for a named character set. Empty and
// UTF-8 need no transformation.
func charset(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1, nil
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15, nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", name)
}

func (CSV) Read(ctx context.Context, path string, opts Options) (*table.Table, error) {
	enc, err := charset(opts.Encoding)
	if err != nil {
		return nil, &failure.ReadError{Resource: path, Err: err}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &failure.ReadError{Resource: path, Err: err}
	}
	defer f.Close()

	var src io.Reader = f
	if enc != nil {
		src = transform.NewReader(f, enc.NewDecoder())
	}
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1 // ragged rows are padded by the table
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &failure.ReadError{Resource: path, Err: err}
		}
		if len(records) == 0 && len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], utf8BOM)
		}
		records = append(records, rec)
	}

	ctxlog.FromContext(ctx).Debug("CSV read.", "path", path, "records", len(records))
	return table.FromStrings(opts.HasHeader, records), nil
}

func (CSV) Write(ctx context.Context, path string, t *table.Table, opts Options) error {
	enc, err := charset(opts.Encoding)
	if err != nil {
		return &failure.WriteError{Resource: path, Err: err}
	}
	err = writeAtomic(path, func(tmp string) error {
		f, err := os.Create(tmp)
		if err != nil {
			return err
		}
		defer f.Close()

		var dst io.Writer = f
		var tw *transform.Writer
		if enc != nil {
			tw = transform.NewWriter(f, enc.NewEncoder())
			dst = tw
		}
		w := csv.NewWriter(dst)
		if err := w.WriteAll(t.Strings()); err != nil {
			return err
		}
		if tw != nil {
			if err := tw.Close(); err != nil {
				return err
			}
		}
		return f.Close()
	})
	if err != nil {
		return &failure.WriteError{Resource: path, Err: err}
	}
	ctxlog.FromContext(ctx).Debug("CSV written.", "path", path, "rows", t.Len())
	return nil
}
