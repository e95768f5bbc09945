package adapter

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/vk/transtab/internal/ctxlog"
	"github.com/vk/transtab/internal/failure"
	"github.com/vk/transtab/internal/table"
)

// Parquet reads and writes Apache Parquet files through Arrow. Column
// titles travel as field names; empty cells are nulls.
type Parquet struct{}

func (Parquet) Name() string { return "parquet" }

var timestampType = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}

func (Parquet) Write(ctx context.Context, path string, t *table.Table, opts Options) error {
	names := columnNames(t)
	fields := make([]arrow.Field, len(names))
	kinds := make([]columnKind, len(names))
	for i, name := range names {
		kinds[i] = inferKind(t, i)
		fields[i] = arrow.Field{Name: name, Type: arrowType(kinds[i]), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()
	for _, row := range t.All() {
		for i, v := range row {
			appendValue(b.Field(i), kinds[i], v)
		}
	}
	rec := b.NewRecord()
	defer rec.Release()

	err := writeAtomic(path, func(tmp string) error {
		f, err := os.Create(tmp)
		if err != nil {
			return err
		}
		defer f.Close()

		props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
		arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
		w, err := pqarrow.NewFileWriter(schema, f, props, arrowProps)
		if err != nil {
			return fmt.Errorf("failed to create parquet writer: %w", err)
		}
		if err := w.Write(rec); err != nil {
			w.Close()
			return fmt.Errorf("failed to write record: %w", err)
		}
		return w.Close()
	})
	if err != nil {
		return &failure.WriteError{Resource: path, Err: err}
	}
	ctxlog.FromContext(ctx).Debug("Parquet file written.", "path", path, "rows", t.Len(), "columns", len(names))
	return nil
}

func arrowType(kind columnKind) arrow.DataType {
	switch kind {
	case kindInteger:
		return arrow.PrimitiveTypes.Int64
	case kindReal:
		return arrow.PrimitiveTypes.Float64
	case kindTime:
		return timestampType
	}
	return arrow.BinaryTypes.String
}

func appendValue(b array.Builder, kind columnKind, v table.Value) {
	if v.IsEmpty() {
		b.AppendNull()
		return
	}
	switch kind {
	case kindInteger:
		f, _ := v.Float()
		b.(*array.Int64Builder).Append(int64(f))
	case kindReal:
		f, _ := v.Float()
		b.(*array.Float64Builder).Append(f)
	case kindTime:
		t, _ := v.Time()
		b.(*array.TimestampBuilder).Append(arrow.Timestamp(t.UnixMicro()))
	default:
		b.(*array.StringBuilder).Append(v.String())
	}
}

// Read loads every column of the file. Field names become the header when
// opts.HasHeader is set.
func (Parquet) Read(ctx context.Context, path string, opts Options) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &failure.ReadError{Resource: path, Err: err}
	}
	defer f.Close()

	pf, err := file.NewParquetReader(f, file.WithReadProps(parquet.NewReaderProperties(memory.DefaultAllocator)))
	if err != nil {
		return nil, &failure.ReadError{Resource: path, Err: fmt.Errorf("failed to create parquet reader: %w", err)}
	}
	defer pf.Close()

	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, &failure.ReadError{Resource: path, Err: err}
	}
	tbl, err := reader.ReadTable(ctx)
	if err != nil {
		return nil, &failure.ReadError{Resource: path, Err: fmt.Errorf("failed to read parquet data: %w", err)}
	}
	defer tbl.Release()

	width := int(tbl.NumCols())
	records := make([][]table.Value, 0, tbl.NumRows()+1)
	if opts.HasHeader {
		header := make([]table.Value, width)
		for i, field := range tbl.Schema().Fields() {
			header[i] = table.Text(field.Name)
		}
		records = append(records, header)
	}
	base := len(records)
	for range tbl.NumRows() {
		records = append(records, make([]table.Value, width))
	}

	for c := range width {
		r := base
		for _, chunk := range tbl.Column(c).Data().Chunks() {
			for i := range chunk.Len() {
				v, err := arrowValue(chunk, i)
				if err != nil {
					return nil, &failure.ReadError{Resource: path, Err: fmt.Errorf("column %s: %w", tbl.Schema().Field(c).Name, err)}
				}
				records[r][c] = v
				r++
			}
		}
	}

	ctxlog.FromContext(ctx).Debug("Parquet file read.", "path", path, "rows", tbl.NumRows(), "columns", width)
	return table.New(opts.HasHeader, records), nil
}

// arrowValue converts one element of an Arrow array.
func arrowValue(col arrow.Array, pos int) (table.Value, error) {
	if col.IsNull(pos) {
		return table.Value{}, nil
	}
	switch a := col.(type) {
	case *array.String:
		return table.Text(a.Value(pos)), nil
	case *array.LargeString:
		return table.Text(a.Value(pos)), nil
	case *array.Binary:
		return table.Text(string(a.Value(pos))), nil
	case *array.Boolean:
		return table.FromAny(a.Value(pos))
	case *array.Int8:
		return table.Int(int64(a.Value(pos))), nil
	case *array.Int16:
		return table.Int(int64(a.Value(pos))), nil
	case *array.Int32:
		return table.Int(int64(a.Value(pos))), nil
	case *array.Int64:
		return table.Int(a.Value(pos)), nil
	case *array.Uint8:
		return table.Int(int64(a.Value(pos))), nil
	case *array.Uint16:
		return table.Int(int64(a.Value(pos))), nil
	case *array.Uint32:
		return table.Int(int64(a.Value(pos))), nil
	case *array.Uint64:
		return table.Number(float64(a.Value(pos))), nil
	case *array.Float32:
		return table.Number(float64(a.Value(pos))), nil
	case *array.Float64:
		return table.Number(a.Value(pos)), nil
	case *array.Date32:
		return table.Time(a.Value(pos).ToTime().UTC()), nil
	case *array.Date64:
		return table.Time(a.Value(pos).ToTime().UTC()), nil
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return table.Time(a.Value(pos).ToTime(unit).In(time.UTC)), nil
	}
	return table.Value{}, fmt.Errorf("unsupported arrow type %s", col.DataType())
}
