package adapter

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vk/transtab/internal/ctxlog"
	"github.com/vk/transtab/internal/failure"
	"github.com/vk/transtab/internal/table"
)

// XLSX reads and writes Excel workbooks.
type XLSX struct{}

func (XLSX) Name() string { return "xlsx" }

// Read loads one worksheet. Numeric cells become numbers, integral ones
// integers, and numeric cells with a date format become times.
func (x XLSX) Read(ctx context.Context, path string, opts Options) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &failure.ReadError{Resource: path, Err: err}
	}
	defer f.Close()

	sheet := opts.InputSheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &failure.ReadError{Resource: path, Err: fmt.Errorf("workbook has no sheets")}
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &failure.ReadError{Resource: path, Err: err}
	}

	records := make([][]table.Value, len(rows))
	for r, row := range rows {
		records[r] = make([]table.Value, len(row))
		for c, raw := range row {
			v, err := x.cell(f, sheet, r, c, raw)
			if err != nil {
				return nil, &failure.ReadError{Resource: path, Err: err}
			}
			records[r][c] = v
		}
	}

	ctxlog.FromContext(ctx).Debug("Workbook read.", "path", path, "sheet", sheet, "records", len(records))
	return table.New(opts.HasHeader, records), nil
}

func (XLSX) cell(f *excelize.File, sheet string, r, c int, raw string) (table.Value, error) {
	if raw == "" {
		return table.Value{}, nil
	}
	name, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return table.Value{}, err
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return table.Value{}, err
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate:
	default:
		return table.Text(raw), nil
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return table.Text(raw), nil
	}
	if typ == excelize.CellTypeDate || isDateCell(f, sheet, name) {
		t, err := excelize.ExcelDateToTime(n, false)
		if err == nil {
			return table.Time(t), nil
		}
	}
	if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
		return table.Int(int64(n)), nil
	}
	return table.Number(n), nil
}

// isDateCell reports whether the cell carries a date or time number
// format.
func isDateCell(f *excelize.File, sheet, cell string) bool {
	idx, err := f.GetCellStyle(sheet, cell)
	if err != nil || idx == 0 {
		return false
	}
	style, err := f.GetStyle(idx)
	if err != nil {
		return false
	}
	switch {
	case style.NumFmt >= 14 && style.NumFmt <= 22, style.NumFmt >= 45 && style.NumFmt <= 47:
		return true
	case style.CustomNumFmt != nil:
		return isDateFormat(*style.CustomNumFmt)
	}
	return false
}

// isDateFormat reports whether a custom number format shows date or time
// parts. Quoted literals and bracketed sections are ignored.
func isDateFormat(format string) bool {
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(format) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		case strings.ContainsRune("ymdhs", r):
			return true
		}
	}
	return false
}

// Write saves the table as the only worksheet of a new workbook. The header
// is bold and frozen; cells holding line breaks wrap.
func (XLSX) Write(ctx context.Context, path string, t *table.Table, opts Options) error {
	sheet := opts.sheet()
	err := writeAtomic(path, func(tmp string) error {
		f := excelize.NewFile()
		defer f.Close()

		if sheet != DefaultSheet {
			if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
				return err
			}
		}
		wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
		if err != nil {
			return err
		}

		for r, rec := range t.Records() {
			for c, v := range rec {
				if v.IsEmpty() {
					continue
				}
				name, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(sheet, name, v.Any()); err != nil {
					return err
				}
				if v.Kind() == table.KindText && strings.Contains(v.String(), "\n") {
					if err := f.SetCellStyle(sheet, name, name, wrap); err != nil {
						return err
					}
				}
			}
		}

		if t.HasHeader() {
			bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
			if err != nil {
				return err
			}
			if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
				return err
			}
			err = f.SetPanes(sheet, &excelize.Panes{
				Freeze:      true,
				YSplit:      1,
				TopLeftCell: "A2",
				ActivePane:  "bottomLeft",
			})
			if err != nil {
				return err
			}
		}
		out, err := os.Create(tmp)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := f.Write(out); err != nil {
			return err
		}
		return out.Close()
	})
	if err != nil {
		return &failure.WriteError{Resource: path, Err: err}
	}
	ctxlog.FromContext(ctx).Debug("Workbook written.", "path", path, "sheet", sheet, "rows", t.Len())
	return nil
}
