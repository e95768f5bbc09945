// Package dates turns cell values into canonical date/time values.
//
// Text is tried against a list of strict layouts first and then handed to a
// permissive parser. Numbers are read as spreadsheet serial dates. Results
// keep their wall clock and carry no zone.
package dates

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"

	"github.com/vk/transtab/internal/table"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted. Years more
// than this many years in the future are moved to the previous century.
var TwoDigitYearPivot = 20

var (
	// 2-digit year layouts - require pivot year adjustment
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	// 4-digit year layouts - no adjustment needed
	fourDigitYearLayouts = []string{
		"2006-01-02 15:04:05", "2006-01-02T15:04:05", time.RFC3339,
		"1/2/2006 15:04", "1/2/2006 3:04 PM",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006", "January 2, 2006",
		"20060102",
	}
)

// Normalize converts v into a date/time value. Empty values stay empty.
func Normalize(v table.Value) (table.Value, error) {
	switch v.Kind() {
	case table.KindEmpty, table.KindTime:
		return v, nil
	case table.KindNumber:
		f, _ := v.Float()
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return table.Value{}, fmt.Errorf("invalid spreadsheet date %s: %w", v, err)
		}
		return table.Time(t), nil
	}
	t, err := Parse(v.String())
	if err != nil {
		return table.Value{}, err
	}
	return table.Time(t), nil
}

// Parse reads a date written as text.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return wallClock(t), nil
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, nil
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q: %w", s, err)
	}
	return wallClock(t), nil
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
