package executor

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/vk/transtab/internal/command"
	"github.com/vk/transtab/internal/failure"
	"github.com/vk/transtab/internal/table"
)

// replacer looks up replacement values for cell text.
type replacer struct {
	mapping map[string]table.Value
	fold    func(string) string
}

func newReplacer(c command.Replace) *replacer {
	r := &replacer{mapping: c.Mapping, fold: func(s string) string { return s }}
	if c.CaseInsensitive {
		caser := cases.Fold()
		r.fold = caser.String
		r.mapping = make(map[string]table.Value, len(c.Mapping))
		for k, v := range c.Mapping {
			r.mapping[caser.String(k)] = v
		}
	}
	return r
}

// lookup tries the key as written, then as an integer when it holds an
// integral number, so "20.0" read from a numeric cell still matches "20".
func (r *replacer) lookup(key string) (table.Value, bool) {
	if v, ok := r.mapping[r.fold(key)]; ok {
		return v, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return table.Value{}, false
	}
	v, ok := r.mapping[strconv.FormatInt(int64(f), 10)]
	return v, ok
}

func replace(t *table.Table, c command.Replace) error {
	keyRef := c.Column
	if c.BasedOn != nil {
		keyRef = *c.BasedOn
	}
	keyCol, err := t.Resolve(keyRef)
	if err != nil {
		return err
	}

	var target int
	if c.Append {
		target = t.AppendColumn(c.Column.Name())
	} else if target, err = t.Resolve(c.Column); err != nil {
		return err
	}

	r := newReplacer(c)
	for i, row := range t.All() {
		key := row[keyCol].String()
		v, ok := r.lookup(key)
		if !ok {
			if c.Default == nil {
				return &failure.LookupError{Column: t.ColumnName(target), Key: key, Row: rowNumber(t, i)}
			}
			v = *c.Default
		}
		row[target] = v
	}
	return nil
}
