package table

import (
	"fmt"
	"strings"
)

// Ref addresses a column, by header name or by zero-based position.
type Ref struct {
	name       string
	index      int
	positional bool
}

// Named returns a reference resolved against the current header.
func Named(name string) Ref {
	return Ref{name: name}
}

// At returns a positional reference.
func At(index int) Ref {
	return Ref{index: index, positional: true}
}

// ParseLetters converts spreadsheet column letters into a positional
// reference. "A" is column 0, "Z" is 25 and "AB" is 27.
func ParseLetters(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, fmt.Errorf("empty column letters")
	}
	num := 0
	for _, c := range strings.ToUpper(s) {
		if c < 'A' || c > 'Z' {
			return Ref{}, fmt.Errorf("invalid column letters %q", s)
		}
		num = num*26 + int(c-'A') + 1
	}
	return At(num - 1), nil
}

// Letters is the inverse of ParseLetters.
func Letters(index int) string {
	var b []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

// Name returns the header name of a named reference.
func (r Ref) Name() string { return r.name }

// Index returns the position of a positional reference.
func (r Ref) Index() (int, bool) { return r.index, r.positional }

func (r Ref) String() string {
	if r.positional {
		return Letters(r.index)
	}
	return "'" + r.name + "'"
}
