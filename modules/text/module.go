package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/vk/transtab/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

var spaces = strings.NewReplacer("\u00a0", " ", "\u2007", " ", "\u202f", " ")

// NormalizeText composes text to NFC, turns non-breaking spaces into plain
// ones and trims the result. Non-text values pass through.
func NormalizeText(value any, _ map[string]any, _ int, _ string, _ bool) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	return strings.TrimSpace(spaces.Replace(norm.NFC.String(s))), nil
}

// StripAccents removes combining marks, so "Café" becomes "Cafe".
func StripAccents(value any, _ map[string]any, _ int, _ string, _ bool) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Register registers the text operations.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCellHook("normalize_text", NormalizeText)
	r.RegisterCellHook("strip_accents", StripAccents)
}
