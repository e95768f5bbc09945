package config

import (
	"path/filepath"
	"strings"

	"github.com/vk/transtab/internal/command"
)

// Model is a parsed specification.
type Model struct {
	// Name is the specification's base name without extension. It names the
	// per-specification operations script.
	Name string
	// Path is the file the specification was loaded from.
	Path string
	// HasHeader reports whether the first input row is a header.
	HasHeader bool
	// Commands run in order.
	Commands []command.Command
}

// NewModel returns an empty model for the specification file at path.
func NewModel(path string, hasHeader bool) *Model {
	base := filepath.Base(path)
	return &Model{
		Name:      strings.TrimSuffix(base, filepath.Ext(base)),
		Path:      path,
		HasHeader: hasHeader,
	}
}

// OperationsPath is where the specification's own operations live: a Go
// file with the specification's name next to it.
func (m *Model) OperationsPath() string {
	return filepath.Join(filepath.Dir(m.Path), m.Name+".go")
}

// CustomOperations lists the operation names the model refers to, in order
// of first use.
func (m *Model) CustomOperations() []string {
	var names []string
	seen := make(map[string]bool)
	for _, cmd := range m.Commands {
		c, ok := cmd.(command.Custom)
		if !ok || seen[c.Operation] {
			continue
		}
		seen[c.Operation] = true
		names = append(names, c.Operation)
	}
	return names
}
