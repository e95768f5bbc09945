package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/transtab/internal/ctxlog"
)

// ValidateRegistry checks that every registered operation can be called
// from a specification: its name must be a plain identifier and it must
// carry exactly one hook.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.Names() {
		op := r.operations[name]
		if !IsIdentifier(name) {
			errs = append(errs, fmt.Sprintf("operation '%s': name is not usable in a 'do' command", name))
		}
		switch {
		case op.Row == nil && op.Cell == nil:
			errs = append(errs, fmt.Sprintf("operation '%s': no hook registered", name))
		case op.Row != nil && op.Cell != nil:
			errs = append(errs, fmt.Sprintf("operation '%s': registered as both row and cell hook", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	logger.Debug("Registry validation passed.", "operations", len(r.operations))
	return nil
}

// IsIdentifier reports whether s is a letter or underscore followed by
// letters, digits or underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case i > 0 && '0' <= c && c <= '9':
		default:
			return false
		}
	}
	return true
}
