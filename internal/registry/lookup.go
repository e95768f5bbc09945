package registry

import (
	"context"

	"github.com/vk/transtab/internal/ctxlog"
	"github.com/vk/transtab/internal/failure"
)

// Lookup resolves operation names, specification scope first.
type Lookup struct {
	Global *Registry
	Local  *Scope
}

// Resolve binds name to an operation or fails with an
// UnknownOperationError.
func (l *Lookup) Resolve(ctx context.Context, name string) (*Operation, error) {
	logger := ctxlog.FromContext(ctx)

	local, inLocal := l.Local.Lookup(name)
	var global *Operation
	inGlobal := false
	if l.Global != nil {
		global, inGlobal = l.Global.Lookup(name)
	}

	switch {
	case inLocal && inGlobal:
		logger.Warn("Operation defined both globally and for the specification; using the specification's definition.",
			"operation", name, "script", local.Origin)
		return local, nil
	case inLocal:
		return local, nil
	case inGlobal:
		return global, nil
	}
	return nil, &failure.UnknownOperationError{Name: name}
}
