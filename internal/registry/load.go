package registry

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"maps"
	"os"
	"slices"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/vk/transtab/internal/ctxlog"
	"github.com/vk/transtab/internal/failure"
)

// Scope holds the operations defined for one specification.
type Scope struct {
	Path       string
	operations map[string]*Operation
}

// EmptyScope returns a scope without operations.
func EmptyScope() *Scope {
	return &Scope{operations: make(map[string]*Operation)}
}

// Lookup returns the scope's operation registered under name.
func (s *Scope) Lookup(name string) (*Operation, bool) {
	if s == nil {
		return nil, false
	}
	op, ok := s.operations[name]
	return op, ok
}

// Names returns the scope's operation names in sorted order.
func (s *Scope) Names() []string {
	if s == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(s.operations))
}

// LoadScript interprets the Go file at path and collects every top-level
// function whose signature matches a row or cell hook. A missing file yields
// an empty scope. Functions may omit the trailing error result.
func LoadScript(ctx context.Context, path string) (*Scope, error) {
	logger := ctxlog.FromContext(ctx)

	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("No operations script found.", "path", path)
		return EmptyScope(), nil
	}
	if err != nil {
		return nil, &failure.ReadError{Resource: path, Err: err}
	}

	// The interpreter cannot list what a source declares, so the file is
	// parsed once for its package name and function names.
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, &failure.SyntaxError{Source: path, Msg: err.Error()}
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load interpreter symbols: %w", err)
	}
	if _, err := i.Eval(string(src)); err != nil {
		return nil, &failure.SyntaxError{Source: path, Msg: err.Error()}
	}

	scope := EmptyScope()
	scope.Path = path
	pkg := file.Name.Name
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv != nil || fn.Name.Name == "init" || fn.Name.Name == "main" {
			continue
		}
		name := fn.Name.Name
		v, err := i.Eval(pkg + "." + name)
		if err != nil {
			return nil, &failure.SyntaxError{Source: path, Msg: fmt.Sprintf("cannot resolve function %s: %v", name, err)}
		}
		op := bind(name, v.Interface())
		if op == nil {
			logger.Debug("Skipping function without a hook signature.", "path", path, "function", name)
			continue
		}
		op.Origin = path
		scope.operations[name] = op
	}

	logger.Info("Operations script loaded.", "path", path, "operations", scope.Names())
	return scope, nil
}

// bind adapts a function value to a hook, or returns nil when its signature
// fits neither.
func bind(name string, fn any) *Operation {
	switch fn := fn.(type) {
	case func(map[string]any, int, bool) (map[string]any, error):
		return &Operation{Name: name, Row: fn}
	case func(map[string]any, int, bool) map[string]any:
		return &Operation{Name: name, Row: func(row map[string]any, i int, quit bool) (map[string]any, error) {
			return fn(row, i, quit), nil
		}}
	case func(any, map[string]any, int, string, bool) (any, error):
		return &Operation{Name: name, Cell: fn}
	case func(any, map[string]any, int, string, bool) any:
		return &Operation{Name: name, Cell: func(v any, row map[string]any, i int, col string, quit bool) (any, error) {
			return fn(v, row, i, col, quit), nil
		}}
	}
	return nil
}
