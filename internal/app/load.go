package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/transtab/internal/config"
	"github.com/vk/transtab/internal/ctxlog"
	"github.com/vk/transtab/internal/failure"
	"github.com/vk/transtab/internal/registry"
)

// specExtensions are tried in order when a bare name is looked up in the
// formats directory.
var specExtensions = []string{".hcl", ".json", ".txt"}

// Spec is a loaded specification with its own operations.
type Spec struct {
	Model *config.Model
	Scope *registry.Scope
}

// resolveSpecPath turns the configured format into a file path. Paths that
// exist are used as they are; bare names are looked up in the formats
// directory, with or without extension.
func (a *App) resolveSpecPath() (string, error) {
	format := a.config.FormatPath
	if info, err := os.Stat(format); err == nil && !info.IsDir() {
		return format, nil
	}
	if strings.ContainsRune(format, os.PathSeparator) || strings.ContainsRune(format, '/') {
		return "", &failure.ReadError{Resource: format, Err: os.ErrNotExist}
	}

	base := filepath.Join(a.config.FormatsDir, format)
	candidates := []string{base}
	if filepath.Ext(format) == "" {
		candidates = candidates[:0]
		for _, ext := range specExtensions {
			candidates = append(candidates, base+ext)
		}
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", &failure.ReadError{
		Resource: format,
		Err:      fmt.Errorf("no specification found, tried %s", strings.Join(candidates, ", ")),
	}
}

// LoadSpec resolves, parses and binds the configured specification.
func (a *App) LoadSpec(ctx context.Context) (*Spec, error) {
	logger := ctxlog.FromContext(ctx)

	path, err := a.resolveSpecPath()
	if err != nil {
		return nil, err
	}
	loader, ok := a.loaderFor(path)
	if !ok {
		return nil, &failure.SyntaxError{Source: path, Msg: fmt.Sprintf("unsupported specification type %q", filepath.Ext(path))}
	}

	model, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	scope, err := registry.LoadScript(ctx, model.OperationsPath())
	if err != nil {
		return nil, err
	}

	logger.Info("Specification loaded.",
		"path", path,
		"commands", len(model.Commands),
		"has_header_row", model.HasHeader,
		"local_operations", scope.Names(),
	)
	return &Spec{Model: model, Scope: scope}, nil
}
