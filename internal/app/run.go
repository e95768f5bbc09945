package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/transtab/internal/adapter"
	"github.com/vk/transtab/internal/ctxlog"
	"github.com/vk/transtab/internal/executor"
	"github.com/vk/transtab/internal/fsutil"
	"github.com/vk/transtab/internal/registry"
)

// outputSuffix marks files written by a previous run.
const outputSuffix = "_formatted"

// Run loads the specification once and transforms the configured input.
// A directory input transforms every supported file inside it on a pool of
// workers; a failing file does not stop the others.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	spec, err := a.LoadSpec(ctx)
	if err != nil {
		return err
	}

	info, err := os.Stat(a.config.InputPath)
	if err != nil {
		return fmt.Errorf("failed to access input %s: %w", a.config.InputPath, err)
	}
	if !info.IsDir() {
		return a.Transform(ctx, spec, a.config.InputPath, outputPath(a.config.InputPath, a.config.OutputPath))
	}

	inputs, err := fsutil.FindFiles(a.config.InputPath, isBatchInput)
	if err != nil {
		return fmt.Errorf("failed to scan input directory: %w", err)
	}
	if len(inputs) == 0 {
		a.logger.Warn("No input files found.", "dir", a.config.InputPath)
		return nil
	}

	jobs, err := planBatch(a.config.InputPath, a.config.OutputPath, inputs)
	if err != nil {
		return err
	}
	return a.runBatch(ctx, spec, jobs)
}

// Transform reads input, applies the specification and writes output.
func (a *App) Transform(ctx context.Context, spec *Spec, input, output string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger.With("input", input)

	src, err := adapter.ForPath(input)
	if err != nil {
		return err
	}
	sink, err := adapter.ForPath(output)
	if err != nil {
		return err
	}
	opts := a.config.options(spec.Model.HasHeader)

	t, err := src.Read(ctx, input, opts)
	if err != nil {
		return err
	}
	logger.Info("Input read.", "format", src.Name(), "rows", t.Len(), "columns", t.Width())

	exec := executor.New(&registry.Lookup{Global: a.registry, Local: spec.Scope})
	if err := exec.Run(ctx, t, spec.Model.Commands); err != nil {
		return err
	}

	if err := sink.Write(ctx, output, t, opts); err != nil {
		return err
	}
	logger.Info("Output written.", "path", output, "format", sink.Name(), "rows", t.Len(), "columns", t.Width())
	return nil
}

// outputPath returns explicit when set, else <input-prefix>_formatted.xlsx.
func outputPath(input, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + outputSuffix + ".xlsx"
}

// isBatchInput accepts supported files that are not earlier outputs.
func isBatchInput(path string) bool {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return adapter.Supported(path) && !strings.HasSuffix(stem, outputSuffix) && !strings.HasPrefix(filepath.Base(path), ".")
}
