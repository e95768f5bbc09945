package hcl_adapter

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/transtab/internal/config"
	"github.com/vk/transtab/internal/ctxlog"
	"github.com/vk/transtab/internal/failure"
)

// Loader is the structured implementation of the config.Loader interface.
// It reads native HCL and the JSON variant of the same document.
type Loader struct{}

// NewLoader creates a new structured specification loader.
func NewLoader() *Loader {
	return &Loader{}
}

// document holds the top-level attributes of a structured specification.
// Every section is optional.
type document struct {
	HasHeaderRow *bool          `hcl:"has_header_row,optional"`
	Rows         hcl.Expression `hcl:"rows,optional"`
	Columns      hcl.Expression `hcl:"columns,optional"`
	HeaderRows   hcl.Expression `hcl:"header_rows,optional"`
	NewColumns   hcl.Expression `hcl:"new_columns,optional"`
	Remain       hcl.Body       `hcl:",remain"`
}

// Load reads the specification at path.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &failure.ReadError{Resource: path, Err: err}
	}
	return l.Decode(ctx, path, src)
}

// Decode parses src as a structured specification. Files ending in .json
// are read as JSON, anything else as native HCL.
func (l *Loader) Decode(ctx context.Context, filename string, src []byte) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Structured loader started.", "path", filename)

	parser := hclparse.NewParser()
	var (
		file  *hcl.File
		diags hcl.Diagnostics
	)
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		file, diags = parser.ParseJSON(src, filename)
	} else {
		file, diags = parser.ParseHCL(src, filename)
	}
	if diags.HasErrors() {
		return nil, syntaxError(filename, src, diags)
	}

	var doc document
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, syntaxError(filename, src, diags)
	}
	if attrs, _ := doc.Remain.JustAttributes(); len(attrs) > 0 {
		for name, attr := range attrs {
			logger.Warn("Ignoring unknown specification attribute.", "attribute", name, "range", attr.Range.String())
		}
	}

	hasHeader := doc.HasHeaderRow != nil && *doc.HasHeaderRow
	t := &translator{ctx: ctx, filename: filename, src: src, hasHeader: hasHeader}
	cmds, err := t.translate(&doc)
	if err != nil {
		return nil, err
	}

	model := config.NewModel(filename, hasHeader)
	model.Commands = cmds
	logger.Debug("Structured specification translated.", "has_header_row", hasHeader, "commands", len(cmds))
	return model, nil
}

// syntaxError converts the first HCL diagnostic into a SyntaxError.
func syntaxError(filename string, src []byte, diags hcl.Diagnostics) error {
	d := diags[0]
	for _, diag := range diags {
		if diag.Severity == hcl.DiagError {
			d = diag
			break
		}
	}
	msg := d.Summary
	if d.Detail != "" {
		msg += ": " + d.Detail
	}
	if d.Subject == nil {
		return &failure.SyntaxError{Source: filename, Msg: msg}
	}
	return rangeError(filename, src, *d.Subject, msg)
}

// rangeError reports msg at the start of rng.
func rangeError(filename string, src []byte, rng hcl.Range, msg string) error {
	return &failure.SyntaxError{
		Source: filename,
		Line:   rng.Start.Line,
		Column: rng.Start.Column,
		Text:   sourceLine(src, rng.Start.Line),
		Msg:    msg,
	}
}

func sourceLine(src []byte, line int) string {
	lines := strings.Split(string(src), "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[line-1])
}
