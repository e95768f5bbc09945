package parser

import (
	"context"
	"os"

	"github.com/vk/transtab/internal/config"
	"github.com/vk/transtab/internal/ctxlog"
	"github.com/vk/transtab/internal/failure"
)

// Loader is the config.Loader for textual specifications. Textual
// specifications always treat the first input row as the header.
type Loader struct{}

// NewLoader creates a new textual specification loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses the specification at path.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Text loader started.", "path", path)

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &failure.ReadError{Resource: path, Err: err}
	}

	cmds, err := Parse(path, string(src))
	if err != nil {
		return nil, err
	}

	model := config.NewModel(path, true)
	model.Commands = cmds
	logger.Debug("Text specification parsed.", "commands", len(cmds))
	return model, nil
}
