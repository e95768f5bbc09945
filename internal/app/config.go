package app

import (
	"errors"

	"github.com/vk/transtab/internal/adapter"
)

const (
	// DefaultFormatsDir is where bare specification names are looked up.
	DefaultFormatsDir = "formats"
	// DefaultWorkers is the number of files a directory batch transforms
	// at once.
	DefaultWorkers = 4
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	InputPath  string // file or directory of files
	FormatPath string // specification path or bare name
	OutputPath string // output file, or output directory for a directory input
	FormatsDir string

	Sheet      string // output worksheet or table
	InputSheet string
	Encoding   string // CSV character set
	Workers    int    // concurrent files in a directory batch

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.InputPath == "" {
		return nil, errors.New("InputPath is a required configuration field and cannot be empty")
	}
	if cfg.FormatPath == "" {
		return nil, errors.New("FormatPath is a required configuration field and cannot be empty")
	}
	if cfg.FormatsDir == "" {
		cfg.FormatsDir = DefaultFormatsDir
	}
	if cfg.Workers < 0 {
		return nil, errors.New("Workers must not be negative")
	}
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Sheet == "" {
		cfg.Sheet = adapter.DefaultSheet
	}
	return &cfg, nil
}

func (c *Config) options(hasHeader bool) adapter.Options {
	return adapter.Options{
		HasHeader:  hasHeader,
		Sheet:      c.Sheet,
		InputSheet: c.InputSheet,
		Encoding:   c.Encoding,
	}
}
