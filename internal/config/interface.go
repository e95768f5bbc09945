package config

import "context"

// Loader is the interface for a format-specific specification loader.
type Loader interface {
	// Load reads the specification at path and translates it into the
	// format-agnostic model.
	Load(ctx context.Context, path string) (*Model, error)
}
