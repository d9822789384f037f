package source

import "context"

// Source defines the interface all payload sources must implement.
type Source interface {
	// Read returns the current payload.
	Read(ctx context.Context, cfg Config) ([]byte, error)

	// Watch sends the current payload and then every later version until
	// ctx is cancelled or the source is exhausted. The channel is closed
	// when Watch stops.
	Watch(ctx context.Context, cfg Config) (<-chan []byte, error)
}

// Config holds source-specific settings.
type Config struct {
	Kind  string
	Path  string
	Extra map[string]string
}
