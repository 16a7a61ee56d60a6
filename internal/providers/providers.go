package providers

import (
	"context"
	"time"
)

// Config represents the configuration for an embedding provider
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Embedder defines the interface for an embedding provider.
// Implementations return exactly one vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
}
