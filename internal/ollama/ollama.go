package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/recommender/internal/providers"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "nomic-embed-text"
)

// Ollama is an embedding provider for a local Ollama server
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// New returns a new Ollama provider
func New(config providers.Config) *Ollama {
	o := &Ollama{
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		model:   config.Model,
		client:  &http.Client{Timeout: config.Timeout},
	}
	if o.baseURL == "" {
		o.baseURL = DefaultBaseURL
	}
	if o.model == "" {
		o.model = DefaultModel
	}
	if config.Timeout == 0 {
		o.client.Timeout = 30 * time.Second
	}
	return o
}

// Name returns the provider/model pair for logging
func (o *Ollama) Name() string {
	return "ollama/" + o.model
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns one embedding per input text using Ollama
func (o *Ollama) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	start := time.Now()

	requestBody, err := json.Marshal(embedRequest{Model: o.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/api/embed", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	slog.Debug("Ollama embeddings received",
		"model", o.model,
		"count", len(response.Embeddings),
		"elapsed", time.Since(start))

	return response.Embeddings, nil
}

var _ providers.Embedder = (*Ollama)(nil)
