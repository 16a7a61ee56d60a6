package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/recommender/internal/providers"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
)

// OpenAI is an embedding provider for the OpenAI embeddings API
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// New returns a new OpenAI provider
func New(config providers.Config) *OpenAI {
	o := &OpenAI{
		apiKey:  config.APIKey,
		model:   config.Model,
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		client:  &http.Client{Timeout: config.Timeout},
	}
	if o.model == "" {
		o.model = DefaultModel
	}
	if o.baseURL == "" {
		o.baseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		o.client.Timeout = 60 * time.Second
	}
	return o
}

// Name returns the provider/model pair for logging
func (o *OpenAI) Name() string {
	return "openai/" + o.model
}

// Embed returns one embedding per input text using OpenAI
func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if o.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	requestBody, err := json.Marshal(map[string]interface{}{
		"model": o.model,
		"input": texts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/embeddings", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings from OpenAI, got %d", len(texts), len(response.Data))
	}

	// the API documents index order but does not promise it
	sort.Slice(response.Data, func(i, j int) bool {
		return response.Data[i].Index < response.Data[j].Index
	})

	embeddings := make([][]float32, len(response.Data))
	for i, d := range response.Data {
		embeddings[i] = d.Embedding
	}
	return embeddings, nil
}

var _ providers.Embedder = (*OpenAI)(nil)
