package gemini

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/recommender/internal/providers"
	"google.golang.org/api/option"
)

const DefaultModel = "text-embedding-004"

// MaxBatchSize is the most texts BatchEmbedContents accepts in one call
const MaxBatchSize = 100

// Gemini is an embedding provider for Google Gemini.
// The API client is created on first use and shared by later calls.
type Gemini struct {
	apiKey string
	model  string

	mu     sync.Mutex
	client *genai.Client
}

// New returns a new Gemini provider
func New(config providers.Config) *Gemini {
	g := &Gemini{
		apiKey: config.APIKey,
		model:  config.Model,
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	return g
}

// Name returns the provider/model pair for logging
func (g *Gemini) Name() string {
	return "gemini/" + g.model
}

// Embed returns one embedding per input text using Gemini batch embeddings
func (g *Gemini) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	if len(texts) == 0 {
		return nil, nil
	}
	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("gemini accepts at most %d texts per batch, got %d", MaxBatchSize, len(texts))
	}

	client, err := g.getClient(ctx)
	if err != nil {
		return nil, err
	}

	em := client.EmbeddingModel(g.model)
	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings from Gemini, got %d", len(texts), len(resp.Embeddings))
	}

	embeddings := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil {
			return nil, fmt.Errorf("empty embedding returned from Gemini at position %d", i)
		}
		embeddings[i] = e.Values
	}
	return embeddings, nil
}

func (g *Gemini) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}
	g.client = client
	return client, nil
}

var _ providers.Embedder = (*Gemini)(nil)
