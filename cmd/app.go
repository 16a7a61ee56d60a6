package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/recommender/internal/catalog"
	"github.com/lehigh-university-libraries/recommender/internal/config"
	"github.com/lehigh-university-libraries/recommender/internal/gemini"
	"github.com/lehigh-university-libraries/recommender/internal/index"
	"github.com/lehigh-university-libraries/recommender/internal/metrics"
	"github.com/lehigh-university-libraries/recommender/internal/ollama"
	"github.com/lehigh-university-libraries/recommender/internal/openai"
	"github.com/lehigh-university-libraries/recommender/internal/providers"
	"github.com/lehigh-university-libraries/recommender/internal/recommend"
)

func newEmbedder(cfg *config.Config) (providers.Embedder, error) {
	switch cfg.Provider {
	case "openai":
		return openai.New(cfg.ProviderConfig()), nil
	case "gemini":
		return gemini.New(cfg.ProviderConfig()), nil
	case "ollama":
		return ollama.New(cfg.ProviderConfig()), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// buildService loads the catalog and corpus, builds the index and returns
// the recommendation service. Any failure here is fatal for the caller.
func buildService(ctx context.Context, cfg *config.Config) (*recommend.Service, error) {
	books, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	metrics.CatalogBooks.Set(float64(books.Len()))

	entries, err := index.ReadCorpus(cfg.CorpusPath)
	if err != nil {
		return nil, err
	}
	checkCorpus(books, entries)

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	idx, err := index.Build(ctx, embedder, entries, cfg.IndexOptions())
	if err != nil {
		return nil, err
	}

	return recommend.NewService(books, idx, cfg.RecommendOptions()), nil
}

// checkCorpus warns about corpus lines that cannot resolve to a catalog row
// and returns their counts. Such lines are still indexed and skipped at query time.
func checkCorpus(books *catalog.Catalog, entries []index.Entry) (malformed, unknown int) {
	for _, e := range entries {
		id, err := e.Identifier()
		if err != nil {
			malformed++
			continue
		}
		if !books.Contains(id) {
			unknown++
		}
	}
	if malformed > 0 || unknown > 0 {
		slog.Warn("Corpus does not fully match catalog",
			"entries", len(entries),
			"malformed_identifiers", malformed,
			"unknown_identifiers", unknown)
	}
	return malformed, unknown
}
