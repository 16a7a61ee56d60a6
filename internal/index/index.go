package index

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lehigh-university-libraries/recommender/internal/metrics"
	"github.com/lehigh-university-libraries/recommender/internal/providers"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Options tunes index construction and query caching
type Options struct {
	BatchSize      int     // entries per embedding call
	Concurrency    int     // embedding calls in flight
	RatePerSecond  float64 // embedding calls per second, 0 for unlimited
	QueryCacheSize int     // cached query embeddings, 0 disables the cache
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		BatchSize:      100,
		Concurrency:    4,
		QueryCacheSize: 1024,
	}
}

// BuildError reports a failure while embedding the corpus. No partial index is returned.
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("failed to build semantic index: %v", e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Index is an in-memory cosine similarity index over corpus entries.
// It is immutable after Build and safe for concurrent searches.
type Index struct {
	embedder providers.Embedder
	entries  []Entry
	vectors  [][]float32
	dim      int
	cache    *lru.Cache[string, []float32]
}

// Build embeds every entry and returns the finished index
func Build(ctx context.Context, embedder providers.Embedder, entries []Entry, opts Options) (*Index, error) {
	if len(entries) == 0 {
		return nil, &BuildError{Err: errors.New("corpus is empty")}
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultOptions().BatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}

	start := time.Now()
	slog.Info("Building semantic index",
		"provider", embedder.Name(),
		"entries", len(entries),
		"batch_size", opts.BatchSize,
		"concurrency", opts.Concurrency)

	vectors := make([][]float32, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for lo := 0; lo < len(entries); lo += opts.BatchSize {
		hi := min(lo+opts.BatchSize, len(entries))
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}

			texts := make([]string, hi-lo)
			for i := range texts {
				texts[i] = entries[lo+i].Text
			}

			embeddings, err := embedder.Embed(gctx, texts)
			if err != nil {
				metrics.EmbeddingRequests.WithLabelValues("build", "error").Inc()
				return fmt.Errorf("entries %d-%d: %w", lo, hi-1, err)
			}
			metrics.EmbeddingRequests.WithLabelValues("build", "ok").Inc()

			if len(embeddings) != len(texts) {
				return fmt.Errorf("entries %d-%d: expected %d embeddings, got %d", lo, hi-1, len(texts), len(embeddings))
			}
			for i, v := range embeddings {
				// each batch writes a disjoint range
				vectors[lo+i] = v
			}

			slog.Debug("Embedded corpus batch", "from", lo, "to", hi-1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, &BuildError{Err: err}
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, &BuildError{Err: fmt.Errorf("entry %d: empty embedding", i)}
		}
		if len(v) != dim {
			return nil, &BuildError{Err: fmt.Errorf("entry %d: dimension %d does not match %d", i, len(v), dim)}
		}
		if !normalize(v) {
			return nil, &BuildError{Err: fmt.Errorf("entry %d: zero or invalid embedding", i)}
		}
	}

	ix := &Index{
		embedder: embedder,
		entries:  entries,
		vectors:  vectors,
		dim:      dim,
	}

	if opts.QueryCacheSize > 0 {
		cache, err := lru.New[string, []float32](opts.QueryCacheSize)
		if err != nil {
			return nil, &BuildError{Err: fmt.Errorf("failed to create query cache: %w", err)}
		}
		ix.cache = cache
	}

	elapsed := time.Since(start)
	metrics.IndexEntries.Set(float64(len(entries)))
	metrics.IndexBuildDuration.Set(elapsed.Seconds())
	slog.Info("Semantic index ready", "entries", len(entries), "dimension", dim, "elapsed", elapsed)

	return ix, nil
}

// Len returns the number of indexed entries
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Dimension returns the embedding dimension
func (ix *Index) Dimension() int {
	return ix.dim
}

// Search returns up to k entries ranked by cosine similarity to the query.
// Equal scores keep corpus order.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Entry, error) {
	if k <= 0 {
		return nil, nil
	}

	q, err := ix.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	type scored struct {
		pos   int
		score float32
	}
	ranked := make([]scored, len(ix.vectors))
	for i, v := range ix.vectors {
		ranked[i] = scored{pos: i, score: dot(q, v)}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	k = min(k, len(ranked))
	out := make([]Entry, k)
	for i := 0; i < k; i++ {
		out[i] = ix.entries[ranked[i].pos]
	}
	return out, nil
}

func (ix *Index) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if ix.cache != nil {
		if v, ok := ix.cache.Get(query); ok {
			metrics.QueryCacheHits.Inc()
			return v, nil
		}
		metrics.QueryCacheMisses.Inc()
	}

	embeddings, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		metrics.EmbeddingRequests.WithLabelValues("query", "error").Inc()
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	metrics.EmbeddingRequests.WithLabelValues("query", "ok").Inc()

	if len(embeddings) != 1 {
		return nil, fmt.Errorf("expected 1 query embedding, got %d", len(embeddings))
	}
	v := embeddings[0]
	if len(v) != ix.dim {
		return nil, fmt.Errorf("query embedding dimension %d does not match index dimension %d", len(v), ix.dim)
	}
	if !normalize(v) {
		return nil, errors.New("query embedding is zero or invalid")
	}

	if ix.cache != nil {
		ix.cache.Add(query, v)
	}
	return v, nil
}

// normalize scales v to unit length in place and reports whether v was usable
func normalize(v []float32) bool {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return false
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
	return true
}

func dot(a, b []float32) float32 {
	var s float32
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
