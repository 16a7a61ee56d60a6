package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/recommender/internal/catalog"
	"github.com/lehigh-university-libraries/recommender/internal/index"
	"github.com/lehigh-university-libraries/recommender/internal/metrics"
)

var (
	// ErrInvalidQuery is returned for an empty query text or an unknown category or tone
	ErrInvalidQuery = errors.New("invalid query")

	// ErrMalformedIdentifier marks a search hit whose leading token is not a book identifier
	ErrMalformedIdentifier = errors.New("malformed corpus identifier")
)

const (
	// CategoryReplace swaps the semantic matches for every book in the category
	CategoryReplace = "replace"
	// CategoryIntersect keeps only the semantic matches that are in the category
	CategoryIntersect = "intersect"
)

// Searcher retrieves the corpus entries most similar to a query
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]index.Entry, error)
}

// Options configures the recommendation pipeline
type Options struct {
	InitialTopK   int
	FinalTopK     int
	CategoryMode  string
	SearchTimeout time.Duration
}

// DefaultOptions returns 50 candidates narrowed to 16 results with the category replace policy
func DefaultOptions() Options {
	return Options{
		InitialTopK:  50,
		FinalTopK:    16,
		CategoryMode: CategoryReplace,
	}
}

// Query is one user request. Empty Category or Tone mean "All".
type Query struct {
	Text     string `json:"query" yaml:"query"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Tone     string `json:"tone,omitempty" yaml:"tone,omitempty"`
}

// Service answers recommendation queries against a fixed catalog and index.
// It holds no per-request state.
type Service struct {
	catalog  *catalog.Catalog
	searcher Searcher
	opts     Options
}

// NewService wires the catalog and searcher built at startup
func NewService(c *catalog.Catalog, searcher Searcher, opts Options) *Service {
	if opts.CategoryMode == "" {
		opts.CategoryMode = CategoryReplace
	}
	return &Service{
		catalog:  c,
		searcher: searcher,
		opts:     opts,
	}
}

// Categories returns the category choices offered to users, "All" first
func (s *Service) Categories() []string {
	return append([]string{All}, s.catalog.Categories()...)
}

// Recommend runs the query with the configured candidate and result counts
func (s *Service) Recommend(ctx context.Context, q Query) ([]catalog.Book, error) {
	return s.RecommendWithLimits(ctx, q, s.opts.InitialTopK, s.opts.FinalTopK)
}

// RecommendWithLimits retrieves initialK similar entries and returns at most finalK books
func (s *Service) RecommendWithLimits(ctx context.Context, q Query, initialK, finalK int) ([]catalog.Book, error) {
	start := time.Now()
	q = normalizeQuery(q)

	books, err := s.recommend(ctx, q, initialK, max(finalK, 0))

	outcome, tone := "ok", q.Tone
	if err != nil {
		outcome = "error"
	}
	if !ValidTone(tone) {
		tone = "invalid"
	}
	metrics.Recommendations.WithLabelValues(tone, outcome).Inc()
	metrics.RecommendationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	metrics.RecommendationResults.Observe(float64(len(books)))

	slog.Debug("Recommendation complete",
		"query", q.Text,
		"category", q.Category,
		"tone", q.Tone,
		"results", len(books),
		"elapsed", time.Since(start))

	return books, nil
}

func (s *Service) recommend(ctx context.Context, q Query, initialK, finalK int) ([]catalog.Book, error) {
	if err := s.validate(q); err != nil {
		return nil, err
	}

	matched, err := s.search(ctx, q.Text, initialK)
	if err != nil {
		return nil, err
	}

	// catalog order, not similarity order
	var selection []catalog.Book
	for _, b := range s.catalog.Books() {
		if _, ok := matched[b.ISBN13]; ok {
			selection = append(selection, b)
		}
	}

	if q.Category != All {
		switch s.opts.CategoryMode {
		case CategoryIntersect:
			selection = filterCategory(selection, q.Category)
		default:
			selection = filterCategory(s.catalog.Books(), q.Category)
		}
	}

	if len(selection) > finalK {
		selection = selection[:finalK]
	}

	if q.Tone != All {
		sortByTone(selection, q.Tone)
	}

	if selection == nil {
		selection = []catalog.Book{}
	}
	return selection, nil
}

// search returns the identifiers of the top initialK entries. Malformed
// identifiers are logged and skipped so one bad corpus line cannot fail a request.
func (s *Service) search(ctx context.Context, text string, initialK int) (map[int64]struct{}, error) {
	if s.opts.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.SearchTimeout)
		defer cancel()
	}

	entries, err := s.searcher.Search(ctx, text, initialK)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	matched := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		id, err := e.Identifier()
		if err != nil {
			metrics.MalformedIdentifiers.Inc()
			slog.Warn("Skipping search hit", "err", fmt.Errorf("%w: %w", ErrMalformedIdentifier, err))
			continue
		}
		matched[id] = struct{}{}
	}
	return matched, nil
}

func (s *Service) validate(q Query) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: query text is required", ErrInvalidQuery)
	}
	if q.Category != All && !s.catalog.HasCategory(q.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidQuery, q.Category)
	}
	if !ValidTone(q.Tone) {
		return fmt.Errorf("%w: unknown tone %q", ErrInvalidQuery, q.Tone)
	}
	return nil
}

func normalizeQuery(q Query) Query {
	if q.Category == "" {
		q.Category = All
	}
	if q.Tone == "" {
		q.Tone = All
	}
	return q
}

func filterCategory(books []catalog.Book, category string) []catalog.Book {
	var out []catalog.Book
	for _, b := range books {
		if b.Category == category {
			out = append(out, b)
		}
	}
	return out
}

// RecommendAndFormat is the single entry point used by the web and CLI front ends
func (s *Service) RecommendAndFormat(ctx context.Context, text, category, tone string) ([]Recommendation, error) {
	books, err := s.Recommend(ctx, Query{Text: text, Category: category, Tone: tone})
	if err != nil {
		return nil, err
	}
	return Format(books), nil
}
