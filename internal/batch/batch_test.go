package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/recommender/internal/recommend"
	"gopkg.in/yaml.v3"
)

type fakeRecommender struct {
	calls int
}

func (f *fakeRecommender) RecommendAndFormat(ctx context.Context, text, category, tone string) ([]recommend.Recommendation, error) {
	f.calls++
	if text == "" {
		return nil, errors.New("invalid query: query text is required")
	}
	return []recommend.Recommendation{
		{Image: "cover-not-found.png", Caption: text + " by Unknown Author: ..."},
	}, nil
}

func TestLoadQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.yaml")
	content := `queries:
  - query: A story about forgiveness
  - query: A heist gone wrong
    category: Fiction
    tone: Suspenseful
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write queries: %v", err)
	}

	queries, err := LoadQueries(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(queries) != 2 {
		t.Fatalf("Expected 2 queries, got %d", len(queries))
	}
	if queries[0].Category != recommend.All || queries[0].Tone != recommend.All {
		t.Errorf("Expected defaults to All, got %q/%q", queries[0].Category, queries[0].Tone)
	}
	if queries[1].Text != "A heist gone wrong" || queries[1].Tone != "Suspenseful" {
		t.Errorf("Unexpected second query: %+v", queries[1])
	}
}

func TestLoadQueriesErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{name: "empty list", content: "queries: []\n", errText: "no queries found"},
		{name: "broken yaml", content: "queries: [\n", errText: "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "queries.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write queries: %v", err)
			}
			_, err := LoadQueries(path)
			if err == nil || !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("Expected error containing %q, got %v", tt.errText, err)
			}
		})
	}
}

func TestRun(t *testing.T) {
	fake := &fakeRecommender{}
	queries := []recommend.Query{
		{Text: "forgiveness", Category: recommend.All, Tone: recommend.All},
		{Text: "", Category: recommend.All, Tone: recommend.All},
		{Text: "dragons", Category: "Fiction", Tone: "Happy"},
	}

	results, err := Run(context.Background(), fake, queries)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fake.calls != 3 {
		t.Errorf("Expected 3 calls, got %d", fake.calls)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[1].Error == "" || len(results[1].Recommendations) != 0 {
		t.Errorf("Expected failed query to be recorded, got %+v", results[1])
	}
	if results[2].Tone != "Happy" || len(results[2].Recommendations) != 1 {
		t.Errorf("Unexpected third result: %+v", results[2])
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Run(ctx, &fakeRecommender{}, []recommend.Query{{Text: "x"}})
	if err == nil {
		t.Fatal("Expected error for cancelled context")
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.yaml")
	report := Report{
		Config: ReportConfig{Provider: "ollama", Model: "nomic-embed-text", FinalTopK: 16},
		Results: []Result{
			{Query: "forgiveness", Category: "All", Tone: "All", Recommendations: []recommend.Recommendation{{Image: "a", Caption: "b"}}},
		},
	}

	written, err := Save(path, report)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !filepath.IsAbs(written) {
		t.Errorf("Expected absolute path, got %s", written)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	var got Report
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("Failed to parse report: %v", err)
	}
	if got.Config.Timestamp == "" {
		t.Error("Expected timestamp to be filled in")
	}
	if len(got.Results) != 1 || got.Results[0].Recommendations[0].Caption != "b" {
		t.Errorf("Unexpected report contents: %+v", got.Results)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		results  []Result
		expected Summary
	}{
		{
			name:     "no results",
			results:  nil,
			expected: Summary{},
		},
		{
			name: "mixed outcomes",
			results: []Result{
				{Duration: 2 * time.Second, Recommendations: make([]recommend.Recommendation, 4)},
				{Duration: 1 * time.Second, Recommendations: []recommend.Recommendation{}},
				{Duration: 3 * time.Second, Error: "invalid query"},
			},
			expected: Summary{
				TotalQueries:    3,
				SuccessCount:    2,
				FailureCount:    1,
				EmptyCount:      1,
				AverageResults:  2,
				AverageDuration: 2 * time.Second,
				TotalDuration:   6 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.results)
			if got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}
