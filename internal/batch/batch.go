package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/recommender/internal/recommend"
	"gopkg.in/yaml.v3"
)

// Recommender is the query entry point a batch is run against
type Recommender interface {
	RecommendAndFormat(ctx context.Context, text, category, tone string) ([]recommend.Recommendation, error)
}

// QueryFile is the YAML input of a batch run
type QueryFile struct {
	Queries []recommend.Query `yaml:"queries"`
}

// ReportConfig records the settings a batch ran with
type ReportConfig struct {
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model,omitempty"`
	CatalogPath  string `yaml:"catalogpath"`
	CorpusPath   string `yaml:"corpuspath"`
	CategoryMode string `yaml:"categorymode"`
	InitialTopK  int    `yaml:"initialtopk"`
	FinalTopK    int    `yaml:"finaltopk"`
	Timestamp    string `yaml:"timestamp"`
}

// Result is the outcome of one query
type Result struct {
	Query           string                     `yaml:"query"`
	Category        string                     `yaml:"category"`
	Tone            string                     `yaml:"tone"`
	Error           string                     `yaml:"error,omitempty"`
	Duration        time.Duration              `yaml:"duration"`
	Recommendations []recommend.Recommendation `yaml:"recommendations"`
}

// Report is the complete YAML output of a batch run
type Report struct {
	Config  ReportConfig `yaml:"config"`
	Summary Summary      `yaml:"summary"`
	Results []Result     `yaml:"results"`
}

// LoadQueries reads the queries to run from a YAML file
func LoadQueries(path string) ([]recommend.Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read queries file: %w", err)
	}

	var file QueryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse queries file: %w", err)
	}
	if len(file.Queries) == 0 {
		return nil, fmt.Errorf("no queries found in %s", path)
	}

	for i := range file.Queries {
		if file.Queries[i].Category == "" {
			file.Queries[i].Category = recommend.All
		}
		if file.Queries[i].Tone == "" {
			file.Queries[i].Tone = recommend.All
		}
	}
	return file.Queries, nil
}

// Run answers each query in order. A failed query is recorded in its
// result and does not stop the batch.
func Run(ctx context.Context, r Recommender, queries []recommend.Query) ([]Result, error) {
	results := make([]Result, 0, len(queries))
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("batch interrupted after %d queries: %w", i, err)
		}

		result := Result{
			Query:    q.Text,
			Category: q.Category,
			Tone:     q.Tone,
		}

		start := time.Now()
		recs, err := r.RecommendAndFormat(ctx, q.Text, q.Category, q.Tone)
		result.Duration = time.Since(start)
		if err != nil {
			slog.Warn("Batch query failed", "index", i, "query", q.Text, "err", err)
			result.Error = err.Error()
			recs = []recommend.Recommendation{}
		}
		result.Recommendations = recs

		slog.Info("Batch query complete", "index", i+1, "total", len(queries), "results", len(recs))
		results = append(results, result)
	}
	return results, nil
}

// Save writes the report to path, or to batches/<model>-<timestamp>.yaml
// when path is empty, and returns the absolute path written.
func Save(path string, report Report) (string, error) {
	if report.Config.Timestamp == "" {
		report.Config.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}

	if path == "" {
		name := report.Config.Model
		if name == "" {
			name = report.Config.Provider
		}
		path = filepath.Join("batches", fmt.Sprintf("%s-%s.yaml", name, report.Config.Timestamp))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := yaml.Marshal(&report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return absPath, nil
}
