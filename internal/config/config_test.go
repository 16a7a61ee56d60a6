package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable Load reads so the host environment cannot leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CATALOG_PATH", "CORPUS_PATH", "PORT", "EMBEDDING_PROVIDER", "EMBEDDING_MODEL",
		"EMBEDDING_TIMEOUT_SECONDS", "OPENAI_API_KEY", "OPENAI_BASE_URL", "GEMINI_API_KEY",
		"OLLAMA_URL", "OLLAMA_HOST", "EMBED_BATCH_SIZE", "EMBED_CONCURRENCY",
		"EMBED_RATE_PER_SECOND", "QUERY_CACHE_SIZE", "INITIAL_TOP_K", "FINAL_TOP_K",
		"CATEGORY_MODE", "SEARCH_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.CatalogPath != "books_with_emotions.csv" {
		t.Errorf("Expected default catalog path, got %s", cfg.CatalogPath)
	}
	if cfg.CorpusPath != "tagged_description.txt" {
		t.Errorf("Expected default corpus path, got %s", cfg.CorpusPath)
	}
	if cfg.InitialTopK != 50 || cfg.FinalTopK != 16 {
		t.Errorf("Expected 50/16, got %d/%d", cfg.InitialTopK, cfg.FinalTopK)
	}
	if cfg.CategoryMode != "replace" {
		t.Errorf("Expected replace category mode, got %s", cfg.CategoryMode)
	}
	if got := cfg.RecommendOptions().SearchTimeout; got != 30*time.Second {
		t.Errorf("Expected 30s search timeout, got %s", got)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("EMBEDDING_PROVIDER", "OLLAMA")
	t.Setenv("OLLAMA_HOST", "http://gpu-box:11434")
	t.Setenv("FINAL_TOP_K", "8")
	t.Setenv("EMBED_RATE_PER_SECOND", "2.5")
	t.Setenv("INITIAL_TOP_K", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Provider != "ollama" {
		t.Errorf("Expected ollama, got %s", cfg.Provider)
	}
	if cfg.ProviderConfig().BaseURL != "http://gpu-box:11434" {
		t.Errorf("Expected OLLAMA_HOST fallback, got %s", cfg.ProviderURL)
	}
	if cfg.FinalTopK != 8 {
		t.Errorf("Expected 8, got %d", cfg.FinalTopK)
	}
	if cfg.IndexOptions().RatePerSecond != 2.5 {
		t.Errorf("Expected 2.5, got %f", cfg.EmbedRatePerSecond)
	}
	if cfg.InitialTopK != 50 {
		t.Errorf("Expected unparsable value to keep default, got %d", cfg.InitialTopK)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "recommender.yaml")
	content := `catalog_path: data/books.parquet
embedding_provider: gemini
embedding_model: text-embedding-004
category_mode: intersect
final_top_k: 12
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("FINAL_TOP_K", "4")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.CatalogPath != "data/books.parquet" {
		t.Errorf("Expected catalog path from file, got %s", cfg.CatalogPath)
	}
	if cfg.CorpusPath != "tagged_description.txt" {
		t.Errorf("Expected default corpus path, got %s", cfg.CorpusPath)
	}
	if cfg.APIKey != "secret" {
		t.Errorf("Expected Gemini key from env, got %q", cfg.APIKey)
	}
	if cfg.CategoryMode != "intersect" {
		t.Errorf("Expected intersect, got %s", cfg.CategoryMode)
	}
	if cfg.FinalTopK != 4 {
		t.Errorf("Expected env to win over file, got %d", cfg.FinalTopK)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		errText string
	}{
		{
			name:    "unknown provider",
			env:     map[string]string{"EMBEDDING_PROVIDER": "cohere"},
			errText: "unsupported embedding provider",
		},
		{
			name:    "unknown category mode",
			env:     map[string]string{"CATEGORY_MODE": "merge"},
			errText: "unsupported category mode",
		},
		{
			name:    "gemini batch too large",
			env:     map[string]string{"EMBEDDING_PROVIDER": "gemini", "EMBED_BATCH_SIZE": "150"},
			errText: "embed_batch_size must be at most 100 for gemini",
		},
		{
			name:    "zero initial top k",
			env:     map[string]string{"INITIAL_TOP_K": "0"},
			errText: "initial_top_k must be positive",
		},
		{
			name:    "negative final top k",
			env:     map[string]string{"FINAL_TOP_K": "-1"},
			errText: "final_top_k must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			if err == nil || !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("Expected error containing %q, got %v", tt.errText, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}
