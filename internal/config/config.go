package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/recommender/internal/gemini"
	"github.com/lehigh-university-libraries/recommender/internal/index"
	"github.com/lehigh-university-libraries/recommender/internal/providers"
	"github.com/lehigh-university-libraries/recommender/internal/recommend"
	"gopkg.in/yaml.v3"
)

// Config holds everything needed to build the catalog, index and service
type Config struct {
	CatalogPath string `yaml:"catalog_path"`
	CorpusPath  string `yaml:"corpus_path"`
	Port        string `yaml:"port"`

	Provider        string `yaml:"embedding_provider"` // openai, gemini or ollama
	Model           string `yaml:"embedding_model"`
	APIKey          string `yaml:"api_key"`
	ProviderURL     string `yaml:"provider_url"`
	ProviderTimeout int    `yaml:"provider_timeout_seconds"`

	EmbedBatchSize     int     `yaml:"embed_batch_size"`
	EmbedConcurrency   int     `yaml:"embed_concurrency"`
	EmbedRatePerSecond float64 `yaml:"embed_rate_per_second"`
	QueryCacheSize     int     `yaml:"query_cache_size"`

	InitialTopK          int    `yaml:"initial_top_k"`
	FinalTopK            int    `yaml:"final_top_k"`
	CategoryMode         string `yaml:"category_mode"`
	SearchTimeoutSeconds int    `yaml:"search_timeout_seconds"`
}

// Default returns the configuration used with no file and no environment
func Default() *Config {
	idx := index.DefaultOptions()
	rec := recommend.DefaultOptions()
	return &Config{
		CatalogPath:          "books_with_emotions.csv",
		CorpusPath:           "tagged_description.txt",
		Port:                 "7860",
		Provider:             "openai",
		ProviderTimeout:      60,
		EmbedBatchSize:       idx.BatchSize,
		EmbedConcurrency:     idx.Concurrency,
		QueryCacheSize:       idx.QueryCacheSize,
		InitialTopK:          rec.InitialTopK,
		FinalTopK:            rec.FinalTopK,
		CategoryMode:         rec.CategoryMode,
		SearchTimeoutSeconds: 30,
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in that order of precedence (environment wins).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.CatalogPath = getEnv("CATALOG_PATH", c.CatalogPath)
	c.CorpusPath = getEnv("CORPUS_PATH", c.CorpusPath)
	c.Port = getEnv("PORT", c.Port)

	c.Provider = strings.ToLower(getEnv("EMBEDDING_PROVIDER", c.Provider))
	c.Model = getEnv("EMBEDDING_MODEL", c.Model)
	c.ProviderTimeout = getEnvInt("EMBEDDING_TIMEOUT_SECONDS", c.ProviderTimeout)

	switch c.Provider {
	case "openai":
		c.APIKey = getEnv("OPENAI_API_KEY", c.APIKey)
		c.ProviderURL = getEnv("OPENAI_BASE_URL", c.ProviderURL)
	case "gemini":
		c.APIKey = getEnv("GEMINI_API_KEY", c.APIKey)
	case "ollama":
		c.ProviderURL = getEnvWithAlt("OLLAMA_URL", "OLLAMA_HOST", c.ProviderURL)
	}

	c.EmbedBatchSize = getEnvInt("EMBED_BATCH_SIZE", c.EmbedBatchSize)
	c.EmbedConcurrency = getEnvInt("EMBED_CONCURRENCY", c.EmbedConcurrency)
	c.EmbedRatePerSecond = getEnvFloat("EMBED_RATE_PER_SECOND", c.EmbedRatePerSecond)
	c.QueryCacheSize = getEnvInt("QUERY_CACHE_SIZE", c.QueryCacheSize)

	c.InitialTopK = getEnvInt("INITIAL_TOP_K", c.InitialTopK)
	c.FinalTopK = getEnvInt("FINAL_TOP_K", c.FinalTopK)
	c.CategoryMode = strings.ToLower(getEnv("CATEGORY_MODE", c.CategoryMode))
	c.SearchTimeoutSeconds = getEnvInt("SEARCH_TIMEOUT_SECONDS", c.SearchTimeoutSeconds)
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	switch c.Provider {
	case "openai", "gemini", "ollama":
	default:
		return fmt.Errorf("unsupported embedding provider: %s", c.Provider)
	}
	switch c.CategoryMode {
	case recommend.CategoryReplace, recommend.CategoryIntersect:
	default:
		return fmt.Errorf("unsupported category mode: %s (supported: replace, intersect)", c.CategoryMode)
	}
	if c.Provider == "gemini" && c.EmbedBatchSize > gemini.MaxBatchSize {
		return fmt.Errorf("embed_batch_size must be at most %d for gemini, got %d", gemini.MaxBatchSize, c.EmbedBatchSize)
	}
	if c.InitialTopK <= 0 {
		return fmt.Errorf("initial_top_k must be positive, got %d", c.InitialTopK)
	}
	if c.FinalTopK < 0 {
		return fmt.Errorf("final_top_k must not be negative, got %d", c.FinalTopK)
	}
	if c.CatalogPath == "" || c.CorpusPath == "" {
		return fmt.Errorf("catalog_path and corpus_path are required")
	}
	return nil
}

// ProviderConfig returns the settings passed to the embedding provider
func (c *Config) ProviderConfig() providers.Config {
	return providers.Config{
		Model:   c.Model,
		APIKey:  c.APIKey,
		BaseURL: c.ProviderURL,
		Timeout: time.Duration(c.ProviderTimeout) * time.Second,
	}
}

// IndexOptions returns the index build settings
func (c *Config) IndexOptions() index.Options {
	return index.Options{
		BatchSize:      c.EmbedBatchSize,
		Concurrency:    c.EmbedConcurrency,
		RatePerSecond:  c.EmbedRatePerSecond,
		QueryCacheSize: c.QueryCacheSize,
	}
}

// RecommendOptions returns the recommendation pipeline settings
func (c *Config) RecommendOptions() recommend.Options {
	return recommend.Options{
		InitialTopK:   c.InitialTopK,
		FinalTopK:     c.FinalTopK,
		CategoryMode:  c.CategoryMode,
		SearchTimeout: time.Duration(c.SearchTimeoutSeconds) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvWithAlt(key, altKey, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return getEnv(altKey, fallback)
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return fallback
}
