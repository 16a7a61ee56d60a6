package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommender",
		Short: "Semantic book recommender",
		Long: `Recommender suggests books from a catalog that match a free-text description.

Descriptions are embedded and compared against a corpus of tagged book
descriptions; results can be narrowed by category and reordered by
emotional tone.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			setupLogging()
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "Optional YAML config file (environment variables take precedence)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newRecommendCmd())
	cmd.AddCommand(newBatchCmd())

	return cmd
}

func setupLogging() {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
