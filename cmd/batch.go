package cmd

import (
	"fmt"
	"time"

	"github.com/lehigh-university-libraries/recommender/internal/batch"
	"github.com/lehigh-university-libraries/recommender/internal/config"
	"github.com/spf13/cobra"
)

func newBatchCmd() *cobra.Command {
	var queriesPath string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run a YAML list of queries and save a YAML report",
		Long: `Runs every query in a YAML file against one index build and writes the
recommendations for each query to a YAML report.

Query file format:

  queries:
    - query: A story about forgiveness
      category: Fiction
      tone: Sad`,
		Example: `  # Report written to batches/<model>-<timestamp>.yaml
  recommender batch --queries queries.yaml

  # Explicit output path
  recommender batch --queries queries.yaml --output report.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}

			queries, err := batch.LoadQueries(queriesPath)
			if err != nil {
				return err
			}

			service, err := buildService(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			results, err := batch.Run(cmd.Context(), service, queries)
			if err != nil {
				return err
			}

			report := batch.Report{
				Config: batch.ReportConfig{
					Provider:     cfg.Provider,
					Model:        cfg.Model,
					CatalogPath:  cfg.CatalogPath,
					CorpusPath:   cfg.CorpusPath,
					CategoryMode: cfg.CategoryMode,
					InitialTopK:  cfg.InitialTopK,
					FinalTopK:    cfg.FinalTopK,
					Timestamp:    time.Now().Format("2006-01-02_15-04-05"),
				},
				Summary: batch.Summarize(results),
				Results: results,
			}

			written, err := batch.Save(outputPath, report)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Batch results saved to: %s\n", written)
			fmt.Fprintf(cmd.OutOrStdout(), "Queries: %d, failed: %d, empty: %d, average results: %.1f\n",
				report.Summary.TotalQueries, report.Summary.FailureCount, report.Summary.EmptyCount, report.Summary.AverageResults)
			return nil
		},
	}

	cmd.Flags().StringVar(&queriesPath, "queries", "queries.yaml", "Path to YAML file of queries")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to output YAML report (default batches/<model>-<timestamp>.yaml)")

	return cmd
}
