package cmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/recommender/internal/config"
	"github.com/lehigh-university-libraries/recommender/internal/recommend"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRecommendCmd() *cobra.Command {
	var category string
	var tone string

	cmd := &cobra.Command{
		Use:   "recommend <description>",
		Short: "Print recommendations for a single description",
		Long: `Builds the index and prints the recommendations for one description as YAML.

Useful for checking a catalog and corpus without starting the web server.`,
		Example: `  # Any category, any tone
  recommender recommend "A story about forgiveness"

  # Fiction only, saddest first
  recommender recommend "A story about forgiveness" --category Fiction --tone Sad`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}

			service, err := buildService(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			recs, err := service.RecommendAndFormat(cmd.Context(), args[0], category, tone)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(recs)
			if err != nil {
				return fmt.Errorf("failed to marshal YAML: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&category, "category", recommend.All, "Category to recommend from")
	cmd.Flags().StringVar(&tone, "tone", recommend.All, "Tone to sort by (Happy, Surprising, Angry, Suspenseful, Sad)")

	return cmd
}
