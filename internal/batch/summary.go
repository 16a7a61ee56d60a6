package batch

import "time"

// Summary aggregates the results of a batch run
type Summary struct {
	TotalQueries    int           `yaml:"totalqueries"`
	SuccessCount    int           `yaml:"successcount"`
	FailureCount    int           `yaml:"failurecount"`
	EmptyCount      int           `yaml:"emptycount"`
	AverageResults  float64       `yaml:"averageresults"`
	AverageDuration time.Duration `yaml:"averageduration"`
	TotalDuration   time.Duration `yaml:"totalduration"`
}

// Summarize aggregates per-query results. Failed queries count toward the
// totals and durations but not toward the average result count.
func Summarize(results []Result) Summary {
	summary := Summary{
		TotalQueries: len(results),
	}

	totalResults := 0
	for _, r := range results {
		summary.TotalDuration += r.Duration

		if r.Error != "" {
			summary.FailureCount++
			continue
		}

		summary.SuccessCount++
		totalResults += len(r.Recommendations)
		if len(r.Recommendations) == 0 {
			summary.EmptyCount++
		}
	}

	if summary.SuccessCount > 0 {
		summary.AverageResults = float64(totalResults) / float64(summary.SuccessCount)
	}
	if summary.TotalQueries > 0 {
		summary.AverageDuration = summary.TotalDuration / time.Duration(summary.TotalQueries)
	}

	return summary
}
