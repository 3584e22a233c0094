package pipeline

import (
	"time"

	"repopulse/internal/record"
)

// Aggregate computes the derived engagement metrics for a canonical record
// and stamps the result with the current UTC time.
//
// The engagement ratio is stargazers over watchers; a zero watcher count
// yields a ratio of 0 rather than a division fault. The clock is injected so
// tests can pin ComputedAt.
func Aggregate(schema record.RepoSchema, now func() time.Time) record.AggregatedRecord {
	if now == nil {
		now = time.Now
	}

	ratio := 0.0
	if schema.WatchersCount != 0 {
		ratio = float64(schema.StargazersCount) / float64(schema.WatchersCount)
	}

	return record.AggregatedRecord{
		RepositoryName:  schema.Name,
		FullName:        schema.FullName,
		TotalEngagement: schema.StargazersCount + schema.WatchersCount + schema.ForksCount,
		Metrics: record.EngagementMetrics{
			TotalStars:    schema.StargazersCount,
			TotalWatchers: schema.WatchersCount,
			TotalForks:    schema.ForksCount,
		},
		EngagementRatio: ratio,
		ComputedAt:      now().UTC(),
	}
}
