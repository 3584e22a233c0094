package record

import "time"

// RepoSchema is the canonical shape of one repository record. It is the
// contract enforced by the validation gate and produced by the clean stage:
// all five fields present and type-correct, counts never negative.
type RepoSchema struct {
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	StargazersCount int    `json:"stargazers_count"`
	WatchersCount   int    `json:"watchers_count"`
	ForksCount      int    `json:"forks_count"`
}

// EngagementMetrics breaks total engagement down by kind in the aggregated
// artifact.
type EngagementMetrics struct {
	TotalStars    int `json:"total_stars"`
	TotalWatchers int `json:"total_watchers"`
	TotalForks    int `json:"total_forks"`
}

// AggregatedRecord is the terminal artifact of a run. It is immutable once
// produced; the aggregate stage is its only creator.
//
// EngagementRatio is stargazers divided by watchers. When the watcher count
// is zero the ratio is reported as 0 rather than a division fault.
type AggregatedRecord struct {
	RepositoryName  string            `json:"repository_name"`
	FullName        string            `json:"full_name"`
	TotalEngagement int               `json:"total_engagement"`
	Metrics         EngagementMetrics `json:"metrics"`
	EngagementRatio float64           `json:"engagement_ratio"`
	ComputedAt      time.Time         `json:"computed_at"`
}
