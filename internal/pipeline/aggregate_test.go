package pipeline

import (
	"testing"
	"time"

	"repopulse/internal/record"
)

func TestAggregate(t *testing.T) {
	schema := record.RepoSchema{
		Name:            "prefect",
		FullName:        "PrefectHQ/prefect",
		StargazersCount: 15000,
		WatchersCount:   15000,
		ForksCount:      9000,
	}
	fixed := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	agg := Aggregate(schema, func() time.Time { return fixed })

	if agg.TotalEngagement != 39000 {
		t.Fatalf("total_engagement: want 39000, got %d", agg.TotalEngagement)
	}
	if agg.EngagementRatio != 1.0 {
		t.Fatalf("engagement_ratio: want 1.0, got %v", agg.EngagementRatio)
	}
	if agg.RepositoryName != "prefect" {
		t.Fatalf("repository_name: want prefect, got %q", agg.RepositoryName)
	}
	if agg.Metrics.TotalStars != 15000 || agg.Metrics.TotalWatchers != 15000 || agg.Metrics.TotalForks != 9000 {
		t.Fatalf("metrics: unexpected breakdown %+v", agg.Metrics)
	}
	if !agg.ComputedAt.Equal(fixed) {
		t.Fatalf("computed_at: want %v, got %v", fixed, agg.ComputedAt)
	}
}

func TestAggregate_TotalEngagementAlwaysSums(t *testing.T) {
	tests := []struct {
		name                  string
		stars, watchers, forks int
	}{
		{name: "all zero", stars: 0, watchers: 0, forks: 0},
		{name: "mixed", stars: 7, watchers: 3, forks: 2},
		{name: "large", stars: 1 << 20, watchers: 1 << 19, forks: 1 << 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := Aggregate(record.RepoSchema{
				StargazersCount: tt.stars,
				WatchersCount:   tt.watchers,
				ForksCount:      tt.forks,
			}, nil)
			want := tt.stars + tt.watchers + tt.forks
			if agg.TotalEngagement != want {
				t.Fatalf("total_engagement: want %d, got %d", want, agg.TotalEngagement)
			}
		})
	}
}

func TestAggregate_ZeroWatchersRatio(t *testing.T) {
	agg := Aggregate(record.RepoSchema{StargazersCount: 100, WatchersCount: 0, ForksCount: 5}, nil)
	if agg.EngagementRatio != 0 {
		t.Fatalf("engagement_ratio with zero watchers: want 0, got %v", agg.EngagementRatio)
	}
}

func TestAggregate_TimestampIsUTC(t *testing.T) {
	local := time.Date(2026, 8, 29, 12, 0, 0, 0, time.FixedZone("PST", -8*3600))
	agg := Aggregate(record.RepoSchema{}, func() time.Time { return local })

	if agg.ComputedAt.Location() != time.UTC {
		t.Fatalf("computed_at location: want UTC, got %v", agg.ComputedAt.Location())
	}
	if !agg.ComputedAt.Equal(local) {
		t.Fatalf("computed_at: want instant %v, got %v", local, agg.ComputedAt)
	}
}
