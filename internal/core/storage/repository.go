package storage

import (
	"context"

	v1 "github.com/aevon-lab/pulse/internal/api/v1"
	"github.com/aevon-lab/pulse/internal/core/aggregation"
)

// EventStore appends metric events.
type EventStore interface {
	// SaveMetric persists the metric and sets its generated ID.
	// There is no idempotency key: saving the same metric twice stores two rows.
	SaveMetric(ctx context.Context, metric *v1.Metric) error
}

// AggregateReader computes the read-side summaries. Every method groups in the
// store and returns rows ordered by day (or by amount for CountryCounts).
// Windows with a zero bound are unbounded on that side.
type AggregateReader interface {
	RegisterSummary(ctx context.Context, w aggregation.Window) ([]aggregation.RegisterDay, error)
	RegisterWithProviderSummary(ctx context.Context, w aggregation.Window) ([]aggregation.RegisterWithProviderDay, error)
	LoginSummary(ctx context.Context, w aggregation.Window) ([]aggregation.LoginDay, error)
	LoginWithProviderSummary(ctx context.Context, w aggregation.Window) ([]aggregation.LoginWithProviderDay, error)
	BlockedSummary(ctx context.Context, w aggregation.Window) ([]aggregation.BlockedDay, error)

	// UserDailyCounts counts one user's events of type t per day.
	UserDailyCounts(ctx context.Context, t v1.MetricType, username string, w aggregation.Window) ([]aggregation.DailyCount, error)
	// DailyCounts counts events of type t per day across all users.
	DailyCounts(ctx context.Context, t v1.MetricType, w aggregation.Window) ([]aggregation.DailyCount, error)

	// CountryCounts groups location events by resolved country, ascending by amount.
	CountryCounts(ctx context.Context, w aggregation.Window) ([]aggregation.CountryCount, error)

	// FollowBalance is the all-time signed follow total of a user.
	FollowBalance(ctx context.Context, username string) (float64, error)
	// DailyFollows sums followed=true amounts of a user per day.
	DailyFollows(ctx context.Context, username string, w aggregation.Window) ([]aggregation.DailyFollow, error)

	// TopHashtags returns the most used hashtags, most frequent first.
	TopHashtags(ctx context.Context, w aggregation.Window, limit int) ([]aggregation.HashtagCount, error)
	// DailyHashtags counts every hashtag per day.
	DailyHashtags(ctx context.Context, w aggregation.Window) ([]aggregation.HashtagCount, error)
}
