package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/aevon-lab/pulse/internal/api/v1"
	"github.com/aevon-lab/pulse/internal/core/aggregation"
	"github.com/shopspring/decimal"
)

// AggregateAdapter implements storage.AggregateReader. All grouping happens in
// PostgreSQL; the adapter only maps rows.
type AggregateAdapter struct {
	db *sql.DB
}

// NewAggregateAdapter wraps a pool owned by Adapter.
func NewAggregateAdapter(db *sql.DB) *AggregateAdapter {
	return &AggregateAdapter{db: db}
}

// queryRows runs query and maps every row with scan.
func queryRows[T any](
	ctx context.Context,
	db *sql.DB,
	name string,
	query string,
	args []interface{},
	scan func(scanner) (T, error),
) ([]T, error) {
	start := time.Now()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", name, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", name, err)
	}

	slog.Debug("[Postgres] Aggregate query",
		"query", name,
		"rows", len(out),
		"duration", time.Since(start))
	return out, nil
}

func (a *AggregateAdapter) RegisterSummary(ctx context.Context, w aggregation.Window) ([]aggregation.RegisterDay, error) {
	return queryRows(ctx, a.db, "register summary", queryRegisterSummary, windowArgs(w),
		func(row scanner) (aggregation.RegisterDay, error) {
			var (
				day                  time.Time
				r                    aggregation.RegisterDay
				avgTime, successRate decimal.NullDecimal
			)
			if err := row.Scan(&day, &r.RegisterUsers, &avgTime, &successRate); err != nil {
				return r, err
			}
			r.Date = scanDay(day)
			r.AverageRegistrationTime = aggregation.DecimalFloat(avgTime)
			r.SuccessRate = aggregation.DecimalFloat(successRate)
			return r, nil
		})
}

func (a *AggregateAdapter) RegisterWithProviderSummary(ctx context.Context, w aggregation.Window) ([]aggregation.RegisterWithProviderDay, error) {
	return queryRows(ctx, a.db, "register with provider summary", queryRegisterWithProviderSummary, windowArgs(w),
		func(row scanner) (aggregation.RegisterWithProviderDay, error) {
			var (
				day time.Time
				r   aggregation.RegisterWithProviderDay
			)
			if err := row.Scan(&day, &r.SuccessfulRegisters, &r.SuccessfulRegistersWithProvider); err != nil {
				return r, err
			}
			r.Date = scanDay(day)
			return r, nil
		})
}

func (a *AggregateAdapter) LoginSummary(ctx context.Context, w aggregation.Window) ([]aggregation.LoginDay, error) {
	return queryRows(ctx, a.db, "login summary", queryLoginSummary, windowArgs(w),
		func(row scanner) (aggregation.LoginDay, error) {
			var (
				day     time.Time
				r       aggregation.LoginDay
				avgTime decimal.NullDecimal
			)
			if err := row.Scan(&day, &r.LoginUsers, &r.SuccessfulLogins, &r.FailedLoginAttempts, &avgTime); err != nil {
				return r, err
			}
			r.Date = scanDay(day)
			r.AverageLoginTime = aggregation.DecimalFloat(avgTime)
			return r, nil
		})
}

func (a *AggregateAdapter) LoginWithProviderSummary(ctx context.Context, w aggregation.Window) ([]aggregation.LoginWithProviderDay, error) {
	return queryRows(ctx, a.db, "login with provider summary", queryLoginWithProviderSummary, windowArgs(w),
		func(row scanner) (aggregation.LoginWithProviderDay, error) {
			var (
				day time.Time
				r   aggregation.LoginWithProviderDay
			)
			if err := row.Scan(&day, &r.SuccessfulLogins, &r.SuccessfulLoginsWithProvider); err != nil {
				return r, err
			}
			r.Date = scanDay(day)
			return r, nil
		})
}

func (a *AggregateAdapter) BlockedSummary(ctx context.Context, w aggregation.Window) ([]aggregation.BlockedDay, error) {
	return queryRows(ctx, a.db, "blocked summary", queryBlockedSummary, windowArgs(w),
		func(row scanner) (aggregation.BlockedDay, error) {
			var (
				day time.Time
				r   aggregation.BlockedDay
			)
			if err := row.Scan(&day, &r.BlockedUsers); err != nil {
				return r, err
			}
			r.Date = scanDay(day)
			return r, nil
		})
}

func (a *AggregateAdapter) UserDailyCounts(
	ctx context.Context,
	t v1.MetricType,
	username string,
	w aggregation.Window,
) ([]aggregation.DailyCount, error) {
	args := append(windowArgs(w), string(t), username)
	return queryRows(ctx, a.db, "user daily counts", queryUserDailyCounts, args, scanDailyCount)
}

func (a *AggregateAdapter) DailyCounts(ctx context.Context, t v1.MetricType, w aggregation.Window) ([]aggregation.DailyCount, error) {
	args := append(windowArgs(w), string(t))
	return queryRows(ctx, a.db, "daily counts", queryDailyCounts, args, scanDailyCount)
}

func scanDailyCount(row scanner) (aggregation.DailyCount, error) {
	var (
		day time.Time
		r   aggregation.DailyCount
	)
	if err := row.Scan(&day, &r.Amount); err != nil {
		return r, err
	}
	r.Date = scanDay(day)
	return r, nil
}

func (a *AggregateAdapter) CountryCounts(ctx context.Context, w aggregation.Window) ([]aggregation.CountryCount, error) {
	return queryRows(ctx, a.db, "country counts", queryCountryCounts, windowArgs(w),
		func(row scanner) (aggregation.CountryCount, error) {
			var r aggregation.CountryCount
			err := row.Scan(&r.Country, &r.Amount)
			return r, err
		})
}

func (a *AggregateAdapter) FollowBalance(ctx context.Context, username string) (float64, error) {
	var total decimal.Decimal
	if err := a.db.QueryRowContext(ctx, queryFollowBalance, username).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to query follow balance: %w", err)
	}
	return total.InexactFloat64(), nil
}

func (a *AggregateAdapter) DailyFollows(ctx context.Context, username string, w aggregation.Window) ([]aggregation.DailyFollow, error) {
	args := append(windowArgs(w), username)
	return queryRows(ctx, a.db, "daily follows", queryDailyFollows, args,
		func(row scanner) (aggregation.DailyFollow, error) {
			var (
				day    time.Time
				amount decimal.Decimal
				r      aggregation.DailyFollow
			)
			if err := row.Scan(&day, &amount); err != nil {
				return r, err
			}
			r.Date = scanDay(day)
			r.Amount = amount.InexactFloat64()
			return r, nil
		})
}

func (a *AggregateAdapter) TopHashtags(ctx context.Context, w aggregation.Window, limit int) ([]aggregation.HashtagCount, error) {
	args := append(windowArgs(w), limit)
	return queryRows(ctx, a.db, "top hashtags", queryTopHashtags, args,
		func(row scanner) (aggregation.HashtagCount, error) {
			var r aggregation.HashtagCount
			err := row.Scan(&r.Hashtag, &r.Count)
			return r, err
		})
}

func (a *AggregateAdapter) DailyHashtags(ctx context.Context, w aggregation.Window) ([]aggregation.HashtagCount, error) {
	return queryRows(ctx, a.db, "daily hashtags", queryDailyHashtags, windowArgs(w),
		func(row scanner) (aggregation.HashtagCount, error) {
			var (
				day time.Time
				r   aggregation.HashtagCount
			)
			if err := row.Scan(&day, &r.Hashtag, &r.Count); err != nil {
				return r, err
			}
			r.Date = scanDay(day)
			return r, nil
		})
}
