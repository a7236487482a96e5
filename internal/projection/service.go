package projection

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	v1 "github.com/aevon-lab/pulse/internal/api/v1"
	"github.com/aevon-lab/pulse/internal/core/aggregation"
	apperr "github.com/aevon-lab/pulse/internal/core/errors"
	"github.com/aevon-lab/pulse/internal/core/storage"
	"github.com/aevon-lab/pulse/internal/observability"
	"golang.org/x/sync/errgroup"
)

// aggregateFunc runs the read for one metric type and returns the value of "data".
type aggregateFunc func(ctx context.Context, q Query) (interface{}, error)

// Service implements the read side: parameter validation, per-type dispatch and shaping.
type Service struct {
	reader     storage.AggregateReader
	metrics    *observability.Metrics
	aggregates map[v1.MetricType]aggregateFunc
	nowFn      func() time.Time
}

// NewService creates a new projection service.
func NewService(reader storage.AggregateReader, metrics *observability.Metrics) *Service {
	if reader == nil {
		panic("projection: reader must not be nil")
	}

	s := &Service{
		reader:  reader,
		metrics: metrics,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}

	s.aggregates = map[v1.MetricType]aggregateFunc{
		v1.TypeRegister:             s.registerSummary,
		v1.TypeRegisterWithProvider: s.registerWithProviderSummary,
		v1.TypeLogin:                s.loginSummary,
		v1.TypeLoginWithProvider:    s.loginWithProviderSummary,
		v1.TypeBlocked:              s.blockedSummary,
		v1.TypeTwit:                 s.socialActivity,
		v1.TypeLike:                 s.socialActivity,
		v1.TypeRetwit:               s.socialActivity,
		v1.TypeComment:              s.socialActivity,
		v1.TypeLocation:             s.countries,
		v1.TypeFollow:               s.follows,
		v1.TypeHashtag:              s.hashtags,
	}

	return s
}

// ParseQuery validates raw query parameters. Checks run in a fixed order:
// type, username, dateRange, baseDate, auth. The first failure is returned.
func (s *Service) ParseQuery(p QueryParams) (Query, error) {
	metricType, ok := v1.ParseMetricType(p.Type)
	if !ok {
		return Query{}, apperr.NewValidationError("type", "Invalid type", apperr.CodeInvalidType)
	}

	auth, authErr := parseAuth(p.Auth)
	// An unparsable auth is reported last, but twit needs to know whether it is set now.
	authTwit := metricType == v1.TypeTwit && authErr == nil && auth

	username := strings.TrimSpace(p.Username)
	if requiresUsername(metricType) && !authTwit && username == "" {
		return Query{}, apperr.NewValidationError("username", "Username is required", apperr.CodeMissingField)
	}

	dateRange, err := aggregation.ParseDateRange(p.DateRange, defaultRange(metricType, authTwit))
	if err != nil {
		return Query{}, apperr.NewValidationError("dateRange", "Invalid dateRange", apperr.CodeInvalidDateRange)
	}

	base := s.nowFn()
	if p.BaseDate != "" {
		base, err = v1.ParseTimestamp(p.BaseDate)
		if err != nil {
			return Query{}, apperr.NewValidationError("baseDate", "Invalid baseDate", apperr.CodeInvalidBaseDate)
		}
	}

	if authErr != nil {
		return Query{}, apperr.NewValidationError("auth", "Invalid auth", apperr.CodeInvalidAuth)
	}

	return Query{
		Type:     metricType,
		Username: username,
		Auth:     auth,
		Window:   aggregation.WindowFor(dateRange, base),
	}, nil
}

// Aggregate runs the read registered for q.Type.
func (s *Service) Aggregate(ctx context.Context, q Query) (interface{}, error) {
	fn, ok := s.aggregates[q.Type]
	if !ok {
		return nil, apperr.NewValidationError("type", "Invalid type", apperr.CodeInvalidType)
	}

	start := time.Now()
	data, err := fn(ctx, q)
	s.metrics.ObserveAggregateQuery(string(q.Type), err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", q.Type, err)
	}

	slog.Debug("Aggregate served",
		"metric_type", q.Type,
		"username", q.Username,
		"date_range", q.Window.Range,
		"duration", time.Since(start))
	return data, nil
}

func (s *Service) registerSummary(ctx context.Context, q Query) (interface{}, error) {
	return s.reader.RegisterSummary(ctx, q.Window)
}

func (s *Service) registerWithProviderSummary(ctx context.Context, q Query) (interface{}, error) {
	return s.reader.RegisterWithProviderSummary(ctx, q.Window)
}

func (s *Service) loginSummary(ctx context.Context, q Query) (interface{}, error) {
	return s.reader.LoginSummary(ctx, q.Window)
}

func (s *Service) loginWithProviderSummary(ctx context.Context, q Query) (interface{}, error) {
	return s.reader.LoginWithProviderSummary(ctx, q.Window)
}

func (s *Service) blockedSummary(ctx context.Context, q Query) (interface{}, error) {
	return s.reader.BlockedSummary(ctx, q.Window)
}

// countries is sorted by amount ascending, ties by country name.
func (s *Service) countries(ctx context.Context, q Query) (interface{}, error) {
	return s.reader.CountryCounts(ctx, q.Window)
}

func (s *Service) socialActivity(ctx context.Context, q Query) (interface{}, error) {
	if q.Type == v1.TypeTwit && q.Auth {
		counts, err := s.reader.DailyCounts(ctx, v1.TypeTwit, q.Window)
		if err != nil {
			return nil, err
		}
		return twitOverview(counts), nil
	}

	counts, err := s.reader.UserDailyCounts(ctx, q.Type, q.Username, q.Window)
	if err != nil {
		return nil, err
	}
	return activityDays(counts), nil
}

// follows reads the all-time balance and the windowed per-day follows concurrently.
func (s *Service) follows(ctx context.Context, q Query) (interface{}, error) {
	var (
		total   float64
		follows []aggregation.DailyFollow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.reader.FollowBalance(gctx, q.Username)
		return err
	})
	g.Go(func() error {
		var err error
		follows, err = s.reader.DailyFollows(gctx, q.Username, q.Window)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if follows == nil {
		follows = []aggregation.DailyFollow{}
	}
	return aggregation.FollowOverview{Total: total, Follows: follows}, nil
}

// hashtags reads the top tags and the per-day counts concurrently and merges them.
// The top tags are ranked over all time so the keys do not shift with the window.
func (s *Service) hashtags(ctx context.Context, q Query) (interface{}, error) {
	var top, daily []aggregation.HashtagCount

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		top, err = s.reader.TopHashtags(gctx, allTime, aggregation.TopHashtagLimit)
		return err
	})
	g.Go(func() error {
		var err error
		daily, err = s.reader.DailyHashtags(gctx, q.Window)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return hashtagDays(top, daily), nil
}

// allTime is the unbounded window used for global rankings.
var allTime = aggregation.Window{Range: aggregation.RangeAll}

// requiresUsername reports whether reads of t are scoped to one user.
func requiresUsername(t v1.MetricType) bool {
	return t.IsSocialAction() || t == v1.TypeFollow
}

// defaultRange is week for per-user reads and all for global summaries.
func defaultRange(t v1.MetricType, authTwit bool) aggregation.DateRange {
	if requiresUsername(t) && !authTwit {
		return aggregation.RangeWeek
	}
	return aggregation.RangeAll
}

// parseAuth accepts an empty value as false.
func parseAuth(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
