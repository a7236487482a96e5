package projection

import (
	"context"
	"errors"
	"testing"
	"time"

	v1 "github.com/aevon-lab/pulse/internal/api/v1"
	"github.com/aevon-lab/pulse/internal/core/aggregation"
	apperr "github.com/aevon-lab/pulse/internal/core/errors"
	storagemocks "github.com/aevon-lab/pulse/internal/mocks/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 11, 10, 15, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *storagemocks.AggregateReader) {
	t.Helper()

	reader := storagemocks.NewAggregateReader(t)
	svc := NewService(reader, nil)
	svc.nowFn = func() time.Time { return testNow }
	return svc, reader
}

func TestService_ParseQuery_Errors(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name      string
		params    QueryParams
		wantCode  string
		wantField string
	}{
		{name: "missing type", params: QueryParams{}, wantCode: apperr.CodeInvalidType, wantField: "type"},
		{name: "unknown type", params: QueryParams{Type: "poke"}, wantCode: apperr.CodeInvalidType, wantField: "type"},
		{name: "twit without username", params: QueryParams{Type: "twit"}, wantCode: apperr.CodeMissingField, wantField: "username"},
		{name: "comment blank username", params: QueryParams{Type: "comment", Username: "  "}, wantCode: apperr.CodeMissingField, wantField: "username"},
		{name: "follow without username", params: QueryParams{Type: "follow"}, wantCode: apperr.CodeMissingField, wantField: "username"},
		{name: "like with auth still needs username", params: QueryParams{Type: "like", Auth: "true"}, wantCode: apperr.CodeMissingField, wantField: "username"},
		{name: "twit bad auth reports username first", params: QueryParams{Type: "twit", Auth: "maybe"}, wantCode: apperr.CodeMissingField, wantField: "username"},
		{name: "invalid date range", params: QueryParams{Type: "like", Username: "a", DateRange: "decade"}, wantCode: apperr.CodeInvalidDateRange, wantField: "dateRange"},
		{name: "invalid base date", params: QueryParams{Type: "register", BaseDate: "someday"}, wantCode: apperr.CodeInvalidBaseDate, wantField: "baseDate"},
		{name: "invalid auth", params: QueryParams{Type: "register", Auth: "maybe"}, wantCode: apperr.CodeInvalidAuth, wantField: "auth"},
		{name: "date range checked before base date", params: QueryParams{Type: "login", DateRange: "x", BaseDate: "y"}, wantCode: apperr.CodeInvalidDateRange, wantField: "dateRange"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ParseQuery(tc.params)
			ve, ok := apperr.AsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			require.Equal(t, tc.wantCode, ve.Code)
			require.Equal(t, tc.wantField, ve.Field)
		})
	}
}

func TestService_ParseQuery_Windows(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name   string
		params QueryParams
		want   aggregation.Window
		auth   bool
	}{
		{
			name:   "per-user reads default to week",
			params: QueryParams{Type: "twit", Username: "user4"},
			want:   aggregation.WindowFor(aggregation.RangeWeek, testNow),
		},
		{
			name:   "follow defaults to week",
			params: QueryParams{Type: "follow", Username: "u"},
			want:   aggregation.WindowFor(aggregation.RangeWeek, testNow),
		},
		{
			name:   "global summaries default to all",
			params: QueryParams{Type: "register"},
			want:   aggregation.Window{Range: aggregation.RangeAll},
		},
		{
			name:   "twit with auth needs no username and defaults to all",
			params: QueryParams{Type: "twit", Auth: "true"},
			want:   aggregation.Window{Range: aggregation.RangeAll},
			auth:   true,
		},
		{
			name:   "explicit range anchored at base date",
			params: QueryParams{Type: "hashtag", DateRange: "month", BaseDate: "2024-02-15"},
			want: aggregation.Window{
				Range: aggregation.RangeMonth,
				Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:   "auth false is accepted",
			params: QueryParams{Type: "location", Auth: "false", DateRange: "year"},
			want:   aggregation.WindowFor(aggregation.RangeYear, testNow),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := svc.ParseQuery(tc.params)
			require.NoError(t, err)
			require.Equal(t, tc.want, q.Window)
			require.Equal(t, tc.auth, q.Auth)
		})
	}
}

func TestService_Aggregate_SocialActivity(t *testing.T) {
	svc, reader := newTestService(t)

	q, err := svc.ParseQuery(QueryParams{Type: "twit", Username: "user4", DateRange: "week"})
	require.NoError(t, err)

	reader.On("UserDailyCounts", mock.Anything, v1.TypeTwit, "user4", q.Window).
		Return([]aggregation.DailyCount{{Date: day(2024, 11, 10), Amount: 3}}, nil).Once()

	data, err := svc.Aggregate(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, []aggregation.ActivityDay{
		{Date: day(2024, 11, 10), Day: "Sunday", Amount: 3},
	}, data)
}

func TestService_Aggregate_TwitAuthSpansAllUsers(t *testing.T) {
	svc, reader := newTestService(t)

	q, err := svc.ParseQuery(QueryParams{Type: "twit", Auth: "true"})
	require.NoError(t, err)

	reader.On("DailyCounts", mock.Anything, v1.TypeTwit, q.Window).
		Return([]aggregation.DailyCount{
			{Date: day(2024, 11, 9), Amount: 4},
			{Date: day(2024, 11, 10), Amount: 1},
		}, nil).Once()

	data, err := svc.Aggregate(context.Background(), q)
	require.NoError(t, err)

	overview, ok := data.(aggregation.TwitOverview)
	require.True(t, ok)
	require.Equal(t, int64(5), overview.Total)
	require.Len(t, overview.Twits, 2)
}

func TestService_Aggregate_Follow(t *testing.T) {
	svc, reader := newTestService(t)

	q, err := svc.ParseQuery(QueryParams{Type: "follow", Username: "testuser"})
	require.NoError(t, err)

	reader.On("FollowBalance", mock.Anything, "testuser").Return(float64(0), nil).Once()
	reader.On("DailyFollows", mock.Anything, "testuser", q.Window).
		Return([]aggregation.DailyFollow{{Date: day(2024, 11, 10), Amount: 1}}, nil).Once()

	data, err := svc.Aggregate(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, aggregation.FollowOverview{
		Total:   0,
		Follows: []aggregation.DailyFollow{{Date: day(2024, 11, 10), Amount: 1}},
	}, data)
}

func TestService_Aggregate_FollowEmptyWindow(t *testing.T) {
	svc, reader := newTestService(t)

	q, err := svc.ParseQuery(QueryParams{Type: "follow", Username: "quiet"})
	require.NoError(t, err)

	reader.On("FollowBalance", mock.Anything, "quiet").Return(float64(4), nil).Once()
	reader.On("DailyFollows", mock.Anything, "quiet", q.Window).Return(nil, nil).Once()

	data, err := svc.Aggregate(context.Background(), q)
	require.NoError(t, err)

	overview := data.(aggregation.FollowOverview)
	require.Equal(t, float64(4), overview.Total)
	require.NotNil(t, overview.Follows)
}

func TestService_Aggregate_Hashtag(t *testing.T) {
	svc, reader := newTestService(t)

	q, err := svc.ParseQuery(QueryParams{Type: "hashtag"})
	require.NoError(t, err)

	reader.On("TopHashtags", mock.Anything, q.Window, aggregation.TopHashtagLimit).
		Return([]aggregation.HashtagCount{{Hashtag: "test", Count: 2}, {Hashtag: "test2", Count: 1}}, nil).Once()
	reader.On("DailyHashtags", mock.Anything, q.Window).
		Return([]aggregation.HashtagCount{
			{Date: day(2024, 11, 10), Hashtag: "test", Count: 2},
			{Date: day(2024, 11, 10), Hashtag: "test2", Count: 1},
		}, nil).Once()

	data, err := svc.Aggregate(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, []aggregation.HashtagDay{
		{Date: day(2024, 11, 10), Hashtags: map[string]int64{"test": 2, "test2": 1}},
	}, data)
}

func TestService_Aggregate_HashtagRanksOverAllTime(t *testing.T) {
	svc, reader := newTestService(t)

	q, err := svc.ParseQuery(QueryParams{Type: "hashtag", DateRange: "week", BaseDate: "2024-11-10"})
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC), q.Window.Start)

	reader.On("TopHashtags", mock.Anything, aggregation.Window{Range: aggregation.RangeAll}, aggregation.TopHashtagLimit).
		Return([]aggregation.HashtagCount{{Hashtag: "old", Count: 9}, {Hashtag: "test", Count: 1}}, nil).Once()
	reader.On("DailyHashtags", mock.Anything, q.Window).
		Return([]aggregation.HashtagCount{{Date: day(2024, 11, 10), Hashtag: "test", Count: 1}}, nil).Once()

	data, err := svc.Aggregate(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, []aggregation.HashtagDay{
		{Date: day(2024, 11, 10), Hashtags: map[string]int64{"old": 0, "test": 1}},
	}, data)
}

func TestService_Aggregate_GlobalSummaries(t *testing.T) {
	svc, reader := newTestService(t)
	all := aggregation.Window{Range: aggregation.RangeAll}

	reader.On("RegisterSummary", mock.Anything, all).
		Return([]aggregation.RegisterDay{{Date: day(2024, 11, 10), RegisterUsers: 1, AverageRegistrationTime: 1000, SuccessRate: 1}}, nil).Once()
	reader.On("RegisterWithProviderSummary", mock.Anything, all).Return([]aggregation.RegisterWithProviderDay{}, nil).Once()
	reader.On("LoginSummary", mock.Anything, all).Return([]aggregation.LoginDay{}, nil).Once()
	reader.On("LoginWithProviderSummary", mock.Anything, all).Return([]aggregation.LoginWithProviderDay{}, nil).Once()
	reader.On("BlockedSummary", mock.Anything, all).Return([]aggregation.BlockedDay{}, nil).Once()
	reader.On("CountryCounts", mock.Anything, all).
		Return([]aggregation.CountryCount{{Country: "Argentina", Amount: 1}, {Country: "Brazil", Amount: 2}}, nil).Once()

	for _, typ := range []string{"register", "register_with_provider", "login", "login_with_provider", "blocked", "location"} {
		q, err := svc.ParseQuery(QueryParams{Type: typ})
		require.NoError(t, err)
		_, err = svc.Aggregate(context.Background(), q)
		require.NoError(t, err, typ)
	}
}

func TestService_Aggregate_ReaderErrorIsWrapped(t *testing.T) {
	svc, reader := newTestService(t)
	dbErr := errors.New("connection refused")

	q, err := svc.ParseQuery(QueryParams{Type: "blocked"})
	require.NoError(t, err)

	reader.On("BlockedSummary", mock.Anything, q.Window).Return(nil, dbErr).Once()

	_, err = svc.Aggregate(context.Background(), q)
	require.ErrorIs(t, err, dbErr)
	_, isValidation := apperr.AsValidation(err)
	require.False(t, isValidation)
}

func TestService_Aggregate_HashtagErrorCancelsBoth(t *testing.T) {
	svc, reader := newTestService(t)
	dbErr := errors.New("timeout")

	q, err := svc.ParseQuery(QueryParams{Type: "hashtag"})
	require.NoError(t, err)

	reader.On("TopHashtags", mock.Anything, q.Window, aggregation.TopHashtagLimit).Return(nil, dbErr).Once()
	reader.On("DailyHashtags", mock.Anything, q.Window).Return([]aggregation.HashtagCount{}, nil).Maybe()

	_, err = svc.Aggregate(context.Background(), q)
	require.ErrorIs(t, err, dbErr)
}

func TestNewService_PanicsOnNilReader(t *testing.T) {
	require.Panics(t, func() { NewService(nil, nil) })
}
