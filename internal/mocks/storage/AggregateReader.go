package storagemocks

import (
	"context"

	v1 "github.com/aevon-lab/pulse/internal/api/v1"
	"github.com/aevon-lab/pulse/internal/core/aggregation"
	"github.com/stretchr/testify/mock"
)

// AggregateReader is a mock type for the storage.AggregateReader interface.
type AggregateReader struct {
	mock.Mock
}

// RegisterSummary provides a mock function with given fields: ctx, w
func (_m *AggregateReader) RegisterSummary(ctx context.Context, w aggregation.Window) ([]aggregation.RegisterDay, error) {
	ret := _m.Called(ctx, w)

	var r0 []aggregation.RegisterDay
	if v := ret.Get(0); v != nil {
		r0 = v.([]aggregation.RegisterDay)
	}
	return r0, ret.Error(1)
}

// RegisterWithProviderSummary provides a mock function with given fields: ctx, w
func (_m *AggregateReader) RegisterWithProviderSummary(ctx context.Context, w aggregation.Window) ([]aggregation.RegisterWithProviderDay, error) {
	ret := _m.Called(ctx, w)

	var r0 []aggregation.RegisterWithProviderDay
	if v := ret.Get(0); v != nil {
		r0 = v.([]aggregation.RegisterWithProviderDay)
	}
	return r0, ret.Error(1)
}

// LoginSummary provides a mock function with given fields: ctx, w
func (_m *AggregateReader) LoginSummary(ctx context.Context, w aggregation.Window) ([]aggregation.LoginDay, error) {
	ret := _m.Called(ctx, w)

	var r0 []aggregation.LoginDay
	if v := ret.Get(0); v != nil {
		r0 = v.([]aggregation.LoginDay)
	}
	return r0, ret.Error(1)
}

// LoginWithProviderSummary provides a mock function with given fields: ctx, w
func (_m *AggregateReader) LoginWithProviderSummary(ctx context.Context, w aggregation.Window) ([]aggregation.LoginWithProviderDay, error) {
	ret := _m.Called(ctx, w)

	var r0 []aggregation.LoginWithProviderDay
	if v := ret.Get(0); v != nil {
		r0 = v.([]aggregation.LoginWithProviderDay)
	}
	return r0, ret.Error(1)
}

// BlockedSummary provides a mock function with given fields: ctx, w
func (_m *AggregateReader) BlockedSummary(ctx context.Context, w aggregation.Window) ([]aggregation.BlockedDay, error) {
	ret := _m.Called(ctx, w)

	var r0 []aggregation.BlockedDay
	if v := ret.Get(0); v != nil {
		r0 = v.([]aggregation.BlockedDay)
	}
	return r0, ret.Error(1)
}

// UserDailyCounts provides a mock function with given fields: ctx, t, username, w
func (_m *AggregateReader) UserDailyCounts(ctx context.Context, t v1.MetricType, username string, w aggregation.Window) ([]aggregation.DailyCount, error) {
	ret := _m.Called(ctx, t, username, w)

	var r0 []aggregation.DailyCount
	if v := ret.Get(0); v != nil {
		r0 = v.([]aggregation.DailyCount)
	}
	return r0, ret.Error(1)
}

// DailyCounts provides a mock function with given fields: ctx, t, w
func (_m *AggregateReader) DailyCounts(ctx context.Context, t v1.MetricType, w aggregation.Window) ([]aggregation.DailyCount, error) {
	ret := _m.Called(ctx, t, w)

	var r0 []aggregation.DailyCount
	if v := ret.Get(0); v != nil {
		r0 = v.([]aggregation.DailyCount)
	}
	return r0, ret.Error(1)
}

// CountryCounts provides a mock function with given fields: ctx, w
func (_m *AggregateReader) CountryCounts(ctx context.Context, w aggregation.Window) ([]aggregation.CountryCount, error) {
	ret := _m.Called(ctx, w)

	var r0 []aggregation.CountryCount
	if v := ret.Get(0); v != nil {
		r0 = v.([]aggregation.CountryCount)
	}
	return r0, ret.Error(1)
}

// FollowBalance provides a mock function with given fields: ctx, username
func (_m *AggregateReader) FollowBalance(ctx context.Context, username string) (float64, error) {
	ret := _m.Called(ctx, username)

	var r0 float64
	if v := ret.Get(0); v != nil {
		r0 = v.(float64)
	}
	return r0, ret.Error(1)
}

// DailyFollows provides a mock function with given fields: ctx, username, w
func (_m *AggregateReader) DailyFollows(ctx context.Context, username string, w aggregation.Window) ([]aggregation.DailyFollow, error) {
	ret := _m.Called(ctx, username, w)

	var r0 []aggregation.DailyFollow
	if v := ret.Get(0); v != nil {
		r0 = v.([]aggregation.DailyFollow)
	}
	return r0, ret.Error(1)
}

// TopHashtags provides a mock function with given fields: ctx, w, limit
func (_m *AggregateReader) TopHashtags(ctx context.Context, w aggregation.Window, limit int) ([]aggregation.HashtagCount, error) {
	ret := _m.Called(ctx, w, limit)

	var r0 []aggregation.HashtagCount
	if v := ret.Get(0); v != nil {
		r0 = v.([]aggregation.HashtagCount)
	}
	return r0, ret.Error(1)
}

// DailyHashtags provides a mock function with given fields: ctx, w
func (_m *AggregateReader) DailyHashtags(ctx context.Context, w aggregation.Window) ([]aggregation.HashtagCount, error) {
	ret := _m.Called(ctx, w)

	var r0 []aggregation.HashtagCount
	if v := ret.Get(0); v != nil {
		r0 = v.([]aggregation.HashtagCount)
	}
	return r0, ret.Error(1)
}

// NewAggregateReader creates a new instance of AggregateReader. It also registers a
// cleanup function to assert the mocks expectations.
func NewAggregateReader(t interface {
	mock.TestingT
	Cleanup(func())
}) *AggregateReader {
	m := &AggregateReader{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
