package storagemocks

import (
	"context"

	v1 "github.com/aevon-lab/pulse/internal/api/v1"
	"github.com/stretchr/testify/mock"
)

// EventStore is a mock type for the storage.EventStore interface.
type EventStore struct {
	mock.Mock
}

// SaveMetric provides a mock function with given fields: ctx, metric
func (_m *EventStore) SaveMetric(ctx context.Context, metric *v1.Metric) error {
	ret := _m.Called(ctx, metric)

	if rf, ok := ret.Get(0).(func(context.Context, *v1.Metric) error); ok {
		return rf(ctx, metric)
	}
	return ret.Error(0)
}

// NewEventStore creates a new instance of EventStore. It also registers a
// cleanup function to assert the mocks expectations.
func NewEventStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *EventStore {
	m := &EventStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
