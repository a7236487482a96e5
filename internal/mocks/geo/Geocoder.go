package geomocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Geocoder is a mock type for the geo.Geocoder interface.
type Geocoder struct {
	mock.Mock
}

// Country provides a mock function with given fields: ctx, lat, lon
func (_m *Geocoder) Country(ctx context.Context, lat float64, lon float64) (string, error) {
	ret := _m.Called(ctx, lat, lon)
	return ret.String(0), ret.Error(1)
}

// NewGeocoder creates a new instance of Geocoder. It also registers a
// cleanup function to assert the mocks expectations.
func NewGeocoder(t interface {
	mock.TestingT
	Cleanup(func())
}) *Geocoder {
	m := &Geocoder{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
