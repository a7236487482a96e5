package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	v1 "github.com/aevon-lab/pulse/internal/api/v1"
	apperr "github.com/aevon-lab/pulse/internal/core/errors"
	"github.com/aevon-lab/pulse/internal/core/storage"
	"github.com/aevon-lab/pulse/internal/geo"
	"github.com/aevon-lab/pulse/internal/observability"
	"github.com/aevon-lab/pulse/internal/schema"
	"github.com/gin-gonic/gin"
)

type Service struct {
	store            storage.EventStore
	geocoder         geo.Geocoder
	metrics          *observability.Metrics
	maxBodySizeBytes int
}

func NewService(store storage.EventStore, geocoder geo.Geocoder, metrics *observability.Metrics, maxBodySizeMB int) *Service {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if geocoder == nil {
		panic("ingestion: geocoder must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		store:            store,
		geocoder:         geocoder,
		metrics:          metrics,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the write endpoints.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/metrics", s.CreateHandler)
	r.POST("/v1/metrics", s.CreateHandler)
}

// Create validates, enriches and stores one metric event.
//
// Nothing is persisted unless every step before the insert succeeds. A failed
// country lookup is reported as ErrServiceUnavailable.
func (s *Service) Create(ctx context.Context, req *v1.CreateMetricRequest) (*v1.Metric, error) {
	metric, err := schema.Validate(req)
	if err != nil {
		if ve, ok := apperr.AsValidation(err); ok {
			s.metrics.RecordRejected(ve.Code)
			slog.Warn("Metric rejected", "code", ve.Code, "field", ve.Field, "detail", ve.Detail)
		}
		return nil, err
	}

	if metric.Type == v1.TypeLocation {
		if err := s.enrichLocation(ctx, metric); err != nil {
			return nil, err
		}
	}

	if err := s.store.SaveMetric(ctx, metric); err != nil {
		slog.Error("Failed to persist metric", "error", err, "metric_type", metric.Type, "username", metric.Username)
		return nil, fmt.Errorf("failed to persist metric: %w", err)
	}

	s.metrics.RecordIngested(string(metric.Type))
	slog.Info("Metric stored",
		"id", metric.ID,
		"metric_type", metric.Type,
		"username", metric.Username)
	return metric, nil
}

// enrichLocation adds the resolved country to a location payload.
func (s *Service) enrichLocation(ctx context.Context, metric *v1.Metric) error {
	lat, lon, ok := schema.CoordinatesOf(metric.Metrics)
	if !ok {
		// Validate guarantees numeric coordinates for location events.
		return fmt.Errorf("location metric without coordinates")
	}

	country, err := s.geocoder.Country(ctx, lat, lon)
	if err != nil {
		slog.Error("[Geocoder] Country lookup failed",
			"latitude", lat,
			"longitude", lon,
			"error", err)
		return fmt.Errorf("%w: %v", apperr.ErrServiceUnavailable, err)
	}

	metric.Metrics["country"] = country
	return nil
}
