package projection

import (
	"log/slog"
	"net/http"

	apperr "github.com/aevon-lab/pulse/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the read endpoints.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/metrics", s.HandleQueryMetrics)
	r.GET("/v1/metrics", s.HandleQueryMetrics)
}

// HandleQueryMetrics handles GET /metrics.
// Query parameters: type, username, dateRange, baseDate, auth
func (s *Service) HandleQueryMetrics(c *gin.Context) {
	params := QueryParams{
		Type:      c.Query("type"),
		Username:  c.Query("username"),
		DateRange: c.Query("dateRange"),
		BaseDate:  c.Query("baseDate"),
		Auth:      c.Query("auth"),
	}

	q, err := s.ParseQuery(params)
	if err != nil {
		if ve, ok := apperr.AsValidation(err); ok {
			slog.Warn("Aggregate query rejected", "code", ve.Code, "field", ve.Field)
		}
		writeError(c, err)
		return
	}

	data, err := s.Aggregate(c.Request.Context(), q)
	if err != nil {
		slog.Error("Failed to query aggregates", "error", err, "metric_type", q.Type)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, AggregateResponse{Data: data})
}

// writeError serializes err as a problem response.
func writeError(c *gin.Context, err error) {
	problem := apperr.Problem(err, c.Request.URL.RequestURI())
	c.JSON(problem.Status, problem)
}
