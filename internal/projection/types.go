package projection

import (
	v1 "github.com/aevon-lab/pulse/internal/api/v1"
	"github.com/aevon-lab/pulse/internal/core/aggregation"
)

// QueryParams are the raw query string values of GET /metrics.
type QueryParams struct {
	Type      string
	Username  string
	DateRange string
	BaseDate  string
	Auth      string
}

// Query is a validated aggregate read.
type Query struct {
	Type     v1.MetricType
	Username string
	Auth     bool
	Window   aggregation.Window
}

// AggregateResponse wraps every successful read.
type AggregateResponse struct {
	Data interface{} `json:"data"`
}
