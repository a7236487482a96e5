package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	apperr "github.com/aevon-lab/pulse/internal/core/errors"
	"github.com/aevon-lab/pulse/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	Engine  *gin.Engine
	Addr    string
	health  HealthChecker
	metrics *observability.Metrics
}

// HealthChecker is an interface for components that can report their health status.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Options configures the HTTP server.
type Options struct {
	Addr string
	Mode string // debug | release
	// MetricsPath serves the Prometheus exposition when non-empty and metrics is set.
	MetricsPath string
}

func New(opts Options, health HealthChecker, metrics *observability.Metrics) *Server {
	// Set Gin mode based on configuration
	if opts.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(recoverProblem), RequestID(), AccessLog(), Instrument(metrics))

	s := &Server{
		Engine:  r,
		Addr:    opts.Addr,
		health:  health,
		metrics: metrics,
	}

	// Health check endpoint with database connectivity verification
	r.GET("/health", s.healthHandler)

	if metrics != nil && opts.MetricsPath != "" {
		r.GET(opts.MetricsPath, gin.WrapH(metrics.Handler()))
	}

	return s
}

// recoverProblem answers a panicking request with the generic 500 problem body.
func recoverProblem(c *gin.Context, recovered any) {
	slog.Error("Recovered from panic",
		"error", fmt.Sprint(recovered),
		"path", c.Request.URL.Path,
		"request_id", c.GetString(requestIDKey))
	problem := apperr.Problem(fmt.Errorf("panic: %v", recovered), c.Request.URL.RequestURI())
	c.AbortWithStatusJSON(problem.Status, problem)
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.health != nil {
		if err := s.health.Ping(ctx); err != nil {
			slog.Error("Health check failed: database unreachable", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           otelhttp.NewHandler(s.Engine, "pulse"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Starting HTTP Server...", "address", s.Addr)

	go func() {
		<-ctx.Done()
		slog.Info("Stopping HTTP Server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP Server forced to shutdown", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
