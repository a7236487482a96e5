package ingestion

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	v1 "github.com/aevon-lab/pulse/internal/api/v1"
	apperr "github.com/aevon-lab/pulse/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// CreateHandler handles POST /metrics.
func (s *Service) CreateHandler(c *gin.Context) {
	req, err := s.parseRequest(c)
	if err != nil {
		writeError(c, err)
		return
	}

	metric, err := s.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": metric})
}

// parseRequest reads the body under the size limit and decodes the envelope.
func (s *Service) parseRequest(c *gin.Context) (*v1.CreateMetricRequest, error) {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, err
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		s.metrics.RecordRejected(apperr.CodeBodyTooLarge)
		return nil, apperr.BodyTooLarge()
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var req v1.CreateMetricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		s.metrics.RecordRejected(apperr.CodeInvalidBody)
		return nil, apperr.InvalidBody()
	}

	return &req, nil
}

// writeError serializes err as a problem response.
func writeError(c *gin.Context, err error) {
	problem := apperr.Problem(err, c.Request.URL.RequestURI())
	c.JSON(problem.Status, problem)
}
