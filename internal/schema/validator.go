package schema

import (
	"strings"

	v1 "github.com/aevon-lab/pulse/internal/api/v1"
	apperr "github.com/aevon-lab/pulse/internal/core/errors"
)

// Validate checks a create request and returns the metric it describes.
//
// Checks run in a fixed order and the first failure is returned:
// createdAt, metrics presence, type presence, the type's payload contract,
// and finally username.
func Validate(req *v1.CreateMetricRequest) (*v1.Metric, error) {
	raw, _ := req.CreatedAt.(string)
	createdAt, err := v1.ParseTimestamp(raw)
	if err != nil {
		return nil, apperr.NewValidationError("createdAt", "Invalid createdAt", apperr.CodeInvalidCreatedAt)
	}

	if req.Metrics == nil {
		return nil, apperr.NewValidationError("metrics", "Invalid metrics", apperr.CodeInvalidMetrics)
	}
	payload, ok := req.Metrics.(map[string]interface{})
	if !ok {
		return nil, apperr.NewValidationError("metrics", "Invalid metrics", apperr.CodeInvalidMetrics)
	}

	typeName, _ := req.Type.(string)
	if typeName == "" {
		return nil, apperr.NewValidationError("type", "Invalid type", apperr.CodeInvalidType)
	}
	metricType, ok := v1.ParseMetricType(typeName)
	if !ok {
		return nil, apperr.NewValidationError("type", "Invalid type", apperr.CodeInvalidType)
	}

	if err := ValidatePayload(metricType, payload); err != nil {
		return nil, err
	}

	username, _ := req.Username.(string)
	if strings.TrimSpace(username) == "" {
		return nil, apperr.NewValidationError("username", `"username" is required`, apperr.CodeMissingField)
	}

	return &v1.Metric{
		CreatedAt:    createdAt,
		CreatedAtRaw: raw,
		Type:         metricType,
		Username:     username,
		Metrics:      payload,
	}, nil
}

// ValidatePayload checks payload against the contract registered for t.
func ValidatePayload(t v1.MetricType, payload map[string]interface{}) *apperr.ValidationError {
	contract, ok := Contracts[t]
	if !ok {
		return apperr.NewValidationError("type", "Invalid type", apperr.CodeInvalidType)
	}

	for _, f := range contract.Fields {
		value, present := payload[f.Name]
		if !present {
			return apperr.MissingField(f.Name)
		}
		if !hasKind(value, f.Kind) {
			return apperr.WrongType(f.Name, f.Kind.String(), f.Code)
		}
		if f.Check != nil {
			if err := f.Check(value); err != nil {
				return err
			}
		}
	}

	if contract.Check != nil {
		if err := contract.Check(payload); err != nil {
			return err
		}
	}

	if contract.EmptyBody && len(payload) != 0 {
		return apperr.NewValidationError("metrics", "Should not need extra information", apperr.CodeInvalidMetrics)
	}

	return nil
}
