package errors

import (
	stderrors "errors"
	"fmt"
)

// Stable machine-readable codes returned in the "type" field of 400 responses.
// Clients match on these verbatim.
const (
	CodeInvalidCreatedAt   = "INVALID_CREATED_AT"
	CodeInvalidMetrics     = "INVALID_METRICS"
	CodeInvalidType        = "INVALID_TYPE"
	CodeMissingField       = "MISSING_FIELD"
	CodeInvalidSuccess     = "INVALID_SUCCESS"
	CodeInvalidEventTime   = "INVALID_EVENT_TIME"
	CodeInvalidBlocked     = "INVALID_BLOCKED"
	CodeInvalidLatitude    = "INVALID_LATITUDE"
	CodeInvalidLongitude   = "INVALID_LONGITUDE"
	CodeInvalidCoordinates = "INVALID_COORDINATES"
	CodeInvalidAmount      = "INVALID_AMOUNT"
	CodeInvalidFollowed    = "INVALID_FOLLOWED"
	CodeInvalidHashtag     = "INVALID_HASHTAG"
	CodeInvalidDateRange   = "INVALID_DATE_RANGE"
	CodeInvalidBaseDate    = "INVALID_BASE_DATE"
	CodeInvalidAuth        = "INVALID_AUTH"
	CodeInvalidBody        = "INVALID_BODY"
	CodeBodyTooLarge       = "BODY_TOO_LARGE"
)

const (
	TitleValidation         = "Validation Error"
	TitleServiceUnavailable = "Service Unavailable Error"
	TitleInternal           = "Internal Server Error"
	TitleTooLarge           = "Payload Too Large"

	DetailServiceUnavailable = "Geolocation service unavailable"
	DetailInternal           = "Internal server error"
)

// ErrServiceUnavailable marks a failed call to an upstream dependency
// (currently only reverse geocoding). Handlers map it to 503.
var ErrServiceUnavailable = stderrors.New("service unavailable")

// ValidationError is a client-caused failure carrying a stable code, a human
// readable detail and the offending field. Status defaults to 400.
type ValidationError struct {
	Field  string
	Detail string
	Code   string
	Status int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s (%s)", e.Field, e.Detail, e.Code)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, detail, code string) *ValidationError {
	return &ValidationError{Field: field, Detail: detail, Code: code}
}

// MissingField reports an absent required payload field.
func MissingField(name string) *ValidationError {
	return NewValidationError("metrics", fmt.Sprintf("%q is required", name), CodeMissingField)
}

// WrongType reports a payload field of the wrong primitive type.
func WrongType(name, kind, code string) *ValidationError {
	return NewValidationError("metrics", fmt.Sprintf("%q must be a %s", name, kind), code)
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// ProblemResponse is the body of 4xx/5xx responses.
type ProblemResponse struct {
	Type        string `json:"type,omitempty"`
	Title       string `json:"title"`
	Status      int    `json:"status"`
	Detail      string `json:"detail"`
	Instance    string `json:"instance"`
	CustomField string `json:"custom-field,omitempty"`
}
