package errors

import (
	stderrors "errors"
	"net/http"
)

// InvalidBody reports a request body that is not a JSON object.
func InvalidBody() *ValidationError {
	return NewValidationError("body", "Invalid JSON body", CodeInvalidBody)
}

// BodyTooLarge reports a request body above the configured limit.
func BodyTooLarge() *ValidationError {
	ve := NewValidationError("body", "Request body exceeds maximum allowed size", CodeBodyTooLarge)
	ve.Status = http.StatusRequestEntityTooLarge
	return ve
}

// Problem maps err to its HTTP status and response body.
// instance is the request URI the error occurred on.
//
// Unknown errors become a generic 500 so that no internal detail reaches the client.
func Problem(err error, instance string) ProblemResponse {
	if ve, ok := AsValidation(err); ok {
		status := ve.Status
		title := TitleValidation
		if status == 0 {
			status = http.StatusBadRequest
		}
		if status == http.StatusRequestEntityTooLarge {
			title = TitleTooLarge
		}
		return ProblemResponse{
			Type:        ve.Code,
			Title:       title,
			Status:      status,
			Detail:      ve.Detail,
			Instance:    instance,
			CustomField: ve.Field,
		}
	}

	if stderrors.Is(err, ErrServiceUnavailable) {
		return ProblemResponse{
			Title:    TitleServiceUnavailable,
			Status:   http.StatusServiceUnavailable,
			Detail:   DetailServiceUnavailable,
			Instance: instance,
		}
	}

	return ProblemResponse{
		Title:    TitleInternal,
		Status:   http.StatusInternalServerError,
		Detail:   DetailInternal,
		Instance: instance,
	}
}
