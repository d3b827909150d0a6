package errors

import "net/http"

// ErrorDetail is the error payload returned to API clients.
type ErrorDetail struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse is the envelope for all error responses.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// NewErrorResponse maps an error to its HTTP status code and response body.
// The hint, when present, replaces the raw error text so internals never
// leak to clients.
func NewErrorResponse(err error) (int, *ErrorResponse) {
	status := http.StatusInternalServerError
	switch {
	case IsValidation(err):
		status = http.StatusBadRequest
	case IsNotFound(err):
		status = http.StatusNotFound
	case IsAlreadyExists(err):
		status = http.StatusConflict
	case IsInvalidOperation(err):
		status = http.StatusConflict
	case Is(err, ErrPermissionDenied):
		status = http.StatusForbidden
	case IsGateway(err):
		status = http.StatusBadGateway
	}

	message := Hint(err)
	if message == "" {
		message = "An unexpected error occurred"
	}

	return status, &ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Message: message,
			Details: ReportableDetails(err),
		},
	}
}
