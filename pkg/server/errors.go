package server

import (
	"encoding/json"
	"errors"
	"net/http"

	ferrors "github.com/matzehuels/orthoflow/pkg/errors"
)

// APIError is the body of every error response, wrapped in {"error": ...}.
type APIError struct {
	Status    int    `json:"-"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}

// statusFor maps an error code to an HTTP status.
func statusFor(code ferrors.Code) int {
	switch code {
	case ferrors.ErrCodeInvalidInput, ferrors.ErrCodeInvalidFormat, ferrors.ErrCodeInvalidDirection,
		ferrors.ErrCodeInvalidShape, ferrors.ErrCodeInvalidOptions, ferrors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case ferrors.ErrCodeNotFound, ferrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case ferrors.ErrCodeLayoutFailed:
		return http.StatusUnprocessableEntity
	case ferrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// toAPIError converts any error into an APIError. Uncoded errors are
// internal and their text is not exposed.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &APIError{
			Status:  http.StatusRequestEntityTooLarge,
			Code:    string(ferrors.ErrCodeInvalidInput),
			Message: "request body too large",
		}
	}

	code := ferrors.GetCode(err)
	if code == "" {
		return &APIError{
			Status:  http.StatusInternalServerError,
			Code:    string(ferrors.ErrCodeInternal),
			Message: "an unexpected error occurred",
		}
	}
	return &APIError{
		Status:  statusFor(code),
		Code:    string(code),
		Message: ferrors.UserMessage(err),
	}
}

// writeError logs err and writes it as JSON.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	apiErr.RequestID = RequestID(r.Context())

	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", apiErr.RequestID, "code", apiErr.Code, "error", err)
	} else {
		s.logger.Debug("request rejected", "request_id", apiErr.RequestID, "code", apiErr.Code, "error", err)
	}
	writeJSON(w, apiErr.Status, map[string]*APIError{"error": apiErr})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
