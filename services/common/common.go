package common

import (
	"net/http"

	"github.com/pkg/errors"
)

type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// HTTPStatus maps an error of the import taxonomy to a response status.
func HTTPStatus(err error) int {
	var tre *TokenRefreshError
	var eae *ExternalAPIError
	var pe *PersistenceError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNoSelection),
		errors.Is(err, ErrNoTeam),
		errors.Is(err, ErrMissingTarget):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotLinked),
		errors.Is(err, ErrCredentialNotFound),
		errors.Is(err, ErrUploadsNotFound),
		errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrDuplicateAssignment):
		return http.StatusConflict
	case errors.As(err, &tre), errors.As(err, &eae):
		return http.StatusBadGateway
	case errors.As(err, &pe):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// MakeErrorBody renders err for API clients. Upstream payloads of token
// refresh failures are passed through as details.
func MakeErrorBody(err error) ErrorBody {
	b := ErrorBody{Error: err.Error(), Code: Code(err)}
	var tre *TokenRefreshError
	if errors.As(err, &tre) {
		b.Details = tre.Payload
	}
	return b
}

// Code returns a stable machine readable name for err.
func Code(err error) string {
	var tre *TokenRefreshError
	var eae *ExternalAPIError
	var pe *PersistenceError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotLinked):
		return "not_linked"
	case errors.Is(err, ErrCredentialNotFound):
		return "credential_not_found"
	case errors.Is(err, ErrUploadsNotFound):
		return "uploads_collection_not_found"
	case errors.Is(err, ErrNoSelection):
		return "no_selection"
	case errors.Is(err, ErrNoTeam):
		return "no_team"
	case errors.Is(err, ErrMissingTarget):
		return "missing_target"
	case errors.Is(err, ErrDuplicateAssignment):
		return "duplicate_assignment"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.As(err, &tre):
		return "token_refresh"
	case errors.As(err, &eae):
		return "external_api"
	case errors.As(err, &pe):
		return "persistence"
	}
	return "internal"
}
