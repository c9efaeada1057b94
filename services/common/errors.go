package common

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotLinked           = errors.New("team has no linked channel")
	ErrCredentialNotFound  = errors.New("channel credential not found")
	ErrUploadsNotFound     = errors.New("channel uploads collection not found")
	ErrNoSelection         = errors.New("no video selected")
	ErrNoTeam              = errors.New("no team selected")
	ErrMissingTarget       = errors.New("missing assignment target")
	ErrDuplicateAssignment = errors.New("video already assigned")
	ErrSessionNotFound     = errors.New("import session not found")
	ErrUnauthorized        = errors.New("unauthorized")
)

// Validation wraps ErrValidation with the name of the missing input.
func Validation(field string) error {
	return errors.Wrapf(ErrValidation, "%v is required", field)
}

// TokenRefreshError is returned when the OAuth token endpoint rejects a refresh.
type TokenRefreshError struct {
	Status  int
	Payload string
	cause   error
}

func NewTokenRefreshError(status int, payload string, cause error) *TokenRefreshError {
	return &TokenRefreshError{
		Status:  status,
		Payload: payload,
		cause:   cause,
	}
}

func (e *TokenRefreshError) Error() string {
	if e.Payload != "" {
		return fmt.Sprintf("token refresh failed (status: %v): %v", e.Status, e.Payload)
	}
	return fmt.Sprintf("token refresh failed (status: %v): %v", e.Status, e.cause)
}

func (e *TokenRefreshError) Unwrap() error {
	return e.cause
}

// ExternalAPIError is a failed call to the video hosting API. Status is 0
// when no response was received.
type ExternalAPIError struct {
	Status  int
	Message string
}

func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("external api error (status: %v): %v", e.Status, e.Message)
}

type PersistenceError struct {
	cause error
}

func NewPersistenceError(cause error) *PersistenceError {
	return &PersistenceError{cause: cause}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist assignment: %v", e.cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.cause
}
