package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	// token decoding
	ErrTokenMalformed        = errors.New("token_malformed")
	ErrTokenInvalidSignature = errors.New("token_invalid_signature")
	ErrTokenExpired          = errors.New("token_expired")

	// session state
	ErrTokenRevoked       = errors.New("token_revoked")
	ErrWrongTokenKind     = errors.New("wrong_token_kind")
	ErrStaleCredential    = errors.New("fresh_token_required")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrMissingToken       = errors.New("missing_token")

	// persistence
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	ErrTagInUse = errors.New("tag_in_use")
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewNotFoundError(message string) *AppError {
	return &AppError{
		StatusCode: http.StatusNotFound,
		Code:       ErrCodeNotFound,
		Message:    message,
		Err:        ErrNotFound,
	}
}

func NewConflictError(message string, err error) *AppError {
	return &AppError{
		StatusCode: http.StatusConflict,
		Code:       ErrCodeConflict,
		Message:    message,
		Err:        err,
	}
}

func NewBadRequestError(message string, err error) *AppError {
	return &AppError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrCodeValidation,
		Message:    message,
		Err:        err,
	}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrCodeInternal,
		Message:    message,
		Err:        err,
	}
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
		return
	}
	status, code, msg := StatusForAuthError(err)
	RespondErrorWithCode(w, status, code, msg, nil, err)
}

// StatusForAuthError translates a session error into its boundary response.
// Anything it does not recognise becomes a 500.
func StatusForAuthError(err error) (int, string, string) {
	switch {
	case errors.Is(err, ErrMissingToken):
		return http.StatusUnauthorized, ErrCodeUnauthorized, "Missing Authorization header"
	case errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized, ErrCodeTokenExpired, "Token expired"
	case errors.Is(err, ErrTokenMalformed), errors.Is(err, ErrTokenInvalidSignature):
		return http.StatusUnauthorized, ErrCodeInvalidToken, "Invalid token"
	case errors.Is(err, ErrTokenRevoked):
		return http.StatusUnauthorized, ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, ErrWrongTokenKind):
		return http.StatusUnprocessableEntity, ErrCodeWrongTokenKind, "Wrong token type"
	case errors.Is(err, ErrStaleCredential):
		return http.StatusUnauthorized, ErrCodeFreshTokenRequired, "Fresh token required"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, ErrCodeForbidden, "Insufficient permissions"
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid credentials"
	default:
		return http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred"
	}
}
