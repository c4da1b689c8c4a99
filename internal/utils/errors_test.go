package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	SilenceLogger()
}

func TestStatusForAuthError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{ErrMissingToken, http.StatusUnauthorized, ErrCodeUnauthorized},
		{ErrTokenMalformed, http.StatusUnauthorized, ErrCodeInvalidToken},
		{ErrTokenInvalidSignature, http.StatusUnauthorized, ErrCodeInvalidToken},
		{ErrTokenExpired, http.StatusUnauthorized, ErrCodeTokenExpired},
		{ErrTokenRevoked, http.StatusUnauthorized, ErrCodeTokenRevoked},
		{ErrWrongTokenKind, http.StatusUnprocessableEntity, ErrCodeWrongTokenKind},
		{ErrStaleCredential, http.StatusUnauthorized, ErrCodeFreshTokenRequired},
		{ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
		{ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeInvalidCredentials},
		{fmt.Errorf("decode: %w", ErrTokenExpired), http.StatusUnauthorized, ErrCodeTokenExpired},
		{errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		status, code, msg := StatusForAuthError(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
		assert.NotEmpty(t, msg)
	}
}

func TestHandleAppError_DoesNotLeakCause(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleAppError(rec, NewInternalError("Failed to create user", errors.New("pq: relation users does not exist")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeInternal, body.Code)
	assert.Equal(t, "Failed to create user", body.Message)
	assert.NotContains(t, rec.Body.String(), "relation")
}

func TestHandleAppError_WrappedAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleAppError(rec, fmt.Errorf("outer: %w", NewNotFoundError("Item not found.")))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	HandleAppError(rec, ErrForbidden)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NewBadRequestError("in use", ErrTagInUse)
	assert.ErrorIs(t, err, ErrTagInUse)
	assert.Equal(t, ErrTagInUse.Error(), err.Error())
	assert.Equal(t, "missing", (&AppError{Message: "missing"}).Error())
}
