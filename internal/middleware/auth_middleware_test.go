package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/miguelmartinez95/rest-api-project/internal/config"
	"github.com/miguelmartinez95/rest-api-project/internal/models"
	"github.com/miguelmartinez95/rest-api-project/internal/repositories"
	"github.com/miguelmartinez95/rest-api-project/internal/services"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

func init() {
	utils.SilenceLogger()
}

type stubAuthorizer struct {
	claims *models.Claims
	err    error
	got    services.AuthRequirements
}

func (s *stubAuthorizer) Authorize(_ context.Context, _ string, req services.AuthRequirements) (*models.Claims, error) {
	s.got = req
	return s.claims, s.err
}

func protected(mw func(http.Handler) http.Handler) (http.Handler, *bool) {
	called := false
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"sub":   claims.Subject,
			"uid":   r.Context().Value(ContextKeyUserID).(string),
			"token": TokenFromContext(r.Context()),
		})
	}))
	return h, &called
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestAuthMiddleware_MissingBearer(t *testing.T) {
	for _, header := range []string{"", "Basic abc", "Bearer ", "bearer tok"} {
		h, called := protected(RequireAuth(&stubAuthorizer{claims: &models.Claims{Subject: "1"}}))
		rec := serve(h, header)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.Equal(t, utils.ErrCodeUnauthorized, errorCode(t, rec))
		assert.False(t, *called)
	}
}

func TestAuthMiddleware_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{utils.ErrTokenMalformed, http.StatusUnauthorized, utils.ErrCodeInvalidToken},
		{utils.ErrTokenInvalidSignature, http.StatusUnauthorized, utils.ErrCodeInvalidToken},
		{utils.ErrTokenExpired, http.StatusUnauthorized, utils.ErrCodeTokenExpired},
		{utils.ErrTokenRevoked, http.StatusUnauthorized, utils.ErrCodeTokenRevoked},
		{utils.ErrWrongTokenKind, http.StatusUnprocessableEntity, utils.ErrCodeWrongTokenKind},
		{utils.ErrStaleCredential, http.StatusUnauthorized, utils.ErrCodeFreshTokenRequired},
		{utils.ErrForbidden, http.StatusForbidden, utils.ErrCodeForbidden},
		{utils.NewInternalError("store down", nil), http.StatusInternalServerError, utils.ErrCodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			h, called := protected(RequireAuth(&stubAuthorizer{err: tc.err}))
			rec := serve(h, "Bearer tok")

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, errorCode(t, rec))
			assert.False(t, *called)
		})
	}
}

func TestAuthMiddleware_PassesRequirements(t *testing.T) {
	cases := map[string]struct {
		mw   func(Authorizer) mux.MiddlewareFunc
		want services.AuthRequirements
	}{
		"auth":    {RequireAuth, services.AuthRequirements{}},
		"fresh":   {RequireFresh, services.AuthRequirements{RequireFresh: true}},
		"admin":   {RequireAdmin, services.AuthRequirements{RequireAdmin: true}},
		"refresh": {RequireRefresh, services.AuthRequirements{Kind: models.TokenKindRefresh}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			stub := &stubAuthorizer{claims: &models.Claims{Subject: "7"}}
			h, called := protected(tc.mw(stub))
			rec := serve(h, "Bearer abc.def.ghi")

			require.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, *called)
			assert.Equal(t, tc.want, stub.got)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "7", body["sub"])
			assert.Equal(t, "7", body["uid"])
			assert.Equal(t, "abc.def.ghi", body["token"])
		})
	}
}

// End to end against the real session service: login, use, logout, reuse.
func TestAuthMiddleware_WithSessionService(t *testing.T) {
	hash, err := utils.HashPassword("correct-pw", bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecretKey:       []byte("0123456789abcdef0123456789abcdef"),
		AccessTokenExpiry:  time.Minute,
		RefreshTokenExpiry: time.Hour,
		BcryptCost:         bcrypt.MinCost,
	}
	users := singleUserRepo{user: &models.User{ID: 1, Username: "alice", PasswordHash: hash}}
	sessions := services.NewSessionService(users, services.NewJWTService(cfg.JWTSecretKey),
		repositories.NewMemoryRevocationStore(), cfg)

	pair, err := sessions.Login(context.Background(), "alice", "correct-pw")
	require.NoError(t, err)

	h, _ := protected(RequireFresh(sessions))
	assert.Equal(t, http.StatusOK, serve(h, "Bearer "+pair.AccessToken).Code)

	rec := serve(h, "Bearer "+pair.RefreshToken)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	require.NoError(t, sessions.Logout(context.Background(), pair.AccessToken, ""))
	rec = serve(h, "Bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, utils.ErrCodeTokenRevoked, errorCode(t, rec))
}

type singleUserRepo struct {
	repositories.UserRepository
	user *models.User
}

func (r singleUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if username == r.user.Username {
		return r.user, nil
	}
	return nil, nil
}
