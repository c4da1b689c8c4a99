package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/miguelmartinez95/rest-api-project/internal/metrics"
	"github.com/miguelmartinez95/rest-api-project/internal/models"
	"github.com/miguelmartinez95/rest-api-project/internal/services"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

type contextKey string

const (
	ContextKeyUserID = contextKey("userID")
	ContextKeyClaims = contextKey("claims")
	ContextKeyToken  = contextKey("rawToken")
)

// Authorizer validates a raw token against per-route requirements.
// services.SessionService satisfies it.
type Authorizer interface {
	Authorize(ctx context.Context, token string, req services.AuthRequirements) (*models.Claims, error)
}

// AuthMiddleware rejects the request before the handler runs unless the
// bearer token satisfies req. On success the claims, the subject and the
// raw token are stored in the request context.
func AuthMiddleware(authorizer Authorizer, req services.AuthRequirements) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := ExtractBearerToken(r)
			if err != nil {
				metrics.AuthDecisions.WithLabelValues("missing").Inc()
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing Authorization header", nil, err,
				)
				return
			}

			claims, err := authorizer.Authorize(r.Context(), tokenStr, req)
			if err != nil {
				metrics.AuthDecisions.WithLabelValues(outcome(err)).Inc()
				utils.HandleAppError(w, err)
				return
			}
			metrics.AuthDecisions.WithLabelValues("allowed").Inc()

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			ctx = context.WithValue(ctx, ContextKeyUserID, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyToken, tokenStr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAuth(a Authorizer) mux.MiddlewareFunc {
	return AuthMiddleware(a, services.AuthRequirements{})
}

func RequireFresh(a Authorizer) mux.MiddlewareFunc {
	return AuthMiddleware(a, services.AuthRequirements{RequireFresh: true})
}

func RequireAdmin(a Authorizer) mux.MiddlewareFunc {
	return AuthMiddleware(a, services.AuthRequirements{RequireAdmin: true})
}

// RequireRefresh accepts only refresh tokens.
func RequireRefresh(a Authorizer) mux.MiddlewareFunc {
	return AuthMiddleware(a, services.AuthRequirements{Kind: models.TokenKindRefresh})
}

// ExtractBearerToken reads the token from "Authorization: Bearer <token>".
func ExtractBearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", utils.ErrMissingToken
	}
	tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	if tok == "" {
		return "", utils.ErrMissingToken
	}
	return tok, nil
}

func ClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	c, ok := ctx.Value(ContextKeyClaims).(*models.Claims)
	return c, ok && c != nil
}

func TokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(ContextKeyToken).(string)
	return t
}

func outcome(err error) string {
	switch {
	case errors.Is(err, utils.ErrTokenExpired):
		return "expired"
	case errors.Is(err, utils.ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, utils.ErrWrongTokenKind):
		return "wrong_kind"
	case errors.Is(err, utils.ErrStaleCredential):
		return "stale"
	case errors.Is(err, utils.ErrForbidden):
		return "forbidden"
	case errors.Is(err, utils.ErrTokenMalformed), errors.Is(err, utils.ErrTokenInvalidSignature):
		return "invalid"
	default:
		return "error"
	}
}
