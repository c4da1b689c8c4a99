package services

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/miguelmartinez95/rest-api-project/internal/config"
	"github.com/miguelmartinez95/rest-api-project/internal/metrics"
	"github.com/miguelmartinez95/rest-api-project/internal/models"
	"github.com/miguelmartinez95/rest-api-project/internal/repositories"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

// AuthRequirements are the per-route conditions a token must satisfy.
// A zero Kind means an access token is expected.
type AuthRequirements struct {
	Kind         models.TokenKind
	RequireFresh bool
	RequireAdmin bool
}

// SessionService is the authentication state machine:
// Unauthenticated -> Authenticated(fresh) -> Authenticated(refreshed) -> Revoked.
type SessionService interface {
	// Login verifies credentials and issues a fresh access token plus a
	// refresh token. Unknown users and bad passwords are indistinguishable.
	Login(ctx context.Context, username, password string) (*models.TokenPair, error)

	// Refresh exchanges a refresh token for a non-fresh access token. When
	// rotation is enabled the presented refresh token is revoked and a new
	// one is returned in the pair; otherwise RefreshToken is empty.
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)

	Authorize(ctx context.Context, tokenString string, req AuthRequirements) (*models.Claims, error)

	// Logout revokes tokenString. A non-empty refreshToken is revoked too.
	Logout(ctx context.Context, tokenString string, refreshToken string) error
}

type sessionService struct {
	userRepo repositories.UserRepository
	jwt      JWTService
	revoked  repositories.RevocationStore
	cfg      *config.Config
}

func NewSessionService(
	userRepo repositories.UserRepository,
	jwtService JWTService,
	revoked repositories.RevocationStore,
	cfg *config.Config,
) SessionService {
	return &sessionService{
		userRepo: userRepo,
		jwt:      jwtService,
		revoked:  revoked,
		cfg:      cfg,
	}
}

// ---------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------

func (s *sessionService) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		return nil, utils.NewInternalError("Login failed", err)
	}
	if user == nil {
		utils.BurnPasswordCheck(password, s.cfg.BcryptCost)
		metrics.Logins.WithLabelValues("invalid").Inc()
		return nil, utils.ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		metrics.Logins.WithLabelValues("invalid").Inc()
		return nil, utils.ErrInvalidCredentials
	}

	subject := strconv.FormatInt(user.ID, 10)
	custom := map[string]any{models.ClaimIsAdmin: user.IsAdmin}

	access, _, err := s.issue(subject, models.TokenKindAccess, true, s.cfg.AccessTokenExpiry, custom)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.issue(subject, models.TokenKindRefresh, false, s.cfg.RefreshTokenExpiry, custom)
	if err != nil {
		return nil, err
	}

	metrics.Logins.WithLabelValues("success").Inc()
	utils.Logger.WithField("user_id", user.ID).Info("User logged in")
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ---------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------

func (s *sessionService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	claims, err := s.validate(ctx, refreshToken, models.TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	access, _, err := s.issue(claims.Subject, models.TokenKindAccess, false, s.cfg.AccessTokenExpiry, claims.Custom)
	if err != nil {
		return nil, err
	}
	pair := &models.TokenPair{AccessToken: access}

	if s.cfg.LDFlag_RotateRefreshTokens {
		newRefresh, _, err := s.issue(claims.Subject, models.TokenKindRefresh, false, s.cfg.RefreshTokenExpiry, claims.Custom)
		if err != nil {
			return nil, err
		}
		// the presented token is single-use: only the request that inserts
		// its jti gets the new pair
		claimed, err := s.revoke(ctx, claims)
		if err != nil {
			return nil, err
		}
		if !claimed {
			utils.Logger.WithField("subject", claims.Subject).Warn("Refresh token reused during rotation")
			return nil, utils.ErrTokenRevoked
		}
		pair.RefreshToken = newRefresh
	}

	return pair, nil
}

// ---------------------------------------------------------------------
// Authorize
// ---------------------------------------------------------------------

func (s *sessionService) Authorize(ctx context.Context, tokenString string, req AuthRequirements) (*models.Claims, error) {
	kind := req.Kind
	if kind == "" {
		kind = models.TokenKindAccess
	}

	claims, err := s.validate(ctx, tokenString, kind)
	if err != nil {
		return nil, err
	}
	if req.RequireFresh && !claims.Fresh {
		return nil, utils.ErrStaleCredential
	}
	if req.RequireAdmin && !claims.IsAdmin() {
		return nil, utils.ErrForbidden
	}
	return claims, nil
}

// ---------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------

func (s *sessionService) Logout(ctx context.Context, tokenString string, refreshToken string) error {
	claims, err := s.jwt.Decode(tokenString)
	if err != nil {
		return err
	}

	// validate the paired token up front so a bad one revokes nothing
	var paired *models.Claims
	if refreshToken != "" {
		paired, err = s.jwt.Decode(refreshToken)
		switch {
		case errors.Is(err, utils.ErrTokenExpired):
			paired = nil
		case err != nil:
			return err
		case paired.Kind != models.TokenKindRefresh:
			return utils.ErrWrongTokenKind
		case paired.Subject != claims.Subject:
			return utils.ErrForbidden
		}
	}

	if _, err := s.revoke(ctx, claims); err != nil {
		return err
	}
	if paired != nil {
		if _, err := s.revoke(ctx, paired); err != nil {
			return err
		}
	}

	utils.Logger.WithField("subject", claims.Subject).Info("Session logged out")
	return nil
}

// ---------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------

// validate decodes the token, then checks kind before the blocklist so a
// wrong-kind token is always reported as such.
func (s *sessionService) validate(ctx context.Context, tokenString string, kind models.TokenKind) (*models.Claims, error) {
	claims, err := s.jwt.Decode(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, utils.ErrWrongTokenKind
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.JTI)
	if err != nil {
		return nil, &utils.AppError{
			StatusCode: http.StatusInternalServerError,
			Code:       utils.ErrCodeInternal,
			Message:    "Could not verify token status",
			Err:        err,
		}
	}
	if revoked {
		return nil, utils.ErrTokenRevoked
	}
	return claims, nil
}

func (s *sessionService) issue(
	subject string,
	kind models.TokenKind,
	fresh bool,
	ttl time.Duration,
	custom map[string]any,
) (string, *models.Claims, error) {
	token, claims, err := s.jwt.Issue(subject, kind, fresh, ttl, custom)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to issue %s token", kind)
		return "", nil, utils.NewInternalError("Token generation failed", err)
	}
	metrics.TokensIssued.WithLabelValues(string(kind), strconv.FormatBool(claims.Fresh)).Inc()
	return token, claims, nil
}

// revoke reports whether this call was the one that blocklisted the jti.
func (s *sessionService) revoke(ctx context.Context, claims *models.Claims) (bool, error) {
	added, err := s.revoked.Revoke(ctx, claims.JTI, claims.ExpiresAt)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to blocklist token")
		return false, utils.NewInternalError("Failed to revoke token", err)
	}
	if added {
		metrics.Revocations.Inc()
	}
	return added, nil
}
