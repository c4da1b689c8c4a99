package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/miguelmartinez95/rest-api-project/internal/models"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

// ---------------------------------------------------------------------
// JWTService interface
// ---------------------------------------------------------------------

// JWTService is the token codec: it signs claims into a compact JWT and
// verifies them back. It holds no state beyond the signing key.
type JWTService interface {
	Issue(
		subject string,
		kind models.TokenKind,
		fresh bool,
		ttl time.Duration,
		custom map[string]any,
	) (string, *models.Claims, error)

	Decode(tokenString string) (*models.Claims, error)
}

// Registered and session claim names; custom claims may not reuse them.
const (
	claimIssuer    = "iss"
	claimSubject   = "sub"
	claimExpiresAt = "exp"
	claimIssuedAt  = "iat"
	claimNotBefore = "nbf"
	claimTokenID   = "jti"
	claimType      = "type"
	claimFresh     = "fresh"
)

var reservedClaims = map[string]struct{}{
	claimIssuer: {}, claimSubject: {}, claimExpiresAt: {}, claimIssuedAt: {},
	claimNotBefore: {}, claimTokenID: {}, claimType: {}, claimFresh: {},
}

// ---------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------

type jwtService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTService(secret []byte) JWTService {
	return NewJWTServiceWithClock(secret, time.Now)
}

// NewJWTServiceWithClock lets tests pin the time used for both issuing
// and validating.
func NewJWTServiceWithClock(secret []byte, now func() time.Time) JWTService {
	return &jwtService{
		secret: secret,
		issuer: utils.TokenIssuer,
		now:    now,
	}
}

func (j *jwtService) Issue(
	subject string,
	kind models.TokenKind,
	fresh bool,
	ttl time.Duration,
	custom map[string]any,
) (string, *models.Claims, error) {
	if !kind.Valid() {
		return "", nil, errors.New("unknown token kind")
	}
	if subject == "" {
		return "", nil, errors.New("empty subject")
	}
	// refresh tokens never carry freshness
	if kind == models.TokenKindRefresh {
		fresh = false
	}

	now := j.now()
	iat := jwt.NewNumericDate(now)
	exp := jwt.NewNumericDate(now.Add(ttl))
	tokenID := uuid.NewString()

	claims := jwt.MapClaims{}
	extra := make(map[string]any, len(custom))
	for k, v := range custom {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		claims[k] = v
		extra[k] = v
	}
	claims[claimIssuer] = j.issuer
	claims[claimSubject] = subject
	claims[claimIssuedAt] = iat
	claims[claimNotBefore] = iat
	claims[claimExpiresAt] = exp
	claims[claimTokenID] = tokenID
	claims[claimType] = string(kind)
	claims[claimFresh] = fresh

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", nil, err
	}

	return signed, &models.Claims{
		Subject:   subject,
		JTI:       tokenID,
		Kind:      kind,
		Fresh:     fresh,
		IssuedAt:  iat.Time,
		ExpiresAt: exp.Time,
		Custom:    extra,
	}, nil
}

// Decode verifies the signature first, then the registered claims. Expiry is
// strict: a token whose exp equals the current second is already expired.
func (j *jwtService) Decode(tokenString string) (*models.Claims, error) {
	token, err := jwt.Parse(
		tokenString,
		func(token *jwt.Token) (any, error) {
			return j.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, classifyJWTError(err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, utils.ErrTokenMalformed
	}

	sub, _ := mc[claimSubject].(string)
	jti, _ := mc[claimTokenID].(string)
	kind := models.TokenKind(stringClaim(mc, claimType))
	if sub == "" || jti == "" || !kind.Valid() {
		return nil, utils.ErrTokenMalformed
	}
	fresh, _ := mc[claimFresh].(bool)

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, utils.ErrTokenMalformed
	}
	var issuedAt time.Time
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		issuedAt = iat.Time
	}

	custom := make(map[string]any)
	for k, v := range mc {
		if _, reserved := reservedClaims[k]; !reserved {
			custom[k] = v
		}
	}

	return &models.Claims{
		Subject:   sub,
		JTI:       jti,
		Kind:      kind,
		Fresh:     fresh && kind == models.TokenKindAccess,
		IssuedAt:  issuedAt,
		ExpiresAt: exp.Time,
		Custom:    custom,
	}, nil
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return utils.ErrTokenInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return utils.ErrTokenExpired
	default:
		return utils.ErrTokenMalformed
	}
}

func stringClaim(mc jwt.MapClaims, key string) string {
	s, _ := mc[key].(string)
	return s
}
