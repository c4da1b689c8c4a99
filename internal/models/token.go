package models

import (
	"strconv"
	"time"
)

// TokenKind distinguishes short-lived access tokens from refresh tokens.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

func (k TokenKind) Valid() bool {
	return k == TokenKindAccess || k == TokenKindRefresh
}

// ClaimIsAdmin is the custom claim surfaced from User.IsAdmin.
const ClaimIsAdmin = "is_admin"

// Claims is the decoded, verified content of a session token.
type Claims struct {
	Subject   string
	JTI       string
	Kind      TokenKind
	Fresh     bool
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Custom carries caller-supplied claims opaquely.
	Custom map[string]any
}

func (c *Claims) IsAdmin() bool {
	if c == nil || c.Custom == nil {
		return false
	}
	v, _ := c.Custom[ClaimIsAdmin].(bool)
	return v
}

// UserID parses the subject as a numeric user id.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// TokenPair is returned by a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
