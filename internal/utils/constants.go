package utils

const (
	OrganizationName = "Stores REST API"

	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"

	// TokenIssuer identifies the service that issues all access/refresh tokens.
	TokenIssuer = "stores-api"
)
