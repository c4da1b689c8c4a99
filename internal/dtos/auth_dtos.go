package dtos

// ----------------------
// Register
// ----------------------

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1,max=80"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=1"`
}

// ----------------------
// Login
// ----------------------

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=80"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ----------------------
// Refresh Token
// ----------------------

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ----------------------
// Logout
// ----------------------

// LogoutRequest is optional; a body carrying the refresh token revokes it
// alongside the access token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
