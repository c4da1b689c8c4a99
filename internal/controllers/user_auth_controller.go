package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/miguelmartinez95/rest-api-project/internal/dtos"
	"github.com/miguelmartinez95/rest-api-project/internal/middleware"
	"github.com/miguelmartinez95/rest-api-project/internal/services"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

type UserAuthController struct {
	users    services.UserService
	sessions services.SessionService
}

func NewUserAuthController(users services.UserService, sessions services.SessionService) *UserAuthController {
	return &UserAuthController{users: users, sessions: sessions}
}

// ---------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------

func (c *UserAuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := c.users.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.MessageResponse{Message: "User created successfully."})
}

// ---------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------

func (c *UserAuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := c.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh sits behind RequireRefresh, so the raw token in context is a
// live refresh token.
func (c *UserAuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	pair, err := c.sessions.Refresh(r.Context(), middleware.TokenFromContext(r.Context()))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.RefreshTokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (c *UserAuthController) Logout(w http.ResponseWriter, r *http.Request) {
	var req dtos.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}

	if err := c.sessions.Logout(r.Context(), middleware.TokenFromContext(r.Context()), req.RefreshToken); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Successfully logged out"})
}

// ---------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------

func (c *UserAuthController) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	user, err := c.users.Get(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

func (c *UserAuthController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	claims, _ := middleware.ClaimsFromContext(r.Context())
	if err := c.users.Delete(r.Context(), claims, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "User deleted."})
}
