package handlers

import (
	"net/http"
	"time"

	"jobboard/internal/app"
	"jobboard/internal/domain/user"
	"jobboard/internal/http/middleware"
	"jobboard/internal/http/response"
)

type AuthHandler struct {
	auth *app.AuthService
}

func NewAuthHandler(auth *app.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type tokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	User         *user.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	ExpiresAt    string     `json:"expiresAt"`
}

func newAuthResponse(result *app.AuthResult) authResponse {
	return authResponse{
		User:         result.User,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		ExpiresAt:    result.Tokens.ExpiresAt.Format(time.RFC3339),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req app.RegisterInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	result, err := h.auth.Register(r.Context(), req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusCreated, "registration successful", newAuthResponse(result))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req app.LoginInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	result, err := h.auth.Login(r.Context(), req, middleware.ClientIP(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "login successful", newAuthResponse(result))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	result, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, newAuthResponse(result))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	account, err := h.auth.Me(r.Context(), actor.ID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"user": account})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req app.ForgotPasswordInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), req); err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "if the email is registered, a reset link has been sent", nil)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req app.ResetPasswordInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := h.auth.ResetPassword(r.Context(), req); err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "password has been reset", nil)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.ChangePasswordInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := h.auth.ChangePassword(r.Context(), actor.ID, req); err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "password changed", nil)
}
