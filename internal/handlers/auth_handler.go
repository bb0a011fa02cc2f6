package handlers

import (
	"net/http"

	"typeb/internal/models"
	"typeb/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	emailService         *service.EmailService
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, emailService *service.EmailService, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		emailService:         emailService,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Timezone    string `json:"timezone"`
	InviteCode  string `json:"invite_code"`
	Role        string `json:"role"`
}

// Register creates a new account and returns the user with a token pair
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.DisplayName, req.Timezone, req.InviteCode, models.Role(req.Role))
	if err != nil {
		respondError(w, r, err)
		return
	}

	pair, _, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusCreated, map[string]interface{}{
		"user":   newUserView(user),
		"tokens": newTokenView(pair),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and returns a token pair
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}

	pair, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"user":   newUserView(user),
		"tokens": newTokenView(pair),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates a refresh token for a new pair
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "refresh_token is required"})
		return
	}

	pair, user, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"user":   newUserView(user),
		"tokens": newTokenView(pair),
	})
}

// Logout revokes the presented refresh token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "refresh_token is required"})
		return
	}

	if err := h.authService.Logout(req.RefreshToken); err != nil {
		respondError(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "logged out")
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	user, err := h.authService.GetUser(claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, newUserView(user))
}

type updateProfileRequest struct {
	DisplayName          string `json:"display_name"`
	Timezone             string `json:"timezone"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

// UpdateProfile updates the authenticated user's profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}

	user, err := h.authService.UpdateProfile(claims.UserID, req.DisplayName, req.Timezone, req.NotificationsEnabled)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, newUserView(user))
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword starts the password reset flow. The response is identical
// whether or not the address exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "email is required"})
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), h.emailService, req.Email); err != nil {
		respondError(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "if that address exists, a reset email has been sent")
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword completes the reset flow with a token from the email
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "token is required"})
		return
	}

	if err := h.authService.ResetPassword(req.Token, req.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "password updated")
}
