package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/rentease/internal/domain"
	"github.com/yourorg/rentease/internal/service"
)

// UserResponse is the public shape of a user; the password hash never leaves
// the service layer.
type UserResponse struct {
	ID               int64  `json:"id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	IsActive         bool   `json:"is_active"`
	ProfilePictureID *int64 `json:"profile_picture_id,omitempty"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Username:         u.Username,
		Email:            u.Email,
		Role:             string(u.Role),
		IsActive:         u.IsActive,
		ProfilePictureID: u.ProfilePictureID,
	}
}

// AuthHandler handles registration, login and password changes
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, domain.Validation("invalid request body"))
		return
	}

	user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// CreateTenant handles POST /api/users/tenants
func (h *AuthHandler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, domain.Validation("invalid request body"))
		return
	}

	user, err := h.authService.RegisterTenant(r.Context(), actor, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        UserResponse `json:"user"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, domain.Validation("invalid request body"))
		return
	}

	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}

	result, err := h.authService.Login(r.Context(), identifier, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresIn:   result.ExpiresIn,
		User:        toUserResponse(result.User),
	})
}

// ChangePasswordRequest carries old and new credentials
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, domain.Validation("invalid request body"))
		return
	}

	if err := h.authService.ChangePassword(r.Context(), actor, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}
