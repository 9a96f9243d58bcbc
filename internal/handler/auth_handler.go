package handlers

import (
	"net/http"

	"contentboard/internal/actor"
	"contentboard/internal/apperror"
	"contentboard/internal/models"
	"contentboard/internal/service"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type UserResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type AuthResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         UserResponse `json:"user"`
}

func newUserResponse(user *models.User) UserResponse {
	return UserResponse{
		UserID: user.UserID,
		Email:  user.Email,
		Role:   user.Role,
	}
}

func newAuthResponse(session *service.Session) AuthResponse {
	return AuthResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		User:         newUserResponse(session.User),
	}
}

// Register creates the account and logs it in right away.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	_, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	session, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, newAuthResponse(session), http.StatusCreated)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	writeJSON(w, newAuthResponse(session), http.StatusOK)
}

func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.AuthService.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		if apperror.IsNotFound(err) {
			WriteError(w, "Refresh token is expired or invalid", http.StatusUnauthorized)
			return
		}
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, newAuthResponse(session), http.StatusOK)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	a, _ := actor.FromContext(r.Context())

	if err := h.AuthService.Logout(r.Context(), a.UserID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
