package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"contentboard/internal/actor"
	"contentboard/internal/service"
)

type UpdateUserRequest struct {
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *string `json:"role" validate:"omitempty,oneof=user admin"`
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, newUserResponse(user), http.StatusOK)
}

// UpdateUser changes email and, for admins, role.
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if a, _ := actor.FromContext(r.Context()); req.Role != nil && !a.IsAdmin() {
		WriteError(w, "Only admins can change roles", http.StatusForbidden)
		return
	}

	user, err := h.UserService.UpdateUser(r.Context(), service.UpdateUserInput{
		UserID: mux.Vars(r)["id"],
		Email:  req.Email,
		Role:   req.Role,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, newUserResponse(user), http.StatusOK)
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	a, ok := actor.FromContext(r.Context())
	if !ok {
		WriteError(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	user, err := h.UserService.GetUser(r.Context(), a.UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, newUserResponse(user), http.StatusOK)
}
