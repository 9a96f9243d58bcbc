package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

type TagRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (h *Handlers) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.TagService.ListTags(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, tags, http.StatusOK)
}

func (h *Handlers) GetTag(w http.ResponseWriter, r *http.Request) {
	tag, err := h.TagService.GetTag(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, tag, http.StatusOK)
}

func (h *Handlers) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	tag, err := h.TagService.CreateTag(r.Context(), req.Name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, tag, http.StatusCreated)
}

func (h *Handlers) UpdateTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	tag, err := h.TagService.UpdateTag(r.Context(), mux.Vars(r)["id"], req.Name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, tag, http.StatusOK)
}

func (h *Handlers) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.TagService.DeleteTag(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
