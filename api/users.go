package api

import (
	"net/http"
	"strings"
)

const usersKind = "users"

type userRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u userRequest) valid() bool {
	return strings.TrimSpace(u.Name) != "" && strings.Contains(u.Email, "@")
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name and a valid email are required"})
		return
	}

	user, err := h.users.Create(r.Context(), req.Name, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.notifier.NotifyMutation(r.Context(), usersKind, user.ID)
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name and a valid email are required"})
		return
	}

	user, err := h.users.Update(r.Context(), r.PathValue("id"), req.Name, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.notifier.NotifyMutation(r.Context(), usersKind, user.ID)
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	h.notifier.NotifyMutation(r.Context(), usersKind, id)
	writeJSON(w, http.StatusNoContent, nil)
}
