package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/favlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/favlinks/pkg/ports"
)

type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

type userMutationResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context(), caller(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.service.DeleteUser(r.Context(), caller(r), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userMutationResponse{Message: "User deleted", User: user})
}

type updateUserRequest struct {
	IsAdmin *bool `json:"isAdmin"`
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IsAdmin == nil {
		writeError(w, http.StatusBadRequest, "isAdmin is required")
		return
	}

	user, err := h.service.SetAdminFlag(r.Context(), caller(r), id, *req.IsAdmin)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userMutationResponse{Message: "User updated", User: user})
}

func (h *AdminHandler) DeleteUserLinks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	links, err := h.service.DeleteUserLinks(r.Context(), caller(r), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User links deleted",
		"deleted": len(links),
		"rows":    links,
	})
}
