package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/favlinks/pkg/ports"
)

type HTTPHandler struct {
	service ports.LinkService
}

func NewHTTPHandler(service ports.LinkService) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// CreateLinkRequest payload
type CreateLinkRequest struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	IsPublic bool   `json:"isPublic"`
}

// Create Link
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	link, err := h.service.CreateLink(r.Context(), caller(r), req.Name, req.URL, req.IsPublic)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

// List the caller's links
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.service.ListLinks(r.Context(), caller(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	link, err := h.service.GetLink(r.Context(), caller(r), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// Delete Link
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	link, err := h.service.DeleteLink(r.Context(), caller(r), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Link deleted", "id": link.ID})
}

// Public lists every shared link; no authentication required.
func (h *HTTPHandler) Public(w http.ResponseWriter, r *http.Request) {
	links, err := h.service.ListPublicLinks(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}
