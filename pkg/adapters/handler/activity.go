package handler

import (
	"net/http"
	"strconv"

	"github.com/wadjakorntonsri/favlinks/pkg/core/authz"
	"github.com/wadjakorntonsri/favlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/favlinks/pkg/ports"
)

type ActivityHandler struct {
	service ports.ActivityService
}

func NewActivityHandler(service ports.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// scopeParams reads ?scope= and ?userId=. A non-numeric userId is treated
// as absent.
func scopeParams(w http.ResponseWriter, r *http.Request) (domain.Scope, int64, bool) {
	q := r.URL.Query()
	scope, d := authz.ParseScope(q.Get("scope"))
	if err := d.Err(); err != nil {
		handleServiceError(w, r, err)
		return "", 0, false
	}
	userID, _ := strconv.ParseInt(q.Get("userId"), 10, 64)
	return scope, userID, true
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	activities, err := h.service.List(r.Context(), caller(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

func (h *ActivityHandler) Count(w http.ResponseWriter, r *http.Request) {
	scope, userID, ok := scopeParams(w, r)
	if !ok {
		return
	}

	n, err := h.service.Count(r.Context(), caller(r), scope, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *ActivityHandler) Clear(w http.ResponseWriter, r *http.Request) {
	scope, userID, ok := scopeParams(w, r)
	if !ok {
		return
	}

	n, err := h.service.Clear(r.Context(), caller(r), scope, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Activity cleared", "deleted": n})
}
