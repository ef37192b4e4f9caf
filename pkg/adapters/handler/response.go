package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/wadjakorntonsri/favlinks/pkg/core/authz"
	"github.com/wadjakorntonsri/favlinks/pkg/core/services"
)

type errorResponse struct {
	Error  string       `json:"error"`
	Reason authz.Reason `json:"reason,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// handleServiceError maps an error returned by a service to a response.
// Anything unrecognized is logged and answered with a generic 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var denial *authz.Denial
	if errors.As(err, &denial) {
		status := http.StatusBadRequest
		if denial.Kind() == authz.KindForbidden {
			status = http.StatusForbidden
		}
		writeJSON(w, status, errorResponse{Error: denial.Message, Reason: denial.Reason})
		return
	}

	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrLinkNotFound):
		writeError(w, http.StatusNotFound, "Link not found")
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "Username already exists")
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": requestID(r.Context()),
		}).Error("Request failed")
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

// pathID parses the {id} path segment, answering 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
