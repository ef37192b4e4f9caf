package handler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/wadjakorntonsri/favlinks/pkg/config"
	"github.com/wadjakorntonsri/favlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/favlinks/pkg/ports"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type AuthHandler struct {
	service       ports.AuthService
	oauthConfig   *oauth2.Config
	userInfoURL   string
	frontendURL   string
	allowedEmails []string
	isProduction  bool
}

type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func NewAuthHandler(cfg *config.Config, service ports.AuthService) *AuthHandler {
	return &AuthHandler{
		service: service,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL:   googleUserInfoURL,
		frontendURL:   cfg.FrontendURL,
		allowedEmails: cfg.AllowedEmails,
		isProduction:  cfg.IsProduction(),
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

// PasswordLogin exchanges a username and password for a bearer token.
func (h *AuthHandler) PasswordLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: newUserResponse(user)})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: newUserResponse(user)})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	c := caller(r)
	writeJSON(w, http.StatusOK, map[string]userResponse{
		"user": {ID: c.ID, Username: c.Username, IsAdmin: c.IsAdmin},
	})
}

// Login starts the Google sign-in flow.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := h.generateStateOauthCookie(w)
	url := h.oauthConfig.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	logCtx := logrus.WithField("request_id", requestID(r.Context()))

	oauthState, err := r.Cookie("oauthstate")
	if err != nil {
		logCtx.WithError(err).Warn("Callback error: missing oauthstate cookie")
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	if r.FormValue("state") != oauthState.Value {
		logCtx.Warn("Callback error: invalid oauth state")
		writeError(w, http.StatusBadRequest, "invalid oauth google state")
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		logCtx.WithError(err).Error("Callback error: code exchange failed")
		writeError(w, http.StatusInternalServerError, "code exchange failed")
		return
	}

	response, err := h.oauthConfig.Client(r.Context(), token).Get(h.userInfoURL)
	if err != nil {
		logCtx.WithError(err).Error("Callback error: failed getting user info")
		writeError(w, http.StatusInternalServerError, "failed getting user info")
		return
	}
	defer response.Body.Close()

	var googleUser GoogleUser
	if err := json.NewDecoder(response.Body).Decode(&googleUser); err != nil {
		logCtx.WithError(err).Error("Callback error: failed decoding user info")
		writeError(w, http.StatusInternalServerError, "failed decoding user info")
		return
	}

	// Email Allowlist Check
	if len(h.allowedEmails) > 0 && !slices.Contains(h.allowedEmails, googleUser.Email) {
		logCtx.WithField("email", googleUser.Email).Warn("Callback error: email not in allowlist")
		writeError(w, http.StatusForbidden, "Access denied: your email is not in the allowlist")
		return
	}

	_, tokenString, expires, err := h.service.LoginExternal(r.Context(), googleUser.Email)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    tokenString,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})

	logCtx.WithField("email", googleUser.Email).Info("Login successful")
	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.frontendURL+"/login", http.StatusTemporaryRedirect)
}

func (h *AuthHandler) generateStateOauthCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     "oauthstate",
		Value:    state,
		Expires:  time.Now().Add(20 * time.Minute),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	return state
}
