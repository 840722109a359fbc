package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/thanku/internal/domain"
	"github.com/msomdec/thanku/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth    *service.AuthService
	limiter Limiter
}

// NewAuthHandler creates a new AuthHandler. limiter may be nil.
func NewAuthHandler(auth *service.AuthService, limiter Limiter) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter}
}

// HandleToken issues a token for the authenticated user.
// GET /api/v1.0/token
// Response: {"token":"...","expires_in":600}
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}

	token, err := h.auth.IssueToken(user)
	if err != nil {
		slog.Error("issue token", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_in": int64(h.auth.TokenTTL().Seconds()),
	})
}

// HandleSignIn checks a username and password.
// POST /api/v1.0/signin
// Request:  {"username":"...","password":"..."}
// Response: {"status":"ok"} or 401 {"status":"error"}
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if h.limiter != nil && h.limiter.Exhausted(ip) {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"status": "error"})
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if _, err := h.auth.SignIn(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			if h.limiter != nil {
				h.limiter.Allow(ip)
			}
			writeJSON(w, http.StatusUnauthorized, map[string]string{"status": "error"})
			return
		}
		slog.Error("sign in", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleMe returns the currently authenticated user.
// GET /api/v1.0/users/me
// Response: {"user": {...}}
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}
