package handler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/thanku/internal/domain"
)

type contextKey string

const userContextKey contextKey = "user"

const basicRealm = `Basic realm="thanku"`

// Authenticator resolves request credentials to a user. identifier is either
// a bearer token or a username; secret is the password and is ignored when
// identifier is a valid token. Any authentication failure must be
// domain.ErrUnauthorized.
type Authenticator interface {
	Authenticate(ctx context.Context, identifier, secret string) (*domain.User, error)
}

// Limiter throttles repeated failures per client key.
type Limiter interface {
	Allow(key string) bool
	Exhausted(key string) bool
}

// UserFromContext extracts the authenticated user from the request context.
// Returns nil if no user is authenticated.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// WithUser returns a copy of ctx carrying user as the request principal.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// RequireAuth is middleware that protects routes requiring authentication.
// Credentials come from HTTP Basic auth (username:password or token:anything)
// or from an "Authorization: Bearer <token>" header. The resolved user is put
// into the request context. Every authentication failure gets the same 401.
// When limiter is non-nil, failures are counted per client IP and a client
// that has run out is refused with 429 before any password is checked.
func RequireAuth(auth Authenticator, limiter Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if limiter != nil && limiter.Exhausted(ip) {
			writeError(w, http.StatusTooManyRequests, "Too many failed attempts. Please try again later.")
			return
		}

		identifier, secret, ok := credentialsFromRequest(r)
		if !ok {
			unauthorized(w)
			return
		}

		user, err := auth.Authenticate(r.Context(), identifier, secret)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				if limiter != nil {
					limiter.Allow(ip)
				}
				slog.Info("authentication failed", "path", r.URL.Path, "remote_ip", ip)
				unauthorized(w)
				return
			}
			slog.Error("authenticate request", "error", err)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func credentialsFromRequest(r *http.Request) (identifier, secret string, ok bool) {
	if identifier, secret, ok := r.BasicAuth(); ok && identifier != "" {
		return identifier, secret, true
	}
	header := r.Header.Get("Authorization")
	if scheme, token, found := strings.Cut(header, " "); found && strings.EqualFold(scheme, "Bearer") {
		token = strings.TrimSpace(token)
		if token != "" {
			return token, "", true
		}
	}
	return "", "", false
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", basicRealm)
	writeError(w, http.StatusUnauthorized, "Unauthorized")
}

// clientIP returns the host part of the connection's remote address.
// Forwarding headers are ignored because they are client-controlled.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SecurityHeaders sets conservative response headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogger logs one line per request and tags it with a request ID,
// which is also returned in the X-Request-ID header.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		slog.Info("http request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
