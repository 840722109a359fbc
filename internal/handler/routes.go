package handler

import (
	"net/http"

	"github.com/msomdec/thanku/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. limiter throttles
// failed password attempts and may be nil.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, credits *service.CreditService, limiter Limiter) {
	authHandler := NewAuthHandler(auth, limiter)
	userHandler := NewUserHandler(auth)
	creditHandler := NewCreditHandler(credits)

	protect := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, limiter, h)
	}

	mux.HandleFunc("GET /status", HandleStatus)

	mux.Handle("GET /api/v1.0/token", protect(authHandler.HandleToken))
	mux.HandleFunc("POST /api/v1.0/signin", authHandler.HandleSignIn)

	mux.Handle("GET /api/v1.0/users", protect(userHandler.HandleList))
	mux.Handle("GET /api/v1.0/users/me", protect(authHandler.HandleMe))

	mux.Handle("POST /api/v1.0/thank/{user_id}", protect(creditHandler.HandleThank))
	mux.HandleFunc("GET /api/v1.0/credits", creditHandler.HandleList)
}
