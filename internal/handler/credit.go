package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/thanku/internal/domain"
	"github.com/msomdec/thanku/internal/service"
)

// CreditHandler handles giving and listing credits.
type CreditHandler struct {
	credits *service.CreditService
}

// NewCreditHandler creates a new CreditHandler.
func NewCreditHandler(credits *service.CreditService) *CreditHandler {
	return &CreditHandler{credits: credits}
}

// HandleThank awards a credit from the authenticated user to another user.
// POST /api/v1.0/thank/{user_id}
// Request:  {"point":3,"description":"..."}
// Response: {"status":"ok","user":{...},"recipient":{...}}
func (h *CreditHandler) HandleThank(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}

	recipientID, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id.")
		return
	}

	var req struct {
		Point       int    `json:"point"`
		Description string `json:"description"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	recipient, err := h.credits.Give(r.Context(), user, recipientID, req.Point, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "User not found.")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.Error("give credit", "user_id", user.ID, "recipient_id", recipientID, "error", err)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":    "ok",
		"user":      toUserDTO(user),
		"recipient": toUserDTO(recipient),
	})
}

// HandleList returns every credit.
// GET /api/v1.0/credits
// Response: {"status":"ok","credits":[...]}
func (h *CreditHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	credits, err := h.credits.List(r.Context())
	if err != nil {
		slog.Error("list credits", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"credits": toCreditDTOs(credits),
	})
}
