package handler

import (
	"net/http"
)

// HandleStatus reports that the API is up.
// GET /status
func HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
