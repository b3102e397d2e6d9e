package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/hoshinet/pagelate/internal/credentials"
)

// HandleCredentials manages the stored API key. The key itself is never
// echoed back; GET only reports whether one is configured.
func (h *Handler) HandleCredentials(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		_, configured := h.creds.Get()
		h.writeJSON(w, map[string]any{
			"configured":   configured,
			"env_override": os.Getenv(credentials.EnvKey) != "",
		})
	case "PUT", "POST":
		var request struct {
			APIKey string `json:"api_key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := h.creds.Set(request.APIKey); err != nil {
			if errors.Is(err, credentials.ErrEmptySecret) {
				h.writeError(w, err.Error(), http.StatusBadRequest)
				return
			}
			h.writeError(w, "Failed to save API key: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, map[string]any{"configured": true})
	case "DELETE":
		if err := h.creds.Clear(); err != nil {
			h.writeError(w, "Failed to clear API key: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
