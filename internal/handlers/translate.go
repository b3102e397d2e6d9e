package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hoshinet/pagelate/internal/batch"
	"github.com/hoshinet/pagelate/internal/gemini"
	"github.com/hoshinet/pagelate/internal/language"
	"github.com/hoshinet/pagelate/internal/models"
	"github.com/hoshinet/pagelate/internal/pipeline"
)

// HandleTranslate runs the batch over every non-completed page in the queue.
// The model calls happen inline in the request, one page at a time.
func (h *Handler) HandleTranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Language string `json:"language"`
		Context  string `json:"context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	target, err := language.Parse(request.Language)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.runMu.TryLock() {
		h.writeError(w, "A translation run is already in progress", http.StatusConflict)
		return
	}
	defer h.runMu.Unlock()

	pl, ok := h.pipelineOrError(w, r.Context())
	if !ok {
		return
	}

	orchestrator := batch.New(pl, h.creds, h.cfg.CallTimeout)
	progress, err := orchestrator.Run(r.Context(), h.queue, target, request.Context)
	if err != nil {
		if errors.Is(err, batch.ErrCredentialInvalid) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			h.writeBody(w, map[string]any{
				"error":    "credential_invalid",
				"message":  "API key rejected; enter a new key to continue",
				"progress": progress,
			})
			return
		}
		h.writeError(w, "Batch halted: "+err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("Batch finished", "total", progress.Total, "completed", progress.Completed, "failed", progress.Failed)
	h.writeJSON(w, progress)
}

// HandleProgress reports the aggregate queue state, derived from queue
// contents on demand.
func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, batch.Snapshot(h.queue))
}

// handleRegenerate re-runs inpainting for one page with user-edited text.
func (h *Handler) handleRegenerate(w http.ResponseWriter, r *http.Request, page *models.Page) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Language string `json:"language"`
		Text     string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	target, err := language.Parse(request.Language)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.runMu.TryLock() {
		h.writeError(w, "A translation run is already in progress", http.StatusConflict)
		return
	}
	defer h.runMu.Unlock()

	if page.State != models.StateCompleted && page.State != models.StateError {
		h.writeError(w, "Page must be completed or errored to regenerate", http.StatusConflict)
		return
	}

	pl, ok := h.pipelineOrError(w, r.Context())
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.CallTimeout)
	defer cancel()

	if err := pl.Regenerate(ctx, page, target, request.Text); err != nil {
		if gemini.IsAuth(err) {
			if clearErr := h.creds.Clear(); clearErr != nil {
				slog.Error("Failed to clear rejected credential", "err", clearErr)
			}
			h.writeError(w, "API key rejected; enter a new key to continue", http.StatusUnauthorized)
			return
		}
		// Page failure is recorded on the page; report it with the page view.
		slog.Warn("Regenerate failed", "page", page.ID, "err", err)
	}

	h.writeJSON(w, viewOf(page))
}

func (h *Handler) pipelineOrError(w http.ResponseWriter, ctx context.Context) (*pipeline.Pipeline, bool) {
	apiKey, ok := h.creds.Get()
	if !ok {
		h.writeError(w, "No API key configured", http.StatusUnauthorized)
		return nil, false
	}

	pl, err := h.newPipeline(ctx, apiKey)
	if err != nil {
		h.writeError(w, "Failed to initialize model client: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return pl, true
}

// writeBody encodes data without re-setting headers; used after an explicit
// WriteHeader call.
func (h *Handler) writeBody(w http.ResponseWriter, data any) {
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}
