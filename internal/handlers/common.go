package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/hoshinet/pagelate/internal/config"
	"github.com/hoshinet/pagelate/internal/credentials"
	"github.com/hoshinet/pagelate/internal/gemini"
	"github.com/hoshinet/pagelate/internal/images"
	"github.com/hoshinet/pagelate/internal/models"
	"github.com/hoshinet/pagelate/internal/pipeline"
	"github.com/hoshinet/pagelate/internal/storage"
)

// PipelineFactory builds a pipeline bound to the given API key. Swappable in
// tests for stub clients.
type PipelineFactory func(ctx context.Context, apiKey string) (*pipeline.Pipeline, error)

type Handler struct {
	queue       *storage.PageQueue
	creds       *credentials.Store
	cfg         *config.Config
	fetcher     *images.Fetcher
	newPipeline PipelineFactory

	// runMu serializes everything that mutates page state: at most one
	// batch run, regenerate, or text edit owns the queue at a time.
	runMu sync.Mutex
}

func New(cfg *config.Config, creds *credentials.Store) *Handler {
	return &Handler{
		queue:   storage.New(),
		creds:   creds,
		cfg:     cfg,
		fetcher: images.NewFetcher(cfg.Upload.MaxBytes),
		newPipeline: func(ctx context.Context, apiKey string) (*pipeline.Pipeline, error) {
			client, err := gemini.NewClient(ctx, apiKey, cfg.Models.Recognition, cfg.Models.Inpainting)
			if err != nil {
				return nil, err
			}
			return pipeline.New(client, client), nil
		},
	}
}

// pageView is the JSON shape for a page; raw image bytes are served from
// dedicated endpoints, never inlined.
type pageView struct {
	ID             string    `json:"id"`
	Filename       string    `json:"filename"`
	State          string    `json:"state"`
	MIMEType       string    `json:"mime_type"`
	SourceBytes    int       `json:"source_bytes"`
	ImageURL       string    `json:"image_url"`
	OutputURL      string    `json:"output_url,omitempty"`
	RecognizedText string    `json:"recognized_text,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func viewOf(page *models.Page) pageView {
	v := pageView{
		ID:             page.ID,
		Filename:       page.Filename,
		State:          string(page.State),
		MIMEType:       page.Source.MIMEType,
		SourceBytes:    len(page.Source.Data),
		ImageURL:       "/api/pages/" + page.ID + "/image",
		RecognizedText: page.RecognizedText,
		ErrorMessage:   page.ErrorMessage,
		CreatedAt:      page.CreatedAt,
	}
	if page.HasOutput() {
		v.OutputURL = "/api/pages/" + page.ID + "/output"
	}
	return v
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Page helpers
func (h *Handler) getPageOrError(w http.ResponseWriter, pageID string) (*models.Page, bool) {
	page, exists := h.queue.Get(pageID)
	if !exists {
		h.writeError(w, "Page not found", http.StatusNotFound)
		return nil, false
	}
	return page, true
}
