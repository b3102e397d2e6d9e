package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hoshinet/pagelate/internal/export"
	"github.com/hoshinet/pagelate/internal/models"
)

// HandleExport streams a zip archive of every completed page's translated
// image.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pages := h.queue.List()
	completed := 0
	for _, page := range pages {
		if page.State == models.StateCompleted {
			completed++
		}
	}
	if completed == 0 {
		h.writeError(w, "No completed pages to export", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="translated_pages.zip"`)

	if err := export.WriteArchive(w, pages); err != nil {
		// Headers are already sent; the truncated stream is all we can signal.
		slog.Error("Archive export failed mid-stream", "err", err)
	}
}
