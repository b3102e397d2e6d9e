package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hoshinet/pagelate/internal/models"
)

// HandlePages serves the queue collection: list, upload, bulk clear.
func (h *Handler) HandlePages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		pages := h.queue.List()
		views := make([]pageView, 0, len(pages))
		for _, page := range pages {
			views = append(views, viewOf(page))
		}
		h.writeJSON(w, views)
	case "POST":
		h.handleUpload(w, r)
	case "DELETE":
		h.queue.Clear()
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandlePageDetail serves a single page and its subresources:
// /api/pages/{id}, /api/pages/{id}/image, /api/pages/{id}/output,
// /api/pages/{id}/text, /api/pages/{id}/regenerate.
func (h *Handler) HandlePageDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/pages/")
	pageID, sub, _ := strings.Cut(rest, "/")

	page, ok := h.getPageOrError(w, pageID)
	if !ok {
		return
	}

	switch sub {
	case "":
		switch r.Method {
		case "GET":
			h.writeJSON(w, viewOf(page))
		case "DELETE":
			h.queue.Remove(pageID)
			w.WriteHeader(http.StatusNoContent)
		default:
			h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "image":
		h.servePayload(w, r, page.Source)
	case "output":
		if !page.HasOutput() {
			h.writeError(w, "No translated image for page", http.StatusNotFound)
			return
		}
		h.servePayload(w, r, *page.Output)
	case "text":
		h.handleEditText(w, r, page)
	case "regenerate":
		h.handleRegenerate(w, r, page)
	default:
		h.writeError(w, "Not found", http.StatusNotFound)
	}
}

func (h *Handler) servePayload(w http.ResponseWriter, r *http.Request, img models.ImageData) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", img.MIMEType)
	if _, err := w.Write(img.Data); err != nil {
		// Client went away mid-transfer; nothing to recover.
		return
	}
}

// handleEditText stores a manual correction of the recognized text. The next
// regenerate uses the edited listing verbatim.
func (h *Handler) handleEditText(w http.ResponseWriter, r *http.Request, page *models.Page) {
	if r.Method != "PUT" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.runMu.TryLock() {
		h.writeError(w, "A translation run is already in progress", http.StatusConflict)
		return
	}
	defer h.runMu.Unlock()

	if page.State == models.StateProcessing {
		h.writeError(w, "Page is processing", http.StatusConflict)
		return
	}

	var request struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	page.RecognizedText = request.Text
	h.writeJSON(w, viewOf(page))
}
