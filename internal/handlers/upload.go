package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hoshinet/pagelate/internal/images"
	"github.com/hoshinet/pagelate/internal/models"
)

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Check if this is a JSON request with an image URL
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleURLUpload(w, r)
		return
	}

	h.handleFileUpload(w, r)
}

func (h *Handler) handleURLUpload(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ImageURL string `json:"image_url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	data, mimeType, err := h.fetcher.Fetch(request.ImageURL)
	if err != nil {
		h.writeError(w, "Failed to fetch image URL: "+err.Error(), http.StatusBadRequest)
		return
	}

	// Derive a filename from the URL path
	parts := strings.Split(strings.TrimSuffix(request.ImageURL, "/"), "/")
	filename := parts[len(parts)-1]
	if filename == "" || !strings.Contains(filename, ".") {
		filename = "page.jpg"
	}

	page := h.addPage(filename, data, mimeType)

	h.writeJSON(w, map[string]any{
		"message": "Successfully fetched 1 page",
		"pages":   []pageView{viewOf(page)},
		"source":  "url",
	})
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.cfg.Upload.MaxBytes); err != nil {
		h.writeError(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File["files"]
		if len(headers) == 0 {
			headers = r.MultipartForm.File["file"]
		}
	}
	if len(headers) == 0 {
		h.writeError(w, "No files in upload", http.StatusBadRequest)
		return
	}

	added := make([]pageView, 0, len(headers))
	for _, header := range headers {
		page, err := h.readUploadedFile(header)
		if err != nil {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		added = append(added, viewOf(page))
	}

	h.writeJSON(w, map[string]any{
		"message": "Successfully uploaded pages",
		"pages":   added,
	})
}

func (h *Handler) readUploadedFile(header *multipart.FileHeader) (*models.Page, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.Upload.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > h.cfg.Upload.MaxBytes {
		return nil, fmt.Errorf("%s: file too large (max %d bytes)", header.Filename, h.cfg.Upload.MaxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: empty file", header.Filename)
	}

	mimeType := header.Header.Get("Content-Type")
	if !images.SupportedType(mimeType) {
		mimeType = http.DetectContentType(data)
	}
	if !images.SupportedType(mimeType) {
		return nil, fmt.Errorf("%s: unsupported image type %q", header.Filename, mimeType)
	}

	return h.addPage(header.Filename, data, mimeType), nil
}

func (h *Handler) addPage(filename string, data []byte, mimeType string) *models.Page {
	page := &models.Page{
		ID:        uuid.NewString(),
		Filename:  filename,
		Source:    models.ImageData{Data: data, MIMEType: mimeType},
		State:     models.StateIdle,
		CreatedAt: time.Now(),
	}
	h.queue.Add(page)
	return page
}
