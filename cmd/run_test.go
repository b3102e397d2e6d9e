package cmd

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/hoshinet/pagelate/internal/models"
	"github.com/hoshinet/pagelate/internal/storage"
)

func TestWriteArchiveFile(t *testing.T) {
	queue := storage.New()
	queue.Add(&models.Page{
		ID:       "p1",
		Filename: "page.01.png",
		Source:   models.ImageData{Data: []byte("src"), MIMEType: "image/png"},
		State:    models.StateCompleted,
		Output:   &models.ImageData{Data: []byte("translated"), MIMEType: "image/png"},
	})

	path := filepath.Join(t.TempDir(), "out.zip")
	if err := writeArchiveFile(path, queue); err != nil {
		t.Fatalf("writeArchiveFile returned error: %v", err)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("Failed to open written archive: %v", err)
	}
	defer zr.Close()

	if len(zr.File) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(zr.File))
	}
	if got := zr.File[0].Name; got != "translated_page.01.png" {
		t.Errorf("Entry name = %q, want %q", got, "translated_page.01.png")
	}
}

func TestWriteArchiveFileNoCompletedPages(t *testing.T) {
	queue := storage.New()
	queue.Add(&models.Page{
		ID:       "p1",
		Filename: "page.01.png",
		Source:   models.ImageData{Data: []byte("src"), MIMEType: "image/png"},
		State:    models.StateError,
	})

	path := filepath.Join(t.TempDir(), "out.zip")
	if err := writeArchiveFile(path, queue); err == nil {
		t.Fatal("Expected error when no pages are completed")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Archive file should still exist after failed write: %v", err)
	}
}
