package export

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hoshinet/pagelate/internal/models"
)

// EntryName derives the archive entry name for a translated page: the
// original filename with a "translated_" prefix. Only the final extension is
// split off, so multi-dot stems like "page.01.jpg" survive intact.
func EntryName(filename string) string {
	base := filepath.Base(filename)
	if base == "" || base == "." {
		base = "page"
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return "translated_" + stem + ext
}

// WriteArchive streams a zip of every completed page's output image to w.
// Entry names that collide get a numeric suffix before the extension.
func WriteArchive(w io.Writer, pages []*models.Page) error {
	zw := zip.NewWriter(w)
	seen := make(map[string]int)
	wrote := 0

	for _, page := range pages {
		if !page.HasOutput() {
			continue
		}

		name := EntryName(page.Filename)
		if n := seen[name]; n > 0 {
			ext := filepath.Ext(name)
			name = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n+1, ext)
		}
		seen[EntryName(page.Filename)]++

		f, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("create archive entry %s: %w", name, err)
		}
		if _, err := f.Write(page.Output.Data); err != nil {
			return fmt.Errorf("write archive entry %s: %w", name, err)
		}
		wrote++
	}

	if wrote == 0 {
		zw.Close()
		return fmt.Errorf("no completed pages to export")
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}
