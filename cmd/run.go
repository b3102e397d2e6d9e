package cmd

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hoshinet/pagelate/internal/batch"
	"github.com/hoshinet/pagelate/internal/config"
	"github.com/hoshinet/pagelate/internal/credentials"
	"github.com/hoshinet/pagelate/internal/export"
	"github.com/hoshinet/pagelate/internal/gemini"
	"github.com/hoshinet/pagelate/internal/images"
	"github.com/hoshinet/pagelate/internal/language"
	"github.com/hoshinet/pagelate/internal/models"
	"github.com/hoshinet/pagelate/internal/pipeline"
	"github.com/hoshinet/pagelate/internal/storage"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var langLabel string
	var contextHint string
	var outPath string
	var configPath string

	cmd := &cobra.Command{
		Use:   "run DIR",
		Short: "Translate a directory of page images without the web UI",
		Long: `Translates every raster image in DIR, in filename order, and writes the
results to a zip archive. Pages that fail are reported and skipped; the run
only aborts early when the API key is rejected.`,
		Example: `  # Translate a chapter into English
  pagelate run --lang English ./chapter-12

  # With reader-supplied context and a custom archive name
  pagelate run --lang Chinese --context "Keep the name Reiko untranslated" --out ch12.zip ./chapter-12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := language.Parse(langLabel)
			if err != nil {
				return err
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			credPath, err := credentials.DefaultPath()
			if err != nil {
				return err
			}
			creds, err := credentials.New(credPath)
			if err != nil {
				return err
			}
			apiKey, ok := creds.Get()
			if !ok {
				return fmt.Errorf("no API key configured; set %s or save one via the web UI", credentials.EnvKey)
			}

			queue, err := loadPages(args[0], cfg.Upload.MaxBytes)
			if err != nil {
				return err
			}
			if queue.Len() == 0 {
				return fmt.Errorf("no supported images found in %s", args[0])
			}

			client, err := gemini.NewClient(cmd.Context(), apiKey, cfg.Models.Recognition, cfg.Models.Inpainting)
			if err != nil {
				return err
			}

			orchestrator := batch.New(pipeline.New(client, client), creds, cfg.CallTimeout)
			progress, runErr := orchestrator.Run(cmd.Context(), queue, target, contextHint)

			fmt.Printf("Translated %d/%d pages (%d failed)\n", progress.Completed, progress.Total, progress.Failed)
			for _, page := range queue.List() {
				if page.State == models.StateError {
					fmt.Printf("  failed: %s: %s\n", page.Filename, page.ErrorMessage)
				}
			}

			if progress.Completed > 0 {
				if err := writeArchiveFile(outPath, queue); err != nil {
					return err
				}
				fmt.Printf("Archive written to %s\n", outPath)
			}

			if runErr != nil {
				if errors.Is(runErr, batch.ErrCredentialInvalid) {
					return fmt.Errorf("API key rejected; enter a new key and re-run to finish the remaining pages")
				}
				return runErr
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&langLabel, "lang", "l", "", "Target language (Chinese, English, Spanish, French, Japanese)")
	cmd.Flags().StringVar(&contextHint, "context", "", "Free-form context forwarded to recognition (names, terminology)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "translated.zip", "Output archive path")
	cmd.Flags().StringVarP(&configPath, "config", "c", "pagelate.yaml", "Path to config file")
	_ = cmd.MarkFlagRequired("lang")

	return cmd
}

// loadPages reads every supported image in dir, in name order, into a fresh
// queue.
func loadPages(dir string, maxBytes int64) (*storage.PageQueue, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(entry.Name())))
		if images.SupportedType(mimeType) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	queue := storage.New()
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if int64(len(data)) > maxBytes {
			return nil, fmt.Errorf("%s: file too large (max %d bytes)", name, maxBytes)
		}
		queue.Add(&models.Page{
			ID:        uuid.NewString(),
			Filename:  name,
			Source:    models.ImageData{Data: data, MIMEType: mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))},
			State:     models.StateIdle,
			CreatedAt: time.Now(),
		})
	}
	return queue, nil
}

func writeArchiveFile(path string, queue *storage.PageQueue) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive %s: %w", path, err)
	}
	if err := export.WriteArchive(f, queue.List()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
