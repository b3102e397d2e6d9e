package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hoshinet/pagelate/internal/gemini"
	"github.com/hoshinet/pagelate/internal/language"
	"github.com/hoshinet/pagelate/internal/models"
	"github.com/hoshinet/pagelate/internal/storage"
)

// ErrCredentialInvalid is returned when a run halts because the remote
// service rejected the API key. The caller should prompt for a new key; the
// queue itself is left as-is.
var ErrCredentialInvalid = errors.New("credential rejected by the translation service")

// Translator is the per-page operation applied by a run.
type Translator interface {
	Translate(ctx context.Context, page *models.Page, target language.Target, contextHint string) error
}

// CredentialClearer resets the stored credential after an auth failure.
type CredentialClearer interface {
	Clear() error
}

// Progress is the aggregate view of a queue, recomputed from queue contents
// on demand rather than tracked in separate counters.
type Progress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
}

// Orchestrator drives a queue through the page pipeline one item at a time.
// Processing is strictly sequential in insertion order; a single in-flight
// remote call at most.
type Orchestrator struct {
	pipeline    Translator
	creds       CredentialClearer
	callTimeout time.Duration
}

func New(pipeline Translator, creds CredentialClearer, callTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		pipeline:    pipeline,
		creds:       creds,
		callTimeout: callTimeout,
	}
}

// Run translates every non-completed page in the queue.
//
// A page failure is recorded on the page and the run continues. An auth
// failure clears the stored credential and halts the run immediately, leaving
// not-yet-visited pages untouched; the returned error wraps
// ErrCredentialInvalid. Re-running over a partially completed queue only
// processes the remaining pages.
func (o *Orchestrator) Run(ctx context.Context, queue *storage.PageQueue, target language.Target, contextHint string) (Progress, error) {
	for _, page := range queue.List() {
		if page.State == models.StateCompleted {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Snapshot(queue), err
		}

		err := o.translateOne(ctx, page, target, contextHint)
		if err == nil {
			continue
		}

		if gemini.IsAuth(err) {
			slog.Error("Halting batch, credential rejected", "page", page.ID, "err", err)
			if clearErr := o.creds.Clear(); clearErr != nil {
				slog.Error("Failed to clear rejected credential", "err", clearErr)
			}
			return Snapshot(queue), fmt.Errorf("%w: %v", ErrCredentialInvalid, err)
		}

		slog.Warn("Page failed, continuing batch", "page", page.ID, "err", err)
	}

	return Snapshot(queue), nil
}

func (o *Orchestrator) translateOne(ctx context.Context, page *models.Page, target language.Target, contextHint string) error {
	if o.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.callTimeout)
		defer cancel()
	}
	return o.pipeline.Translate(ctx, page, target, contextHint)
}

// Snapshot computes the aggregate progress from current queue contents.
func Snapshot(queue *storage.PageQueue) Progress {
	progress := Progress{}
	for _, page := range queue.List() {
		progress.Total++
		switch page.State {
		case models.StateCompleted:
			progress.Completed++
		case models.StateError:
			progress.Failed++
		default:
			progress.Pending++
		}
	}
	return progress
}
