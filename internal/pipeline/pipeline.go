package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hoshinet/pagelate/internal/gemini"
	"github.com/hoshinet/pagelate/internal/language"
	"github.com/hoshinet/pagelate/internal/models"
	"github.com/hoshinet/pagelate/internal/prompts"
)

// Recognizer produces the reference listing of recognized text and suggested
// translations for a page image.
type Recognizer interface {
	Recognize(ctx context.Context, img models.ImageData, target language.Target, contextHint string) (string, error)
}

// Inpainter redraws a page image according to an inpainting instruction.
type Inpainter interface {
	Inpaint(ctx context.Context, img models.ImageData, instruction string) (models.ImageData, error)
}

// Pipeline owns a page's lifecycle through recognition, inpainting, and
// regeneration. It mutates page state; callers must not run two operations on
// the same page concurrently.
type Pipeline struct {
	recognizer Recognizer
	inpainter  Inpainter
}

func New(recognizer Recognizer, inpainter Inpainter) *Pipeline {
	return &Pipeline{recognizer: recognizer, inpainter: inpainter}
}

// Translate takes a page through recognition and inpainting.
//
// Recognition is best-effort: its failure is logged and discarded here, and
// the page proceeds with an empty reference listing. An inpainting failure
// classified as an auth failure restores the page to its prior state and is
// returned for the orchestrator to handle; any other failure marks the page
// Error with the failure's message.
func (p *Pipeline) Translate(ctx context.Context, page *models.Page, target language.Target, contextHint string) error {
	if page.State == models.StateProcessing {
		return fmt.Errorf("page %s is already processing", page.ID)
	}

	prev := page.State
	page.State = models.StateProcessing

	reference, err := p.recognizer.Recognize(ctx, page.Source, target, contextHint)
	if err != nil {
		// Recognition is an optimization, not a requirement: inpainting can
		// still translate the page without a reference listing.
		slog.Warn("Recognition failed, continuing without reference text", "page", page.ID, "err", err)
		reference = ""
	}

	return p.inpaint(ctx, page, target, reference, prev)
}

// Regenerate re-runs inpainting with user-edited reference text, skipping
// recognition entirely. Only valid on a page at rest in Completed or Error.
func (p *Pipeline) Regenerate(ctx context.Context, page *models.Page, target language.Target, editedText string) error {
	if page.State != models.StateCompleted && page.State != models.StateError {
		return fmt.Errorf("page %s cannot be regenerated from state %q", page.ID, page.State)
	}

	prev := page.State
	page.State = models.StateProcessing

	return p.inpaint(ctx, page, target, editedText, prev)
}

func (p *Pipeline) inpaint(ctx context.Context, page *models.Page, target language.Target, reference string, prev models.PageState) error {
	instruction := prompts.Inpainting(target, reference)

	output, err := p.inpainter.Inpaint(ctx, page.Source, instruction)
	if err != nil {
		if gemini.IsAuth(err) {
			// Credential problem, not a page problem: leave the page as it
			// was so it is retried once the key is fixed.
			page.State = prev
			return err
		}
		page.State = models.StateError
		page.ErrorMessage = err.Error()
		page.Output = nil
		return fmt.Errorf("translate page %s: %w", page.ID, err)
	}

	page.Output = &output
	page.RecognizedText = reference
	page.ErrorMessage = ""
	page.State = models.StateCompleted
	slog.Info("Page translated", "page", page.ID, "filename", page.Filename, "language", target)
	return nil
}
