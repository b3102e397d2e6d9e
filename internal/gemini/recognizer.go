package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hoshinet/pagelate/internal/language"
	"github.com/hoshinet/pagelate/internal/models"
	"github.com/hoshinet/pagelate/internal/prompts"
	"google.golang.org/genai"
)

// Recognize runs text recognition on a page image and returns the free-text
// listing of detected passages with suggested translations. Callers treat the
// listing as opaque reference text.
func (c *Client) Recognize(ctx context.Context, img models.ImageData, target language.Target, contextHint string) (string, error) {
	prompt := prompts.Recognition(target, contextHint)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(img.Data, img.MIMEType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	cfg := &genai.GenerateContentConfig{
		// Low temperature for consistent, factual output
		Temperature: genai.Ptr(float32(0.1)),
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.recognitionModel, contents, cfg)
	if err != nil {
		return "", classify(fmt.Errorf("recognition request failed: %w", err))
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("recognition returned no text")
	}

	slog.Debug("Recognized page text", "model", c.recognitionModel, "length", len(text))
	return text, nil
}
