package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hoshinet/pagelate/internal/models"
	"google.golang.org/genai"
)

// Standard manga page proportions and output tier, sent as request parameters.
const (
	outputAspectRatio = "3:4"
	outputImageSize   = "1K"
)

// Inpaint sends a page image and an inpainting instruction to the
// image-generation model and returns the redrawn page. A response without an
// image part is ErrNoImageReturned.
func (c *Client) Inpaint(ctx context.Context, img models.ImageData, instruction string) (models.ImageData, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(img.Data, img.MIMEType),
			genai.NewPartFromText(instruction),
		}, genai.RoleUser),
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
		ImageConfig: &genai.ImageConfig{
			AspectRatio: outputAspectRatio,
			ImageSize:   outputImageSize,
		},
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.inpaintingModel, contents, cfg)
	if err != nil {
		return models.ImageData{}, classify(fmt.Errorf("inpainting request failed: %w", err))
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			if !strings.HasPrefix(part.InlineData.MIMEType, "image/") {
				continue
			}
			slog.Debug("Inpainted page image",
				"model", c.inpaintingModel,
				"mime_type", part.InlineData.MIMEType,
				"bytes", len(part.InlineData.Data))
			return models.ImageData{
				Data:     part.InlineData.Data,
				MIMEType: part.InlineData.MIMEType,
			}, nil
		}
	}

	return models.ImageData{}, ErrNoImageReturned
}
