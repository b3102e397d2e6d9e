package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Client wraps the Gemini SDK for the two remote operations the pipeline
// needs: text recognition and image inpainting. Neither operation retries
// internally; one invocation is one request.
type Client struct {
	genai            *genai.Client
	recognitionModel string
	inpaintingModel  string
}

// NewClient builds a Client authenticated with the given API key. The key is
// only ever used as the authentication parameter on Gemini API calls.
func NewClient(ctx context.Context, apiKey, recognitionModel, inpaintingModel string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		genai:            client,
		recognitionModel: recognitionModel,
		inpaintingModel:  inpaintingModel,
	}, nil
}
