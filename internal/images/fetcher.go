package images

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// Fetcher retrieves page images from remote URLs for the URL-upload path.
type Fetcher struct {
	HTTPClient *http.Client
	MaxBytes   int64
}

// NewFetcher creates a fetcher with the given payload size cap.
func NewFetcher(maxBytes int64) *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		MaxBytes: maxBytes,
	}
}

var supportedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// SupportedType reports whether a media type is an accepted raster format.
func SupportedType(mimeType string) bool {
	if i := strings.Index(mimeType, ";"); i != -1 {
		mimeType = mimeType[:i]
	}
	return supportedTypes[strings.TrimSpace(strings.ToLower(mimeType))]
}

// Fetch downloads an image, retrying transient HTTP failures. Model calls are
// never retried; this applies to intake only.
func (f *Fetcher) Fetch(imageURL string) ([]byte, string, error) {
	var data []byte
	var mimeType string

	err := retry.Do(
		func() error {
			var err error
			data, mimeType, err = f.fetchOnce(imageURL)
			return err
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.RetryIf(isTransient),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, "", err
	}
	return data, mimeType, nil
}

func (f *Fetcher) fetchOnce(imageURL string) ([]byte, string, error) {
	resp, err := f.HTTPClient.Get(imageURL)
	if err != nil {
		return nil, "", &transientError{fmt.Errorf("failed to fetch image: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("image URL returned status %d", resp.StatusCode)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, "", &transientError{err}
		}
		return nil, "", err
	}

	mimeType := resp.Header.Get("Content-Type")
	if !SupportedType(mimeType) {
		return nil, "", fmt.Errorf("unsupported image type %q", mimeType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxBytes+1))
	if err != nil {
		return nil, "", &transientError{fmt.Errorf("failed to read image data: %w", err)}
	}
	if int64(len(data)) > f.MaxBytes {
		return nil, "", fmt.Errorf("image too large (max %d bytes)", f.MaxBytes)
	}
	if len(data) < 1000 {
		return nil, "", fmt.Errorf("image too small (likely placeholder), size: %d bytes", len(data))
	}

	return data, mimeType, nil
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
