package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// ErrNoImageReturned indicates the inpainting response carried no image part.
var ErrNoImageReturned = errors.New("model response contained no image")

// AuthError marks a remote failure attributable to the API key rather than to
// the page being processed. The batch orchestrator halts on it; everything
// else stays scoped to the single page.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("gemini credential rejected: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// The Gemini API reports an unresolvable API key as a 404 with this message
// rather than a 401, so the phrase is kept as a fallback signal.
const entityNotFound = "Requested entity was not found"

// classify wraps err in AuthError when it indicates a credential problem.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{Err: err}
		}
		switch apiErr.Status {
		case "UNAUTHENTICATED", "PERMISSION_DENIED":
			return &AuthError{Err: err}
		}
	}

	if strings.Contains(err.Error(), entityNotFound) {
		return &AuthError{Err: err}
	}
	return err
}

// IsAuth reports whether err is (or wraps) an AuthError.
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
