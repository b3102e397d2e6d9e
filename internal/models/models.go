package models

import "time"

// PageState tracks where a page sits in the translation pipeline.
type PageState string

const (
	StateIdle       PageState = "idle"
	StateProcessing PageState = "processing"
	StateCompleted  PageState = "completed"
	StateError      PageState = "error"
)

// ImageData is a raw image payload with its media type.
type ImageData struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}

// Page represents one uploaded manga page in the queue.
//
// Source is set at intake and never mutated afterwards. Output and
// RecognizedText are populated when a translation completes; ErrorMessage is
// populated when one fails. Exactly one of Output/ErrorMessage is set once the
// page reaches a rest state.
type Page struct {
	ID             string     `json:"id"`
	Filename       string     `json:"filename"`
	Source         ImageData  `json:"source"`
	State          PageState  `json:"state"`
	Output         *ImageData `json:"output,omitempty"`
	RecognizedText string     `json:"recognized_text,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// HasOutput reports whether a translated image is available for download.
func (p *Page) HasOutput() bool {
	return p.State == StateCompleted && p.Output != nil && len(p.Output.Data) > 0
}
