package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hoshinet/pagelate/internal/gemini"
	"github.com/hoshinet/pagelate/internal/language"
	"github.com/hoshinet/pagelate/internal/models"
	"github.com/hoshinet/pagelate/internal/pipeline"
	"github.com/hoshinet/pagelate/internal/storage"
)

type scriptedRecognizer struct {
	err   error
	calls int
}

func (s *scriptedRecognizer) Recognize(ctx context.Context, img models.ImageData, target language.Target, contextHint string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "listing", nil
}

// scriptedInpainter succeeds except on the call numbers listed in failOn.
type scriptedInpainter struct {
	failOn map[int]error
	calls  int
}

func (s *scriptedInpainter) Inpaint(ctx context.Context, img models.ImageData, instruction string) (models.ImageData, error) {
	s.calls++
	if err, ok := s.failOn[s.calls]; ok {
		return models.ImageData{}, err
	}
	return models.ImageData{Data: []byte("out"), MIMEType: "image/png"}, nil
}

type fakeCreds struct {
	cleared bool
}

func (f *fakeCreds) Clear() error {
	f.cleared = true
	return nil
}

func seedQueue(n int) *storage.PageQueue {
	queue := storage.New()
	for i := 1; i <= n; i++ {
		queue.Add(&models.Page{
			ID:       fmt.Sprintf("p%d", i),
			Filename: fmt.Sprintf("page.%02d.jpg", i),
			Source:   models.ImageData{Data: []byte("src"), MIMEType: "image/jpeg"},
			State:    models.StateIdle,
		})
	}
	return queue
}

func newOrchestrator(r pipeline.Recognizer, i pipeline.Inpainter, creds *fakeCreds) *Orchestrator {
	return New(pipeline.New(r, i), creds, time.Minute)
}

func TestRunTranslatesAllPages(t *testing.T) {
	queue := seedQueue(3)
	inpainter := &scriptedInpainter{}
	o := newOrchestrator(&scriptedRecognizer{}, inpainter, &fakeCreds{})

	progress, err := o.Run(context.Background(), queue, language.English, "")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if progress.Completed != 3 || progress.Failed != 0 || progress.Total != 3 {
		t.Errorf("Progress = %+v, want 3/3 completed", progress)
	}
	for _, page := range queue.List() {
		if page.State != models.StateCompleted {
			t.Errorf("Page %s state = %q, want completed", page.ID, page.State)
		}
	}
}

func TestRunHaltsOnAuthFailure(t *testing.T) {
	queue := seedQueue(3)
	inpainter := &scriptedInpainter{failOn: map[int]error{
		2: &gemini.AuthError{Err: errors.New("Requested entity was not found.")},
	}}
	creds := &fakeCreds{}
	o := newOrchestrator(&scriptedRecognizer{}, inpainter, creds)

	progress, err := o.Run(context.Background(), queue, language.English, "")
	if !errors.Is(err, ErrCredentialInvalid) {
		t.Fatalf("Expected ErrCredentialInvalid, got %v", err)
	}

	pages := queue.List()
	if pages[0].State != models.StateCompleted {
		t.Errorf("Page 1 state = %q, want completed", pages[0].State)
	}
	if pages[1].State == models.StateCompleted {
		t.Errorf("Page 2 state = %q, must not be completed", pages[1].State)
	}
	if pages[2].State != models.StateIdle {
		t.Errorf("Page 3 state = %q, want untouched", pages[2].State)
	}
	if inpainter.calls != 2 {
		t.Errorf("Inpainter calls = %d, want 2 (page 3 never attempted)", inpainter.calls)
	}
	if !creds.cleared {
		t.Error("Expected credential to be cleared")
	}
	if progress.Completed != 1 {
		t.Errorf("Progress.Completed = %d, want 1", progress.Completed)
	}
}

func TestRunContinuesPastItemFailure(t *testing.T) {
	queue := seedQueue(3)
	inpainter := &scriptedInpainter{failOn: map[int]error{2: gemini.ErrNoImageReturned}}
	creds := &fakeCreds{}
	o := newOrchestrator(&scriptedRecognizer{}, inpainter, creds)

	progress, err := o.Run(context.Background(), queue, language.English, "")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if progress.Completed != 2 || progress.Failed != 1 {
		t.Errorf("Progress = %+v, want 2 completed / 1 failed", progress)
	}

	pages := queue.List()
	if pages[1].State != models.StateError {
		t.Errorf("Page 2 state = %q, want error", pages[1].State)
	}
	if pages[1].ErrorMessage == "" {
		t.Error("Expected failure message on page 2")
	}
	if pages[2].State != models.StateCompleted {
		t.Errorf("Page 3 state = %q, want completed", pages[2].State)
	}
	if creds.cleared {
		t.Error("Item failure must not clear the credential")
	}
}

func TestRunRecognitionFailureNeverChangesOutcome(t *testing.T) {
	queue := seedQueue(3)
	recognizer := &scriptedRecognizer{err: errors.New("recognition always fails")}
	o := newOrchestrator(recognizer, &scriptedInpainter{}, &fakeCreds{})

	progress, err := o.Run(context.Background(), queue, language.English, "")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if progress.Completed != 3 {
		t.Errorf("Progress.Completed = %d, want 3", progress.Completed)
	}
	for _, page := range queue.List() {
		if page.State != models.StateCompleted {
			t.Errorf("Page %s state = %q, want completed", page.ID, page.State)
		}
		if page.RecognizedText != "" {
			t.Errorf("Page %s recognized text = %q, want empty", page.ID, page.RecognizedText)
		}
	}
}

func TestRunIsIdempotentOverCompletedQueue(t *testing.T) {
	queue := seedQueue(2)
	inpainter := &scriptedInpainter{}
	recognizer := &scriptedRecognizer{}
	o := newOrchestrator(recognizer, inpainter, &fakeCreds{})

	if _, err := o.Run(context.Background(), queue, language.English, ""); err != nil {
		t.Fatalf("First run returned error: %v", err)
	}
	callsAfterFirst := inpainter.calls

	progress, err := o.Run(context.Background(), queue, language.English, "")
	if err != nil {
		t.Fatalf("Second run returned error: %v", err)
	}

	if inpainter.calls != callsAfterFirst || recognizer.calls != callsAfterFirst {
		t.Errorf("Second run performed remote calls: recognize=%d inpaint=%d, want %d each",
			recognizer.calls, inpainter.calls, callsAfterFirst)
	}
	if progress.Completed != 2 {
		t.Errorf("Progress.Completed = %d, want 2", progress.Completed)
	}
}

func TestRunResumesPartiallyCompletedQueue(t *testing.T) {
	queue := seedQueue(3)
	pages := queue.List()
	pages[0].State = models.StateCompleted
	pages[0].Output = &models.ImageData{Data: []byte("done"), MIMEType: "image/png"}

	inpainter := &scriptedInpainter{}
	o := newOrchestrator(&scriptedRecognizer{}, inpainter, &fakeCreds{})

	if _, err := o.Run(context.Background(), queue, language.English, ""); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if inpainter.calls != 2 {
		t.Errorf("Inpainter calls = %d, want 2 (completed page skipped)", inpainter.calls)
	}
}

func TestSnapshot(t *testing.T) {
	queue := seedQueue(4)
	pages := queue.List()
	pages[0].State = models.StateCompleted
	pages[1].State = models.StateError
	pages[2].State = models.StateProcessing

	progress := Snapshot(queue)
	want := Progress{Total: 4, Completed: 1, Failed: 1, Pending: 2}
	if progress != want {
		t.Errorf("Snapshot = %+v, want %+v", progress, want)
	}
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	queue := seedQueue(2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inpainter := &scriptedInpainter{}
	o := newOrchestrator(&scriptedRecognizer{}, inpainter, &fakeCreds{})

	if _, err := o.Run(ctx, queue, language.English, ""); err == nil {
		t.Error("Expected context error")
	}
	if inpainter.calls != 0 {
		t.Errorf("Inpainter calls = %d, want 0 after cancellation", inpainter.calls)
	}
}
