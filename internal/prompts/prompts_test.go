package prompts

import (
	"strings"
	"testing"

	"github.com/hoshinet/pagelate/internal/language"
)

func TestRecognition(t *testing.T) {
	tests := []struct {
		name        string
		target      language.Target
		contextHint string
		contains    []string
		excludes    []string
	}{
		{
			name:     "templated language substitution",
			target:   language.Spanish,
			contains: []string{"Spanish translation"},
		},
		{
			name:     "chinese uses fixed prompt",
			target:   language.Chinese,
			contains: []string{"简体中文"},
			excludes: []string{"Chinese translation"},
		},
		{
			name:        "context appended verbatim",
			target:      language.English,
			contextHint: "Reiko is the protagonist's sister",
			contains:    []string{"Reiko is the protagonist's sister"},
		},
		{
			name:        "blank context omitted",
			target:      language.English,
			contextHint: "   ",
			excludes:    []string{"Additional context"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := Recognition(tt.target, tt.contextHint)
			for _, want := range tt.contains {
				if !strings.Contains(prompt, want) {
					t.Errorf("Prompt missing %q:\n%s", want, prompt)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(prompt, unwanted) {
					t.Errorf("Prompt unexpectedly contains %q", unwanted)
				}
			}
		})
	}
}

func TestInpainting(t *testing.T) {
	tests := []struct {
		name      string
		target    language.Target
		reference string
		contains  []string
		excludes  []string
	}{
		{
			name:     "templated language substitution",
			target:   language.French,
			contains: []string{"into French", "Preserve the original artwork"},
		},
		{
			name:     "chinese uses fixed instruction",
			target:   language.Chinese,
			contains: []string{"简体中文"},
			excludes: []string{"into Chinese"},
		},
		{
			name:      "reference listing appended",
			target:    language.English,
			reference: "[top left] こんにちは -> Hello",
			contains:  []string{"reference listing", "[top left] こんにちは -> Hello"},
		},
		{
			name:      "chinese still appends reference",
			target:    language.Chinese,
			reference: "[top] やあ -> 嗨",
			contains:  []string{"[top] やあ -> 嗨"},
		},
		{
			name:      "empty reference omitted",
			target:    language.English,
			reference: "",
			excludes:  []string{"reference listing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instruction := Inpainting(tt.target, tt.reference)
			for _, want := range tt.contains {
				if !strings.Contains(instruction, want) {
					t.Errorf("Instruction missing %q:\n%s", want, instruction)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(instruction, unwanted) {
					t.Errorf("Instruction unexpectedly contains %q", unwanted)
				}
			}
		})
	}
}
