package language

import (
	"fmt"
	"strings"
)

// Target is a supported translation target language.
type Target string

const (
	Chinese  Target = "Chinese"
	English  Target = "English"
	Spanish  Target = "Spanish"
	French   Target = "French"
	Japanese Target = "Japanese"
)

// All lists the supported targets in display order.
func All() []Target {
	return []Target{Chinese, English, Spanish, French, Japanese}
}

var aliases = map[string]Target{
	"chinese":  Chinese,
	"zh":       Chinese,
	"中文":       Chinese,
	"简体中文":     Chinese,
	"english":  English,
	"en":       English,
	"spanish":  Spanish,
	"es":       Spanish,
	"español":  Spanish,
	"espanol":  Spanish,
	"french":   French,
	"fr":       French,
	"français": French,
	"francais": French,
	"japanese": Japanese,
	"ja":       Japanese,
	"日本語":      Japanese,
}

// Parse resolves a user-supplied label to a Target. Matching is
// case-insensitive and accepts ISO codes and native labels.
func Parse(label string) (Target, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		return "", fmt.Errorf("target language is required")
	}
	if t, ok := aliases[key]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unsupported target language %q", label)
}

func (t Target) String() string {
	return string(t)
}
