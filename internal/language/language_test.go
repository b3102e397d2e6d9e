package language

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		want    Target
		wantErr bool
	}{
		{name: "canonical label", label: "English", want: English},
		{name: "lowercase", label: "chinese", want: Chinese},
		{name: "iso code", label: "ja", want: Japanese},
		{name: "native label", label: "中文", want: Chinese},
		{name: "accented alias", label: "Español", want: Spanish},
		{name: "surrounding whitespace", label: "  French ", want: French},
		{name: "empty", label: "", wantErr: true},
		{name: "unsupported", label: "Klingon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.label)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q, got %q", tt.label, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.label, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestAllContainsFiveLanguages(t *testing.T) {
	if len(All()) != 5 {
		t.Errorf("Expected 5 target languages, got %d", len(All()))
	}
}
