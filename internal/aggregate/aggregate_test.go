package aggregate

import (
	"errors"
	"strings"
	"testing"
)

func TestCombineOrdering(t *testing.T) {
	corpus, err := Combine("t-body", "n-body", []string{"d1-body", "d2-body"})
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}

	wantHeaders := []string{
		"=== Audio Transcript ===\nt-body",
		"=== Patient Notes ===\nn-body",
		"=== Document Content (1) ===\nd1-body",
		"=== Document Content (2) ===\nd2-body",
	}

	lastIdx := -1
	for _, h := range wantHeaders {
		idx := strings.Index(corpus, h)
		if idx < 0 {
			t.Fatalf("corpus missing section %q:\n%s", h, corpus)
		}
		if idx < lastIdx {
			t.Errorf("section %q out of order", h)
		}
		lastIdx = idx
	}

	if !strings.Contains(corpus, "t-body\n\n=== Patient Notes ===") {
		t.Error("sections not joined by a blank line")
	}
}

func TestCombineSingleDocumentUnnumbered(t *testing.T) {
	corpus, err := Combine("", "", []string{"only-doc"})
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}
	if !strings.Contains(corpus, "=== Document Content ===\nonly-doc") {
		t.Errorf("single document should keep the plain label:\n%s", corpus)
	}
	if strings.Contains(corpus, "(1)") {
		t.Error("single document should not be numbered")
	}
}

func TestCombineSkipsEmptySources(t *testing.T) {
	corpus, err := Combine("  \n\t", "real notes", []string{"", "   "})
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}
	if strings.Contains(corpus, "Audio Transcript") || strings.Contains(corpus, "Document Content") {
		t.Errorf("whitespace-only sources must be dropped:\n%s", corpus)
	}
	if !strings.Contains(corpus, "=== Patient Notes ===\nreal notes") {
		t.Errorf("notes section missing:\n%s", corpus)
	}
}

func TestCombineEmptyInput(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		notes      string
		documents  []string
	}{
		{"all absent", "", "", nil},
		{"all whitespace", " ", "\n", []string{"\t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Combine(tt.transcript, tt.notes, tt.documents)
			if !errors.Is(err, ErrEmptyCorpus) {
				t.Errorf("Combine() error = %v, want ErrEmptyCorpus", err)
			}
		})
	}
}
