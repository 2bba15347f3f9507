// Package aggregate merges the text sources of an appointment (transcript,
// notes, extracted document text) into the single labeled corpus handed to
// summarization.
package aggregate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCorpus is returned when no usable text remains after trimming.
// It fires before any model call is attempted.
var ErrEmptyCorpus = errors.New("no text content available to process")

const (
	transcriptLabel = "Audio Transcript"
	notesLabel      = "Patient Notes"
	documentLabel   = "Document Content"
)

// Source is one labeled block of the combined corpus.
type Source struct {
	Label string
	Body  string
}

// Sources assembles the ordered, non-empty source list: transcript first,
// then notes, then documents in upload order. Document labels are numbered
// when more than one document is present.
func Sources(transcript, notes string, documents []string) []Source {
	var sources []Source

	if strings.TrimSpace(transcript) != "" {
		sources = append(sources, Source{Label: transcriptLabel, Body: transcript})
	}
	if strings.TrimSpace(notes) != "" {
		sources = append(sources, Source{Label: notesLabel, Body: notes})
	}
	for i, doc := range documents {
		if strings.TrimSpace(doc) == "" {
			continue
		}
		label := documentLabel
		if len(documents) > 1 {
			label = fmt.Sprintf("%s (%d)", documentLabel, i+1)
		}
		sources = append(sources, Source{Label: label, Body: doc})
	}

	return sources
}

// Combine renders each source as "=== Label ===\nbody", sections joined by a
// blank line. An effectively empty corpus is an input error, not a model one.
func Combine(transcript, notes string, documents []string) (string, error) {
	sources := Sources(transcript, notes, documents)

	sections := make([]string, 0, len(sources))
	for _, s := range sources {
		sections = append(sections, fmt.Sprintf("=== %s ===\n%s", s.Label, s.Body))
	}

	combined := strings.Join(sections, "\n\n")
	if strings.TrimSpace(combined) == "" {
		return "", ErrEmptyCorpus
	}
	return combined, nil
}
