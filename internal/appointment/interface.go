package appointment

import (
	"context"

	"github.com/medscribe/visitflow/internal/audio"
	"github.com/medscribe/visitflow/internal/summary"
	"github.com/medscribe/visitflow/internal/transcribe"
)

// Transcriber turns one encoded audio chunk into a transcript fragment.
// Satisfied by *transcribe.Client.
type Transcriber interface {
	TranscribeChunk(ctx context.Context, chunkBytes []byte, format string) (transcribe.Fragment, error)
	Render(f transcribe.Fragment) string
}

// Normalizer decodes arbitrary audio to canonical PCM. Satisfied by
// *audio.Normalizer.
type Normalizer interface {
	Normalize(ctx context.Context, audioBytes []byte, format string) ([]byte, error)
}

// Splitter cuts a PCM stream into bounded, re-encoded chunks. Satisfied by
// *audio.Chunker.
type Splitter interface {
	Split(ctx context.Context, pcm []byte) ([]audio.Chunk, error)
}

// Summarizer produces the structured summary and follow-up questions.
// Satisfied by *summary.Generator.
type Summarizer interface {
	GenerateSummary(ctx context.Context, corpusText, schemaVersion string) (summary.Structured, error)
	GenerateQuestions(ctx context.Context, transcript string) ([]string, error)
}
