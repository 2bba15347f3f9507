package transcribe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medscribe/visitflow/internal/audio"
	"github.com/medscribe/visitflow/internal/logger"
)

// Client transcribes one audio chunk at a time: the chunk is stream-decoded
// to PCM frames which are pushed into a streaming recognition call while
// results are consumed concurrently. Plain and diarized transcription share
// this machinery and differ only in what they extract from final results.
type Client struct {
	recognizer Recognizer
	normalizer *audio.Normalizer
	logger     logger.Logger
	diarize    bool
	timeout    time.Duration
}

// NewClient creates a transcription Client. timeout bounds each chunk's
// recognition call; <= 0 selects a 2 minute default.
func NewClient(rec Recognizer, norm *audio.Normalizer, log logger.Logger, diarize bool, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		recognizer: rec,
		normalizer: norm,
		logger:     log,
		diarize:    diarize,
		timeout:    timeout,
	}
}

// Diarized reports whether this client extracts per-word speaker tags.
func (c *Client) Diarized() bool {
	return c.diarize
}

// TranscribeChunk decodes chunkBytes incrementally and feeds the PCM frames
// to the recognition backend. An error from either side of the decode pipe
// or from recognition fails the chunk; the input is assumed bad rather than
// the failure transient, so callers must not retry the same bytes.
func (c *Client) TranscribeChunk(ctx context.Context, chunkBytes []byte, format string) (Fragment, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug(ctx, "Transcribing chunk: %d bytes, diarize=%v", len(chunkBytes), c.diarize)

	frames, decodeErr := c.normalizer.NormalizeStream(ctx, chunkBytes, format)

	results, err := c.recognizer.StreamingRecognize(ctx, frames)
	if err != nil {
		return Fragment{}, fmt.Errorf("streaming recognition: %w", err)
	}

	// The recognizer only returns after the frame channel closes, so the
	// decoder's verdict is already available.
	if derr := <-decodeErr; derr != nil {
		return Fragment{}, fmt.Errorf("decode chunk audio: %w", derr)
	}

	return c.assemble(results), nil
}

// assemble flattens final results in arrival order into a Fragment.
func (c *Client) assemble(results []FinalResult) Fragment {
	if c.diarize {
		var words []DiarizedWord
		for _, res := range results {
			words = append(words, res.Words...)
		}
		return Fragment{Words: words}
	}

	var parts []string
	for _, res := range results {
		if res.Transcript != "" {
			parts = append(parts, res.Transcript)
		}
	}
	return Fragment{Text: strings.Join(parts, " ")}
}

// Render returns the fragment's text-to-append: the plain transcript, or the
// stitched speaker turns rendered one per line in diarization mode.
func (c *Client) Render(f Fragment) string {
	if c.diarize {
		return FormatTurns(Stitch(f.Words))
	}
	return f.Text
}
