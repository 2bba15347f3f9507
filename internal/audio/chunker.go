package audio

import (
	"context"
	"fmt"
	"time"

	"github.com/medscribe/visitflow/internal/logger"
	"github.com/medscribe/visitflow/pkg/executor"
)

// TransportFormat is the codec chunks are re-encoded to before submission
// to the transcription backend.
const TransportFormat = "webm"

// Chunk is a time-bounded slice of a recording, re-encoded to the transport
// codec. Index is the sole ordering key.
type Chunk struct {
	Index    int
	Data     []byte
	Duration time.Duration
}

// Chunker splits normalized PCM into fixed-duration segments suitable for
// independent transcription.
type Chunker struct {
	executor      executor.Executor
	logger        logger.Logger
	chunkDuration time.Duration
}

// NewChunker creates a Chunker. chunkDuration <= 0 selects the 30s default.
func NewChunker(exec executor.Executor, log logger.Logger, chunkDuration time.Duration) *Chunker {
	if chunkDuration <= 0 {
		chunkDuration = 30 * time.Second
	}
	return &Chunker{
		executor:      exec,
		logger:        log,
		chunkDuration: chunkDuration,
	}
}

// Split cuts PCM strictly by duration (the last chunk may be shorter) and
// re-encodes each piece to webm/opus. A re-encode failure aborts the whole
// recording: a silently truncated transcript is worse than failing loudly.
func (c *Chunker) Split(ctx context.Context, pcm []byte) ([]Chunk, error) {
	parts := c.splitPCM(pcm)
	c.logger.Info(ctx, "Split %.2fs of audio into %d chunks of up to %s",
		Duration(len(pcm)).Seconds(), len(parts), c.chunkDuration)

	chunks := make([]Chunk, 0, len(parts))
	for i, part := range parts {
		encoded, err := c.encode(ctx, part)
		if err != nil {
			return nil, fmt.Errorf("encode chunk %d: %w", i, err)
		}
		chunks = append(chunks, Chunk{
			Index:    i,
			Data:     encoded,
			Duration: Duration(len(part)),
		})
	}

	return chunks, nil
}

// splitPCM slices raw PCM into byte runs of exactly chunkDuration, except the
// last. Concatenating the runs in order reproduces the input exactly.
func (c *Chunker) splitPCM(pcm []byte) [][]byte {
	chunkBytes := int(c.chunkDuration.Milliseconds()) * BytesPerSecond / 1000
	// keep sample alignment
	chunkBytes -= chunkBytes % BytesPerSample

	var parts [][]byte
	for off := 0; off < len(pcm); off += chunkBytes {
		end := off + chunkBytes
		if end > len(pcm) {
			end = len(pcm)
		}
		parts = append(parts, pcm[off:end])
	}
	return parts
}

// encode re-encodes a raw PCM segment to webm/opus via ffmpeg.
func (c *Chunker) encode(ctx context.Context, pcm []byte) ([]byte, error) {
	args := []string{
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-ac", fmt.Sprintf("%d", Channels),
		"-i", "pipe:0",
		"-c:a", "libopus",
		"-b:a", "32k",
		"-f", TransportFormat,
		"pipe:1",
	}

	out, err := c.executor.ExecuteWithInput(ctx, pcm, "ffmpeg", args...)
	if err != nil {
		return nil, err
	}
	return out, nil
}
