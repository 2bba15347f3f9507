package audio

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/medscribe/visitflow/internal/logger"
	"github.com/medscribe/visitflow/pkg/executor"
)

// Fixed output format: mono 16-bit signed little-endian PCM at 16 kHz.
// This matches the recognition backend's expected input and removes format
// negotiation from every downstream stage.
const (
	SampleRate     = 16000
	Channels       = 1
	BytesPerSample = 2
	BytesPerSecond = SampleRate * Channels * BytesPerSample

	// DefaultFrameSize is ~150ms of audio per streamed frame
	DefaultFrameSize = 4800
)

// Normalizer decodes arbitrary container formats to fixed-rate mono PCM
// by piping bytes through an external ffmpeg process.
type Normalizer struct {
	executor  executor.Executor
	logger    logger.Logger
	frameSize int
}

// NewNormalizer creates a Normalizer yielding frames of frameSize bytes in
// streaming mode. frameSize <= 0 selects the default.
func NewNormalizer(exec executor.Executor, log logger.Logger, frameSize int) *Normalizer {
	if frameSize <= 0 {
		frameSize = DefaultFrameSize
	}
	return &Normalizer{
		executor:  exec,
		logger:    log,
		frameSize: frameSize,
	}
}

// decodeArgs builds the ffmpeg argument list for stdin -> raw PCM on stdout.
// ffmpeg probes the container itself; the declared format tag travels with
// the audio as metadata only.
//   - -i pipe:0     read from stdin
//   - -f s16le      signed 16-bit little-endian output
//   - -ar 16000     16 kHz sample rate
//   - -ac 1         mono
func decodeArgs() []string {
	return []string{
		"-i", "pipe:0",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-ac", fmt.Sprintf("%d", Channels),
		"pipe:1",
	}
}

// Normalize decodes the full audio buffer in one pass and returns the
// complete PCM contents. Used where the whole recording is needed at once
// (chunking a finished recording).
func (n *Normalizer) Normalize(ctx context.Context, audioBytes []byte, format string) ([]byte, error) {
	n.logger.Debug(ctx, "Decoding %d bytes (declared format: %s) to PCM", len(audioBytes), format)

	pcm, err := n.executor.ExecuteWithInput(ctx, audioBytes, "ffmpeg", decodeArgs()...)
	if err != nil {
		return nil, fmt.Errorf("decode audio to PCM: %w", err)
	}

	n.logger.Debug(ctx, "Decoded %d bytes of PCM (~%.2fs)", len(pcm), Duration(len(pcm)).Seconds())
	return pcm, nil
}

// NormalizeStream decodes incrementally, yielding PCM frames as ffmpeg
// produces them so the full decoded buffer is never materialized. The error
// channel delivers at most one error after the frame channel closes.
func (n *Normalizer) NormalizeStream(ctx context.Context, audioBytes []byte, format string) (<-chan []byte, <-chan error) {
	n.logger.Debug(ctx, "Streaming decode of %d bytes (declared format: %s)", len(audioBytes), format)
	return n.executor.ExecuteStream(ctx, bytes.NewReader(audioBytes), n.frameSize, "ffmpeg", decodeArgs()...)
}

// Duration converts a PCM byte count to wall-clock audio duration.
func Duration(pcmBytes int) time.Duration {
	return time.Duration(pcmBytes) * time.Second / BytesPerSecond
}
