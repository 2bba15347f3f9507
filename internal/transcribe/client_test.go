package transcribe

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/medscribe/visitflow/internal/audio"
	"github.com/medscribe/visitflow/internal/logger"
)

// pipeExecutor emulates the decoder by framing its input bytes unchanged.
type pipeExecutor struct{}

func (pipeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return "", nil
}

func (pipeExecutor) ExecuteWithInput(ctx context.Context, input []byte, name string, args ...string) ([]byte, error) {
	return input, nil
}

func (pipeExecutor) ExecuteStream(ctx context.Context, input io.Reader, frameSize int, name string, args ...string) (<-chan []byte, <-chan error) {
	frames := make(chan []byte)
	errc := make(chan error, 1)
	go func() {
		defer close(frames)
		defer close(errc)
		for {
			buf := make([]byte, frameSize)
			n, err := io.ReadFull(input, buf)
			if n > 0 {
				select {
				case frames <- buf[:n]:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return frames, errc
}

// fakeRecognizer drains the frame stream and returns canned results.
type fakeRecognizer struct {
	results    []FinalResult
	err        error
	framesSeen int
	bytesSeen  int
}

func (f *fakeRecognizer) StreamingRecognize(ctx context.Context, frames <-chan []byte) ([]FinalResult, error) {
	for frame := range frames {
		f.framesSeen++
		f.bytesSeen += len(frame)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func newTestClient(rec Recognizer, diarize bool) *Client {
	log := logger.New("error")
	norm := audio.NewNormalizer(pipeExecutor{}, log, 4)
	return NewClient(rec, norm, log, diarize, 0)
}

func TestTranscribeChunkPlain(t *testing.T) {
	rec := &fakeRecognizer{
		results: []FinalResult{
			{Transcript: "the patient reports"},
			{Transcript: ""},
			{Transcript: "mild chest pain"},
		},
	}
	c := newTestClient(rec, false)

	frag, err := c.TranscribeChunk(context.Background(), []byte("0123456789"), "webm")
	if err != nil {
		t.Fatalf("TranscribeChunk() error = %v", err)
	}

	if frag.Text != "the patient reports mild chest pain" {
		t.Errorf("Text = %q", frag.Text)
	}
	if len(frag.Words) != 0 {
		t.Errorf("plain mode produced %d words", len(frag.Words))
	}
	// 10 input bytes at frame size 4: all bytes must reach the recognizer
	if rec.bytesSeen != 10 || rec.framesSeen != 3 {
		t.Errorf("recognizer saw %d bytes in %d frames, want 10 in 3", rec.bytesSeen, rec.framesSeen)
	}
}

func TestTranscribeChunkDiarized(t *testing.T) {
	rec := &fakeRecognizer{
		results: []FinalResult{
			{Words: []DiarizedWord{{"hello", 1}, {"there", 1}}},
			{Words: []DiarizedWord{{"hi", 2}}},
		},
	}
	c := newTestClient(rec, true)

	frag, err := c.TranscribeChunk(context.Background(), []byte("abcd"), "webm")
	if err != nil {
		t.Fatalf("TranscribeChunk() error = %v", err)
	}

	if len(frag.Words) != 3 {
		t.Fatalf("word count = %d, want 3", len(frag.Words))
	}
	if got := c.Render(frag); got != "Speaker 1: hello there\nSpeaker 2: hi" {
		t.Errorf("Render() = %q", got)
	}
}

func TestTranscribeChunkRecognitionFailure(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("backend unavailable")}
	c := newTestClient(rec, false)

	_, err := c.TranscribeChunk(context.Background(), []byte("abcd"), "webm")
	if err == nil {
		t.Fatal("TranscribeChunk() should fail when recognition fails")
	}
	if !errors.Is(err, rec.err) {
		t.Errorf("error %v does not wrap recognizer error", err)
	}
}
