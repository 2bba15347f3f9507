package transcribe

import "context"

// Recognizer drives a streaming recognition call: PCM frames are pushed from
// the supplied channel while results are consumed concurrently. Only final
// results are returned, in arrival order.
type Recognizer interface {
	StreamingRecognize(ctx context.Context, frames <-chan []byte) ([]FinalResult, error)
}
