package executor

import (
	"context"
	"io"
)

// Executor defines the interface for executing external commands
type Executor interface {
	// Execute runs a command and returns its stdout.
	Execute(ctx context.Context, name string, args ...string) (string, error)

	// ExecuteWithInput runs a command feeding input on stdin and returns
	// the full stdout contents.
	ExecuteWithInput(ctx context.Context, input []byte, name string, args ...string) ([]byte, error)

	// ExecuteStream runs a command feeding input on stdin from one goroutine
	// while stdout is drained on another, delivering fixed-size frames on the
	// returned channel. The error channel receives at most one value after
	// the frame channel is closed; a nil read means the command succeeded.
	ExecuteStream(ctx context.Context, input io.Reader, frameSize int, name string, args ...string) (<-chan []byte, <-chan error)
}
