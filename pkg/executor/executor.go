package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

type implExecutor struct{}

// New creates a new Executor instance
func New() Executor {
	return &implExecutor{}
}

// Execute runs an external command with the given arguments
func (e *implExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", commandError(name, err, &stderr)
	}

	return stdout.String(), nil
}

// ExecuteWithInput runs an external command with input bytes piped to stdin
func (e *implExecutor) ExecuteWithInput(ctx context.Context, input []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, commandError(name, err, &stderr)
	}

	return stdout.Bytes(), nil
}

// ExecuteStream runs an external command with stdin fed by one goroutine while
// stdout is drained in fixed-size frames by another. Writing and reading on
// separate goroutines avoids deadlock when both pipe buffers fill up.
func (e *implExecutor) ExecuteStream(ctx context.Context, input io.Reader, frameSize int, name string, args ...string) (<-chan []byte, <-chan error) {
	frames := make(chan []byte)
	errc := make(chan error, 1)

	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		errc <- fmt.Errorf("command '%s' stdin pipe: %w", name, err)
		close(frames)
		close(errc)
		return frames, errc
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		errc <- fmt.Errorf("command '%s' stdout pipe: %w", name, err)
		close(frames)
		close(errc)
		return frames, errc
	}

	if err := cmd.Start(); err != nil {
		errc <- fmt.Errorf("command '%s' start: %w", name, err)
		close(frames)
		close(errc)
		return frames, errc
	}

	// Feeder: copy input to stdin, then close it so the command sees EOF
	writeErr := make(chan error, 1)
	go func() {
		_, err := io.Copy(stdin, input)
		stdin.Close()
		writeErr <- err
	}()

	// Drainer: read fixed-size frames until stdout closes
	go func() {
		defer close(frames)
		defer close(errc)

		var readErr error
		for {
			buf := make([]byte, frameSize)
			n, err := io.ReadFull(stdout, buf)
			if n > 0 {
				select {
				case frames <- buf[:n]:
				case <-ctx.Done():
					readErr = ctx.Err()
				}
			}
			if err != nil {
				if err != io.EOF && err != io.ErrUnexpectedEOF {
					readErr = err
				}
				break
			}
			if readErr != nil {
				break
			}
		}

		waitErr := cmd.Wait()
		ferr := <-writeErr

		switch {
		case waitErr != nil:
			errc <- commandError(name, waitErr, &stderr)
		case readErr != nil:
			errc <- fmt.Errorf("command '%s' read output: %w", name, readErr)
		case ferr != nil:
			errc <- fmt.Errorf("command '%s' write input: %w", name, ferr)
		}
	}()

	return frames, errc
}

// commandError includes trimmed stderr in the error message for debugging
func commandError(name string, err error, stderr *bytes.Buffer) error {
	stderrStr := strings.TrimSpace(stderr.String())
	if stderrStr != "" {
		return fmt.Errorf("command '%s' failed: %w\nstderr: %s", name, err, stderrStr)
	}
	return fmt.Errorf("command '%s' failed: %w", name, err)
}
