package worker

import "context"

// Processor defines the interface for local recording processing
type Processor interface {
	Process(ctx context.Context, audioPath string) error
}
