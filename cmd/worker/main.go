package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medscribe/visitflow/internal/audio"
	"github.com/medscribe/visitflow/internal/config"
	"github.com/medscribe/visitflow/internal/logger"
	"github.com/medscribe/visitflow/internal/summary"
	"github.com/medscribe/visitflow/internal/transcribe"
	"github.com/medscribe/visitflow/internal/watcher"
	"github.com/medscribe/visitflow/internal/worker"
	"github.com/medscribe/visitflow/pkg/executor"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	log.Info(ctx, "Recording worker starting")
	log.Info(ctx, "Max concurrent processing: %d", cfg.Performance.MaxConcurrent)

	if err := ensureDirectories(cfg); err != nil {
		log.Error(ctx, "Failed to create directories: %v", err)
		os.Exit(1)
	}

	recognizer, err := transcribe.NewGoogleRecognizer(ctx, cfg.Speech, log)
	if err != nil {
		log.Error(ctx, "Failed to create speech client: %v", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	caller, err := summary.NewGeminiCaller(ctx, cfg.GCP.ProjectID, cfg.GCP.Location, cfg.Gemini.Model)
	if err != nil {
		log.Error(ctx, "Failed to create Gemini client: %v", err)
		os.Exit(1)
	}

	exec := executor.New()
	normalizer := audio.NewNormalizer(exec, log, cfg.Audio.FrameSizeBytes)
	chunker := audio.NewChunker(exec, log, time.Duration(cfg.Audio.ChunkDurationMs)*time.Millisecond)
	transcriber := transcribe.NewClient(recognizer, normalizer, log, cfg.Speech.Diarize,
		time.Duration(cfg.Speech.TimeoutSeconds)*time.Second)
	generator := summary.NewGenerator(caller, summary.NewPromptStore(cfg.Gemini.SchemaDir), log)

	proc := worker.New(cfg, normalizer, chunker, transcriber, generator, log)

	w, err := watcher.New(cfg.Paths.Input, proc.Process, log, cfg.Performance.MaxConcurrent)
	if err != nil {
		log.Error(ctx, "Failed to create watcher: %v", err)
		os.Exit(1)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := w.Start(ctx); err != nil && err != context.Canceled {
			errChan <- err
		}
	}()

	log.Info(ctx, "Monitoring: %s", cfg.Paths.Input)
	log.Info(ctx, "Output: %s", cfg.Paths.Output)
	log.Info(ctx, "Press Ctrl+C to stop")

	select {
	case <-sigChan:
		log.Info(ctx, "Shutdown signal received")
	case err := <-errChan:
		log.Error(ctx, "Watcher error: %v", err)
	}

	log.Info(ctx, "Shutting down gracefully...")
	cancel()
	log.Info(ctx, "Recording worker stopped")
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Output,
		cfg.Paths.Temp,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
