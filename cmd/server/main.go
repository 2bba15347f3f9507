package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"

	"github.com/medscribe/visitflow/internal/appointment"
	"github.com/medscribe/visitflow/internal/audio"
	"github.com/medscribe/visitflow/internal/auth"
	"github.com/medscribe/visitflow/internal/blob"
	"github.com/medscribe/visitflow/internal/config"
	"github.com/medscribe/visitflow/internal/logger"
	"github.com/medscribe/visitflow/internal/server"
	"github.com/medscribe/visitflow/internal/store"
	"github.com/medscribe/visitflow/internal/summary"
	"github.com/medscribe/visitflow/internal/transcribe"
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
	log.Info(ctx, "Visit processing server starting (project: %s)", cfg.GCP.ProjectID)

	firestoreClient, err := firestore.NewClient(ctx, cfg.GCP.ProjectID)
	if err != nil {
		log.Error(ctx, "Failed to create Firestore client: %v", err)
		os.Exit(1)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		log.Error(ctx, "Failed to create Storage client: %v", err)
		os.Exit(1)
	}
	defer storageClient.Close()

	firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.GCP.ProjectID})
	if err != nil {
		log.Error(ctx, "Failed to init Firebase app: %v", err)
		os.Exit(1)
	}
	verifier, err := auth.NewFirebaseVerifier(ctx, firebaseApp)
	if err != nil {
		log.Error(ctx, "Failed to init token verifier: %v", err)
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

	service := appointment.NewService(
		store.NewFirestore(firestoreClient),
		blob.NewGCS(storageClient, cfg.GCP.Bucket),
		transcriber,
		normalizer,
		chunker,
		generator,
		log,
		cfg.Gemini.SchemaVersion,
	)

	srv := server.New(service, verifier, log)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info(ctx, "Listening on %s", addr)
	if err := srv.Run(addr); err != nil {
		log.Error(ctx, "Server stopped: %v", err)
		os.Exit(1)
	}
}
