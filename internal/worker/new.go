package worker

import (
	"github.com/medscribe/visitflow/internal/appointment"
	"github.com/medscribe/visitflow/internal/config"
	"github.com/medscribe/visitflow/internal/logger"
)

type implProcessor struct {
	cfg         *config.Config
	normalizer  appointment.Normalizer
	splitter    appointment.Splitter
	transcriber appointment.Transcriber
	generator   appointment.Summarizer
	logger      logger.Logger
}

// New creates a new Processor instance
func New(
	cfg *config.Config,
	normalizer appointment.Normalizer,
	splitter appointment.Splitter,
	transcriber appointment.Transcriber,
	generator appointment.Summarizer,
	log logger.Logger,
) Processor {
	return &implProcessor{
		cfg:         cfg,
		normalizer:  normalizer,
		splitter:    splitter,
		transcriber: transcriber,
		generator:   generator,
		logger:      log,
	}
}
