package transcribe

import (
	"context"
	"fmt"
	"io"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/medscribe/visitflow/internal/audio"
	"github.com/medscribe/visitflow/internal/config"
	"github.com/medscribe/visitflow/internal/logger"
)

// GoogleRecognizer implements Recognizer on the Cloud Speech-to-Text
// bidirectional streaming API.
type GoogleRecognizer struct {
	client *speech.Client
	cfg    config.SpeechConfig
	logger logger.Logger
}

func NewGoogleRecognizer(ctx context.Context, cfg config.SpeechConfig, log logger.Logger) (*GoogleRecognizer, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return &GoogleRecognizer{
		client: client,
		cfg:    cfg,
		logger: log,
	}, nil
}

func (r *GoogleRecognizer) Close() error {
	return r.client.Close()
}

// recognitionConfig builds the fixed per-call configuration: single language,
// domain-tuned model, enhanced tier, automatic punctuation. Diarization mode
// additionally pins the expected speaker count (clinician + patient).
func (r *GoogleRecognizer) recognitionConfig() *speechpb.RecognitionConfig {
	cfg := &speechpb.RecognitionConfig{
		Encoding:                   speechpb.RecognitionConfig_LINEAR16,
		SampleRateHertz:            audio.SampleRate,
		AudioChannelCount:          audio.Channels,
		LanguageCode:               r.cfg.Language,
		Model:                      r.cfg.Model,
		UseEnhanced:                r.cfg.UseEnhanced,
		EnableAutomaticPunctuation: true,
	}
	if r.cfg.Diarize {
		cfg.DiarizationConfig = &speechpb.SpeakerDiarizationConfig{
			EnableSpeakerDiarization: true,
			MinSpeakerCount:          int32(r.cfg.MinSpeakers),
			MaxSpeakerCount:          int32(r.cfg.MaxSpeakers),
		}
	}
	return cfg
}

// StreamingRecognize pushes frames on one goroutine while draining responses
// on the caller's. Interim hypotheses are discarded; each final result keeps
// its transcript and, in diarization mode, its per-word speaker tags.
func (r *GoogleRecognizer) StreamingRecognize(ctx context.Context, frames <-chan []byte) ([]FinalResult, error) {
	stream, err := r.client.StreamingRecognize(ctx)
	if err != nil {
		return nil, fmt.Errorf("open recognition stream: %w", err)
	}

	if err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config:         r.recognitionConfig(),
				InterimResults: false,
			},
		},
	}); err != nil {
		return nil, fmt.Errorf("send recognition config: %w", err)
	}

	go func() {
		for frame := range frames {
			if err := stream.Send(&speechpb.StreamingRecognizeRequest{
				StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
					AudioContent: frame,
				},
			}); err != nil {
				// The authoritative error surfaces on Recv; keep draining so
				// the decoder side is never blocked on a full channel.
				for range frames {
				}
				return
			}
		}
		if err := stream.CloseSend(); err != nil {
			r.logger.Warn(ctx, "Close recognition send stream: %v", err)
		}
	}()

	var results []FinalResult
	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("receive recognition result: %w", err)
		}

		for _, res := range resp.Results {
			if !res.IsFinal || len(res.Alternatives) == 0 {
				continue
			}
			alt := res.Alternatives[0]
			fr := FinalResult{Transcript: alt.Transcript}
			for _, w := range alt.Words {
				fr.Words = append(fr.Words, DiarizedWord{
					Word:       w.Word,
					SpeakerTag: int(w.SpeakerTag),
				})
			}
			results = append(results, fr)
		}
	}

	r.logger.Debug(ctx, "Streaming recognition finished: %d final results", len(results))
	return results, nil
}
