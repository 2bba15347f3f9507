package appointment

import (
	"context"
	"fmt"
	"strings"

	"github.com/medscribe/visitflow/internal/aggregate"
	"github.com/medscribe/visitflow/internal/audio"
	"github.com/medscribe/visitflow/internal/blob"
	"github.com/medscribe/visitflow/internal/document"
	"github.com/medscribe/visitflow/internal/logger"
	"github.com/medscribe/visitflow/internal/store"
	"github.com/medscribe/visitflow/internal/summary"
)

// ChunkError reports a transcription failure partway through a recording:
// which chunk failed and how many chunks completed before it.
type ChunkError struct {
	Index     int
	Completed int
	Err       error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("transcribe chunk %d (after %d completed): %v", e.Index, e.Completed, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// Service is the visit-processing orchestrator. Every operation is scoped
// to one user's appointment and persists its outcome before returning.
type Service struct {
	store         store.AppointmentStore
	blobs         blob.BlobStore
	transcriber   Transcriber
	normalizer    Normalizer
	splitter      Splitter
	generator     Summarizer
	logger        logger.Logger
	schemaVersion string
}

func NewService(
	st store.AppointmentStore,
	blobs blob.BlobStore,
	transcriber Transcriber,
	normalizer Normalizer,
	splitter Splitter,
	generator Summarizer,
	log logger.Logger,
	schemaVersion string,
) *Service {
	return &Service{
		store:         st,
		blobs:         blobs,
		transcriber:   transcriber,
		normalizer:    normalizer,
		splitter:      splitter,
		generator:     generator,
		logger:        log,
		schemaVersion: schemaVersion,
	}
}

func chunkPath(appointmentID, name string) string {
	return fmt.Sprintf("chunks/%s/%s", appointmentID, name)
}

func recordingPath(appointmentID, name string) string {
	return fmt.Sprintf("recordings/%s/%s", appointmentID, name)
}

func documentPath(appointmentID, name string) string {
	return fmt.Sprintf("documents/%s/%s", appointmentID, name)
}

// Process runs the full pipeline for an appointment: resolve the
// transcript (stored text, or transcribe the stored recording), extract
// document text, combine everything and generate the structured summary.
// The record's status reflects the outcome.
func (s *Service) Process(ctx context.Context, uid, appointmentID string) (summary.Structured, error) {
	appt, err := s.store.Get(ctx, uid, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, uid, appointmentID, map[string]any{
		"status": store.StatusInProgress,
	}); err != nil {
		return nil, err
	}

	result, err := s.process(ctx, uid, appointmentID, appt)
	if err != nil {
		if uerr := s.store.Update(ctx, uid, appointmentID, map[string]any{
			"status":       store.StatusError,
			"errorMessage": err.Error(),
		}); uerr != nil {
			s.logger.Error(ctx, "Failed to record processing error for %s: %v", appointmentID, uerr)
		}
		return nil, err
	}
	return result, nil
}

func (s *Service) process(ctx context.Context, uid, appointmentID string, appt *store.Appointment) (summary.Structured, error) {
	transcript := appt.RawTranscript

	// A recording with no transcript yet means chunk uploads never ran;
	// transcribe the whole stored file now.
	if transcript == "" && appt.RecordingLink != "" {
		data, err := s.blobs.Get(ctx, blob.ObjectPath(appt.RecordingLink))
		if err != nil {
			return nil, fmt.Errorf("fetch recording: %w", err)
		}
		transcript, err = s.transcribeRecording(ctx, appointmentID, data, audio.DetectFormat(appt.RecordingLink))
		if err != nil {
			return nil, err
		}
		if err := s.store.Update(ctx, uid, appointmentID, map[string]any{
			"rawTranscript": transcript,
		}); err != nil {
			return nil, err
		}
	}

	docTexts := s.documentTexts(ctx, appt.DocumentLinks)

	corpus, err := aggregate.Combine(transcript, appt.Notes, docTexts)
	if err != nil {
		return nil, err
	}

	structured, err := s.generator.GenerateSummary(ctx, corpus, s.schemaVersion)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"processedSummary": structured,
		"status":           store.StatusCompleted,
	}
	if appt.Title == "" && structured.SummaryTitle() != "" {
		fields["title"] = structured.SummaryTitle()
	}
	if err := s.store.Update(ctx, uid, appointmentID, fields); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Processed appointment %s (schema %s)", appointmentID, structured.SchemaVersion())
	return structured, nil
}

// documentTexts extracts text from each linked document. A document that
// cannot be fetched or parsed is skipped with a warning so one bad upload
// does not block the whole summary.
func (s *Service) documentTexts(ctx context.Context, links []string) []string {
	var texts []string
	for _, link := range links {
		data, err := s.blobs.Get(ctx, blob.ObjectPath(link))
		if err != nil {
			s.logger.Warn(ctx, "Skipping document %s: %v", link, err)
			continue
		}
		text, err := document.ExtractText(data)
		if err != nil {
			s.logger.Warn(ctx, "Skipping unparseable document %s: %v", link, err)
			continue
		}
		texts = append(texts, text)
	}
	return texts
}

// transcribeRecording normalizes a full recording, splits it into bounded
// chunks, backs each chunk up and transcribes them in order. Chunk
// transcripts are joined with newlines in chunk order.
func (s *Service) transcribeRecording(ctx context.Context, appointmentID string, data []byte, format string) (string, error) {
	pcm, err := s.normalizer.Normalize(ctx, data, format)
	if err != nil {
		return "", fmt.Errorf("decode recording: %w", err)
	}

	chunks, err := s.splitter.Split(ctx, pcm)
	if err != nil {
		return "", fmt.Errorf("split recording: %w", err)
	}

	var parts []string
	for _, chunk := range chunks {
		name := fmt.Sprintf("chunk_%04d.%s", chunk.Index, audio.TransportFormat)
		if _, err := s.blobs.Put(ctx, chunkPath(appointmentID, name), chunk.Data, "audio/webm"); err != nil {
			s.logger.Warn(ctx, "Chunk backup failed for %s %s: %v", appointmentID, name, err)
		}

		frag, err := s.transcriber.TranscribeChunk(ctx, chunk.Data, audio.TransportFormat)
		if err != nil {
			return "", &ChunkError{Index: chunk.Index, Completed: len(parts), Err: err}
		}
		if text := s.transcriber.Render(frag); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// UploadAudioChunk backs up one live-recorded chunk, transcribes it and
// appends the text to the stored transcript. The record is re-read right
// before the append so concurrent chunk uploads do not drop each other's
// text. Returns the text added by this chunk.
func (s *Service) UploadAudioChunk(ctx context.Context, uid, appointmentID, filename string, data []byte) (string, error) {
	if _, err := s.store.Get(ctx, uid, appointmentID); err != nil {
		return "", err
	}

	if _, err := s.blobs.Put(ctx, chunkPath(appointmentID, filename), data, "audio/webm"); err != nil {
		s.logger.Warn(ctx, "Chunk backup failed for %s %s: %v", appointmentID, filename, err)
	}

	frag, err := s.transcriber.TranscribeChunk(ctx, data, audio.DetectFormat(filename))
	if err != nil {
		return "", fmt.Errorf("transcribe chunk: %w", err)
	}
	text := s.transcriber.Render(frag)
	if text == "" {
		return "", nil
	}

	appt, err := s.store.Get(ctx, uid, appointmentID)
	if err != nil {
		return "", err
	}
	transcript := text
	if appt.RawTranscript != "" {
		transcript = appt.RawTranscript + "\n" + text
	}

	if err := s.store.Update(ctx, uid, appointmentID, map[string]any{
		"rawTranscript": transcript,
		"status":        store.StatusInProgress,
	}); err != nil {
		return "", err
	}
	return text, nil
}

// UploadRecording stores a complete recording, transcribes it chunk by
// chunk and appends the result to the stored transcript.
func (s *Service) UploadRecording(ctx context.Context, uid, appointmentID, filename string, data []byte) (string, error) {
	if _, err := s.store.Get(ctx, uid, appointmentID); err != nil {
		return "", err
	}

	uri, err := s.blobs.Put(ctx, recordingPath(appointmentID, filename), data, "audio/webm")
	if err != nil {
		return "", fmt.Errorf("store recording: %w", err)
	}
	if err := s.store.Update(ctx, uid, appointmentID, map[string]any{
		"recordingLink": uri,
	}); err != nil {
		return "", err
	}

	transcript, err := s.transcribeRecording(ctx, appointmentID, data, audio.DetectFormat(filename))
	if err != nil {
		return "", err
	}
	if transcript == "" {
		return "", nil
	}

	appt, err := s.store.Get(ctx, uid, appointmentID)
	if err != nil {
		return "", err
	}
	combined := transcript
	if appt.RawTranscript != "" {
		combined = appt.RawTranscript + "\n" + transcript
	}

	if err := s.store.Update(ctx, uid, appointmentID, map[string]any{
		"rawTranscript": combined,
		"status":        store.StatusInProgress,
	}); err != nil {
		return "", err
	}
	return transcript, nil
}

// UploadNotes replaces the patient notes on the record.
func (s *Service) UploadNotes(ctx context.Context, uid, appointmentID, notes string) error {
	if _, err := s.store.Get(ctx, uid, appointmentID); err != nil {
		return err
	}
	return s.store.Update(ctx, uid, appointmentID, map[string]any{
		"notes": notes,
	})
}

// UploadDocument stores a document and links it to the record. Returns the
// stored URI.
func (s *Service) UploadDocument(ctx context.Context, uid, appointmentID, filename string, data []byte) (string, error) {
	appt, err := s.store.Get(ctx, uid, appointmentID)
	if err != nil {
		return "", err
	}

	uri, err := s.blobs.Put(ctx, documentPath(appointmentID, filename), data, "application/pdf")
	if err != nil {
		return "", fmt.Errorf("store document: %w", err)
	}

	links := append(appt.DocumentLinks, uri)
	if err := s.store.Update(ctx, uid, appointmentID, map[string]any{
		"documentLinks": links,
	}); err != nil {
		return "", err
	}
	return uri, nil
}

// GenerateQuestions derives patient questions from the best available text:
// the transcript, falling back to notes, falling back to the narrative of a
// previously generated summary. The result is persisted on the record.
func (s *Service) GenerateQuestions(ctx context.Context, uid, appointmentID string) ([]string, error) {
	appt, err := s.store.Get(ctx, uid, appointmentID)
	if err != nil {
		return nil, err
	}

	text := appt.RawTranscript
	if strings.TrimSpace(text) == "" {
		text = appt.Notes
	}
	if strings.TrimSpace(text) == "" {
		if narrative, ok := appt.ProcessedSummary["summary"].(string); ok {
			text = narrative
		}
	}
	if strings.TrimSpace(text) == "" {
		return nil, aggregate.ErrEmptyCorpus
	}

	questions, err := s.generator.GenerateQuestions(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, uid, appointmentID, map[string]any{
		"suggestedQuestions": questions,
	}); err != nil {
		return nil, err
	}
	return questions, nil
}

// DeleteRecordingData removes the stored recording, its backed-up chunks
// and the transcript derived from them. Notes, documents and any generated
// summary are kept.
func (s *Service) DeleteRecordingData(ctx context.Context, uid, appointmentID string) error {
	if _, err := s.store.Get(ctx, uid, appointmentID); err != nil {
		return err
	}

	for _, prefix := range []string{
		fmt.Sprintf("chunks/%s/", appointmentID),
		fmt.Sprintf("recordings/%s/", appointmentID),
	} {
		if err := s.blobs.DeleteByPrefix(ctx, prefix); err != nil {
			return fmt.Errorf("delete recording data: %w", err)
		}
	}

	return s.store.Update(ctx, uid, appointmentID, map[string]any{
		"rawTranscript": "",
		"recordingLink": "",
	})
}
