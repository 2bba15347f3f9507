package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/medscribe/visitflow/internal/aggregate"
	"github.com/medscribe/visitflow/internal/audio"
	"github.com/medscribe/visitflow/internal/export"
)

// Process runs the full local pipeline on one recording: decode, split,
// transcribe each chunk, summarize, and write the structured summary as
// JSON plus a formatted docx next to it in the output folder.
func (p *implProcessor) Process(ctx context.Context, audioPath string) error {
	startTime := time.Now()
	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))

	p.logger.Info(ctx, "Processing recording: %s", audioPath)

	transcript, err := p.transcribeFile(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}

	corpus, err := aggregate.Combine(transcript, "", nil)
	if err != nil {
		return err
	}

	structured, err := p.generator.GenerateSummary(ctx, corpus, p.cfg.Gemini.SchemaVersion)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	jsonPath := filepath.Join(p.cfg.Paths.Output, baseName+".summary.json")
	if err := writeJSON(jsonPath, structured); err != nil {
		return fmt.Errorf("write summary json: %w", err)
	}

	docxPath := filepath.Join(p.cfg.Paths.Output, baseName+".docx")
	if err := export.WriteDocx(structured, docxPath); err != nil {
		return fmt.Errorf("write summary docx: %w", err)
	}

	transcriptPath := filepath.Join(p.cfg.Paths.Output, baseName+".transcript.txt")
	if err := os.WriteFile(transcriptPath, []byte(transcript), 0644); err != nil {
		p.logger.Warn(ctx, "Failed to write transcript file: %v", err)
	}

	if err := p.moveToArchived(ctx, audioPath); err != nil {
		p.logger.Warn(ctx, "Failed to archive original recording: %v", err)
	}

	p.logger.Info(ctx, "Processing completed in %s: %s, %s", time.Since(startTime), jsonPath, docxPath)
	return nil
}

// transcribeFile decodes the recording to PCM, splits it into bounded
// chunks and transcribes them in order. Chunk transcripts are joined with
// newlines.
func (p *implProcessor) transcribeFile(ctx context.Context, audioPath string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read recording: %w", err)
	}

	pcm, err := p.normalizer.Normalize(ctx, data, audio.DetectFormat(audioPath))
	if err != nil {
		return "", fmt.Errorf("decode recording: %w", err)
	}
	p.logger.Info(ctx, "Decoded %s of audio", audio.Duration(len(pcm)))

	chunks, err := p.splitter.Split(ctx, pcm)
	if err != nil {
		return "", fmt.Errorf("split recording: %w", err)
	}

	var parts []string
	for _, chunk := range chunks {
		frag, err := p.transcriber.TranscribeChunk(ctx, chunk.Data, audio.TransportFormat)
		if err != nil {
			return "", fmt.Errorf("chunk %d: %w", chunk.Index, err)
		}
		if text := p.transcriber.Render(frag); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// moveToArchived moves a processed recording out of the input folder
func (p *implProcessor) moveToArchived(ctx context.Context, audioPath string) error {
	archiveDir := filepath.Join(p.cfg.Paths.Output, "archived")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return fmt.Errorf("create archive folder: %w", err)
	}

	destPath := filepath.Join(archiveDir, filepath.Base(audioPath))
	p.logger.Debug(ctx, "Archiving: %s -> %s", audioPath, destPath)

	if err := os.Rename(audioPath, destPath); err != nil {
		return fmt.Errorf("move to archive: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
