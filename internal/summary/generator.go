package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/medscribe/visitflow/internal/logger"
)

// Sampling parameters are fixed per call type: summarization runs cooler
// than question generation and gets a far larger output budget.
const (
	summaryTemperature  float32 = 0.3
	summaryMaxTokens    int32   = 65000
	questionTemperature float32 = 0.2
	questionMaxTokens   int32   = 2048

	maxQuestions = 3
)

// Caller is the narrow surface of the generative backend the Generator
// needs; the concrete client is substituted with a fake in tests.
type Caller interface {
	GenerateContent(ctx context.Context, prompt string, temperature float32, maxOutputTokens int32) (*genai.GenerateContentResponse, error)
}

// GeminiCaller implements Caller on the genai client (Vertex AI backend).
type GeminiCaller struct {
	client *genai.Client
	model  string
}

func NewGeminiCaller(ctx context.Context, projectID, location, model string) (*GeminiCaller, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiCaller{client: client, model: model}, nil
}

func (c *GeminiCaller) GenerateContent(ctx context.Context, prompt string, temperature float32, maxOutputTokens int32) (*genai.GenerateContentResponse, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: maxOutputTokens,
		SafetySettings:  safetySettings(),
	}
	return c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
}

// safetySettings returns permissive thresholds suitable for medical content;
// clinical conversations routinely trip default dangerous-content filters.
func safetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	}
}

// Generator produces structured summaries and patient question lists from a
// combined text corpus.
type Generator struct {
	caller  Caller
	prompts *PromptStore
	logger  logger.Logger
}

func NewGenerator(caller Caller, prompts *PromptStore, log logger.Logger) *Generator {
	return &Generator{
		caller:  caller,
		prompts: prompts,
		logger:  log,
	}
}

// GenerateSummary builds the schema-versioned prompt, invokes the model and
// decodes the validated JSON into the typed summary for that version.
// Truncation is fatal here: a clipped clinical summary must not be presented
// as complete.
func (g *Generator) GenerateSummary(ctx context.Context, corpusText, schemaVersion string) (Structured, error) {
	prompt, err := g.prompts.SummaryPrompt(corpusText, schemaVersion)
	if err != nil {
		return nil, err
	}

	raw, err := g.generateJSON(ctx, prompt, summaryTemperature, summaryMaxTokens)
	if errors.Is(err, ErrTruncated) {
		return nil, fmt.Errorf("%w: %v", ErrInputTooLong, err)
	}
	if err != nil {
		return nil, fmt.Errorf("summary generation: %w", err)
	}

	return Decode(schemaVersion, raw)
}

// GenerateQuestions derives up to three clarifying patient questions from
// the transcript. Truncation degrades gracefully to an empty list, and a
// non-list response is coerced to empty rather than treated as an error.
func (g *Generator) GenerateQuestions(ctx context.Context, transcript string) ([]string, error) {
	raw, err := g.generateJSON(ctx, QuestionsPrompt(transcript), questionTemperature, questionMaxTokens)
	if errors.Is(err, ErrTruncated) {
		g.logger.Warn(ctx, "Hit token budget during question generation, returning empty list")
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("question generation: %w", err)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ParseError{Err: err}
	}

	list, ok := parsed.([]any)
	if !ok {
		return []string{}, nil
	}

	questions := make([]string, 0, maxQuestions)
	for _, item := range list {
		q, ok := item.(string)
		if !ok {
			continue
		}
		questions = append(questions, q)
		if len(questions) == maxQuestions {
			break
		}
	}
	return questions, nil
}

// generateJSON runs one model call and validates the response in order:
// candidates present, finish reason normal, text non-empty, embedded JSON
// well-formed. The returned bytes are the extracted JSON payload.
func (g *Generator) generateJSON(ctx context.Context, prompt string, temperature float32, maxOutputTokens int32) ([]byte, error) {
	resp, err := g.caller.GenerateContent(ctx, prompt, temperature, maxOutputTokens)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, ErrNoCandidates
	}
	cand := resp.Candidates[0]

	switch cand.FinishReason {
	case genai.FinishReasonStop, "":
		// normal stop
	case genai.FinishReasonMaxTokens:
		return nil, fmt.Errorf("%w (finish reason: %s)", ErrTruncated, cand.FinishReason)
	default:
		return nil, &AbnormalStopError{
			Reason:        string(cand.FinishReason),
			SafetyRatings: ratingStrings(cand.SafetyRatings),
			Preview:       preview(candidateText(cand), 200),
		}
	}

	text := candidateText(cand)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}

	jsonText := extractJSON(text)
	if jsonText == "" {
		return nil, &ParseError{Err: errors.New("no JSON content found in response")}
	}
	if !json.Valid([]byte(jsonText)) {
		return nil, &ParseError{Err: fmt.Errorf("response text is not valid JSON: %s", preview(jsonText, 120))}
	}

	return []byte(jsonText), nil
}

func candidateText(cand *genai.Candidate) string {
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func ratingStrings(ratings []*genai.SafetyRating) []string {
	var out []string
	for _, r := range ratings {
		if r != nil {
			out = append(out, fmt.Sprintf("%s: %s", r.Category, r.Probability))
		}
	}
	return out
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
