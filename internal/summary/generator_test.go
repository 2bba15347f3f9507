package summary

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/medscribe/visitflow/internal/logger"
)

type fakeCaller struct {
	resp       *genai.GenerateContentResponse
	err        error
	lastPrompt string
}

func (f *fakeCaller) GenerateContent(ctx context.Context, prompt string, temperature float32, maxOutputTokens int32) (*genai.GenerateContentResponse, error) {
	f.lastPrompt = prompt
	return f.resp, f.err
}

func textResponse(finish genai.FinishReason, text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				FinishReason: finish,
				Content: &genai.Content{
					Parts: []*genai.Part{{Text: text}},
				},
			},
		},
	}
}

func testPromptDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, version := range []string{"1.2", "1.3"} {
		base := filepath.Join(dir, version)
		if err := os.MkdirAll(base, 0755); err != nil {
			t.Fatal(err)
		}
		prompt := "Summarize:\n{{input}}\nSchema:\n{{schema}}\n"
		if err := os.WriteFile(filepath.Join(base, "prompt.txt"), []byte(prompt), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(base, "schema.json"), []byte(`{"summary": "string"}`), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newTestGenerator(t *testing.T, caller Caller) *Generator {
	t.Helper()
	return NewGenerator(caller, NewPromptStore(testPromptDir(t)), logger.New("error"))
}

func TestGenerateSummarySuccess(t *testing.T) {
	body := "```json\n{\"summary\": \"Routine checkup.\", \"title\": \"Annual physical\"}\n```"
	caller := &fakeCaller{resp: textResponse(genai.FinishReasonStop, body)}
	g := newTestGenerator(t, caller)

	s, err := g.GenerateSummary(context.Background(), "corpus text", "1.3")
	if err != nil {
		t.Fatalf("GenerateSummary() error = %v", err)
	}

	if s.SchemaVersion() != "1.3" {
		t.Errorf("SchemaVersion() = %q, want 1.3", s.SchemaVersion())
	}
	if s.SummaryTitle() != "Annual physical" {
		t.Errorf("SummaryTitle() = %q", s.SummaryTitle())
	}
	v13, ok := s.(*SummaryV13)
	if !ok {
		t.Fatalf("summary type = %T, want *SummaryV13", s)
	}
	if v13.Summary != "Routine checkup." || v13.Version != "1.3" {
		t.Errorf("decoded summary = %+v", v13)
	}
	// prompt must carry both substituted pieces
	if !strings.Contains(caller.lastPrompt, "corpus text") ||
		!strings.Contains(caller.lastPrompt, `{"summary": "string"}`) {
		t.Errorf("prompt missing substitutions: %q", caller.lastPrompt)
	}
}

// Same underlying "hit token budget" status, opposite behavior by call type.
func TestTruncationPolicyDivergence(t *testing.T) {
	resp := textResponse(genai.FinishReasonMaxTokens, "partial...")

	t.Run("questions degrade to empty", func(t *testing.T) {
		g := newTestGenerator(t, &fakeCaller{resp: resp})
		qs, err := g.GenerateQuestions(context.Background(), "transcript")
		if err != nil {
			t.Fatalf("GenerateQuestions() error = %v, want nil", err)
		}
		if len(qs) != 0 {
			t.Errorf("questions = %v, want empty", qs)
		}
	})

	t.Run("summary fails as too long", func(t *testing.T) {
		g := newTestGenerator(t, &fakeCaller{resp: resp})
		_, err := g.GenerateSummary(context.Background(), "corpus", "1.3")
		if !errors.Is(err, ErrInputTooLong) {
			t.Errorf("GenerateSummary() error = %v, want ErrInputTooLong", err)
		}
	})
}

func TestGenerateQuestionsCap(t *testing.T) {
	body := `["q1","q2","q3","q4","q5","q6","q7"]`
	g := newTestGenerator(t, &fakeCaller{resp: textResponse(genai.FinishReasonStop, body)})

	qs, err := g.GenerateQuestions(context.Background(), "transcript")
	if err != nil {
		t.Fatalf("GenerateQuestions() error = %v", err)
	}
	if len(qs) != 3 || qs[0] != "q1" || qs[1] != "q2" || qs[2] != "q3" {
		t.Errorf("questions = %v, want first 3", qs)
	}
}

func TestGenerateQuestionsNonListCoerced(t *testing.T) {
	g := newTestGenerator(t, &fakeCaller{resp: textResponse(genai.FinishReasonStop, `{"not": "a list"}`)})

	qs, err := g.GenerateQuestions(context.Background(), "transcript")
	if err != nil {
		t.Fatalf("GenerateQuestions() error = %v", err)
	}
	if len(qs) != 0 {
		t.Errorf("questions = %v, want empty", qs)
	}
}

func TestMalformedJSONDistinguishable(t *testing.T) {
	g := newTestGenerator(t, &fakeCaller{resp: textResponse(genai.FinishReasonStop, "I'm sorry, plain prose here")})

	_, err := g.GenerateSummary(context.Background(), "corpus", "1.3")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Errorf("error = %v (%T), want ParseError", err, err)
	}
	var abnormal *AbnormalStopError
	if errors.As(err, &abnormal) {
		t.Error("parse failure must not read as abnormal stop")
	}
	if errors.Is(err, ErrNoCandidates) {
		t.Error("parse failure must not read as blocked")
	}
}

func TestNoCandidates(t *testing.T) {
	g := newTestGenerator(t, &fakeCaller{resp: &genai.GenerateContentResponse{}})

	_, err := g.GenerateSummary(context.Background(), "corpus", "1.3")
	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("error = %v, want ErrNoCandidates", err)
	}
}

func TestAbnormalStopCarriesReason(t *testing.T) {
	resp := textResponse(genai.FinishReasonSafety, "partial content")
	resp.Candidates[0].SafetyRatings = []*genai.SafetyRating{
		{Category: genai.HarmCategoryDangerousContent, Probability: genai.HarmProbabilityHigh},
	}
	g := newTestGenerator(t, &fakeCaller{resp: resp})

	_, err := g.GenerateSummary(context.Background(), "corpus", "1.3")
	var abnormal *AbnormalStopError
	if !errors.As(err, &abnormal) {
		t.Fatalf("error = %v (%T), want AbnormalStopError", err, err)
	}
	if abnormal.Reason != string(genai.FinishReasonSafety) {
		t.Errorf("Reason = %q", abnormal.Reason)
	}
	if len(abnormal.SafetyRatings) == 0 {
		t.Error("safety ratings not carried")
	}
	if abnormal.Preview != "partial content" {
		t.Errorf("Preview = %q", abnormal.Preview)
	}
}

func TestEmptyResponse(t *testing.T) {
	g := newTestGenerator(t, &fakeCaller{resp: textResponse(genai.FinishReasonStop, "   ")})

	_, err := g.GenerateSummary(context.Background(), "corpus", "1.3")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("error = %v, want ErrEmptyResponse", err)
	}
}

func TestUnknownSchemaVersionFailsFast(t *testing.T) {
	caller := &fakeCaller{resp: textResponse(genai.FinishReasonStop, `{"summary":"x"}`)}
	g := newTestGenerator(t, caller)

	_, err := g.GenerateSummary(context.Background(), "corpus", "9.9")
	if err == nil {
		t.Fatal("unknown schema version should fail")
	}
	if caller.lastPrompt != "" {
		t.Error("no model call should be made for an unknown version")
	}
}
