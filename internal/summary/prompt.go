package summary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PromptStore loads the schema-versioned prompt assets. Each version is a
// directory <dir>/<version>/ holding prompt.txt (with {{input}} and
// {{schema}} placeholders) and schema.json (descriptive text embedded into
// the prompt, not machine-validated). Adding a version means adding a new
// template+schema pair without touching code.
type PromptStore struct {
	dir string
}

func NewPromptStore(dir string) *PromptStore {
	return &PromptStore{dir: dir}
}

// SummaryPrompt assembles the full summarization prompt for a schema
// version. A missing template or schema file is a fatal configuration
// error, never a silent default.
func (p *PromptStore) SummaryPrompt(corpusText, schemaVersion string) (string, error) {
	base := filepath.Join(p.dir, schemaVersion)

	template, err := os.ReadFile(filepath.Join(base, "prompt.txt"))
	if err != nil {
		return "", fmt.Errorf("prompt template for schema version %s: %w", schemaVersion, err)
	}
	schema, err := os.ReadFile(filepath.Join(base, "schema.json"))
	if err != nil {
		return "", fmt.Errorf("schema file for schema version %s: %w", schemaVersion, err)
	}

	// Plain replacement keeps literal braces in the schema JSON intact.
	prompt := strings.ReplaceAll(string(template), "{{input}}", corpusText)
	prompt = strings.ReplaceAll(prompt, "{{schema}}", string(schema))
	return prompt, nil
}

const questionsPromptTemplate = `This task is for informational note-taking only.
It does not provide medical advice, diagnosis, or treatment.
The output must not present an opinion.

Based on the following medical conversation transcript, generate 0-3 relevant questions that a patient might want to ask their healthcare provider.

These questions should be:
- Relevant to the information discussed
- Common questions patients typically have
- DO NOT hallucinate outside the transcript, and don't make any assumptions or suggestions.

The objective is just to find points from the transcript that might need further clarification. If there are no such clarifying questions, DO NOT return anything.

Transcript:
%s

Return ONLY a JSON array of question strings, nothing else. Format: ["question 1", "question 2", "question 3"]
`

// QuestionsPrompt builds the question-generation prompt. It is not schema
// versioned; the output contract is a bare JSON string array.
func QuestionsPrompt(transcript string) string {
	return fmt.Sprintf(questionsPromptTemplate, transcript)
}
