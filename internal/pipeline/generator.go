package pipeline

import (
	"context"
	"fmt"
	"strings"
)

const (
	ExpectedQuestionCount = 10
	OptionsPerQuestion    = 4
	maxDescriptionChars   = 150
)

// GeminiQuizGenerator produces the raw model response for a transcript. It
// makes exactly one backend call and never retries; transient failures surface
// to the orchestrator.
type GeminiQuizGenerator struct {
	gemini *Gemini
}

func NewGeminiQuizGenerator(gemini *Gemini) *GeminiQuizGenerator {
	return &GeminiQuizGenerator{gemini: gemini}
}

func (g *GeminiQuizGenerator) Generate(ctx context.Context, transcript string) (string, error) {
	return g.gemini.GenerateText(ctx, buildQuizPrompt(transcript))
}

func buildQuizPrompt(transcript string) string {
	var b strings.Builder

	b.WriteString("Based on the following transcript, generate a quiz in valid JSON format.\n")
	b.WriteString("The quiz must follow this exact structure:\n")
	b.WriteString(fmt.Sprintf(`{
  "title": "Create a concise quiz title based on the topic of the transcript.",
  "description": "Summarize the transcript in no more than %d characters. Do not include any quiz questions or answers.",
  "questions": [
    {
      "question_title": "The question goes here.",
      "question_options": ["Option A", "Option B", "Option C", "Option D"],
      "answer": "The correct answer from the above options"
    },
    ...
    (exactly %d questions)
  ]
}
`, maxDescriptionChars, ExpectedQuestionCount))

	b.WriteString("Requirements:\n")
	b.WriteString(fmt.Sprintf("- Each question must have exactly %d distinct answer options.\n", OptionsPerQuestion))
	b.WriteString("- Only one correct answer is allowed per question, and it must be present in 'question_options'.\n")
	b.WriteString("- The output must be valid JSON and parsable as-is.\n")
	b.WriteString("- Do not include explanations, comments, or any text outside the JSON.\n")

	b.WriteString("\nTRANSCRIPT:\n")
	b.WriteString(transcript)
	b.WriteString("\n")

	return b.String()
}

// ExtractJSONObject isolates the candidate payload from a free-form model
// response: the span from the first '{' to the last '}' (greedy, the backend
// is not trusted to honor "JSON only"). Code fences are stripped first.
func ExtractJSONObject(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}
