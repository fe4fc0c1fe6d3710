package pipeline

import (
	"strings"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		ok       bool
	}{
		{
			"bare object",
			`{"title":"T"}`,
			`{"title":"T"}`,
			true,
		},
		{
			"prose wrapping",
			`Sure! Here is your quiz: {"title":"T","questions":[]} Let me know if you need more.`,
			`{"title":"T","questions":[]}`,
			true,
		},
		{
			"markdown fences",
			"```json\n{\"title\":\"T\"}\n```",
			`{"title":"T"}`,
			true,
		},
		{
			"greedy across nested braces",
			`x {"a":{"b":1}} y {"c":2} z`,
			`{"a":{"b":1}} y {"c":2}`,
			true,
		},
		{
			"no object at all",
			`I could not generate a quiz for this transcript.`,
			"",
			false,
		},
		{
			"only closing brace",
			`oops }`,
			"",
			false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tc.raw)
			if ok != tc.ok {
				t.Fatalf("Expected ok=%v, got %v", tc.ok, ok)
			}
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestBuildQuizPrompt(t *testing.T) {
	prompt := buildQuizPrompt("photosynthesis converts light into energy")

	if !strings.Contains(prompt, "photosynthesis converts light into energy") {
		t.Error("Expected prompt to embed the transcript")
	}
	if !strings.Contains(prompt, "exactly 10 questions") {
		t.Error("Expected prompt to pin the question count")
	}
	if !strings.Contains(prompt, "exactly 4 distinct answer options") {
		t.Error("Expected prompt to pin the option count")
	}
	if !strings.Contains(prompt, "question_options") {
		t.Error("Expected prompt to name the schema fields")
	}
	if !strings.Contains(prompt, "no more than 150 characters") {
		t.Error("Expected prompt to bound the description length")
	}
}
