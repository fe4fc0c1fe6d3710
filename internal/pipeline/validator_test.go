package pipeline

import (
	"errors"
	"reflect"
	"testing"
)

const validSingleQuestion = `{"title":"T","description":"D","questions":[{"question_title":"Q1","question_options":["A","B","C","D"],"answer":"B"}]}`

func TestValidate_SingleQuestionCandidate(t *testing.T) {
	candidate, err := Validate([]byte(validSingleQuestion))
	if err != nil {
		t.Fatalf("Expected valid candidate, got error: %v", err)
	}

	if candidate.Title != "T" || candidate.Description != "D" {
		t.Errorf("Unexpected title/description: %q %q", candidate.Title, candidate.Description)
	}
	if len(candidate.Questions) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(candidate.Questions))
	}
	if candidate.Questions[0].Answer != "B" {
		t.Errorf("Expected answer B, got %q", candidate.Questions[0].Answer)
	}
	if !candidate.CountMismatch {
		t.Error("Expected CountMismatch flag for a 1-question quiz")
	}
}

func TestValidate_SchemaFailures(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		kind    string
	}{
		{
			"not json at all",
			`quiz time!`,
			KindInvalidJSON,
		},
		{
			"unknown top-level key rejected",
			`{"title":"T","description":"D","questions":[],"difficulty":"hard"}`,
			KindInvalidJSON,
		},
		{
			"missing questions key",
			`{"title":"T","description":"D"}`,
			KindMissingField,
		},
		{
			"empty title",
			`{"title":"","description":"D","questions":[{"question_title":"Q","question_options":["A","B","C","D"],"answer":"A"}]}`,
			KindMissingField,
		},
		{
			"zero questions",
			`{"title":"T","description":"D","questions":[]}`,
			KindCountMismatch,
		},
		{
			"question missing answer",
			`{"title":"T","description":"D","questions":[{"question_title":"Q","question_options":["A","B","C","D"]}]}`,
			KindMissingField,
		},
		{
			"three options",
			`{"title":"T","description":"D","questions":[{"question_title":"Q","question_options":["A","B","C"],"answer":"A"}]}`,
			KindBadOptionCount,
		},
		{
			"five options",
			`{"title":"T","description":"D","questions":[{"question_title":"Q","question_options":["A","B","C","D","E"],"answer":"A"}]}`,
			KindBadOptionCount,
		},
		{
			"duplicate options",
			`{"title":"T","description":"D","questions":[{"question_title":"Q","question_options":["A","A","C","D"],"answer":"A"}]}`,
			KindBadOptionCount,
		},
		{
			"answer not among options",
			`{"title":"T","description":"D","questions":[{"question_title":"Q","question_options":["A","B","C","D"],"answer":"E"}]}`,
			KindAnswerNotInOptions,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate([]byte(tc.payload))
			if err == nil {
				t.Fatal("Expected a schema error")
			}

			var se *StageError
			if !errors.As(err, &se) {
				t.Fatalf("Expected *StageError, got %T", err)
			}
			if se.Stage != StageValidate {
				t.Errorf("Expected validate stage, got %s", se.Stage)
			}
			if se.Kind != tc.kind {
				t.Errorf("Expected kind %s, got %s", tc.kind, se.Kind)
			}
		})
	}
}

func TestValidate_TenQuestionsNoMismatch(t *testing.T) {
	payload := `{"title":"T","description":"D","questions":[`
	for i := 0; i < 10; i++ {
		if i > 0 {
			payload += ","
		}
		payload += `{"question_title":"Q","question_options":["A","B","C","D"],"answer":"A"}`
	}
	payload += `]}`

	candidate, err := Validate([]byte(payload))
	if err != nil {
		t.Fatalf("Expected valid candidate, got error: %v", err)
	}
	if candidate.CountMismatch {
		t.Error("Expected no CountMismatch flag for exactly 10 questions")
	}
	if len(candidate.Questions) != 10 {
		t.Errorf("Expected 10 questions, got %d", len(candidate.Questions))
	}
}

func TestValidate_Idempotent(t *testing.T) {
	first, err := Validate([]byte(validSingleQuestion))
	if err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	second, err := Validate([]byte(validSingleQuestion))
	if err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical candidates from repeated validation")
	}
}
