package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	"vidquiz-backend/internal/models"
)

// Pointer fields distinguish a missing key from an empty value, so the
// validator can report missing-field separately from invalid-json.
type rawCandidate struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Questions   *[]rawQuestion `json:"questions"`
}

type rawQuestion struct {
	QuestionTitle   *string   `json:"question_title"`
	QuestionOptions *[]string `json:"question_options"`
	Answer          *string   `json:"answer"`
}

// Validate parses the isolated JSON payload and enforces the quiz schema.
// Pure: no I/O, same input always yields the same candidate or the same
// *StageError. Checks run in order and the first failure wins.
//
// A question count other than ExpectedQuestionCount is tolerated (models
// drift); it only sets CountMismatch on the candidate. Zero questions is a
// hard failure.
func Validate(payload []byte) (*models.QuizCandidate, error) {
	var raw rawCandidate
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, &StageError{Stage: StageValidate, Kind: KindInvalidJSON, Err: err}
	}

	if raw.Title == nil || raw.Description == nil || raw.Questions == nil {
		return nil, schemaErr(KindMissingField, "top-level title, description and questions are required")
	}
	if *raw.Title == "" {
		return nil, schemaErr(KindMissingField, "title must be non-empty")
	}
	if len(*raw.Questions) == 0 {
		return nil, schemaErr(KindCountMismatch, "questions must be non-empty")
	}

	candidate := &models.QuizCandidate{
		Title:         *raw.Title,
		Description:   *raw.Description,
		Questions:     make([]models.CandidateQuestion, 0, len(*raw.Questions)),
		CountMismatch: len(*raw.Questions) != ExpectedQuestionCount,
	}

	for i, q := range *raw.Questions {
		if q.QuestionTitle == nil || *q.QuestionTitle == "" {
			return nil, schemaErr(KindMissingField, fmt.Sprintf("question %d: question_title is required", i))
		}
		if q.QuestionOptions == nil {
			return nil, schemaErr(KindMissingField, fmt.Sprintf("question %d: question_options is required", i))
		}
		if q.Answer == nil {
			return nil, schemaErr(KindMissingField, fmt.Sprintf("question %d: answer is required", i))
		}

		options := *q.QuestionOptions
		if len(options) != OptionsPerQuestion {
			return nil, schemaErr(KindBadOptionCount,
				fmt.Sprintf("question %d: expected %d options, got %d", i, OptionsPerQuestion, len(options)))
		}

		seen := make(map[string]bool, OptionsPerQuestion)
		answerFound := false
		for _, opt := range options {
			if seen[opt] {
				return nil, schemaErr(KindBadOptionCount,
					fmt.Sprintf("question %d: options must be distinct", i))
			}
			seen[opt] = true
			if opt == *q.Answer {
				answerFound = true
			}
		}
		if !answerFound {
			return nil, schemaErr(KindAnswerNotInOptions,
				fmt.Sprintf("question %d: answer is not one of the options", i))
		}

		candidate.Questions = append(candidate.Questions, models.CandidateQuestion{
			QuestionTitle:   *q.QuestionTitle,
			QuestionOptions: append([]string(nil), options...),
			Answer:          *q.Answer,
		})
	}

	return candidate, nil
}

func schemaErr(kind, msg string) *StageError {
	return &StageError{Stage: StageValidate, Kind: kind, Err: fmt.Errorf("%s", msg)}
}
