package pipeline

import (
	"fmt"
	"net/http"
)

// Stage names one discrete step of the pipeline.
type Stage string

const (
	StageFetch      Stage = "fetch"
	StageTranscribe Stage = "transcribe"
	StageGenerate   Stage = "generate"
	StageValidate   Stage = "validate"
	StagePersist    Stage = "persist"
	StageDone       Stage = "done"
)

// Schema failure kinds reported by the validator, plus the generator's
// malformed-response kind for responses with no JSON object at all.
const (
	KindInvalidJSON        = "invalid-json"
	KindMissingField       = "missing-field"
	KindBadOptionCount     = "bad-option-count"
	KindAnswerNotInOptions = "answer-not-in-options"
	KindCountMismatch      = "count-mismatch"
	KindMalformedResponse  = "malformed-response"
)

// StageError tags a failure with the stage it came from. Every pipeline
// failure reaching a caller is one of these; the zero Kind means the stage's
// generic failure.
type StageError struct {
	Stage Stage
	Kind  string
	Err   error
}

func (e *StageError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s stage failed (%s): %v", e.Stage, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// HTTPStatus maps the failure to a response class: 400 for input and
// validation failures (including AI output that never contained JSON), 502 for
// upstream service failures, 500 for persistence.
func (e *StageError) HTTPStatus() int {
	switch e.Stage {
	case StageValidate:
		return http.StatusBadRequest
	case StageGenerate:
		if e.Kind == KindMalformedResponse {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	case StageFetch, StageTranscribe:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Detail is the user-visible message. Upstream failures stay generic so
// backend internals never leak.
func (e *StageError) Detail() string {
	switch e.Stage {
	case StageValidate:
		return fmt.Sprintf("validate stage failed: AI response did not match required quiz schema (%s)", e.Kind)
	case StageGenerate:
		if e.Kind == KindMalformedResponse {
			return "generate stage failed: AI response did not match required quiz schema"
		}
		return "generate stage failed: service unavailable, try again"
	case StageFetch:
		return "fetch stage failed: service unavailable, try again"
	case StageTranscribe:
		return "transcribe stage failed: service unavailable, try again"
	default:
		return "persist stage failed: could not save quiz, try again"
	}
}
