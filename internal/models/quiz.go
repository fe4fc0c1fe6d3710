package models

import (
	"time"

	"github.com/google/uuid"
)

type Quiz struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	VideoURL    string     `json:"video_url"`
	CreatorID   uuid.UUID  `json:"creator"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Questions   []Question `json:"questions"`
}

type Question struct {
	ID              uuid.UUID `json:"id"`
	QuizID          uuid.UUID `json:"-"`
	QuestionTitle   string    `json:"question_title"`
	QuestionOptions []string  `json:"question_options"`
	Answer          string    `json:"answer"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// QuizCandidate is the parsed-and-validated form of a model response. It lives
// only for the duration of a pipeline run and is never persisted as-is.
type QuizCandidate struct {
	Title       string
	Description string
	Questions   []CandidateQuestion

	// CountMismatch is set when the model returned a question count other than
	// the ten the prompt asks for. Logged, never fatal.
	CountMismatch bool
}

type CandidateQuestion struct {
	QuestionTitle   string
	QuestionOptions []string
	Answer          string
}

type CreateQuizRequest struct {
	VideoURL string `json:"video_url"`
}

type UpdateQuizRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}
