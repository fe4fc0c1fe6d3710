package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"vidquiz-backend/internal/middleware"
	"vidquiz-backend/internal/models"
	"vidquiz-backend/internal/pipeline"
)

type fakeRunner struct {
	quiz  *models.Quiz
	err   error
	calls int
}

func (f *fakeRunner) Run(ctx context.Context, videoURL string, userID uuid.UUID) (*models.Quiz, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	q := *f.quiz
	q.VideoURL = videoURL
	q.CreatorID = userID
	return &q, nil
}

func createRequest(body string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quizzes", strings.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestQuizCreate_Success(t *testing.T) {
	runner := &fakeRunner{quiz: &models.Quiz{ID: uuid.New(), Title: "T"}}
	handler := NewQuizHandler(runner, nil)

	userID := uuid.New()
	rec := httptest.NewRecorder()
	handler.Create(rec, createRequest(`{"video_url":"https://www.youtube.com/watch?v=BaW_jenozKc"}`, userID))

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var quiz models.Quiz
	if err := json.Unmarshal(rec.Body.Bytes(), &quiz); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if quiz.CreatorID != userID {
		t.Errorf("Expected creator %s, got %s", userID, quiz.CreatorID)
	}
	if quiz.VideoURL != "https://www.youtube.com/watch?v=BaW_jenozKc" {
		t.Errorf("Expected the submitted URL verbatim, got %q", quiz.VideoURL)
	}
}

func TestQuizCreate_RejectsUnusableInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"empty url", `{"video_url":""}`},
		{"non youtube url", `{"video_url":"https://vimeo.com/123456"}`},
		{"bad scheme", `{"video_url":"ftp://youtube.com/watch?v=BaW_jenozKc"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			runner := &fakeRunner{quiz: &models.Quiz{}}
			handler := NewQuizHandler(runner, nil)

			rec := httptest.NewRecorder()
			handler.Create(rec, createRequest(tc.body, uuid.New()))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rec.Code)
			}
			if runner.calls != 0 {
				t.Errorf("Expected the chain not to run, got %d calls", runner.calls)
			}
		})
	}
}

func TestQuizUpdate_RejectsBlankTitle(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty title", `{"title":""}`},
		{"whitespace title", `{"title":"   "}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// A nil repo proves the request is rejected before any lookup.
			handler := NewQuizHandler(&fakeRunner{}, nil)

			req := httptest.NewRequest(http.MethodPatch, "/api/v1/quizzes/"+uuid.NewString(), strings.NewReader(tc.body))
			ctx := context.WithValue(req.Context(), middleware.UserIDKey, uuid.New())
			rec := httptest.NewRecorder()
			handler.Update(rec, req.WithContext(ctx))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rec.Code)
			}

			var resp models.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Error.Fields["title"] == "" {
				t.Error("Expected a title field error")
			}
		})
	}
}

func TestQuizCreate_StageErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        *pipeline.StageError
		wantStatus int
	}{
		{
			"schema violation",
			&pipeline.StageError{Stage: pipeline.StageValidate, Kind: pipeline.KindAnswerNotInOptions},
			http.StatusBadRequest,
		},
		{
			"no json in model output",
			&pipeline.StageError{Stage: pipeline.StageGenerate, Kind: pipeline.KindMalformedResponse},
			http.StatusBadRequest,
		},
		{
			"fetch failure",
			&pipeline.StageError{Stage: pipeline.StageFetch},
			http.StatusBadGateway,
		},
		{
			"transcribe failure",
			&pipeline.StageError{Stage: pipeline.StageTranscribe},
			http.StatusBadGateway,
		},
		{
			"generation backend failure",
			&pipeline.StageError{Stage: pipeline.StageGenerate},
			http.StatusBadGateway,
		},
		{
			"persist failure",
			&pipeline.StageError{Stage: pipeline.StagePersist},
			http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewQuizHandler(&fakeRunner{err: tc.err}, nil)

			rec := httptest.NewRecorder()
			handler.Create(rec, createRequest(`{"video_url":"https://youtu.be/BaW_jenozKc"}`, uuid.New()))

			if rec.Code != tc.wantStatus {
				t.Errorf("Expected %d, got %d", tc.wantStatus, rec.Code)
			}

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body["detail"] == "" {
				t.Error("Expected a detail message")
			}
			if strings.Contains(body["detail"], "unreachable") {
				t.Error("Expected upstream error details to stay hidden")
			}
		})
	}
}
