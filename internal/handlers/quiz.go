package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"vidquiz-backend/internal/middleware"
	"vidquiz-backend/internal/models"
	"vidquiz-backend/internal/pipeline"
	"vidquiz-backend/internal/repository"
)

// QuizRunner turns a video URL into a stored quiz for the given user.
type QuizRunner interface {
	Run(ctx context.Context, videoURL string, userID uuid.UUID) (*models.Quiz, error)
}

type QuizHandler struct {
	runner   QuizRunner
	quizRepo *repository.QuizRepo
}

func NewQuizHandler(runner QuizRunner, quizRepo *repository.QuizRepo) *QuizHandler {
	return &QuizHandler{runner: runner, quizRepo: quizRepo}
}

// Create runs the full generation chain synchronously and returns the stored
// quiz. Unusable input is rejected up front; everything past that point maps
// to the failed stage.
func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.CreateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid request body"})
		return
	}

	if !isUsableVideoURL(req.VideoURL) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid video URL"})
		return
	}

	quiz, err := h.runner.Run(r.Context(), req.VideoURL, userID)
	if err != nil {
		var se *pipeline.StageError
		if errors.As(err, &se) {
			log.Printf("Quiz generation failed at %s stage: %v", se.Stage, err)
			writeJSON(w, se.HTTPStatus(), map[string]string{"detail": se.Detail()})
			return
		}
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, quiz)
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	quizzes, err := h.quizRepo.ListByCreator(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if quizzes == nil {
		quizzes = []*models.Quiz{}
	}

	writeJSON(w, http.StatusOK, quizzes)
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quiz, ok := h.ownedQuiz(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResp(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid request body", nil)
		return
	}

	// A quiz title can change but never become blank
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		errorResp(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed",
			map[string]string{"title": "Title must be non-empty"})
		return
	}

	quiz, ok := h.ownedQuiz(w, r)
	if !ok {
		return
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}

	if err := h.quizRepo.Update(r.Context(), quiz); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	quiz, ok := h.ownedQuiz(w, r)
	if !ok {
		return
	}

	if err := h.quizRepo.Delete(r.Context(), quiz.ID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ownedQuiz loads the quiz from the URL param and enforces creator-only
// access. Quizzes belonging to someone else read as 403, unknown IDs as 404.
func (h *QuizHandler) ownedQuiz(w http.ResponseWriter, r *http.Request) (*models.Quiz, bool) {
	userID := middleware.GetUserID(r.Context())

	quizID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errorResp(w, r, http.StatusBadRequest, "INVALID_ID", "Invalid quiz ID", nil)
		return nil, false
	}

	quiz, err := h.quizRepo.GetByID(r.Context(), quizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			errorResp(w, r, http.StatusNotFound, "NOT_FOUND", "Quiz not found", nil)
		} else {
			handleServiceError(w, r, err)
		}
		return nil, false
	}

	if quiz.CreatorID != userID {
		errorResp(w, r, http.StatusForbidden, "FORBIDDEN", "You do not have access to this quiz", nil)
		return nil, false
	}

	return quiz, true
}

func isUsableVideoURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return pipeline.ExtractVideoID(raw) != ""
}
