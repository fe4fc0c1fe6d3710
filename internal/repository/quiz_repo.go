package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"vidquiz-backend/internal/models"
)

// DB is the slice of pgxpool.Pool the repositories use.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type QuizRepo struct {
	pool DB
}

func NewQuizRepo(pool DB) *QuizRepo {
	return &QuizRepo{pool: pool}
}

// Persist commits a validated candidate as one quiz plus its questions in a
// single transaction. Either every row exists afterwards or none do. Title and
// description come from the candidate; video_url and creator always come from
// the pipeline context so the model output can never forge them.
func (r *QuizRepo) Persist(ctx context.Context, candidate *models.QuizCandidate, videoURL string, creatorID uuid.UUID) (*models.Quiz, error) {
	quiz := &models.Quiz{
		ID:          uuid.New(),
		Title:       candidate.Title,
		Description: candidate.Description,
		VideoURL:    videoURL,
		CreatorID:   creatorID,
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO quizzes (id, title, description, video_url, creator_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`,
		quiz.ID, quiz.Title, quiz.Description, quiz.VideoURL, quiz.CreatorID,
	).Scan(&quiz.CreatedAt, &quiz.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert quiz: %w", err)
	}

	quiz.Questions = make([]models.Question, 0, len(candidate.Questions))
	for i, cq := range candidate.Questions {
		q := models.Question{
			ID:              uuid.New(),
			QuizID:          quiz.ID,
			QuestionTitle:   cq.QuestionTitle,
			QuestionOptions: cq.QuestionOptions,
			Answer:          cq.Answer,
		}

		optionsBytes, err := json.Marshal(q.QuestionOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to encode options for question %d: %w", i, err)
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO questions (id, quiz_id, position, question_title, question_options, answer)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`,
			q.ID, q.QuizID, i, q.QuestionTitle, optionsBytes, q.Answer,
		).Scan(&q.CreatedAt, &q.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert question %d: %w", i, err)
		}

		quiz.Questions = append(quiz.Questions, q)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit quiz: %w", err)
	}

	return quiz, nil
}

func (r *QuizRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	quiz := &models.Quiz{}
	query := `SELECT id, title, description, video_url, creator_id, created_at, updated_at
		FROM quizzes WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&quiz.ID, &quiz.Title, &quiz.Description, &quiz.VideoURL, &quiz.CreatorID,
		&quiz.CreatedAt, &quiz.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	quiz.Questions, err = r.questionsForQuiz(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

func (r *QuizRepo) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Quiz, error) {
	query := `SELECT id, title, description, video_url, creator_id, created_at, updated_at
		FROM quizzes WHERE creator_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []*models.Quiz
	for rows.Next() {
		quiz := &models.Quiz{}
		err := rows.Scan(&quiz.ID, &quiz.Title, &quiz.Description, &quiz.VideoURL,
			&quiz.CreatorID, &quiz.CreatedAt, &quiz.UpdatedAt)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, quiz := range quizzes {
		quiz.Questions, err = r.questionsForQuiz(ctx, quiz.ID)
		if err != nil {
			return nil, err
		}
	}
	return quizzes, nil
}

func (r *QuizRepo) Update(ctx context.Context, quiz *models.Quiz) error {
	return r.pool.QueryRow(ctx,
		`UPDATE quizzes SET title = $1, description = $2, updated_at = NOW()
		 WHERE id = $3 RETURNING updated_at`,
		quiz.Title, quiz.Description, quiz.ID,
	).Scan(&quiz.UpdatedAt)
}

// Delete removes the quiz; questions cascade at the schema level.
func (r *QuizRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM quizzes WHERE id = $1", id)
	return err
}

func (r *QuizRepo) questionsForQuiz(ctx context.Context, quizID uuid.UUID) ([]models.Question, error) {
	query := `SELECT id, quiz_id, question_title, question_options, answer, created_at, updated_at
		FROM questions WHERE quiz_id = $1 ORDER BY position`

	rows, err := r.pool.Query(ctx, query, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		q := models.Question{}
		var optionsBytes []byte
		err := rows.Scan(&q.ID, &q.QuizID, &q.QuestionTitle, &optionsBytes, &q.Answer,
			&q.CreatedAt, &q.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(optionsBytes, &q.QuestionOptions); err != nil {
			return nil, fmt.Errorf("failed to decode options for question %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
