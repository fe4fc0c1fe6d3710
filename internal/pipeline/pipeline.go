package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"vidquiz-backend/internal/models"
)

type MediaFetcher interface {
	Fetch(ctx context.Context, sourceURL, dir string) (*AudioAsset, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, asset *AudioAsset) (string, error)
}

type QuizGenerator interface {
	Generate(ctx context.Context, transcript string) (string, error)
}

type QuizPersister interface {
	Persist(ctx context.Context, candidate *models.QuizCandidate, videoURL string, creatorID uuid.UUID) (*models.Quiz, error)
}

// Timeouts bound each external call; exceeding one is the same failure as the
// stage failing on its own.
type Timeouts struct {
	Fetch      time.Duration
	Transcribe time.Duration
	Generate   time.Duration
}

// Pipeline drives one quiz generation end to end:
// Fetching → Transcribing → Generating → Validating → Persisting → Done.
// Stages run strictly sequentially; any failure aborts the run and surfaces as
// a *StageError. There are no cross-stage retries — resubmitting the request
// is the caller's retry policy.
type Pipeline struct {
	fetcher     MediaFetcher
	transcriber Transcriber
	generator   QuizGenerator
	persister   QuizPersister
	pubsub      *redis.Client
	timeouts    Timeouts
}

func New(fetcher MediaFetcher, transcriber Transcriber, generator QuizGenerator, persister QuizPersister, pubsub *redis.Client, timeouts Timeouts) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		transcriber: transcriber,
		generator:   generator,
		persister:   persister,
		pubsub:      pubsub,
		timeouts:    timeouts,
	}
}

// Run executes the pipeline for one video URL on behalf of userID. The temp
// dir holding the downloaded audio is removed on every exit path. Nothing is
// written to shared state before the persist stage, so cancellation before
// commit leaves zero rows; cancellation after commit is a no-op and the quiz
// stands.
func (p *Pipeline) Run(ctx context.Context, videoURL string, userID uuid.UUID) (*models.Quiz, error) {
	tmpDir, err := os.MkdirTemp("", "vidquiz-*")
	if err != nil {
		return nil, &StageError{Stage: StageFetch, Err: fmt.Errorf("failed to create temp dir: %w", err)}
	}
	defer os.RemoveAll(tmpDir)

	p.publishStage(ctx, userID, StageFetch, videoURL)
	asset, err := p.fetchStage(ctx, videoURL, tmpDir)
	if err != nil {
		return nil, err
	}

	p.publishStage(ctx, userID, StageTranscribe, videoURL)
	transcript, err := p.transcribeStage(ctx, asset)
	if err != nil {
		return nil, err
	}

	p.publishStage(ctx, userID, StageGenerate, videoURL)
	payload, err := p.generateStage(ctx, transcript)
	if err != nil {
		return nil, err
	}

	p.publishStage(ctx, userID, StageValidate, videoURL)
	candidate, err := Validate(payload)
	if err != nil {
		return nil, err
	}
	if candidate.CountMismatch {
		log.Printf("Quiz for %s has %d questions instead of %d; accepting anyway",
			videoURL, len(candidate.Questions), ExpectedQuestionCount)
	}

	p.publishStage(ctx, userID, StagePersist, videoURL)
	quiz, err := p.persister.Persist(ctx, candidate, videoURL, userID)
	if err != nil {
		return nil, &StageError{Stage: StagePersist, Err: err}
	}

	p.publishStage(ctx, userID, StageDone, videoURL)
	return quiz, nil
}

func (p *Pipeline) fetchStage(ctx context.Context, videoURL, dir string) (*AudioAsset, error) {
	fctx, cancel := context.WithTimeout(ctx, p.timeouts.Fetch)
	defer cancel()

	asset, err := p.fetcher.Fetch(fctx, videoURL, dir)
	if err != nil {
		return nil, &StageError{Stage: StageFetch, Err: err}
	}
	return asset, nil
}

func (p *Pipeline) transcribeStage(ctx context.Context, asset *AudioAsset) (string, error) {
	tctx, cancel := context.WithTimeout(ctx, p.timeouts.Transcribe)
	defer cancel()

	transcript, err := p.transcriber.Transcribe(tctx, asset)
	if err != nil {
		return "", &StageError{Stage: StageTranscribe, Err: err}
	}
	return transcript, nil
}

func (p *Pipeline) generateStage(ctx context.Context, transcript string) ([]byte, error) {
	gctx, cancel := context.WithTimeout(ctx, p.timeouts.Generate)
	defer cancel()

	raw, err := p.generator.Generate(gctx, transcript)
	if err != nil {
		return nil, &StageError{Stage: StageGenerate, Err: err}
	}

	payload, ok := ExtractJSONObject(raw)
	if !ok {
		return nil, &StageError{
			Stage: StageGenerate,
			Kind:  KindMalformedResponse,
			Err:   errors.New("response contains no JSON object"),
		}
	}
	return []byte(payload), nil
}

// publishStage mirrors stage transitions onto the per-user pub/sub channel for
// WebSocket delivery. Best effort; a missing client (tests) or publish error
// never affects the run.
func (p *Pipeline) publishStage(ctx context.Context, userID uuid.UUID, stage Stage, videoURL string) {
	if p.pubsub == nil {
		return
	}

	data, _ := json.Marshal(models.WSMessage{
		Type:    "stage_update",
		Payload: models.StageUpdate{Stage: string(stage), VideoURL: videoURL},
	})
	p.pubsub.Publish(ctx, fmt.Sprintf("user_updates:%s", userID.String()), string(data))
}
