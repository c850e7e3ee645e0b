package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/prepview/prepview-api/internal/dto"
	"github.com/prepview/prepview-api/internal/models"
	"github.com/prepview/prepview-api/internal/repository"
	"github.com/prepview/prepview-api/pkg/llm"
)

// ErrAnswerNotFound indicates the answer cannot be located.
var ErrAnswerNotFound = errors.New("answer not found")

// ErrAnswerForbidden indicates the caller does not own the answer.
var ErrAnswerForbidden = errors.New("forbidden")

const failureSuggestion = "Please retry the evaluation or contact support."

// EvaluationService drives one evaluation attempt end to end and exposes the
// terminal result to polling callers.
type EvaluationService interface {
	// Evaluate runs a complete evaluation attempt for the answer. It never
	// returns an error: it runs detached from any request that could react to
	// one, so every failure after the answer was found becomes a persisted
	// failed record instead.
	Evaluate(ctx context.Context, answerID uint)
	GetStatus(ctx context.Context, answerID, userID uint) (dto.EvaluationStatusResponse, error)
}

// EvaluationConfig carries tuning knobs for the evaluation pipeline.
type EvaluationConfig struct {
	// Timeout bounds the outbound scoring call. Evaluations produce larger
	// output than question generation, so this defaults higher.
	Timeout time.Duration
	// EventSubject, when set together with a NATS connection, receives a
	// best-effort event after each terminal write.
	EventSubject string
}

type evaluationService struct {
	answers     repository.AnswerRepository
	interviews  repository.InterviewRepository
	evaluations repository.EvaluationRepository
	generator   llm.Generator
	events      *nats.Conn
	config      EvaluationConfig
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewEvaluationService constructs the evaluation orchestrator.
func NewEvaluationService(answers repository.AnswerRepository, interviews repository.InterviewRepository, evaluations repository.EvaluationRepository, generator llm.Generator, events *nats.Conn, cfg EvaluationConfig, logger zerolog.Logger) EvaluationService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}

	return &evaluationService{
		answers:     answers,
		interviews:  interviews,
		evaluations: evaluations,
		generator:   generator,
		events:      events,
		config:      cfg,
		logger:      logger.With().Str("component", "evaluation_service").Logger(),
		tracer:      otel.Tracer("github.com/prepview/prepview-api/internal/service/evaluation"),
	}
}

func (s *evaluationService) Evaluate(ctx context.Context, answerID uint) {
	ctx, span := s.tracer.Start(ctx, "evaluation.run", trace.WithAttributes(
		attribute.Int64("answer_id", int64(answerID)),
	))
	defer span.End()

	logger := s.logger.With().Uint("answer_id", answerID).Logger()
	logger.Info().Msg("starting evaluation")

	answer, err := s.answers.GetWithQuestion(ctx, answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// A failure cannot be attributed to a non-existent answer.
			logger.Error().Msg("answer not found, skipping evaluation")
			return
		}
		s.recordFailure(ctx, answerID, err)
		return
	}

	interview, err := s.interviews.GetByID(ctx, answer.Question.InterviewID)
	if err != nil {
		s.recordFailure(ctx, answerID, err)
		return
	}

	if s.generator == nil {
		s.recordFailure(ctx, answerID, llm.ErrNotConfigured)
		return
	}

	prompt := llm.BuildEvaluationPrompt(answer.Question.QuestionText, answer.AnswerText, interview.Role)
	raw, err := s.generator.Generate(ctx, prompt, llm.GenerateOptions{
		Temperature: 0.3,
		MaxTokens:   4096,
		Timeout:     s.config.Timeout,
	})
	if err != nil {
		s.recordFailure(ctx, answerID, err)
		return
	}

	result, err := llm.ParseEvaluation(raw)
	if err != nil {
		s.recordFailure(ctx, answerID, err)
		return
	}

	evaluation := models.Evaluation{
		AnswerID: answerID,
		Scores: datatypes.JSONMap{
			"correctness":   result.Scores.Correctness,
			"completeness":  result.Scores.Completeness,
			"quality":       result.Scores.Quality,
			"communication": result.Scores.Communication,
		},
		Feedback:    result.Feedback,
		Suggestions: marshalSuggestions(result.Suggestions),
		Status:      models.EvaluationStatusCompleted,
	}

	if err := s.evaluations.Create(ctx, &evaluation); err != nil {
		s.recordFailure(ctx, answerID, err)
		return
	}

	logger.Info().Msg("evaluation completed")
	s.publishEvent(answerID, models.EvaluationStatusCompleted)
}

// recordFailure persists the terminal failed record. A failure of this write
// itself is logged and swallowed: the orchestrator has no caller left that
// could react to an error.
func (s *evaluationService) recordFailure(ctx context.Context, answerID uint, cause error) {
	s.logger.Error().Err(cause).Uint("answer_id", answerID).Msg("evaluation failed")

	evaluation := models.Evaluation{
		AnswerID: answerID,
		Scores: datatypes.JSONMap{
			"correctness":   0.0,
			"completeness":  0.0,
			"quality":       0.0,
			"communication": 0.0,
		},
		Feedback:    "Evaluation failed: " + cause.Error(),
		Suggestions: marshalSuggestions([]string{failureSuggestion}),
		Status:      models.EvaluationStatusFailed,
	}

	if err := s.evaluations.Create(ctx, &evaluation); err != nil {
		s.logger.Error().Err(err).Uint("answer_id", answerID).Msg("failed to persist failure record")
		return
	}

	s.publishEvent(answerID, models.EvaluationStatusFailed)
}

func (s *evaluationService) GetStatus(ctx context.Context, answerID, userID uint) (dto.EvaluationStatusResponse, error) {
	answer, err := s.answers.GetByID(ctx, answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationStatusResponse{}, ErrAnswerNotFound
		}
		return dto.EvaluationStatusResponse{}, err
	}

	if answer.UserID != userID {
		return dto.EvaluationStatusResponse{}, ErrAnswerForbidden
	}

	evaluation, err := s.evaluations.GetByAnswerID(ctx, answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No row yet means the background attempt is still in flight.
			return dto.EvaluationStatusResponse{Status: models.EvaluationStatusPending}, nil
		}
		return dto.EvaluationStatusResponse{}, err
	}

	response := dto.EvaluationStatusResponse{Status: evaluation.Status}
	if evaluation.IsCompleted() {
		completed := dto.NewEvaluationResponse(evaluation)
		response.Evaluation = &completed
	}

	return response, nil
}

func (s *evaluationService) publishEvent(answerID uint, status string) {
	if s.events == nil || s.config.EventSubject == "" {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"answer_id": answerID,
		"status":    status,
	})
	if err != nil {
		return
	}

	if err := s.events.Publish(s.config.EventSubject, payload); err != nil {
		s.logger.Warn().Err(err).Uint("answer_id", answerID).Msg("failed to publish evaluation event")
	}
}

func marshalSuggestions(suggestions []string) datatypes.JSON {
	payload, err := json.Marshal(suggestions)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(payload)
}
