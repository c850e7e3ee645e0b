package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/prepview/prepview-api/internal/dto"
	"github.com/prepview/prepview-api/internal/models"
	"github.com/prepview/prepview-api/internal/repository"
)

// ErrQuestionNotFound indicates the question does not exist in the interview.
var ErrQuestionNotFound = errors.New("question not found in interview")

// EvaluationEnqueuer hands an answer to the background evaluation pipeline.
type EvaluationEnqueuer interface {
	Enqueue(answerID uint) bool
}

// AnswerService manages answer submission.
type AnswerService interface {
	Submit(ctx context.Context, userID uint, payload dto.AnswerSubmitRequest) (dto.AnswerResponse, error)
}

type answerService struct {
	answers    repository.AnswerRepository
	interviews repository.InterviewRepository
	queue      EvaluationEnqueuer
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// NewAnswerService constructs the answer service.
func NewAnswerService(answers repository.AnswerRepository, interviews repository.InterviewRepository, queue EvaluationEnqueuer, validate *validator.Validate, logger zerolog.Logger) AnswerService {
	return &answerService{
		answers:    answers,
		interviews: interviews,
		queue:      queue,
		validator:  validate,
		sanitizer:  bluemonday.UGCPolicy(),
		logger:     logger.With().Str("component", "answer_service").Logger(),
	}
}

// Submit validates the interview/question linkage, persists the answer, and
// enqueues exactly one evaluation task. It returns as soon as the answer row
// is durable; the caller never waits on the evaluation.
func (s *answerService) Submit(ctx context.Context, userID uint, payload dto.AnswerSubmitRequest) (dto.AnswerResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnswerResponse{}, err
	}

	interview, err := s.interviews.GetByID(ctx, payload.InterviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnswerResponse{}, ErrInterviewNotFound
		}
		return dto.AnswerResponse{}, err
	}

	if interview.UserID != userID {
		return dto.AnswerResponse{}, ErrInterviewForbidden
	}

	var question *models.Question
	for i := range interview.Questions {
		if interview.Questions[i].ID == payload.QuestionID {
			question = &interview.Questions[i]
			break
		}
	}
	if question == nil {
		return dto.AnswerResponse{}, ErrQuestionNotFound
	}

	answer := models.Answer{
		QuestionID: question.ID,
		UserID:     userID,
		AnswerText: s.sanitizer.Sanitize(payload.AnswerText),
	}

	if err := s.answers.Create(ctx, &answer); err != nil {
		return dto.AnswerResponse{}, err
	}

	if s.queue != nil {
		if !s.queue.Enqueue(answer.ID) {
			s.logger.Warn().Uint("answer_id", answer.ID).Msg("evaluation queue rejected job")
		}
	}

	s.logger.Info().
		Uint("answer_id", answer.ID).
		Uint("question_id", question.ID).
		Msg("answer submitted")

	return dto.NewAnswerResponse(answer), nil
}
