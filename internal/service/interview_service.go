package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/prepview/prepview-api/internal/dto"
	"github.com/prepview/prepview-api/internal/models"
	"github.com/prepview/prepview-api/internal/repository"
	"github.com/prepview/prepview-api/pkg/llm"
)

// ErrInterviewNotFound indicates the interview cannot be located.
var ErrInterviewNotFound = errors.New("interview not found")

// ErrInterviewForbidden indicates the caller does not own the interview.
var ErrInterviewForbidden = errors.New("forbidden")

// ErrGeneratorUnavailable indicates no LLM client is configured. Question
// generation is on the critical path of interview creation, so this surfaces
// to the caller instead of degrading silently.
var ErrGeneratorUnavailable = errors.New("question generator unavailable")

// InterviewService manages interview creation and retrieval.
type InterviewService interface {
	Create(ctx context.Context, userID uint, payload dto.InterviewCreateRequest) (dto.InterviewResponse, error)
	List(ctx context.Context, userID uint) ([]dto.InterviewResponse, error)
	Get(ctx context.Context, id, userID uint) (dto.InterviewResponse, error)
}

type interviewService struct {
	interviews repository.InterviewRepository
	generator  llm.Generator
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewInterviewService constructs the interview service.
func NewInterviewService(interviews repository.InterviewRepository, generator llm.Generator, validate *validator.Validate, logger zerolog.Logger) InterviewService {
	return &interviewService{
		interviews: interviews,
		generator:  generator,
		validator:  validate,
		logger:     logger.With().Str("component", "interview_service").Logger(),
	}
}

func (s *interviewService) Create(ctx context.Context, userID uint, payload dto.InterviewCreateRequest) (dto.InterviewResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.InterviewResponse{}, err
	}

	if s.generator == nil {
		return dto.InterviewResponse{}, ErrGeneratorUnavailable
	}

	prompt := llm.BuildQuestionPrompt(payload.Role, payload.NumQuestions)
	raw, err := s.generator.Generate(ctx, prompt, llm.GenerateOptions{
		Temperature: 0.8,
		MaxTokens:   2000,
		Timeout:     30 * time.Second,
	})
	if err != nil {
		return dto.InterviewResponse{}, err
	}

	questions, err := llm.ParseQuestions(raw, payload.NumQuestions, payload.Role)
	if err != nil {
		return dto.InterviewResponse{}, err
	}

	interview := models.Interview{
		UserID: userID,
		Role:   payload.Role,
	}

	if err := s.interviews.CreateWithQuestions(ctx, &interview, questions); err != nil {
		return dto.InterviewResponse{}, err
	}

	s.logger.Info().
		Uint("interview_id", interview.ID).
		Uint("user_id", userID).
		Int("questions", len(questions)).
		Msg("interview created")

	return dto.NewInterviewResponse(interview), nil
}

func (s *interviewService) List(ctx context.Context, userID uint) ([]dto.InterviewResponse, error) {
	interviews, err := s.interviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return dto.NewInterviewListResponse(interviews), nil
}

func (s *interviewService) Get(ctx context.Context, id, userID uint) (dto.InterviewResponse, error) {
	interview, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.InterviewResponse{}, ErrInterviewNotFound
		}
		return dto.InterviewResponse{}, err
	}

	if interview.UserID != userID {
		return dto.InterviewResponse{}, ErrInterviewForbidden
	}

	return dto.NewInterviewResponse(interview), nil
}
