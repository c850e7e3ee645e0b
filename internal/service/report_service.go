package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/prepview/prepview-api/internal/dto"
	"github.com/prepview/prepview-api/internal/models"
	"github.com/prepview/prepview-api/internal/repository"
)

// ReportService assembles aggregated interview reports.
type ReportService interface {
	Get(ctx context.Context, interviewID, userID uint) (dto.ReportResponse, error)
}

type reportService struct {
	interviews repository.InterviewRepository
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     zerolog.Logger
}

// NewReportService constructs the report service. The redis client is
// optional; without it every request recomputes the aggregation.
func NewReportService(interviews repository.InterviewRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ReportService {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &reportService{
		interviews: interviews,
		cache:      cache,
		cacheTTL:   ttl,
		logger:     logger.With().Str("component", "report_service").Logger(),
	}
}

func (s *reportService) Get(ctx context.Context, interviewID, userID uint) (dto.ReportResponse, error) {
	// The key carries the owner so a cached report can never leak across
	// users: entries only exist for requests that passed the ownership check.
	cacheKey := fmt.Sprintf("report:interview:%d:user:%d", interviewID, userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.ReportResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("interview_id", interviewID).Msg("report cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read report cache")
		}
	}

	interview, err := s.interviews.GetReport(ctx, interviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReportResponse{}, ErrInterviewNotFound
		}
		return dto.ReportResponse{}, err
	}

	if interview.UserID != userID {
		return dto.ReportResponse{}, ErrInterviewForbidden
	}

	response := buildReport(interview)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store report cache")
			}
		}
	}

	return response, nil
}

func buildReport(interview models.Interview) dto.ReportResponse {
	questions := make([]dto.ReportQuestion, 0, len(interview.Questions))
	for _, question := range interview.Questions {
		questions = append(questions, dto.NewReportQuestion(question))
	}

	return dto.ReportResponse{
		InterviewID:  interview.ID,
		Role:         interview.Role,
		CreatedAt:    interview.CreatedAt,
		OverallScore: overallScore(interview),
		Questions:    questions,
	}
}

// overallScore averages the four sub-scores within each completed evaluation,
// then averages across answers, rounded to two decimal places. It returns nil
// when no completed evaluations exist.
func overallScore(interview models.Interview) *float64 {
	var perEvaluation []float64
	for _, question := range interview.Questions {
		for _, answer := range question.Answers {
			if answer.Evaluation != nil && answer.Evaluation.IsCompleted() {
				perEvaluation = append(perEvaluation, answer.Evaluation.ScoreAverage())
			}
		}
	}

	if len(perEvaluation) == 0 {
		return nil
	}

	total := 0.0
	for _, score := range perEvaluation {
		total += score
	}

	overall := math.Round(total/float64(len(perEvaluation))*100) / 100
	return &overall
}
