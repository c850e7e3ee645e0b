package dto

import (
	"time"

	"github.com/prepview/prepview-api/internal/models"
)

// InterviewCreateRequest is the payload for starting a new mock interview.
type InterviewCreateRequest struct {
	Role         string `json:"role" validate:"required,min=2,max=100"`
	NumQuestions int    `json:"num_questions" validate:"required,gte=1,lte=10"`
}

// QuestionResponse represents a generated question to API consumers.
type QuestionResponse struct {
	ID            uint   `json:"id"`
	QuestionText  string `json:"question_text"`
	QuestionOrder int    `json:"question_order"`
}

// InterviewResponse represents an interview with its ordered questions.
type InterviewResponse struct {
	ID        uint               `json:"id"`
	Role      string             `json:"role"`
	CreatedAt time.Time          `json:"created_at"`
	Questions []QuestionResponse `json:"questions"`
}

// NewInterviewResponse builds a response DTO from an interview model.
func NewInterviewResponse(interview models.Interview) InterviewResponse {
	questions := make([]QuestionResponse, 0, len(interview.Questions))
	for _, question := range interview.Questions {
		questions = append(questions, QuestionResponse{
			ID:            question.ID,
			QuestionText:  question.QuestionText,
			QuestionOrder: question.QuestionOrder,
		})
	}

	return InterviewResponse{
		ID:        interview.ID,
		Role:      interview.Role,
		CreatedAt: interview.CreatedAt,
		Questions: questions,
	}
}

// NewInterviewListResponse converts a slice of interviews.
func NewInterviewListResponse(interviews []models.Interview) []InterviewResponse {
	responses := make([]InterviewResponse, 0, len(interviews))
	for _, interview := range interviews {
		responses = append(responses, NewInterviewResponse(interview))
	}
	return responses
}
