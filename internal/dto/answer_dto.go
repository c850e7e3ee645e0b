package dto

import (
	"encoding/json"
	"time"

	"github.com/prepview/prepview-api/internal/models"
)

// AnswerSubmitRequest is the payload for submitting an answer to a question.
type AnswerSubmitRequest struct {
	InterviewID uint   `json:"interview_id" validate:"required,gt=0"`
	QuestionID  uint   `json:"question_id" validate:"required,gt=0"`
	AnswerText  string `json:"answer_text" validate:"required,min=1"`
}

// AnswerResponse acknowledges a submitted answer. The evaluation is processed
// in the background and is always absent here.
type AnswerResponse struct {
	ID          uint      `json:"id"`
	QuestionID  uint      `json:"question_id"`
	AnswerText  string    `json:"answer_text"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// EvaluationResponse represents a completed evaluation to API consumers.
type EvaluationResponse struct {
	Scores      map[string]float64 `json:"scores"`
	Feedback    string             `json:"feedback"`
	Suggestions []string           `json:"suggestions"`
	EvaluatedAt time.Time          `json:"evaluated_at"`
	Status      string             `json:"status"`
}

// EvaluationStatusResponse is the polling payload for an answer's evaluation.
// For failed evaluations the evaluation body stays null; the status string
// alone communicates the outcome.
type EvaluationStatusResponse struct {
	Status     string              `json:"status"`
	Evaluation *EvaluationResponse `json:"evaluation"`
}

// NewAnswerResponse builds an acknowledgment DTO from an answer model.
func NewAnswerResponse(answer models.Answer) AnswerResponse {
	return AnswerResponse{
		ID:          answer.ID,
		QuestionID:  answer.QuestionID,
		AnswerText:  answer.AnswerText,
		SubmittedAt: answer.SubmittedAt,
	}
}

// NewEvaluationResponse builds a DTO from a completed evaluation model.
func NewEvaluationResponse(evaluation models.Evaluation) EvaluationResponse {
	scores := make(map[string]float64, len(evaluation.Scores))
	for key, value := range evaluation.Scores {
		if number, ok := value.(float64); ok {
			scores[key] = number
		}
	}

	var suggestions []string
	if len(evaluation.Suggestions) > 0 {
		_ = json.Unmarshal(evaluation.Suggestions, &suggestions)
	}

	return EvaluationResponse{
		Scores:      scores,
		Feedback:    evaluation.Feedback,
		Suggestions: suggestions,
		EvaluatedAt: evaluation.EvaluatedAt,
		Status:      evaluation.Status,
	}
}
