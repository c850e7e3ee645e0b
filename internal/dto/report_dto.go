package dto

import (
	"time"

	"github.com/prepview/prepview-api/internal/models"
)

// ReportAnswer pairs a submitted answer with its evaluation outcome.
type ReportAnswer struct {
	ID          uint                `json:"id"`
	AnswerText  string              `json:"answer_text"`
	SubmittedAt time.Time           `json:"submitted_at"`
	Status      string              `json:"status"`
	Evaluation  *EvaluationResponse `json:"evaluation"`
}

// ReportQuestion is one question of the interview with any answers given.
type ReportQuestion struct {
	ID            uint           `json:"id"`
	QuestionText  string         `json:"question_text"`
	QuestionOrder int            `json:"question_order"`
	Answers       []ReportAnswer `json:"answers"`
}

// ReportResponse is the aggregated interview report. OverallScore is null
// until at least one evaluation has completed.
type ReportResponse struct {
	InterviewID  uint             `json:"interview_id"`
	Role         string           `json:"role"`
	CreatedAt    time.Time        `json:"created_at"`
	OverallScore *float64         `json:"overall_score"`
	Questions    []ReportQuestion `json:"questions"`
}

// NewReportQuestion builds the per-question report entry.
func NewReportQuestion(question models.Question) ReportQuestion {
	answers := make([]ReportAnswer, 0, len(question.Answers))
	for _, answer := range question.Answers {
		entry := ReportAnswer{
			ID:          answer.ID,
			AnswerText:  answer.AnswerText,
			SubmittedAt: answer.SubmittedAt,
			Status:      models.EvaluationStatusPending,
		}

		if answer.Evaluation != nil {
			entry.Status = answer.Evaluation.Status
			if answer.Evaluation.IsCompleted() {
				evaluation := NewEvaluationResponse(*answer.Evaluation)
				entry.Evaluation = &evaluation
			}
		}

		answers = append(answers, entry)
	}

	return ReportQuestion{
		ID:            question.ID,
		QuestionText:  question.QuestionText,
		QuestionOrder: question.QuestionOrder,
		Answers:       answers,
	}
}
