package models

import (
	"time"

	"gorm.io/datatypes"
)

// Evaluation captures the terminal outcome of scoring one answer. A row is
// written exactly once, after the LLM call resolves; an in-flight evaluation
// is represented by the absence of a row rather than an intermediate status.
type Evaluation struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	AnswerID    uint              `gorm:"uniqueIndex;not null" json:"answer_id"`
	Scores      datatypes.JSONMap `gorm:"type:json;not null" json:"scores"`
	Feedback    string            `gorm:"type:text;not null" json:"feedback"`
	Suggestions datatypes.JSON    `gorm:"type:json;not null" json:"suggestions"`
	Status      string            `gorm:"size:20;not null;index" json:"status"`
	EvaluatedAt time.Time         `gorm:"autoCreateTime" json:"evaluated_at"`
}

const (
	// EvaluationStatusPending is never stored; it is reported when no row exists yet.
	EvaluationStatusPending = "pending"
	// EvaluationStatusCompleted indicates the answer was scored successfully.
	EvaluationStatusCompleted = "completed"
	// EvaluationStatusFailed indicates the evaluation attempt failed permanently.
	EvaluationStatusFailed = "failed"
)

// IsCompleted reports whether the evaluation finished with usable scores.
func (e Evaluation) IsCompleted() bool {
	return e.Status == EvaluationStatusCompleted
}

// ScoreAverage returns the mean of the four sub-scores.
func (e Evaluation) ScoreAverage() float64 {
	keys := []string{"correctness", "completeness", "quality", "communication"}
	total := 0.0
	for _, key := range keys {
		if value, ok := e.Scores[key].(float64); ok {
			total += value
		}
	}
	return total / float64(len(keys))
}
