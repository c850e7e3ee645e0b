package models

import "time"

// Answer represents a candidate response submitted for a question. Answers are
// immutable once created and own at most one Evaluation.
type Answer struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	QuestionID  uint        `gorm:"not null;index" json:"question_id"`
	UserID      uint        `gorm:"not null;index" json:"user_id"`
	AnswerText  string      `gorm:"type:text;not null" json:"answer_text"`
	SubmittedAt time.Time   `gorm:"autoCreateTime" json:"submitted_at"`
	Question    Question    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User        User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Evaluation  *Evaluation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"evaluation,omitempty"`
}
