package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepview/prepview-api/internal/models"
)

// EvaluationRepository provides access to terminal evaluation records.
type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *models.Evaluation) error
	GetByAnswerID(ctx context.Context, answerID uint) (models.Evaluation, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository constructs an evaluation repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

// Create inserts the terminal record in a single statement. The unique index
// on answer_id enforces the one-evaluation-per-answer invariant at the data
// layer.
func (r *evaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}

func (r *evaluationRepository) GetByAnswerID(ctx context.Context, answerID uint) (models.Evaluation, error) {
	var evaluation models.Evaluation
	if err := r.db.WithContext(ctx).Where("answer_id = ?", answerID).First(&evaluation).Error; err != nil {
		return models.Evaluation{}, err
	}

	return evaluation, nil
}
