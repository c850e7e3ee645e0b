package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepview/prepview-api/internal/models"
)

// InterviewRepository provides access to interviews and their questions.
type InterviewRepository interface {
	CreateWithQuestions(ctx context.Context, interview *models.Interview, questionTexts []string) error
	ListByUser(ctx context.Context, userID uint) ([]models.Interview, error)
	GetByID(ctx context.Context, id uint) (models.Interview, error)
	GetReport(ctx context.Context, id uint) (models.Interview, error)
}

type interviewRepository struct {
	db *gorm.DB
}

// NewInterviewRepository constructs an interview repository.
func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

// CreateWithQuestions persists the interview and its ordered questions in one
// transaction so a failed insert never leaves a question-less interview.
func (r *interviewRepository) CreateWithQuestions(ctx context.Context, interview *models.Interview, questionTexts []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(interview).Error; err != nil {
			return err
		}

		questions := make([]models.Question, 0, len(questionTexts))
		for order, text := range questionTexts {
			questions = append(questions, models.Question{
				InterviewID:   interview.ID,
				QuestionText:  text,
				QuestionOrder: order + 1,
			})
		}

		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}

		interview.Questions = questions
		return nil
	})
}

func (r *interviewRepository) ListByUser(ctx context.Context, userID uint) ([]models.Interview, error) {
	var interviews []models.Interview
	err := r.db.WithContext(ctx).
		Preload("Questions", orderQuestions).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&interviews).Error
	if err != nil {
		return nil, err
	}

	return interviews, nil
}

func (r *interviewRepository) GetByID(ctx context.Context, id uint) (models.Interview, error) {
	var interview models.Interview
	err := r.db.WithContext(ctx).
		Preload("Questions", orderQuestions).
		First(&interview, id).Error
	if err != nil {
		return models.Interview{}, err
	}

	return interview, nil
}

// GetReport loads the interview with every question, answer, and evaluation
// needed for report aggregation.
func (r *interviewRepository) GetReport(ctx context.Context, id uint) (models.Interview, error) {
	var interview models.Interview
	err := r.db.WithContext(ctx).
		Preload("Questions", orderQuestions).
		Preload("Questions.Answers").
		Preload("Questions.Answers.Evaluation").
		First(&interview, id).Error
	if err != nil {
		return models.Interview{}, err
	}

	return interview, nil
}

func orderQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("question_order ASC")
}
