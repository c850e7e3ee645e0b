package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/prepview/prepview-api/internal/models"
	"github.com/prepview/prepview-api/internal/repository"
)

func seedEvaluatedAnswer(t *testing.T, db *gorm.DB, questionID uint, scores map[string]interface{}, status string) {
	t.Helper()

	answer := models.Answer{QuestionID: questionID, UserID: 1, AnswerText: "answer"}
	require.NoError(t, db.Create(&answer).Error)

	evaluation := models.Evaluation{
		AnswerID:    answer.ID,
		Scores:      datatypes.JSONMap(scores),
		Feedback:    "feedback",
		Suggestions: datatypes.JSON([]byte(`["s"]`)),
		Status:      status,
	}
	require.NoError(t, db.Create(&evaluation).Error)
}

func TestReportAveragesCompletedEvaluations(t *testing.T) {
	db := setupServiceDB(t, "report_average")
	interview := seedInterview(t, db, 1)

	// Per-evaluation means 7.0 and 9.0; the overall report score is their mean.
	seedEvaluatedAnswer(t, db, interview.Questions[0].ID,
		map[string]interface{}{"correctness": 7.0, "completeness": 7.0, "quality": 7.0, "communication": 7.0},
		models.EvaluationStatusCompleted)
	seedEvaluatedAnswer(t, db, interview.Questions[1].ID,
		map[string]interface{}{"correctness": 9.0, "completeness": 9.0, "quality": 9.0, "communication": 9.0},
		models.EvaluationStatusCompleted)

	svc := NewReportService(repository.NewInterviewRepository(db), nil, time.Minute, testLogger())

	report, err := svc.Get(context.Background(), interview.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, report.OverallScore)
	require.Equal(t, 8.0, *report.OverallScore)
	require.Len(t, report.Questions, 2)
	require.NotNil(t, report.Questions[0].Answers[0].Evaluation)
}

func TestReportRoundsToTwoDecimals(t *testing.T) {
	db := setupServiceDB(t, "report_rounding")
	interview := seedInterview(t, db, 1)

	// Means 7.75 and 8.0 average to 7.875, reported as 7.88.
	seedEvaluatedAnswer(t, db, interview.Questions[0].ID,
		map[string]interface{}{"correctness": 8.0, "completeness": 7.0, "quality": 9.0, "communication": 7.0},
		models.EvaluationStatusCompleted)
	seedEvaluatedAnswer(t, db, interview.Questions[1].ID,
		map[string]interface{}{"correctness": 8.0, "completeness": 8.0, "quality": 8.0, "communication": 8.0},
		models.EvaluationStatusCompleted)

	svc := NewReportService(repository.NewInterviewRepository(db), nil, time.Minute, testLogger())

	report, err := svc.Get(context.Background(), interview.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, report.OverallScore)
	require.Equal(t, 7.88, *report.OverallScore)
}

func TestReportExcludesFailedEvaluations(t *testing.T) {
	db := setupServiceDB(t, "report_failed")
	interview := seedInterview(t, db, 1)

	seedEvaluatedAnswer(t, db, interview.Questions[0].ID,
		map[string]interface{}{"correctness": 0.0, "completeness": 0.0, "quality": 0.0, "communication": 0.0},
		models.EvaluationStatusFailed)

	svc := NewReportService(repository.NewInterviewRepository(db), nil, time.Minute, testLogger())

	report, err := svc.Get(context.Background(), interview.ID, 1)
	require.NoError(t, err)
	require.Nil(t, report.OverallScore)

	entry := report.Questions[0].Answers[0]
	require.Equal(t, models.EvaluationStatusFailed, entry.Status)
	require.Nil(t, entry.Evaluation)
}

func TestReportWithoutAnswers(t *testing.T) {
	db := setupServiceDB(t, "report_empty")
	interview := seedInterview(t, db, 1)

	svc := NewReportService(repository.NewInterviewRepository(db), nil, time.Minute, testLogger())

	report, err := svc.Get(context.Background(), interview.ID, 1)
	require.NoError(t, err)
	require.Nil(t, report.OverallScore)
	require.Len(t, report.Questions, 2)
	require.Empty(t, report.Questions[0].Answers)
}

func TestReportCachesResult(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	db := setupServiceDB(t, "report_cache")
	interview := seedInterview(t, db, 1)
	seedEvaluatedAnswer(t, db, interview.Questions[0].ID,
		map[string]interface{}{"correctness": 8.0, "completeness": 8.0, "quality": 8.0, "communication": 8.0},
		models.EvaluationStatusCompleted)

	svc := NewReportService(repository.NewInterviewRepository(db), redisClient, time.Minute, testLogger())

	first, err := svc.Get(context.Background(), interview.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, first.OverallScore)

	// A new answer does not appear until the cache entry expires.
	seedEvaluatedAnswer(t, db, interview.Questions[1].ID,
		map[string]interface{}{"correctness": 2.0, "completeness": 2.0, "quality": 2.0, "communication": 2.0},
		models.EvaluationStatusCompleted)

	cached, err := svc.Get(context.Background(), interview.ID, 1)
	require.NoError(t, err)
	require.Equal(t, *first.OverallScore, *cached.OverallScore)

	server.FastForward(2 * time.Minute)

	fresh, err := svc.Get(context.Background(), interview.ID, 1)
	require.NoError(t, err)
	require.Equal(t, 5.0, *fresh.OverallScore)
}

func TestReportEnforcesOwnership(t *testing.T) {
	db := setupServiceDB(t, "report_ownership")
	interview := seedInterview(t, db, 1)

	svc := NewReportService(repository.NewInterviewRepository(db), nil, time.Minute, testLogger())

	_, err := svc.Get(context.Background(), interview.ID, 2)
	require.ErrorIs(t, err, ErrInterviewForbidden)

	_, err = svc.Get(context.Background(), 9999, 1)
	require.ErrorIs(t, err, ErrInterviewNotFound)
}
