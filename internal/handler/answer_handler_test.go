package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/prepview/prepview-api/internal/config"
	"github.com/prepview/prepview-api/internal/dto"
	"github.com/prepview/prepview-api/internal/handler"
	"github.com/prepview/prepview-api/internal/models"
	"github.com/prepview/prepview-api/internal/repository"
	"github.com/prepview/prepview-api/internal/router"
	"github.com/prepview/prepview-api/internal/service"
	"github.com/prepview/prepview-api/pkg/llm"
)

type fixedGenerator struct {
	reply string
	err   error
}

func (g *fixedGenerator) Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (string, error) {
	return g.reply, g.err
}

// syncEnqueuer runs the evaluation inline so handler tests observe a terminal
// status on the very next poll.
type syncEnqueuer struct {
	evaluations service.EvaluationService
}

func (e *syncEnqueuer) Enqueue(answerID uint) bool {
	e.evaluations.Evaluate(context.Background(), answerID)
	return true
}

type answerApp struct {
	app *fiber.App
	db  *gorm.DB
}

func setupAnswerApp(t *testing.T, name string, generator llm.Generator) answerApp {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Interview{},
		&models.Question{},
		&models.Answer{},
		&models.Evaluation{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := testLogger()

	answerRepo := repository.NewAnswerRepository(db)
	interviewRepo := repository.NewInterviewRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)

	evaluationService := service.NewEvaluationService(answerRepo, interviewRepo, evaluationRepo, generator, nil, service.EvaluationConfig{}, logger)
	answerService := service.NewAnswerService(answerRepo, interviewRepo, &syncEnqueuer{evaluations: evaluationService}, validate, logger)

	app := fiber.New()
	answerHandler := handler.NewAnswerHandler(answerService, evaluationService, logger)

	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		AnswerHandler: answerHandler,
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			return c.Next()
		},
	})

	return answerApp{app: app, db: db}
}

func seedInterview(t *testing.T, db *gorm.DB, userID uint) models.Interview {
	t.Helper()

	interview := models.Interview{UserID: userID, Role: "Backend Engineer"}
	require.NoError(t, repository.NewInterviewRepository(db).CreateWithQuestions(context.Background(), &interview, []string{"q1", "q2"}))
	return interview
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAnswerSubmitAndPollCompleted(t *testing.T) {
	generator := &fixedGenerator{reply: `{"scores": {"correctness": 8, "completeness": 7, "quality": 9, "communication": 8}, "feedback": "ok", "suggestions": ["x"]}`}
	env := setupAnswerApp(t, "answer_handler_completed", generator)
	interview := seedInterview(t, env.db, 1)

	resp := postJSON(t, env.app, "/api/answers", dto.AnswerSubmitRequest{
		InterviewID: interview.ID,
		QuestionID:  interview.Questions[0].ID,
		AnswerText:  "use a token bucket",
	})
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var submitted struct {
		Data dto.AnswerResponse `json:"data"`
	}
	decode(t, resp, &submitted)
	require.NotZero(t, submitted.Data.ID)

	statusResp := getJSON(t, env.app, fmt.Sprintf("/api/answers/%d/status", submitted.Data.ID))
	require.Equal(t, fiber.StatusOK, statusResp.StatusCode)

	var status struct {
		Data dto.EvaluationStatusResponse `json:"data"`
	}
	decode(t, statusResp, &status)
	require.Equal(t, models.EvaluationStatusCompleted, status.Data.Status)
	require.NotNil(t, status.Data.Evaluation)
	require.Equal(t, 8.0, status.Data.Evaluation.Scores["correctness"])
	require.Equal(t, 7.0, status.Data.Evaluation.Scores["completeness"])
	require.Equal(t, 9.0, status.Data.Evaluation.Scores["quality"])
	require.Equal(t, 8.0, status.Data.Evaluation.Scores["communication"])
	require.Equal(t, "ok", status.Data.Evaluation.Feedback)
	require.Equal(t, []string{"x"}, status.Data.Evaluation.Suggestions)
}

func TestAnswerSubmitAndPollFailed(t *testing.T) {
	generator := &fixedGenerator{err: llm.ErrRateLimited}
	env := setupAnswerApp(t, "answer_handler_failed", generator)
	interview := seedInterview(t, env.db, 1)

	resp := postJSON(t, env.app, "/api/answers", dto.AnswerSubmitRequest{
		InterviewID: interview.ID,
		QuestionID:  interview.Questions[0].ID,
		AnswerText:  "attempt",
	})
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var submitted struct {
		Data dto.AnswerResponse `json:"data"`
	}
	decode(t, resp, &submitted)

	statusResp := getJSON(t, env.app, fmt.Sprintf("/api/answers/%d/status", submitted.Data.ID))
	require.Equal(t, fiber.StatusOK, statusResp.StatusCode)

	var status struct {
		Data dto.EvaluationStatusResponse `json:"data"`
	}
	decode(t, statusResp, &status)
	require.Equal(t, models.EvaluationStatusFailed, status.Data.Status)
	require.Nil(t, status.Data.Evaluation)
}

func TestAnswerSubmitForeignInterview(t *testing.T) {
	env := setupAnswerApp(t, "answer_handler_foreign", &fixedGenerator{})
	interview := seedInterview(t, env.db, 2)

	resp := postJSON(t, env.app, "/api/answers", dto.AnswerSubmitRequest{
		InterviewID: interview.ID,
		QuestionID:  interview.Questions[0].ID,
		AnswerText:  "attempt",
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAnswerStatusForeignAnswer(t *testing.T) {
	env := setupAnswerApp(t, "answer_handler_status_foreign", &fixedGenerator{})
	interview := seedInterview(t, env.db, 2)

	answer := models.Answer{QuestionID: interview.Questions[0].ID, UserID: 2, AnswerText: "theirs"}
	require.NoError(t, env.db.Create(&answer).Error)

	resp := getJSON(t, env.app, fmt.Sprintf("/api/answers/%d/status", answer.ID))
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAnswerStatusUnknownAnswer(t *testing.T) {
	env := setupAnswerApp(t, "answer_handler_status_missing", &fixedGenerator{})

	resp := getJSON(t, env.app, "/api/answers/9999/status")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = getJSON(t, env.app, "/api/answers/not-a-number/status")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAnswerSubmitInvalidPayload(t *testing.T) {
	env := setupAnswerApp(t, "answer_handler_invalid", &fixedGenerator{})

	resp := postJSON(t, env.app, "/api/answers", map[string]interface{}{"interview_id": 0})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
