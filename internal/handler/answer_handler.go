package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/prepview/prepview-api/internal/dto"
	"github.com/prepview/prepview-api/internal/service"
	"github.com/prepview/prepview-api/internal/utils"
)

// AnswerHandler exposes answer submission and evaluation polling endpoints.
type AnswerHandler struct {
	answers     service.AnswerService
	evaluations service.EvaluationService
	logger      zerolog.Logger
}

// NewAnswerHandler constructs an answer handler.
func NewAnswerHandler(answers service.AnswerService, evaluations service.EvaluationService, logger zerolog.Logger) *AnswerHandler {
	return &AnswerHandler{
		answers:     answers,
		evaluations: evaluations,
		logger:      logger.With().Str("component", "answer_handler").Logger(),
	}
}

// Register wires answer routes.
func (h *AnswerHandler) Register(router fiber.Router) {
	router.Post("", h.submit)
	router.Get("/:id/status", h.status)
}

func (h *AnswerHandler) submit(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.AnswerSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	answer, err := h.answers.Submit(c.Context(), userID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		case errors.Is(err, service.ErrInterviewNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "interview not found")
		case errors.Is(err, service.ErrInterviewForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "forbidden")
		case errors.Is(err, service.ErrQuestionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "question not found in interview")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to submit answer")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to submit answer")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "answer submitted for evaluation", answer)
}

func (h *AnswerHandler) status(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	answerID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid answer id")
	}

	status, err := h.evaluations.GetStatus(c.Context(), answerID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAnswerNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "answer not found")
		case errors.Is(err, service.ErrAnswerForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "forbidden")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to load evaluation status")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to load evaluation status")
		}
	}

	return utils.SendSuccess(c, "evaluation status", status)
}
