package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/prepview/prepview-api/internal/dto"
	"github.com/prepview/prepview-api/internal/service"
	"github.com/prepview/prepview-api/internal/utils"
	"github.com/prepview/prepview-api/pkg/llm"
)

// InterviewHandler exposes interview session endpoints.
type InterviewHandler struct {
	interviews service.InterviewService
	reports    service.ReportService
	logger     zerolog.Logger
}

// NewInterviewHandler constructs an interview handler.
func NewInterviewHandler(interviews service.InterviewService, reports service.ReportService, logger zerolog.Logger) *InterviewHandler {
	return &InterviewHandler{
		interviews: interviews,
		reports:    reports,
		logger:     logger.With().Str("component", "interview_handler").Logger(),
	}
}

// Register wires interview routes.
func (h *InterviewHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Get("/:id/report", h.report)
}

func (h *InterviewHandler) create(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.InterviewCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	interview, err := h.interviews.Create(c.Context(), userID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		case errors.Is(err, service.ErrGeneratorUnavailable), errors.Is(err, llm.ErrNotConfigured):
			return utils.SendError(c, fiber.StatusServiceUnavailable, "question generation unavailable")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create interview")
			return utils.SendError(c, fiber.StatusBadGateway, "failed to generate interview questions")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "interview created", interview)
}

func (h *InterviewHandler) list(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	interviews, err := h.interviews.List(c.Context(), userID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list interviews")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list interviews")
	}

	return utils.SendSuccess(c, "interviews retrieved", interviews)
}

func (h *InterviewHandler) get(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	interviewID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid interview id")
	}

	interview, err := h.interviews.Get(c.Context(), interviewID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInterviewNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "interview not found")
		case errors.Is(err, service.ErrInterviewForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "forbidden")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to load interview")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to load interview")
		}
	}

	return utils.SendSuccess(c, "interview retrieved", interview)
}

func (h *InterviewHandler) report(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	interviewID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid interview id")
	}

	report, err := h.reports.Get(c.Context(), interviewID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInterviewNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "interview not found")
		case errors.Is(err, service.ErrInterviewForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "forbidden")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to build interview report")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to build report")
		}
	}

	return utils.SendSuccess(c, "report generated", report)
}
