package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/health-companion/middleware"
	"github.com/meinhoongagan/health-companion/models"
	"github.com/meinhoongagan/health-companion/services"
	"github.com/meinhoongagan/health-companion/utils"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 10
	maxPageLimit        = 100
)

type QuizController struct {
	quizzes *services.QuizService
	logger  *zap.Logger
}

func NewQuizController(quizzes *services.QuizService, logger *zap.Logger) *QuizController {
	return &QuizController{quizzes: quizzes, logger: logger}
}

func (h *QuizController) Start(c *fiber.Ctx) error {
	var in services.StartQuizInput
	if ok, err := bind(c, &in); !ok {
		return err
	}

	device := c.Get(fiber.HeaderUserAgent)
	if device == "" {
		device = "Unknown"
	}
	q, next, err := h.quizzes.Start(c.UserContext(), middleware.UserID(c), in, models.QuizMetadata{
		DeviceInfo: device,
		UserAgent:  c.Get(fiber.HeaderUserAgent),
		IPAddress:  c.IP(),
	})
	if err != nil {
		return respondError(c, h.logger, err, "Server error while starting quiz")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Quiz started successfully",
		"quizId":       q.ID,
		"sessionId":    q.SessionID,
		"nextQuestion": next,
	})
}

func (h *QuizController) Answer(c *fiber.Ctx) error {
	var in services.AnswerInput
	if ok, err := bind(c, &in); !ok {
		return err
	}

	res, err := h.quizzes.Answer(c.UserContext(), middleware.UserID(c), in)
	if errors.Is(err, services.ErrQuizNotFound) {
		return notFound(c, "Quiz not found or already completed")
	}
	if err != nil {
		return respondError(c, h.logger, err, "Server error while submitting answer")
	}

	if res.Completed {
		return c.JSON(fiber.Map{
			"message":  "Quiz completed successfully",
			"quiz":     res.Quiz,
			"analysis": res.Quiz.AIAnalysis,
			"summary":  res.Quiz.Summary(),
		})
	}
	return c.JSON(fiber.Map{
		"message":      "Answer recorded successfully",
		"quiz":         res.Quiz,
		"nextQuestion": res.NextQuestion,
		"progress":     res.Progress,
	})
}

func (h *QuizController) Get(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c, "Quiz not found")
	}
	q, err := h.quizzes.Get(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "Server error while fetching quiz")
	}
	return c.JSON(fiber.Map{
		"quiz":    q,
		"summary": q.Summary(),
	})
}

func (h *QuizController) History(c *fiber.Ctx) error {
	page, limit := utils.ParsePage(c.Query("page"), c.Query("limit"), defaultHistoryLimit, maxPageLimit)
	status := models.QuizStatus(c.Query("status"))

	quizzes, p, err := h.quizzes.History(c.UserContext(), middleware.UserID(c), status, page, limit)
	if err != nil {
		return respondError(c, h.logger, err, "Server error while fetching quiz history")
	}
	return c.JSON(fiber.Map{
		"quizzes":    quizzes,
		"pagination": p,
	})
}

func (h *QuizController) Delete(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c, "Quiz not found")
	}
	if err := h.quizzes.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, h.logger, err, "Server error while deleting quiz")
	}
	return c.JSON(fiber.Map{"message": "Quiz deleted successfully"})
}
