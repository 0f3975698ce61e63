package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/health-companion/controllers"
	"github.com/meinhoongagan/health-companion/middleware"
)

// SetupQuizRoutes configures the symptom quiz routes
func SetupQuizRoutes(api fiber.Router, gate *middleware.Gate, h *controllers.QuizController) {
	quiz := api.Group("/quiz", gate.Protected())

	quiz.Post("/start", h.Start)
	quiz.Post("/answer", h.Answer)
	// /history must be registered before /:id
	quiz.Get("/history", h.History)
	quiz.Get("/:id", h.Get)
	quiz.Delete("/:id", h.Delete)
}
