package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/health-companion/controllers"
	"github.com/meinhoongagan/health-companion/middleware"
)

// SetupContactRoutes configures the public contact form and the admin inbox
func SetupContactRoutes(api fiber.Router, gate *middleware.Gate, h *controllers.ContactController) {
	contact := api.Group("/contact")

	contact.Post("/submit", gate.Optional(), h.Submit)

	admin := gate.AdminOnly()
	contact.Get("/messages", admin, h.List)
	contact.Get("/messages/:id", admin, h.Get)
	contact.Put("/messages/:id/status", admin, h.UpdateStatus)
	contact.Put("/messages/:id/priority", admin, h.UpdatePriority)
	contact.Put("/messages/:id/assign", admin, h.Assign)
	contact.Put("/messages/:id/reply", admin, h.Reply)
	contact.Delete("/messages/:id", admin, h.Delete)
	contact.Get("/stats", admin, h.Stats)
}
