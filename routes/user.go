package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/health-companion/controllers"
	"github.com/meinhoongagan/health-companion/middleware"
)

// SetupUserRoutes configures self-service profile routes
func SetupUserRoutes(api fiber.Router, gate *middleware.Gate, h *controllers.UserController) {
	user := api.Group("/user", gate.Protected())

	user.Get("/profile", h.GetProfile)
	user.Put("/profile", h.UpdateProfile)
	user.Put("/health-profile", h.UpdateHealthProfile)
	user.Put("/preferences", h.UpdatePreferences)
	user.Post("/avatar", h.UploadAvatar)
	user.Put("/change-password", h.ChangePassword)
	user.Delete("/account", h.DeleteAccount)
	user.Get("/dashboard", h.Dashboard)
}
