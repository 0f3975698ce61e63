package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/health-companion/controllers"
	"github.com/meinhoongagan/health-companion/middleware"
)

// SetupAuthRoutes configures registration, OTP verification and sessions
func SetupAuthRoutes(api fiber.Router, gate *middleware.Gate, h *controllers.AuthController) {
	auth := api.Group("/auth")

	// Public routes
	auth.Post("/register", h.Register)
	auth.Post("/verify-otp", h.VerifyOTP)
	auth.Post("/login", h.Login)
	auth.Post("/resend-otp", h.ResendOTP)

	// Protected routes
	auth.Get("/me", gate.Protected(), h.Me)
	auth.Post("/logout", gate.Protected(), h.Logout)
	auth.Post("/refresh", gate.Protected(), h.Refresh)
}
