package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/meinhoongagan/health-companion/controllers"
	"github.com/meinhoongagan/health-companion/middleware"
	"go.uber.org/zap"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Gate        *middleware.Gate
	Auth        *controllers.AuthController
	User        *controllers.UserController
	Quiz        *controllers.QuizController
	Contact     *controllers.ContactController
	Logger      *zap.Logger
	CORSOrigins string
}

// NewApp builds the fiber app with every route mounted under /api.
func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "health-companion",
		BodyLimit:    5 * 1024 * 1024,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(d.Logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.CORSOrigins,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "OK",
			"timestamp": time.Now().UTC(),
		})
	})

	api := app.Group("/api")
	SetupAuthRoutes(api, d.Gate, d.Auth)
	SetupUserRoutes(api, d.Gate, d.User)
	SetupQuizRoutes(api, d.Gate, d.Quiz)
	SetupContactRoutes(api, d.Gate, d.Contact)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Route not found"})
	})
	return app
}
