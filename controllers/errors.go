package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/health-companion/services"
	"github.com/meinhoongagan/health-companion/utils"
	"go.uber.org/zap"
)

type errorResponse struct {
	status int
	msg    string
}

// knownErrors maps service errors onto client-facing responses. Anything
// not listed is an internal failure.
var knownErrors = []struct {
	err  error
	resp errorResponse
}{
	{services.ErrDuplicateIdentity, errorResponse{fiber.StatusBadRequest, "User already exists with this email or phone number"}},
	{services.ErrInvalidCredentials, errorResponse{fiber.StatusUnauthorized, "Invalid credentials"}},
	{services.ErrInvalidOTP, errorResponse{fiber.StatusBadRequest, "Invalid or expired OTP"}},
	{services.ErrUserNotFound, errorResponse{fiber.StatusNotFound, "User not found"}},
	{services.ErrQuizNotFound, errorResponse{fiber.StatusNotFound, "Quiz not found"}},
	{services.ErrContactNotFound, errorResponse{fiber.StatusNotFound, "Message not found"}},
	{services.ErrAssigneeNotFound, errorResponse{fiber.StatusBadRequest, "Invalid user ID"}},
	{services.ErrIncorrectPassword, errorResponse{fiber.StatusBadRequest, "Password is incorrect"}},
	{services.ErrInvalidPeriod, errorResponse{fiber.StatusBadRequest, "Invalid period"}},
	{services.ErrUploadDisabled, errorResponse{fiber.StatusServiceUnavailable, "Avatar upload is not available"}},
}

// respondError writes the mapped response for err. Unknown errors are
// logged and reported with fallback as a 500.
func respondError(c *fiber.Ctx, log *zap.Logger, err error, fallback string) error {
	for _, k := range knownErrors {
		if errors.Is(err, k.err) {
			return c.Status(k.resp.status).JSON(fiber.Map{"error": k.resp.msg})
		}
	}
	log.Error(fallback, zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
}

// bind parses the JSON body into in and validates it. When it returns
// false the 400 response has already been written.
func bind(c *fiber.Ctx, in any) (bool, error) {
	if err := c.BodyParser(in); err != nil {
		if fields, ok := utils.TypeErrors(in, err); ok {
			return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	return check(c, in)
}

func check(c *fiber.Ctx, in any) (bool, error) {
	err := utils.Validate(in)
	if err == nil {
		return true, nil
	}
	var fields utils.ValidationErrors
	if errors.As(err, &fields) {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}
	return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msg})
}

// idParam reads a positive numeric route parameter. Malformed ids are
// reported as not found.
func idParam(c *fiber.Ctx, name string) (uint, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
