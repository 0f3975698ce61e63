package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/health-companion/middleware"
	"github.com/meinhoongagan/health-companion/services"
	"go.uber.org/zap"
)

type AuthController struct {
	auth   *services.AuthService
	logger *zap.Logger
}

func NewAuthController(auth *services.AuthService, logger *zap.Logger) *AuthController {
	return &AuthController{auth: auth, logger: logger}
}

// Register handles user registration
func (h *AuthController) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if ok, err := bind(c, &in); !ok {
		return err
	}

	u, err := h.auth.Register(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.logger, err, "Server error during registration")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully. Please verify your phone number with OTP.",
		"userId":  u.ID,
		"phone":   u.PhoneNumber(),
	})
}

// VerifyOTP activates the account and signs the user in
func (h *AuthController) VerifyOTP(c *fiber.Ctx) error {
	var in services.VerifyOTPInput
	if ok, err := bind(c, &in); !ok {
		return err
	}

	token, u, err := h.auth.VerifyOTP(c.UserContext(), in.Phone, in.OTP)
	if err != nil {
		return respondError(c, h.logger, err, "Server error during OTP verification")
	}

	return c.JSON(fiber.Map{
		"message": "Phone number verified successfully",
		"token":   token,
		"user":    u.Summary(),
	})
}

// Login handles user authentication
func (h *AuthController) Login(c *fiber.Ctx) error {
	var in services.LoginInput
	if ok, err := bind(c, &in); !ok {
		return err
	}

	token, u, err := h.auth.Login(c.UserContext(), in.Identifier, in.Password)
	var unverified *services.VerificationRequiredError
	if errors.As(err, &unverified) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":                "Please verify your phone number first",
			"requiresVerification": true,
			"userId":               unverified.UserID,
		})
	}
	if err != nil {
		return respondError(c, h.logger, err, "Server error during login")
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    u.Summary(),
	})
}

func (h *AuthController) ResendOTP(c *fiber.Ctx) error {
	var in services.ResendOTPInput
	if ok, err := bind(c, &in); !ok {
		return err
	}

	u, err := h.auth.ResendOTP(c.UserContext(), in.Phone)
	if err != nil {
		return respondError(c, h.logger, err, "Server error while resending OTP")
	}

	return c.JSON(fiber.Map{
		"message": "New OTP sent successfully",
		"phone":   u.PhoneNumber(),
	})
}

// Me returns the current user's profile
func (h *AuthController) Me(c *fiber.Ctx) error {
	u, err := h.auth.Me(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "Server error while fetching profile")
	}
	return c.JSON(fiber.Map{"user": u.Profile()})
}

// Logout revokes the presented token when a denylist is configured;
// otherwise the client just discards it.
func (h *AuthController) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext(), middleware.Claims(c)); err != nil {
		h.logger.Warn("token revocation failed", zap.Error(err))
	}
	c.ClearCookie("token")
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthController) Refresh(c *fiber.Ctx) error {
	token, err := h.auth.Refresh(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "Server error while refreshing token")
	}
	return c.JSON(fiber.Map{
		"message": "Token refreshed successfully",
		"token":   token,
	})
}
