package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/health-companion/middleware"
	"github.com/meinhoongagan/health-companion/models"
	"github.com/meinhoongagan/health-companion/services"
	"go.uber.org/zap"
)

type UserController struct {
	users  *services.UserService
	logger *zap.Logger
}

func NewUserController(users *services.UserService, logger *zap.Logger) *UserController {
	return &UserController{users: users, logger: logger}
}

func fullProfile(u *models.User) models.PublicUser {
	p := u.Profile()
	created := u.CreatedAt
	p.CreatedAt = &created
	return p
}

func (h *UserController) GetProfile(c *fiber.Ctx) error {
	u, err := h.users.Profile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "Server error while fetching profile")
	}
	return c.JSON(fiber.Map{"user": fullProfile(u)})
}

func (h *UserController) UpdateProfile(c *fiber.Ctx) error {
	var in services.UpdateProfileInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	u, err := h.users.UpdateProfile(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return respondError(c, h.logger, err, "Server error while updating profile")
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    fullProfile(u),
	})
}

func (h *UserController) UpdateHealthProfile(c *fiber.Ctx) error {
	var in services.UpdateHealthProfileInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	hp, err := h.users.UpdateHealthProfile(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return respondError(c, h.logger, err, "Server error while updating health profile")
	}
	return c.JSON(fiber.Map{
		"message":       "Health profile updated successfully",
		"healthProfile": hp,
	})
}

func (h *UserController) UpdatePreferences(c *fiber.Ctx) error {
	var in services.UpdatePreferencesInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	prefs, err := h.users.UpdatePreferences(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return respondError(c, h.logger, err, "Server error while updating preferences")
	}
	return c.JSON(fiber.Map{
		"message":     "Preferences updated successfully",
		"preferences": prefs,
	})
}

// UploadAvatar accepts a multipart "avatar" file.
func (h *UserController) UploadAvatar(c *fiber.Ctx) error {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Avatar file is required"})
	}
	file, err := fh.Open()
	if err != nil {
		return respondError(c, h.logger, err, "Server error while uploading avatar")
	}
	defer file.Close()

	u, err := h.users.UploadAvatar(c.UserContext(), middleware.UserID(c), file)
	if err != nil {
		return respondError(c, h.logger, err, "Server error while uploading avatar")
	}
	return c.JSON(fiber.Map{
		"message": "Avatar updated successfully",
		"avatar":  u.Avatar,
	})
}

func (h *UserController) ChangePassword(c *fiber.Ctx) error {
	var in services.ChangePasswordInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	err := h.users.ChangePassword(c.UserContext(), middleware.UserID(c), in)
	if errors.Is(err, services.ErrIncorrectPassword) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Current password is incorrect"})
	}
	if err != nil {
		return respondError(c, h.logger, err, "Server error while changing password")
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

func (h *UserController) DeleteAccount(c *fiber.Ctx) error {
	var in services.DeleteAccountInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	if err := h.users.DeleteAccount(c.UserContext(), middleware.UserID(c), in.Password); err != nil {
		return respondError(c, h.logger, err, "Server error while deleting account")
	}
	return c.JSON(fiber.Map{"message": "Account deleted successfully"})
}

func (h *UserController) Dashboard(c *fiber.Ctx) error {
	u, d, err := h.users.Dashboard(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "Server error while fetching dashboard")
	}
	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":         u.ID,
			"name":       u.Name,
			"email":      u.Email,
			"isVerified": u.IsVerified,
			"avatar":     u.Avatar,
		},
		"dashboard": d,
	})
}
