package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/health-companion/middleware"
	"github.com/meinhoongagan/health-companion/models"
	"github.com/meinhoongagan/health-companion/services"
	"github.com/meinhoongagan/health-companion/store"
	"github.com/meinhoongagan/health-companion/utils"
	"go.uber.org/zap"
)

const defaultContactLimit = 20

type ContactController struct {
	contacts *services.ContactService
	logger   *zap.Logger
}

func NewContactController(contacts *services.ContactService, logger *zap.Logger) *ContactController {
	return &ContactController{contacts: contacts, logger: logger}
}

// Submit is public. A signed-in sender is recorded when the optional gate
// resolved one.
func (h *ContactController) Submit(c *fiber.Ctx) error {
	var in services.SubmitContactInput
	if ok, err := bind(c, &in); !ok {
		return err
	}

	meta := models.ContactMetadata{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
		Referrer:  c.Get(fiber.HeaderReferer),
		Source:    "contact_form",
	}
	if meta.UserAgent == "" {
		meta.UserAgent = "Unknown"
	}
	if meta.Referrer == "" {
		meta.Referrer = "Direct"
	}
	if id := middleware.UserID(c); id != 0 {
		meta.UserID = &id
	}

	contact, err := h.contacts.Submit(c.UserContext(), in, meta)
	if err != nil {
		return respondError(c, h.logger, err, "Server error while submitting message")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Message submitted successfully. We will get back to you soon.",
		"contactId": contact.ID,
		"priority":  contact.Priority,
	})
}

func (h *ContactController) List(c *fiber.Ctx) error {
	page, limit := utils.ParsePage(c.Query("page"), c.Query("limit"), defaultContactLimit, maxPageLimit)
	filter := store.ContactFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Category: c.Query("category"),
	}

	contacts, p, counts, err := h.contacts.List(c.UserContext(), filter, page, limit)
	if err != nil {
		return respondError(c, h.logger, err, "Server error while fetching messages")
	}
	return c.JSON(fiber.Map{
		"contacts":   contacts,
		"pagination": p,
		"statistics": counts,
	})
}

func (h *ContactController) Get(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c, "Message not found")
	}
	contact, err := h.contacts.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "Server error while fetching message")
	}
	return c.JSON(fiber.Map{"contact": contact})
}

func (h *ContactController) UpdateStatus(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c, "Message not found")
	}
	var in services.ContactStatusInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	contact, err := h.contacts.UpdateStatus(c.UserContext(), id, in.Status)
	if err != nil {
		return respondError(c, h.logger, err, "Server error while updating status")
	}
	return c.JSON(fiber.Map{"message": "Status updated successfully", "contact": contact})
}

func (h *ContactController) UpdatePriority(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c, "Message not found")
	}
	var in services.ContactPriorityInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	contact, err := h.contacts.UpdatePriority(c.UserContext(), id, in.Priority)
	if err != nil {
		return respondError(c, h.logger, err, "Server error while updating priority")
	}
	return c.JSON(fiber.Map{"message": "Priority updated successfully", "contact": contact})
}

func (h *ContactController) Assign(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c, "Message not found")
	}
	var in services.AssignContactInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	contact, err := h.contacts.Assign(c.UserContext(), id, in.AssignedTo)
	if err != nil {
		return respondError(c, h.logger, err, "Server error while assigning message")
	}
	return c.JSON(fiber.Map{"message": "Message assigned successfully", "contact": contact})
}

func (h *ContactController) Reply(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c, "Message not found")
	}
	var in services.ReplyContactInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	contact, err := h.contacts.Reply(c.UserContext(), id, middleware.UserID(c), in.Message)
	if err != nil {
		return respondError(c, h.logger, err, "Server error while sending reply")
	}
	return c.JSON(fiber.Map{"message": "Reply sent successfully", "contact": contact})
}

func (h *ContactController) Delete(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c, "Message not found")
	}
	if err := h.contacts.Delete(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err, "Server error while deleting message")
	}
	return c.JSON(fiber.Map{"message": "Message deleted successfully"})
}

func (h *ContactController) Stats(c *fiber.Ctx) error {
	period := c.Query("period", "30d")
	st, err := h.contacts.Stats(c.UserContext(), period)
	if err != nil {
		return respondError(c, h.logger, err, "Server error while fetching statistics")
	}
	return c.JSON(fiber.Map{
		"period":        period,
		"dailyStats":    st.Daily,
		"categoryStats": st.Categories,
		"priorityStats": st.Priorities,
		"total":         st.Total,
	})
}
