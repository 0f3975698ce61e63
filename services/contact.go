package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/meinhoongagan/health-companion/models"
	"github.com/meinhoongagan/health-companion/store"
	"github.com/meinhoongagan/health-companion/utils"
	"go.uber.org/zap"
)

type SubmitContactInput struct {
	Name     string `json:"name" validate:"min=2,max=100"`
	Email    string `json:"email" validate:"email"`
	Subject  string `json:"subject" validate:"min=5,max=200"`
	Message  string `json:"message" validate:"min=10,max=2000"`
	Category string `json:"category" validate:"omitempty,oneof=general technical support feedback partnership other urgent"`
}

func (SubmitContactInput) FieldMessages() map[string]string {
	return map[string]string{
		"name":     "Name must be 2-100 characters",
		"email":    "Invalid email address",
		"subject":  "Subject must be 5-200 characters",
		"message":  "Message must be 10-2000 characters",
		"category": "Invalid category",
	}
}

func (in *SubmitContactInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
}

type ContactStatusInput struct {
	Status string `json:"status" validate:"oneof=unread read replied archived"`
}

func (ContactStatusInput) FieldMessages() map[string]string {
	return map[string]string{"status": "Invalid status"}
}

type ContactPriorityInput struct {
	Priority string `json:"priority" validate:"oneof=low medium high urgent"`
}

func (ContactPriorityInput) FieldMessages() map[string]string {
	return map[string]string{"priority": "Invalid priority"}
}

type AssignContactInput struct {
	AssignedTo uint `json:"assignedTo" validate:"required"`
}

func (AssignContactInput) FieldMessages() map[string]string {
	return map[string]string{"assignedTo": "Invalid user ID"}
}

type ReplyContactInput struct {
	Message string `json:"message" validate:"min=10,max=2000"`
}

func (ReplyContactInput) FieldMessages() map[string]string {
	return map[string]string{"message": "Reply must be 10-2000 characters"}
}

func (in *ReplyContactInput) Normalize() {
	in.Message = strings.TrimSpace(in.Message)
}

var statsPeriods = map[string]time.Duration{
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
	"1y":  365 * 24 * time.Hour,
}

type ContactService struct {
	contacts   store.ContactStore
	users      store.UserStore
	mailer     utils.Mailer
	adminEmail string
	now        func() time.Time
	logger     *zap.Logger
}

func NewContactService(contacts store.ContactStore, users store.UserStore, mailer utils.Mailer, adminEmail string, logger *zap.Logger) *ContactService {
	return &ContactService{
		contacts:   contacts,
		users:      users,
		mailer:     mailer,
		adminEmail: adminEmail,
		now:        time.Now,
		logger:     logger,
	}
}

// Submit stores a public contact-form message. Priority is derived from
// the category and subject; "urgent" is only a hint and is stored as other.
func (s *ContactService) Submit(ctx context.Context, in SubmitContactInput, meta models.ContactMetadata) (*models.Contact, error) {
	category := in.Category
	if category == "" {
		category = "general"
	}
	subject := strings.TrimSpace(in.Subject)
	c := &models.Contact{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Subject:  subject,
		Message:  strings.TrimSpace(in.Message),
		Status:   models.ContactUnread,
		Priority: models.DerivePriority(category, subject),
		Category: category,
		Metadata: meta,
	}
	if c.Category == "urgent" {
		c.Category = "other"
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, err
	}

	s.send(ctx, c.Email, "We received your message: "+c.Subject, fmt.Sprintf(
		"<p>Hi %s,</p><p>Thanks for contacting Health Companion. We will get back to you soon.</p><blockquote>%s</blockquote>",
		html.EscapeString(c.Name), html.EscapeString(c.Message)))
	if s.adminEmail != "" {
		s.send(ctx, s.adminEmail, fmt.Sprintf("[%s] New contact message: %s", c.Priority, c.Subject), fmt.Sprintf(
			"<p><strong>From:</strong> %s &lt;%s&gt;</p><p><strong>Category:</strong> %s</p><p>%s</p>",
			html.EscapeString(c.Name), html.EscapeString(c.Email), c.Category, html.EscapeString(c.Message)))
	}
	return c, nil
}

func (s *ContactService) send(ctx context.Context, to, subject, body string) {
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		s.logger.Warn("contact mail failed", zap.String("to", to), zap.Error(err))
	}
}

func (s *ContactService) List(ctx context.Context, f store.ContactFilter, page, limit int) ([]models.Contact, utils.Pagination, store.ContactCounts, error) {
	f.Limit = limit
	f.Offset = utils.Offset(page, limit)
	items, total, err := s.contacts.List(ctx, f)
	if err != nil {
		return nil, utils.Pagination{}, store.ContactCounts{}, err
	}
	counts, err := s.contacts.Counts(ctx)
	if err != nil {
		return nil, utils.Pagination{}, store.ContactCounts{}, err
	}
	return items, utils.NewPagination(page, limit, total), counts, nil
}

func (s *ContactService) Get(ctx context.Context, id uint) (*models.Contact, error) {
	c, err := s.contacts.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrContactNotFound
	}
	return c, err
}

func (s *ContactService) update(ctx context.Context, id uint, mutate func(*models.Contact) error) (*models.Contact, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(c); err != nil {
		return nil, err
	}
	if err := s.contacts.Update(ctx, c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *ContactService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Contact, error) {
	return s.update(ctx, id, func(c *models.Contact) error {
		c.Status = models.ContactStatus(status)
		return nil
	})
}

func (s *ContactService) UpdatePriority(ctx context.Context, id uint, priority string) (*models.Contact, error) {
	return s.update(ctx, id, func(c *models.Contact) error {
		c.Priority = priority
		return nil
	})
}

func (s *ContactService) Assign(ctx context.Context, id, assignee uint) (*models.Contact, error) {
	return s.update(ctx, id, func(c *models.Contact) error {
		if _, err := s.users.GetByID(ctx, assignee); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAssigneeNotFound
			}
			return err
		}
		c.AssignedTo = &assignee
		return nil
	})
}

// Reply records the admin response and mails it to the sender.
func (s *ContactService) Reply(ctx context.Context, id, adminID uint, message string) (*models.Contact, error) {
	message = strings.TrimSpace(message)
	c, err := s.update(ctx, id, func(c *models.Contact) error {
		c.Reply(message, adminID, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.send(ctx, c.Email, "Re: "+c.Subject, fmt.Sprintf("<p>Hi %s,</p><p>%s</p>",
		html.EscapeString(c.Name), html.EscapeString(message)))
	return c, nil
}

func (s *ContactService) Delete(ctx context.Context, id uint) error {
	err := s.contacts.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrContactNotFound
	}
	return err
}

// Stats aggregates messages over one of 7d, 30d, 90d or 1y. An empty
// period means 30d.
func (s *ContactService) Stats(ctx context.Context, period string) (store.ContactStats, error) {
	if period == "" {
		period = "30d"
	}
	window, ok := statsPeriods[period]
	if !ok {
		return store.ContactStats{}, ErrInvalidPeriod
	}
	return s.contacts.Stats(ctx, s.now().Add(-window))
}
