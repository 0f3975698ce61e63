package models

import (
	"strings"
	"time"
)

type ContactStatus string

const (
	ContactUnread   ContactStatus = "unread"
	ContactRead     ContactStatus = "read"
	ContactReplied  ContactStatus = "replied"
	ContactArchived ContactStatus = "archived"
)

var (
	ContactStatuses   = []string{"unread", "read", "replied", "archived"}
	ContactPriorities = []string{"low", "medium", "high", "urgent"}
	// "urgent" is accepted as a submission hint only; it is stored as "other".
	ContactCategories = []string{"general", "technical", "support", "feedback", "partnership", "other"}
)

type ContactMetadata struct {
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	Source    string `json:"source"`
	// UserID is set when the sender was signed in.
	UserID *uint `json:"userId,omitempty"`
}

type ContactResponse struct {
	Message     string     `json:"message,omitempty"`
	RespondedBy *uint      `json:"respondedBy,omitempty"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
}

type Contact struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	Name       string          `json:"name" gorm:"size:100;not null"`
	Email      string          `json:"email" gorm:"index;not null"`
	Subject    string          `json:"subject" gorm:"size:200;not null"`
	Message    string          `json:"message" gorm:"size:2000;not null"`
	Status     ContactStatus   `json:"status" gorm:"size:16;index;not null"`
	Priority   string          `json:"priority" gorm:"size:16;index;not null"`
	Category   string          `json:"category" gorm:"size:32;index;not null"`
	Metadata   ContactMetadata `json:"metadata" gorm:"embedded;embeddedPrefix:meta_"`
	AssignedTo *uint           `json:"assignedTo,omitempty"`
	Response   ContactResponse `json:"response" gorm:"embedded;embeddedPrefix:response_"`
	CreatedAt  time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// DerivePriority applies the submission heuristics: urgent wording beats
// support wording, everything else is medium.
func DerivePriority(category, subject string) string {
	s := strings.ToLower(subject)
	switch {
	case category == "urgent" || strings.Contains(s, "urgent") || strings.Contains(s, "emergency"):
		return "urgent"
	case category == "support" || strings.Contains(s, "help"):
		return "high"
	}
	return "medium"
}

// Reply records an admin response and marks the message replied.
func (c *Contact) Reply(message string, by uint, at time.Time) {
	c.Status = ContactReplied
	c.Response = ContactResponse{
		Message:     message,
		RespondedBy: &by,
		RespondedAt: &at,
	}
}
