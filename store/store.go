package store

import (
	"context"
	"errors"
	"time"

	"github.com/meinhoongagan/health-companion/models"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicate       = errors.New("duplicate record")
	ErrVersionConflict = errors.New("version conflict")
)

// UserColumns selects the column groups written by UserStore.Update.
type UserColumns uint8

const (
	UserProfile UserColumns = 1 << iota
	UserHealth
	UserPreferences
	UserPassword
	UserVerification
	UserRole
)

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// FindByEmailOrPhone returns any user holding the email or the phone.
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	// GetByIdentifier matches the identifier against email or phone.
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	// Update writes only the column groups in cols.
	Update(ctx context.Context, u *models.User, cols UserColumns) error
	// ConsumeVerificationCode marks the user verified and clears the code,
	// provided the stored code still equals code and has not expired at now.
	// Otherwise it returns ErrNotFound and changes nothing.
	ConsumeVerificationCode(ctx context.Context, id uint, code string, now time.Time) error
	Delete(ctx context.Context, id uint) error
	// ClearExpiredCodes removes verification codes that expired before the given time.
	ClearExpiredCodes(ctx context.Context, before time.Time) (int64, error)
}

type QuizFilter struct {
	UserID uint
	Status models.QuizStatus
	Limit  int
	Offset int
}

type QuizStats struct {
	Total      int64 `json:"total"`
	Completed  int64 `json:"completed"`
	InProgress int64 `json:"inProgress"`
}

// QuizStore persists quiz sessions. Every lookup is scoped to the owner.
type QuizStore interface {
	Create(ctx context.Context, q *models.QuizSession) error
	GetForUser(ctx context.Context, id, userID uint) (*models.QuizSession, error)
	GetInProgress(ctx context.Context, id, userID uint) (*models.QuizSession, error)
	// UpdateIfVersion writes q only if the stored row is still in_progress
	// at version expected. Otherwise it returns ErrVersionConflict.
	UpdateIfVersion(ctx context.Context, q *models.QuizSession, expected int) error
	// List returns a page of sessions newest first, and the total match count.
	List(ctx context.Context, f QuizFilter) ([]models.QuizSession, int64, error)
	Delete(ctx context.Context, id, userID uint) error
	DeleteByUser(ctx context.Context, userID uint) error
	Stats(ctx context.Context, userID uint) (QuizStats, error)
}

type ContactFilter struct {
	Status   string
	Priority string
	Category string
	Limit    int
	Offset   int
}

type ContactCounts struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
	Urgent int64 `json:"urgent"`
	High   int64 `json:"high"`
}

type DailyContactCount struct {
	Date   string `json:"date"`
	Count  int64  `json:"count"`
	Unread int64  `json:"unread"`
	Urgent int64  `json:"urgent"`
}

type KeyCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// ContactStats aggregates messages created since a point in time.
// Category and priority buckets are ordered by count, largest first.
type ContactStats struct {
	Daily      []DailyContactCount `json:"dailyStats"`
	Categories []KeyCount          `json:"categoryStats"`
	Priorities []KeyCount          `json:"priorityStats"`
	Total      int64               `json:"total"`
}

// ContactStore persists contact-form messages.
type ContactStore interface {
	Create(ctx context.Context, c *models.Contact) error
	GetByID(ctx context.Context, id uint) (*models.Contact, error)
	Update(ctx context.Context, c *models.Contact) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, f ContactFilter) ([]models.Contact, int64, error)
	Counts(ctx context.Context) (ContactCounts, error)
	Stats(ctx context.Context, since time.Time) (ContactStats, error)
}
