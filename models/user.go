package models

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const DefaultAvatar = "https://via.placeholder.com/150/4F46E5/FFFFFF?text=U"

var (
	Genders     = []string{"male", "female", "other", "prefer-not-to-say"}
	BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
	Themes      = []string{"light", "dark", "auto"}
)

type User struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	Name       string  `json:"name" gorm:"size:50;not null"`
	Email      string  `json:"email" gorm:"uniqueIndex;not null"`
	Phone      *string `json:"phone,omitempty" gorm:"uniqueIndex"`
	Password   string  `json:"-" gorm:"not null"`
	GoogleID   *string `json:"googleId,omitempty" gorm:"uniqueIndex"`
	Avatar     string  `json:"avatar"`
	IsVerified bool    `json:"isVerified"`

	// At most one outstanding code; both are nil once consumed.
	VerificationCode          *string    `json:"-"`
	VerificationCodeExpiresAt *time.Time `json:"-"`

	Role          Role          `json:"role" gorm:"size:16;not null"`
	HealthProfile HealthProfile `json:"healthProfile" gorm:"embedded;embeddedPrefix:health_"`
	Preferences   Preferences   `json:"preferences" gorm:"embedded;embeddedPrefix:pref_"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type HealthProfile struct {
	Age                *int     `json:"age,omitempty"`
	Gender             string   `json:"gender,omitempty"`
	Weight             *float64 `json:"weight,omitempty"`
	Height             *float64 `json:"height,omitempty"`
	BloodGroup         string   `json:"bloodGroup,omitempty"`
	Allergies          []string `json:"allergies" gorm:"type:jsonb;serializer:json"`
	MedicalHistory     []string `json:"medicalHistory" gorm:"type:jsonb;serializer:json"`
	CurrentMedications []string `json:"currentMedications" gorm:"type:jsonb;serializer:json"`
}

type NotificationPreferences struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	Push  bool `json:"push"`
}

type Preferences struct {
	Notifications NotificationPreferences `json:"notifications" gorm:"embedded;embeddedPrefix:notify_"`
	Theme         string                  `json:"theme"`
}

// NewUser returns an unverified user with default role and preferences.
// Defaults live here rather than in column defaults so that false is storable.
func NewUser(name, email, phone, passwordHash string) *User {
	u := &User{
		Name:     name,
		Email:    email,
		Password: passwordHash,
		Avatar:   DefaultAvatar,
		Role:     RoleUser,
		HealthProfile: HealthProfile{
			Allergies:          []string{},
			MedicalHistory:     []string{},
			CurrentMedications: []string{},
		},
		Preferences: Preferences{
			Notifications: NotificationPreferences{Email: true, SMS: false, Push: true},
			Theme:         "auto",
		},
	}
	if phone != "" {
		u.Phone = &phone
	}
	return u
}

// SetVerificationCode replaces any outstanding code.
func (u *User) SetVerificationCode(code string, expiresAt time.Time) {
	u.VerificationCode = &code
	u.VerificationCodeExpiresAt = &expiresAt
}

// IsVerificationCodeValid does not consume the code.
func (u *User) IsVerificationCodeValid(code string, now time.Time) bool {
	if u.VerificationCode == nil || u.VerificationCodeExpiresAt == nil {
		return false
	}
	return *u.VerificationCode == code && u.VerificationCodeExpiresAt.After(now)
}

func (u *User) ClearVerificationCode() {
	u.VerificationCode = nil
	u.VerificationCodeExpiresAt = nil
}

func (u *User) PhoneNumber() string {
	if u.Phone == nil {
		return ""
	}
	return *u.Phone
}

// PublicUser is the outward view of a user.
type PublicUser struct {
	ID            uint           `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone,omitempty"`
	IsVerified    bool           `json:"isVerified"`
	Avatar        string         `json:"avatar,omitempty"`
	HealthProfile *HealthProfile `json:"healthProfile,omitempty"`
	Preferences   *Preferences   `json:"preferences,omitempty"`
	CreatedAt     *time.Time     `json:"createdAt,omitempty"`
}

// Summary is the short form returned by login and verify-otp.
func (u *User) Summary() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.PhoneNumber(),
		IsVerified: u.IsVerified,
	}
}

// Profile is the full self-service view.
func (u *User) Profile() PublicUser {
	p := u.Summary()
	p.Avatar = u.Avatar
	hp := u.HealthProfile
	prefs := u.Preferences
	p.HealthProfile = &hp
	p.Preferences = &prefs
	return p
}
