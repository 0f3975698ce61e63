package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/meinhoongagan/health-companion/models"
	"github.com/meinhoongagan/health-companion/store"
	"github.com/meinhoongagan/health-companion/utils"
	"go.uber.org/zap"
)

type UpdateProfileInput struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=50"`
	Avatar *string `json:"avatar" validate:"omitempty,url"`
}

func (UpdateProfileInput) FieldMessages() map[string]string {
	return map[string]string{
		"name":   "Name must be 2-50 characters",
		"avatar": "Invalid avatar URL",
	}
}

func (in *UpdateProfileInput) Normalize() {
	trimPtr(in.Name)
	trimPtr(in.Avatar)
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

type UpdateHealthProfileInput struct {
	Age                *int      `json:"age" validate:"omitempty,min=1,max=120"`
	Gender             *string   `json:"gender" validate:"omitempty,oneof=male female other prefer-not-to-say"`
	Weight             *float64  `json:"weight" validate:"omitempty,min=20,max=500"`
	Height             *float64  `json:"height" validate:"omitempty,min=100,max=250"`
	BloodGroup         *string   `json:"bloodGroup" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies          *[]string `json:"allergies"`
	MedicalHistory     *[]string `json:"medicalHistory"`
	CurrentMedications *[]string `json:"currentMedications"`
}

func (UpdateHealthProfileInput) FieldMessages() map[string]string {
	return map[string]string{
		"age":        "Age must be between 1 and 120",
		"gender":     "Invalid gender",
		"weight":     "Weight must be between 20 and 500 kg",
		"height":     "Height must be between 100 and 250 cm",
		"bloodGroup": "Invalid blood group",
	}
}

type NotificationsInput struct {
	Email *bool `json:"email"`
	SMS   *bool `json:"sms"`
	Push  *bool `json:"push"`
}

type UpdatePreferencesInput struct {
	Notifications *NotificationsInput `json:"notifications"`
	Theme         *string             `json:"theme" validate:"omitempty,oneof=light dark auto"`
}

func (UpdatePreferencesInput) FieldMessages() map[string]string {
	return map[string]string{
		"notifications":       "Notifications must be an object",
		"notifications.email": "Email notifications must be boolean",
		"notifications.sms":   "SMS notifications must be boolean",
		"notifications.push":  "Push notifications must be boolean",
		"theme":               "Invalid theme",
	}
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"min=6"`
}

func (ChangePasswordInput) FieldMessages() map[string]string {
	return map[string]string{
		"currentPassword": "Current password is required",
		"newPassword":     "New password must be at least 6 characters",
	}
}

type DeleteAccountInput struct {
	Password string `json:"password" validate:"required"`
}

func (DeleteAccountInput) FieldMessages() map[string]string {
	return map[string]string{"password": "Password is required for account deletion"}
}

type HealthInsight struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

type Dashboard struct {
	RecentQuizzes  []models.QuizSession `json:"recentQuizzes"`
	QuizStats      store.QuizStats      `json:"quizStats"`
	HealthInsights []HealthInsight      `json:"healthInsights"`
	LastActivity   time.Time            `json:"lastActivity"`
}

const dashboardRecentQuizzes = 5

type UserService struct {
	users    store.UserStore
	quizzes  store.QuizStore
	hasher   Hasher
	uploader utils.AvatarUploader
	logger   *zap.Logger
}

func NewUserService(users store.UserStore, quizzes store.QuizStore, hasher Hasher, uploader utils.AvatarUploader, logger *zap.Logger) *UserService {
	return &UserService{
		users:    users,
		quizzes:  quizzes,
		hasher:   hasher,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *UserService) get(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *UserService) Profile(ctx context.Context, id uint) (*models.User, error) {
	return s.get(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, in UpdateProfileInput) (*models.User, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Avatar != nil && *in.Avatar != "" {
		u.Avatar = *in.Avatar
	}
	if err := s.users.Update(ctx, u, store.UserProfile); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateHealthProfile applies only the fields present in the request.
func (s *UserService) UpdateHealthProfile(ctx context.Context, id uint, in UpdateHealthProfileInput) (*models.HealthProfile, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	hp := &u.HealthProfile
	if in.Age != nil {
		hp.Age = in.Age
	}
	if in.Gender != nil {
		hp.Gender = *in.Gender
	}
	if in.Weight != nil {
		hp.Weight = in.Weight
	}
	if in.Height != nil {
		hp.Height = in.Height
	}
	if in.BloodGroup != nil {
		hp.BloodGroup = *in.BloodGroup
	}
	if in.Allergies != nil {
		hp.Allergies = nonNil(*in.Allergies)
	}
	if in.MedicalHistory != nil {
		hp.MedicalHistory = nonNil(*in.MedicalHistory)
	}
	if in.CurrentMedications != nil {
		hp.CurrentMedications = nonNil(*in.CurrentMedications)
	}
	if err := s.users.Update(ctx, u, store.UserHealth); err != nil {
		return nil, err
	}
	return hp, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *UserService) UpdatePreferences(ctx context.Context, id uint, in UpdatePreferencesInput) (*models.Preferences, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	p := &u.Preferences
	if n := in.Notifications; n != nil {
		if n.Email != nil {
			p.Notifications.Email = *n.Email
		}
		if n.SMS != nil {
			p.Notifications.SMS = *n.SMS
		}
		if n.Push != nil {
			p.Notifications.Push = *n.Push
		}
	}
	if in.Theme != nil {
		p.Theme = *in.Theme
	}
	if err := s.users.Update(ctx, u, store.UserPreferences); err != nil {
		return nil, err
	}
	return p, nil
}

// UploadAvatar stores the image with the configured uploader and points
// the profile at it.
func (s *UserService) UploadAvatar(ctx context.Context, id uint, file io.Reader) (*models.User, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.uploader.UploadAvatar(ctx, file, fmt.Sprintf("user_%d", u.ID))
	if err != nil {
		return nil, err
	}
	u.Avatar = url
	if err := s.users.Update(ctx, u, store.UserProfile); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) checkPassword(ctx context.Context, u *models.User, password string) error {
	ok, err := s.hasher.VerifyPassword(ctx, password, u.Password)
	if err != nil {
		return err
	}
	if !ok {
		return ErrIncorrectPassword
	}
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, id uint, in ChangePasswordInput) error {
	u, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkPassword(ctx, u, in.CurrentPassword); err != nil {
		return err
	}
	hash, err := s.hasher.HashPassword(ctx, in.NewPassword)
	if err != nil {
		return err
	}
	u.Password = hash
	return s.users.Update(ctx, u, store.UserPassword)
}

// DeleteAccount removes the user and every quiz session they own.
func (s *UserService) DeleteAccount(ctx context.Context, id uint, password string) error {
	u, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkPassword(ctx, u, password); err != nil {
		return err
	}
	if err := s.quizzes.DeleteByUser(ctx, u.ID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, u.ID); err != nil {
		return err
	}
	s.logger.Info("account deleted", zap.Uint("user_id", u.ID))
	return nil
}

func (s *UserService) Dashboard(ctx context.Context, id uint) (*models.User, *Dashboard, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	recent, _, err := s.quizzes.List(ctx, store.QuizFilter{UserID: u.ID, Limit: dashboardRecentQuizzes})
	if err != nil {
		return nil, nil, err
	}
	stats, err := s.quizzes.Stats(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}

	d := &Dashboard{
		RecentQuizzes:  recent,
		QuizStats:      stats,
		HealthInsights: []HealthInsight{},
		LastActivity:   u.CreatedAt,
	}
	if len(recent) > 0 {
		d.LastActivity = recent[0].CreatedAt
	}
	if symptom := mostCommonCompletedSymptom(recent); symptom != "" {
		d.HealthInsights = append(d.HealthInsights, HealthInsight{
			Type:        "symptom_pattern",
			Title:       "Most Common Symptom",
			Description: fmt.Sprintf("You've reported %s most frequently", strings.ReplaceAll(symptom, "_", " ")),
			Severity:    "info",
		})
	}
	return u, d, nil
}

// mostCommonCompletedSymptom breaks ties in favour of the most recent quiz.
func mostCommonCompletedSymptom(quizzes []models.QuizSession) string {
	counts := map[string]int{}
	var order []string
	for _, q := range quizzes {
		if q.Status != models.QuizStatusCompleted {
			continue
		}
		if counts[q.Symptoms.Primary] == 0 {
			order = append(order, q.Symptoms.Primary)
		}
		counts[q.Symptoms.Primary]++
	}
	best := ""
	for _, s := range order {
		if counts[s] > counts[best] {
			best = s
		}
	}
	return best
}
