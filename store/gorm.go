package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/meinhoongagan/health-companion/models"
	"gorm.io/gorm"
)

// translate maps gorm errors onto the store sentinels. The DB must be opened
// with TranslateError so that unique violations surface as ErrDuplicatedKey.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

type GormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) Create(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *GormUserStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormUserStore) FindByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error) {
	q := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(email))
	if phone != "" {
		q = q.Or("phone = ?", phone)
	}
	var u models.User
	if err := q.First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormUserStore) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormUserStore) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("email = ? OR phone = ?", strings.ToLower(identifier), identifier).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

var userColumnGroups = []struct {
	group   UserColumns
	columns []string
}{
	{UserProfile, []string{"name", "avatar"}},
	{UserHealth, []string{
		"health_age", "health_gender", "health_weight", "health_height", "health_blood_group",
		"health_allergies", "health_medical_history", "health_current_medications",
	}},
	{UserPreferences, []string{"pref_notify_email", "pref_notify_sms", "pref_notify_push", "pref_theme"}},
	{UserPassword, []string{"password"}},
	{UserVerification, []string{"is_verified", "verification_code", "verification_code_expires_at"}},
	{UserRole, []string{"role"}},
}

func userColumns(cols UserColumns) []string {
	out := []string{"updated_at"}
	for _, g := range userColumnGroups {
		if cols&g.group != 0 {
			out = append(out, g.columns...)
		}
	}
	return out
}

func (s *GormUserStore) Update(ctx context.Context, u *models.User, cols UserColumns) error {
	res := s.db.WithContext(ctx).Model(u).Select(userColumns(cols)).Updates(u)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormUserStore) ConsumeVerificationCode(ctx context.Context, id uint, code string, now time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND verification_code = ? AND verification_code_expires_at > ?", id, code, now).
		Updates(map[string]any{
			"is_verified":                  true,
			"verification_code":            nil,
			"verification_code_expires_at": nil,
			"updated_at":                   now,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormUserStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormUserStore) ClearExpiredCodes(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("verification_code_expires_at < ?", before).
		Updates(map[string]any{
			"verification_code":            nil,
			"verification_code_expires_at": nil,
		})
	return res.RowsAffected, translate(res.Error)
}

type GormQuizStore struct {
	db *gorm.DB
}

func NewGormQuizStore(db *gorm.DB) *GormQuizStore {
	return &GormQuizStore{db: db}
}

func (s *GormQuizStore) Create(ctx context.Context, q *models.QuizSession) error {
	return translate(s.db.WithContext(ctx).Create(q).Error)
}

func (s *GormQuizStore) GetForUser(ctx context.Context, id, userID uint) (*models.QuizSession, error) {
	var q models.QuizSession
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&q).Error
	if err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

func (s *GormQuizStore) GetInProgress(ctx context.Context, id, userID uint) (*models.QuizSession, error) {
	var q models.QuizSession
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, models.QuizStatusInProgress).
		First(&q).Error
	if err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

func (s *GormQuizStore) UpdateIfVersion(ctx context.Context, q *models.QuizSession, expected int) error {
	res := s.db.WithContext(ctx).Model(q).
		Where("user_id = ? AND status = ? AND version = ?", q.UserID, models.QuizStatusInProgress, expected).
		Select("Responses", "Status", "AIAnalysis", "Version", "UpdatedAt").
		Updates(q)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (s *GormQuizStore) List(ctx context.Context, f QuizFilter) ([]models.QuizSession, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.QuizSession{}).Where("user_id = ?", f.UserID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var out []models.QuizSession
	err := q.Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&out).Error
	return out, total, translate(err)
}

func (s *GormQuizStore) Delete(ctx context.Context, id, userID uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.QuizSession{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormQuizStore) DeleteByUser(ctx context.Context, userID uint) error {
	return translate(s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.QuizSession{}).Error)
}

func (s *GormQuizStore) Stats(ctx context.Context, userID uint) (QuizStats, error) {
	var st QuizStats
	err := s.db.WithContext(ctx).Model(&models.QuizSession{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS in_progress`,
			models.QuizStatusCompleted, models.QuizStatusInProgress).
		Where("user_id = ?", userID).
		Scan(&st).Error
	return st, translate(err)
}

type GormContactStore struct {
	db *gorm.DB
}

func NewGormContactStore(db *gorm.DB) *GormContactStore {
	return &GormContactStore{db: db}
}

func (s *GormContactStore) Create(ctx context.Context, c *models.Contact) error {
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *GormContactStore) GetByID(ctx context.Context, id uint) (*models.Contact, error) {
	var c models.Contact
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *GormContactStore) Update(ctx context.Context, c *models.Contact) error {
	res := s.db.WithContext(ctx).Model(c).Select("*").Omit("ID", "CreatedAt").Updates(c)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormContactStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Contact{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormContactStore) List(ctx context.Context, f ContactFilter) ([]models.Contact, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Contact{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var out []models.Contact
	err := q.Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&out).Error
	return out, total, translate(err)
}

func (s *GormContactStore) Counts(ctx context.Context) (ContactCounts, error) {
	var c ContactCounts
	err := s.db.WithContext(ctx).Model(&models.Contact{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = 'unread' THEN 1 ELSE 0 END), 0) AS unread,
			COALESCE(SUM(CASE WHEN priority = 'urgent' THEN 1 ELSE 0 END), 0) AS urgent,
			COALESCE(SUM(CASE WHEN priority = 'high' THEN 1 ELSE 0 END), 0) AS high`).
		Scan(&c).Error
	return c, translate(err)
}

func (s *GormContactStore) Stats(ctx context.Context, since time.Time) (ContactStats, error) {
	st := ContactStats{}
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Contact{}).Where("created_at >= ?", since)
	}

	err := base().
		Select(`to_char(created_at, 'YYYY-MM-DD') AS date,
			COUNT(*) AS count,
			COALESCE(SUM(CASE WHEN status = 'unread' THEN 1 ELSE 0 END), 0) AS unread,
			COALESCE(SUM(CASE WHEN priority = 'urgent' THEN 1 ELSE 0 END), 0) AS urgent`).
		Group("date").Order("date").
		Scan(&st.Daily).Error
	if err != nil {
		return st, translate(err)
	}
	if err := base().Select("category AS key, COUNT(*) AS count").
		Group("category").Order("count DESC").Scan(&st.Categories).Error; err != nil {
		return st, translate(err)
	}
	if err := base().Select("priority AS key, COUNT(*) AS count").
		Group("priority").Order("count DESC").Scan(&st.Priorities).Error; err != nil {
		return st, translate(err)
	}
	for _, d := range st.Daily {
		st.Total += d.Count
	}
	return st, nil
}
