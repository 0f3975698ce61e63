package store

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/meinhoongagan/health-companion/models"
)

// Memory stores keep copies of records so callers never share state with
// the store. They back the test suites and a database-less dev mode.

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

type MemoryUserStore struct {
	mu     sync.RWMutex
	users  map[uint]models.User
	nextID uint
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[uint]models.User)}
}

func cloneUser(u models.User) models.User {
	u.HealthProfile.Allergies = slices.Clone(u.HealthProfile.Allergies)
	u.HealthProfile.MedicalHistory = slices.Clone(u.HealthProfile.MedicalHistory)
	u.HealthProfile.CurrentMedications = slices.Clone(u.HealthProfile.CurrentMedications)
	return u
}

func sameOptional(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}

// conflicts reports whether u collides with a stored user other than itself.
func (s *MemoryUserStore) conflicts(u *models.User) bool {
	for id, other := range s.users {
		if id == u.ID {
			continue
		}
		if other.Email == u.Email || sameOptional(other.Phone, u.Phone) || sameOptional(other.GoogleID, u.GoogleID) {
			return true
		}
	}
	return false
}

func (s *MemoryUserStore) Create(ctx context.Context, u *models.User) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	u.ID = 0
	if s.conflicts(u) {
		return ErrDuplicate
	}
	s.nextID++
	u.ID = s.nextID
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = cloneUser(*u)
	return nil
}

func (s *MemoryUserStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (s *MemoryUserStore) find(match func(models.User) bool) (*models.User, error) {
	ids := make([]uint, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if u := s.users[id]; match(u) {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) FindByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	email = strings.ToLower(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(func(u models.User) bool {
		return u.Email == email || (phone != "" && u.PhoneNumber() == phone)
	})
}

func (s *MemoryUserStore) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(func(u models.User) bool { return u.Phone != nil && *u.Phone == phone })
}

func (s *MemoryUserStore) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	email := strings.ToLower(identifier)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(func(u models.User) bool {
		return u.Email == email || (u.Phone != nil && *u.Phone == identifier)
	})
}

func (s *MemoryUserStore) Update(ctx context.Context, u *models.User, cols UserColumns) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	src := cloneUser(*u)
	if cols&UserProfile != 0 {
		cur.Name, cur.Avatar = src.Name, src.Avatar
	}
	if cols&UserHealth != 0 {
		cur.HealthProfile = src.HealthProfile
	}
	if cols&UserPreferences != 0 {
		cur.Preferences = src.Preferences
	}
	if cols&UserPassword != 0 {
		cur.Password = src.Password
	}
	if cols&UserVerification != 0 {
		cur.IsVerified = src.IsVerified
		cur.VerificationCode, cur.VerificationCodeExpiresAt = src.VerificationCode, src.VerificationCodeExpiresAt
	}
	if cols&UserRole != 0 {
		cur.Role = src.Role
	}
	cur.UpdatedAt = time.Now()
	s.users[u.ID] = cur
	u.UpdatedAt = cur.UpdatedAt
	return nil
}

func (s *MemoryUserStore) ConsumeVerificationCode(ctx context.Context, id uint, code string, now time.Time) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || !u.IsVerificationCodeValid(code, now) {
		return ErrNotFound
	}
	u.IsVerified = true
	u.ClearVerificationCode()
	u.UpdatedAt = now
	s.users[id] = u
	return nil
}

func (s *MemoryUserStore) Delete(ctx context.Context, id uint) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryUserStore) ClearExpiredCodes(ctx context.Context, before time.Time) (int64, error) {
	if err := ctxErr(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, u := range s.users {
		if u.VerificationCodeExpiresAt != nil && u.VerificationCodeExpiresAt.Before(before) {
			u.ClearVerificationCode()
			s.users[id] = u
			n++
		}
	}
	return n, nil
}

type MemoryQuizStore struct {
	mu      sync.RWMutex
	quizzes map[uint]models.QuizSession
	nextID  uint
}

func NewMemoryQuizStore() *MemoryQuizStore {
	return &MemoryQuizStore{quizzes: make(map[uint]models.QuizSession)}
}

func cloneQuiz(q models.QuizSession) models.QuizSession {
	q.Responses = slices.Clone(q.Responses)
	q.RiskFactors = slices.Clone(q.RiskFactors)
	if q.AIAnalysis != nil {
		a := *q.AIAnalysis
		a.PossibleConditions = slices.Clone(a.PossibleConditions)
		a.Recommendations = slices.Clone(a.Recommendations)
		q.AIAnalysis = &a
	}
	return q
}

func (s *MemoryQuizStore) Create(ctx context.Context, q *models.QuizSession) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.quizzes {
		if other.SessionID == q.SessionID {
			return ErrDuplicate
		}
	}
	s.nextID++
	q.ID = s.nextID
	now := time.Now()
	q.CreatedAt, q.UpdatedAt = now, now
	s.quizzes[q.ID] = cloneQuiz(*q)
	return nil
}

func (s *MemoryQuizStore) get(id, userID uint, status models.QuizStatus) (*models.QuizSession, error) {
	q, ok := s.quizzes[id]
	if !ok || q.UserID != userID || (status != "" && q.Status != status) {
		return nil, ErrNotFound
	}
	out := cloneQuiz(q)
	return &out, nil
}

func (s *MemoryQuizStore) GetForUser(ctx context.Context, id, userID uint) (*models.QuizSession, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(id, userID, "")
}

func (s *MemoryQuizStore) GetInProgress(ctx context.Context, id, userID uint) (*models.QuizSession, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(id, userID, models.QuizStatusInProgress)
}

func (s *MemoryQuizStore) UpdateIfVersion(ctx context.Context, q *models.QuizSession, expected int) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.quizzes[q.ID]
	if !ok || cur.UserID != q.UserID || cur.Status != models.QuizStatusInProgress || cur.Version != expected {
		return ErrVersionConflict
	}
	cur.Responses = q.Responses
	cur.Status = q.Status
	cur.AIAnalysis = q.AIAnalysis
	cur.Version = q.Version
	cur.UpdatedAt = time.Now()
	q.UpdatedAt = cur.UpdatedAt
	s.quizzes[q.ID] = cloneQuiz(cur)
	return nil
}

func (s *MemoryQuizStore) List(ctx context.Context, f QuizFilter) ([]models.QuizSession, int64, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []models.QuizSession
	for _, q := range s.quizzes {
		if q.UserID == f.UserID && (f.Status == "" || q.Status == f.Status) {
			matched = append(matched, cloneQuiz(q))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return page(matched, f.Limit, f.Offset), int64(len(matched)), nil
}

func (s *MemoryQuizStore) Delete(ctx context.Context, id, userID uint) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	if !ok || q.UserID != userID {
		return ErrNotFound
	}
	delete(s.quizzes, id)
	return nil
}

func (s *MemoryQuizStore) DeleteByUser(ctx context.Context, userID uint) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, q := range s.quizzes {
		if q.UserID == userID {
			delete(s.quizzes, id)
		}
	}
	return nil
}

func (s *MemoryQuizStore) Stats(ctx context.Context, userID uint) (QuizStats, error) {
	if err := ctxErr(ctx); err != nil {
		return QuizStats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var st QuizStats
	for _, q := range s.quizzes {
		if q.UserID != userID {
			continue
		}
		st.Total++
		switch q.Status {
		case models.QuizStatusCompleted:
			st.Completed++
		case models.QuizStatusInProgress:
			st.InProgress++
		}
	}
	return st, nil
}

type MemoryContactStore struct {
	mu       sync.RWMutex
	contacts map[uint]models.Contact
	nextID   uint
	now      func() time.Time
}

func NewMemoryContactStore() *MemoryContactStore {
	return &MemoryContactStore{contacts: make(map[uint]models.Contact), now: time.Now}
}

func (s *MemoryContactStore) Create(ctx context.Context, c *models.Contact) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	c.UpdatedAt = c.CreatedAt
	s.contacts[c.ID] = *c
	return nil
}

func (s *MemoryContactStore) GetByID(ctx context.Context, id uint) (*models.Contact, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryContactStore) Update(ctx context.Context, c *models.Contact) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.contacts[c.ID]
	if !ok {
		return ErrNotFound
	}
	c.CreatedAt = prev.CreatedAt
	c.UpdatedAt = s.now()
	s.contacts[c.ID] = *c
	return nil
}

func (s *MemoryContactStore) Delete(ctx context.Context, id uint) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[id]; !ok {
		return ErrNotFound
	}
	delete(s.contacts, id)
	return nil
}

func (s *MemoryContactStore) List(ctx context.Context, f ContactFilter) ([]models.Contact, int64, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []models.Contact
	for _, c := range s.contacts {
		if (f.Status == "" || string(c.Status) == f.Status) &&
			(f.Priority == "" || c.Priority == f.Priority) &&
			(f.Category == "" || c.Category == f.Category) {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return page(matched, f.Limit, f.Offset), int64(len(matched)), nil
}

func (s *MemoryContactStore) Counts(ctx context.Context) (ContactCounts, error) {
	if err := ctxErr(ctx); err != nil {
		return ContactCounts{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out ContactCounts
	for _, c := range s.contacts {
		out.Total++
		if c.Status == models.ContactUnread {
			out.Unread++
		}
		switch c.Priority {
		case "urgent":
			out.Urgent++
		case "high":
			out.High++
		}
	}
	return out, nil
}

func sortedCounts(m map[string]int64) []KeyCount {
	out := make([]KeyCount, 0, len(m))
	for k, v := range m {
		out = append(out, KeyCount{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func (s *MemoryContactStore) Stats(ctx context.Context, since time.Time) (ContactStats, error) {
	if err := ctxErr(ctx); err != nil {
		return ContactStats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	daily := map[string]*DailyContactCount{}
	categories := map[string]int64{}
	priorities := map[string]int64{}
	st := ContactStats{}
	for _, c := range s.contacts {
		if c.CreatedAt.Before(since) {
			continue
		}
		day := c.CreatedAt.UTC().Format("2006-01-02")
		d, ok := daily[day]
		if !ok {
			d = &DailyContactCount{Date: day}
			daily[day] = d
		}
		d.Count++
		if c.Status == models.ContactUnread {
			d.Unread++
		}
		if c.Priority == "urgent" {
			d.Urgent++
		}
		categories[c.Category]++
		priorities[c.Priority]++
		st.Total++
	}
	st.Daily = make([]DailyContactCount, 0, len(daily))
	for _, d := range daily {
		st.Daily = append(st.Daily, *d)
	}
	sort.Slice(st.Daily, func(i, j int) bool { return st.Daily[i].Date < st.Daily[j].Date })
	st.Categories = sortedCounts(categories)
	st.Priorities = sortedCounts(priorities)
	return st, nil
}
