package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/meinhoongagan/health-companion/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserStore_Uniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()

	u := models.NewUser("Ann", "Ann@Example.com", "+15550001", "h")
	require.NoError(t, s.Create(ctx, u))
	assert.Equal(t, uint(1), u.ID)
	assert.Equal(t, "ann@example.com", u.Email)

	err := s.Create(ctx, models.NewUser("Bob", "ann@example.com", "+15550002", "h"))
	assert.ErrorIs(t, err, ErrDuplicate)
	err = s.Create(ctx, models.NewUser("Bob", "bob@example.com", "+15550001", "h"))
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, s.Create(ctx, models.NewUser("Bob", "bob@example.com", "", "h")))
	require.NoError(t, s.Create(ctx, models.NewUser("Cid", "cid@example.com", "", "h")), "absent phones do not collide")
}

func TestMemoryUserStore_Lookup(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()
	u := models.NewUser("Ann", "ann@example.com", "+15550001", "h")
	require.NoError(t, s.Create(ctx, u))

	got, err := s.GetByIdentifier(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = s.GetByIdentifier(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.GetByIdentifier(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = s.GetByPhone(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	_, err = s.GetByPhone(ctx, "ann@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = s.FindByEmailOrPhone(ctx, "other@example.com", "+15550001")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestMemoryUserStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()
	u := models.NewUser("Ann", "ann@example.com", "", "h")
	require.NoError(t, s.Create(ctx, u))

	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.Name = "Changed"
	got.HealthProfile.Allergies = append(got.HealthProfile.Allergies, "pollen")

	again, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", again.Name)
	assert.Empty(t, again.HealthProfile.Allergies)
}

func TestMemoryUserStore_UpdateWritesSelectedColumns(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()
	u := models.NewUser("Ann", "ann@example.com", "", "h1")
	require.NoError(t, s.Create(ctx, u))

	a, _ := s.GetByID(ctx, u.ID)
	b, _ := s.GetByID(ctx, u.ID)
	a.Password = "h2"
	require.NoError(t, s.Update(ctx, a, UserPassword))
	b.Name = "Annie"
	require.NoError(t, s.Update(ctx, b, UserProfile))

	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "h2", got.Password)
	assert.Equal(t, "Annie", got.Name)

	assert.ErrorIs(t, s.Update(ctx, &models.User{ID: 99}, UserProfile), ErrNotFound)
}

func TestMemoryUserStore_ConsumeVerificationCode(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()
	now := time.Now()
	u := models.NewUser("Ann", "ann@example.com", "", "h")
	u.SetVerificationCode("123456", now.Add(time.Minute))
	require.NoError(t, s.Create(ctx, u))

	assert.ErrorIs(t, s.ConsumeVerificationCode(ctx, u.ID, "000000", now), ErrNotFound)
	assert.ErrorIs(t, s.ConsumeVerificationCode(ctx, u.ID, "123456", now.Add(2*time.Minute)), ErrNotFound)
	require.NoError(t, s.ConsumeVerificationCode(ctx, u.ID, "123456", now))
	assert.ErrorIs(t, s.ConsumeVerificationCode(ctx, u.ID, "123456", now), ErrNotFound)

	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Nil(t, got.VerificationCode)
}

func TestMemoryUserStore_ClearExpiredCodes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()
	now := time.Now()

	stale := models.NewUser("Ann", "ann@example.com", "", "h")
	stale.SetVerificationCode("111111", now.Add(-time.Minute))
	fresh := models.NewUser("Bob", "bob@example.com", "", "h")
	fresh.SetVerificationCode("222222", now.Add(time.Minute))
	require.NoError(t, s.Create(ctx, stale))
	require.NoError(t, s.Create(ctx, fresh))

	n, err := s.ClearExpiredCodes(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, _ := s.GetByID(ctx, stale.ID)
	assert.Nil(t, got.VerificationCode)
	got, _ = s.GetByID(ctx, fresh.ID)
	assert.NotNil(t, got.VerificationCode)
}

func TestMemoryUserStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryUserStore().GetByID(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryQuizStore_UpdateIfVersion(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryQuizStore()
	q := models.NewQuizSession(1, models.Symptoms{Primary: "fever"}, models.QuizMetadata{})
	require.NoError(t, s.Create(ctx, q))

	a, err := s.GetInProgress(ctx, q.ID, 1)
	require.NoError(t, err)
	b, err := s.GetInProgress(ctx, q.ID, 1)
	require.NoError(t, err)

	analyze := func(models.Symptoms) models.Analysis { return models.Analysis{} }
	_, err = a.RecordAnswer(models.QuizResponse{QuestionID: "a"}, analyze)
	require.NoError(t, err)
	_, err = b.RecordAnswer(models.QuizResponse{QuestionID: "b"}, analyze)
	require.NoError(t, err)

	require.NoError(t, s.UpdateIfVersion(ctx, a, 0))
	assert.ErrorIs(t, s.UpdateIfVersion(ctx, b, 0), ErrVersionConflict)

	got, err := s.GetForUser(ctx, q.ID, 1)
	require.NoError(t, err)
	require.Len(t, got.Responses, 1)
	assert.Equal(t, "a", got.Responses[0].QuestionID)
	assert.Equal(t, 1, got.Version)
}

func TestMemoryQuizStore_ConcurrentWritersOneWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryQuizStore()
	q := models.NewQuizSession(1, models.Symptoms{}, models.QuizMetadata{})
	require.NoError(t, s.Create(ctx, q))

	const writers = 8
	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		cur, err := s.GetInProgress(ctx, q.ID, 1)
		require.NoError(t, err)
		wg.Add(1)
		go func(cur *models.QuizSession) {
			defer wg.Done()
			_, _ = cur.RecordAnswer(models.QuizResponse{QuestionID: "x"}, func(models.Symptoms) models.Analysis { return models.Analysis{} })
			results <- s.UpdateIfVersion(ctx, cur, 0)
		}(cur)
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrVersionConflict)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestMemoryQuizStore_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryQuizStore()
	q := models.NewQuizSession(1, models.Symptoms{}, models.QuizMetadata{})
	require.NoError(t, s.Create(ctx, q))

	_, err := s.GetForUser(ctx, q.ID, 2)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, q.ID, 2), ErrNotFound)
	require.NoError(t, s.Delete(ctx, q.ID, 1))
	_, err = s.GetForUser(ctx, q.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryQuizStore_ListAndStats(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryQuizStore()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Create(ctx, models.NewQuizSession(1, models.Symptoms{}, models.QuizMetadata{})))
	}
	done := models.NewQuizSession(1, models.Symptoms{}, models.QuizMetadata{})
	done.Status = models.QuizStatusCompleted
	require.NoError(t, s.Create(ctx, done))
	require.NoError(t, s.Create(ctx, models.NewQuizSession(2, models.Symptoms{}, models.QuizMetadata{})))

	items, total, err := s.List(ctx, QuizFilter{UserID: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, items, 2)
	assert.Equal(t, done.ID, items[0].ID, "newest first")

	items, total, err = s.List(ctx, QuizFilter{UserID: 1, Status: models.QuizStatusCompleted, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)

	items, _, err = s.List(ctx, QuizFilter{UserID: 1, Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, items)

	st, err := s.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, QuizStats{Total: 4, Completed: 1, InProgress: 3}, st)

	require.NoError(t, s.DeleteByUser(ctx, 1))
	st, err = s.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, st.Total)
}

func TestMemoryContactStore_ListCountsStats(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryContactStore()
	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	seed := []models.Contact{
		{Status: models.ContactUnread, Priority: "urgent", Category: "general", CreatedAt: day1},
		{Status: models.ContactRead, Priority: "high", Category: "support", CreatedAt: day1},
		{Status: models.ContactUnread, Priority: "medium", Category: "general", CreatedAt: day2},
		{Status: models.ContactUnread, Priority: "medium", Category: "general", CreatedAt: day1.Add(-60 * 24 * time.Hour)},
	}
	for i := range seed {
		require.NoError(t, s.Create(ctx, &seed[i]))
	}

	items, total, err := s.List(ctx, ContactFilter{Category: "general", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, seed[2].ID, items[0].ID)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, ContactCounts{Total: 4, Unread: 3, Urgent: 1, High: 1}, counts)

	st, err := s.Stats(ctx, day1.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.Total)
	require.Len(t, st.Daily, 2)
	assert.Equal(t, DailyContactCount{Date: "2026-03-01", Count: 2, Unread: 1, Urgent: 1}, st.Daily[0])
	assert.Equal(t, "2026-03-02", st.Daily[1].Date)
	assert.Equal(t, KeyCount{Key: "general", Count: 2}, st.Categories[0])
	assert.Equal(t, []KeyCount{{"high", 1}, {"medium", 1}, {"urgent", 1}}, st.Priorities)
}
