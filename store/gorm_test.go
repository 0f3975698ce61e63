package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meinhoongagan/health-companion/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = conn.Close()
	})
	return db, mock
}

const quizVersionUpdate = `UPDATE "quiz_sessions" SET .+ WHERE \(user_id = \$6 AND status = \$7 AND version = \$8\) AND "id" = \$9`

func TestGormQuizStore_UpdateIfVersion(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewGormQuizStore(db)
	q := &models.QuizSession{ID: 3, UserID: 7, Status: models.QuizStatusCompleted, Version: 3}

	mock.ExpectExec(quizVersionUpdate).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			uint(7), models.QuizStatusInProgress, 2, uint(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.UpdateIfVersion(context.Background(), q, 2))
}

func TestGormQuizStore_UpdateIfVersion_Conflict(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewGormQuizStore(db)
	q := &models.QuizSession{ID: 3, UserID: 7, Status: models.QuizStatusInProgress, Version: 1}

	mock.ExpectExec(quizVersionUpdate).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.UpdateIfVersion(context.Background(), q, 0), ErrVersionConflict)
}

func TestGormUserStore_ConsumeVerificationCode(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewGormUserStore(db)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	const consume = `UPDATE "users" SET "is_verified"=\$1,"updated_at"=\$2,"verification_code"=\$3,"verification_code_expires_at"=\$4 ` +
		`WHERE id = \$5 AND verification_code = \$6 AND verification_code_expires_at > \$7`

	mock.ExpectExec(consume).
		WithArgs(true, now, nil, nil, uint(5), "123456", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(consume).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.ConsumeVerificationCode(context.Background(), 5, "123456", now))
	assert.ErrorIs(t, s.ConsumeVerificationCode(context.Background(), 5, "123456", now), ErrNotFound)
}

func TestGormUserStore_UpdateWritesSelectedColumns(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewGormUserStore(db)
	u := models.NewUser("Ann", "ann@example.com", "", "h2")
	u.ID = 4

	mock.ExpectExec(`UPDATE "users" SET "password"=\$1,"updated_at"=\$2 WHERE "id" = \$3`).
		WithArgs("h2", sqlmock.AnyArg(), uint(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" SET .+ WHERE "id" = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Update(context.Background(), u, UserPassword))
	assert.ErrorIs(t, s.Update(context.Background(), u, UserPreferences), ErrNotFound)
}

func TestGormUserStore_ClearExpiredCodes(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewGormUserStore(db)
	before := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE "users" SET "verification_code"=\$1,"verification_code_expires_at"=\$2,"updated_at"=\$3 WHERE verification_code_expires_at < \$4`).
		WithArgs(nil, nil, sqlmock.AnyArg(), before).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := s.ClearExpiredCodes(context.Background(), before)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestGormUserStore_GetByIdentifier(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewGormUserStore(db)
	const lookup = `SELECT \* FROM "users" WHERE email = \$1 OR phone = \$2 ORDER BY "users"."id" LIMIT \$3`

	mock.ExpectQuery(lookup).
		WithArgs("ann@example.com", "ANN@Example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(9, "Ann", "ann@example.com"))
	mock.ExpectQuery(lookup).
		WithArgs("+15550001", "+15550001", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	u, err := s.GetByIdentifier(context.Background(), "ANN@Example.com")
	require.NoError(t, err)
	assert.Equal(t, uint(9), u.ID)
	assert.Equal(t, "Ann", u.Name)

	_, err = s.GetByIdentifier(context.Background(), "+15550001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormUserStore_CreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewGormUserStore(db)

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := s.Create(context.Background(), models.NewUser("Ann", "ann@example.com", "", "h"))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGormContactStore_Stats(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewGormContactStore(db)
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)SELECT to_char\(created_at, 'YYYY-MM-DD'\) AS date,.+FROM "contacts" WHERE created_at >= \$1 GROUP BY date ORDER BY date`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"date", "count", "unread", "urgent"}).
			AddRow("2026-03-01", 2, 1, 1).
			AddRow("2026-03-02", 1, 1, 0))
	mock.ExpectQuery(`SELECT category AS key, COUNT\(\*\) AS count FROM "contacts" WHERE created_at >= \$1 GROUP BY category ORDER BY count DESC`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).AddRow("general", 2).AddRow("support", 1))
	mock.ExpectQuery(`SELECT priority AS key, COUNT\(\*\) AS count FROM "contacts" WHERE created_at >= \$1 GROUP BY priority ORDER BY count DESC`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).AddRow("medium", 2).AddRow("urgent", 1))

	st, err := s.Stats(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.Total)
	assert.Equal(t, []DailyContactCount{
		{Date: "2026-03-01", Count: 2, Unread: 1, Urgent: 1},
		{Date: "2026-03-02", Count: 1, Unread: 1},
	}, st.Daily)
	assert.Equal(t, []KeyCount{{"general", 2}, {"support", 1}}, st.Categories)
	assert.Equal(t, []KeyCount{{"medium", 2}, {"urgent", 1}}, st.Priorities)
}
