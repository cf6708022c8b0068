package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkmproject/tkm-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestSubmissionInsertUsesServerTimestamp(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	submittedAt := time.Date(2026, time.October, 16, 8, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO submissions (id, collection, data, status) VALUES ($1, $2, $3, $4) RETURNING submitted_at")).
		WithArgs(sqlmock.AnyArg(), models.CollectionRegistrations, sqlmock.AnyArg(), models.StatusNew).
		WillReturnRows(sqlmock.NewRows([]string{"submitted_at"}).AddRow(submittedAt))

	doc, err := repo.Insert(context.Background(), models.CollectionRegistrations, map[string]interface{}{"studentName": "Lerato"})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, submittedAt, doc.SubmittedAt)
	assert.Equal(t, models.StatusNew, doc.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionSnapshotDecodesDocuments(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	newer := time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	rows := sqlmock.NewRows([]string{"id", "collection", "data", "status", "submitted_at"}).
		AddRow("b", models.CollectionTeacherApplications, []byte(`{"fullName":"Naledi","hasCv":true}`), "new", newer).
		AddRow("a", models.CollectionTeacherApplications, []byte(`{"fullName":"Sipho","hasCv":false}`), "new", older)
	mock.ExpectQuery("SELECT id, collection, data, status, submitted_at FROM submissions WHERE collection = \\$1 ORDER BY submitted_at DESC").
		WithArgs(models.CollectionTeacherApplications).
		WillReturnRows(rows)

	docs, err := repo.Snapshot(context.Background(), models.CollectionTeacherApplications)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Naledi", docs[0].String("fullName"))
	assert.Equal(t, true, docs[0].Data["hasCv"])
	assert.Equal(t, "a", docs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionEnsureSchema(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS submissions").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, NewSubmissionRepository(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminUserFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "active", "last_login", "created_at", "updated_at"}).
		AddRow("1", "admin@tkmproject.org", "hash", "Admin", true, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM admin_users WHERE lower(email) = lower($1) LIMIT 1")).
		WithArgs("Admin@TKMProject.org").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "Admin@TKMProject.org")
	require.NoError(t, err)
	assert.Equal(t, "admin@tkmproject.org", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminUserCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminUserRepository(db)

	mock.ExpectExec("INSERT INTO admin_users").WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.AdminUser{Email: "ops@tkmproject.org", PasswordHash: "hash", FullName: "Ops", Active: true}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
