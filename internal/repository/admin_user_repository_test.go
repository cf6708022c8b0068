package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkmproject/tkm-api/internal/models"
)

var adminColumns = []string{"id", "email", "password_hash", "full_name", "active", "last_login", "created_at", "updated_at"}

func TestAdminFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminUserRepository(db)

	created := time.Date(2026, time.October, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, email, password_hash, full_name, active, last_login, created_at, updated_at FROM admin_users WHERE lower\\(email\\) = lower\\(\\$1\\)").
		WithArgs("admin@tkmproject.org").
		WillReturnRows(sqlmock.NewRows(adminColumns).
			AddRow("admin-1", "admin@tkmproject.org", "hash", "Site Admin", true, nil, created, created))

	user, err := repo.FindByEmail(context.Background(), "admin@tkmproject.org")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", user.ID)
	assert.True(t, user.Active)
	assert.Nil(t, user.LastLogin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminFindByIDNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminUserRepository(db)

	mock.ExpectQuery("FROM admin_users WHERE id = \\$1").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(adminColumns))

	_, err := repo.FindByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminCreateAssignsIDAndTimestamps(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminUserRepository(db)

	mock.ExpectExec("INSERT INTO admin_users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.AdminUser{Email: "new@tkmproject.org", PasswordHash: "hash", FullName: "New Admin", Active: true}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminUpdateLastLogin(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminUserRepository(db)

	ts := time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE admin_users SET last_login = \\$2, updated_at = \\$3 WHERE id = \\$1").
		WithArgs("admin-1", ts, ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLastLogin(context.Background(), "admin-1", ts))
	assert.NoError(t, mock.ExpectationsWereMet())
}
