package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkmproject/tkm-api/internal/form"
	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/validation"
	appErrors "github.com/tkmproject/tkm-api/pkg/errors"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestDraftRepositoryRoundTrip(t *testing.T) {
	srv, client := newRedis(t)
	repo := NewDraftRepository(client, time.Minute)
	ctx := context.Background()

	v := validation.New(nil)
	draft, err := form.NewDraft(models.FormStudent, v, 0, time.Now())
	require.NoError(t, err)
	require.NoError(t, draft.Student.OnFieldChange("phone", "0821234567"))
	require.NoError(t, repo.Save(ctx, draft))

	loaded, err := repo.Get(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "(082) 123-4567", loaded.Student.Data.Phone)
	assert.Equal(t, draft.IdempotencyKey, loaded.IdempotencyKey)

	srv.FastForward(2 * time.Minute)
	_, err = repo.Get(ctx, draft.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestDraftRepositoryDelete(t *testing.T) {
	_, client := newRedis(t)
	repo := NewDraftRepository(client, time.Minute)
	ctx := context.Background()

	draft, err := form.NewDraft(models.FormContact, validation.New(nil), 0, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, draft))
	require.NoError(t, repo.Delete(ctx, draft.ID))

	_, err = repo.Get(ctx, draft.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestLoginAttemptsWindow(t *testing.T) {
	srv, client := newRedis(t)
	repo := NewLoginAttemptRepository(client)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		n, err := repo.Increment(ctx, "Admin@Example.com", time.Minute)
		require.NoError(t, err)
		assert.EqualValues(t, i, n)
	}
	n, err := repo.Count(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	srv.FastForward(2 * time.Minute)
	n, err = repo.Count(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.Increment(ctx, "admin@example.com", time.Minute)
	require.NoError(t, err)
	require.NoError(t, repo.Reset(ctx, "admin@example.com"))
	n, err = repo.Count(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoginAttemptsWithoutRedis(t *testing.T) {
	repo := NewLoginAttemptRepository(nil)
	n, err := repo.Increment(context.Background(), "a", time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)
}
