//go:build integration_test || all_tests

package users

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/traindiary/backend/internal/db"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepoSetup(t *testing.T) (*Repo, func()) {
	t.Helper()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	t.Logf("using postres host: %s", host)

	dbPool, err := db.NewDBPool(timeoutCtx, db.NewDBPoolParams{
		DBHost:         host,
		DBPort:         "5432",
		DBName:         "train_diary_db",
		TracingEnabled: false,
	})
	require.NoError(t, err)

	return NewRepo(dbPool), func() {
		dbPool.Close()
	}
}

func TestRepo_AddGetDelete(t *testing.T) {
	ctx := context.Background()
	repo, shutdown := testRepoSetup(t)
	defer shutdown()

	addedUser, err := repo.Add(ctx, User{
		Username:     gofakeit.Username(),
		Email:        gofakeit.Email(),
		PasswordHash: gofakeit.UUID(),
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
	require.NotNil(t, addedUser)
	assert.NotZero(t, addedUser.ID)

	gotUser, err := repo.Get(ctx, addedUser.ID)
	require.NoError(t, err)
	assert.Equal(t, addedUser.Username, gotUser.Username)

	gotUser, err = repo.GetByUsername(ctx, addedUser.Username)
	require.NoError(t, err)
	assert.Equal(t, addedUser.ID, gotUser.ID)

	exists, err := repo.Exists(ctx, addedUser.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, addedUser.ID))

	_, err = repo.Get(ctx, addedUser.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	exists, err = repo.Exists(ctx, addedUser.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepo_Update(t *testing.T) {
	ctx := context.Background()
	repo, shutdown := testRepoSetup(t)
	defer shutdown()

	addedUser, err := repo.Add(ctx, User{
		Username:     gofakeit.Username(),
		Email:        gofakeit.Email(),
		PasswordHash: gofakeit.UUID(),
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)

	newEmail := gofakeit.Email()
	addedUser.Email = newEmail
	require.NoError(t, repo.Update(ctx, addedUser))

	updatedUser, err := repo.Get(ctx, addedUser.ID)
	require.NoError(t, err)
	assert.Equal(t, newEmail, updatedUser.Email)

	assert.ErrorIs(t, repo.Update(ctx, &User{ID: 25342523}), ErrUserNotFound)

	require.NoError(t, repo.Delete(ctx, addedUser.ID))
}
