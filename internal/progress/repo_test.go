//go:build integration_test || all_tests

package progress

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/traindiary/backend/internal/db"
	"github.com/traindiary/backend/internal/users"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepoSetup(t *testing.T) (*Repo, *users.Repo, func()) {
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

	return NewRepo(dbPool), users.NewRepo(dbPool), func() {
		dbPool.Close()
	}
}

func TestRepo_UpsertSummary_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo, usersRepo, shutdown := testRepoSetup(t)
	defer shutdown()

	user, err := usersRepo.Add(ctx, users.User{
		Username:     gofakeit.Username(),
		Email:        gofakeit.Email(),
		PasswordHash: gofakeit.UUID(),
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, usersRepo.Delete(ctx, user.ID))
	}()

	periodStart := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	record := SummaryRecord{
		UserID:              user.ID,
		PeriodType:          PeriodWeekly,
		PeriodStart:         periodStart,
		TotalWorkouts:       3,
		TotalCaloriesIntake: 14000,
		AvgProtein:          120,
		AvgCarbs:            250,
		AvgFat:              60,
		TotalGRScore:        21.5,
		AvgGRScore:          7.17,
		UpdatedAt:           time.Now(),
	}
	require.NoError(t, repo.UpsertSummary(ctx, record))

	// same period again, totals overwritten, still one row
	record.TotalWorkouts = 4
	record.TotalGRScore = 28.4
	record.UpdatedAt = time.Now()
	require.NoError(t, repo.UpsertSummary(ctx, record))

	records, err := repo.ListSummaries(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 4, records[0].TotalWorkouts)
	assert.InDelta(t, 28.4, records[0].TotalGRScore, 0.001)
	assert.Equal(t, PeriodWeekly, records[0].PeriodType)
}

func TestRepo_FetchEmptyPeriod(t *testing.T) {
	ctx := context.Background()
	repo, usersRepo, shutdown := testRepoSetup(t)
	defer shutdown()

	user, err := usersRepo.Add(ctx, users.User{
		Username:     gofakeit.Username(),
		Email:        gofakeit.Email(),
		PasswordHash: gofakeit.UUID(),
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, usersRepo.Delete(ctx, user.ID))
	}()

	from := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	workoutRows, err := repo.CompletedWorkouts(ctx, user.ID, from, to)
	require.NoError(t, err)
	assert.Empty(t, workoutRows)

	mealRows, err := repo.MealsWithFoods(ctx, user.ID, from, to)
	require.NoError(t, err)
	assert.Empty(t, mealRows)
}
