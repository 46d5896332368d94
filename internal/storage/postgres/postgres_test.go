package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/storage"
)

func setupStorage(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed storage test in short mode")
	}

	ctx := context.Background()
	container, err := pgcontainer.Run(ctx,
		"postgres:15-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("user"),
		pgcontainer.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := New(connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate("../../../migrations"))
	return s
}

func TestPostgres_UserLifecycle(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         "Test User",
		Email:        "user@example.com",
		Phone:        "+9647501234567",
		PasswordHash: "hash",
		Role:         models.RoleUser,
		Status:       models.StatusActive,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.CreateUser(ctx, user))

	dup := *user
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, s.CreateUser(ctx, &dup), storage.ErrEmailTaken)

	loaded, err := s.UserByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.ID)
	assert.Nil(t, loaded.Subscription)

	loaded.Subscription = &models.Subscription{
		PlanID:      models.PlanWeekly,
		ActivatedAt: time.Now().UTC(),
		ExpiresAt:   time.Now().UTC().AddDate(0, 0, 7),
	}
	loaded.UpdatedAt = time.Now().UTC()
	require.NoError(t, s.UpdateUser(ctx, loaded))

	reloaded, err := s.UserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Subscription)
	assert.Equal(t, models.PlanWeekly, reloaded.Subscription.PlanID)

	count, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, s.DeleteUser(ctx, user.ID))
	_, err = s.UserByID(ctx, user.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPostgres_KeysAndUsage(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SavePlan(ctx, models.Plan{
		ID: models.PlanWeekly, Name: "weekly", DailyLimit: 20,
		MonthlyLimit: 600, Price: 5000, DurationDays: 7,
	}))

	key := models.ActivationKey{
		Key:       uuid.NewString(),
		PlanID:    models.PlanWeekly,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.SaveKey(ctx, key))

	userID := uuid.NewString()
	require.NoError(t, s.MarkKeyUsed(ctx, key.Key, userID, time.Now().UTC()))
	assert.ErrorIs(t, s.MarkKeyUsed(ctx, key.Key, userID, time.Now().UTC()), storage.ErrKeyUsed)
	assert.ErrorIs(t, s.MarkKeyUsed(ctx, uuid.NewString(), userID, time.Now().UTC()), storage.ErrNotFound)

	day := storage.DayKey(time.Now())
	n, err := s.IncrementUsage(ctx, userID, day)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = s.IncrementUsage(ctx, userID, day)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.DecrementUsage(ctx, userID, day))
	require.NoError(t, s.DecrementUsage(ctx, userID, day))
	require.NoError(t, s.DecrementUsage(ctx, userID, day))

	usage, err := s.DailyUsage(ctx, userID, day)
	require.NoError(t, err)
	assert.Equal(t, 0, usage)
}

func TestPostgres_History(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	owner := uuid.NewString()
	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.SaveEntry(ctx, models.HistoryEntry{
			ID:           uuid.NewString(),
			UserID:       owner,
			OriginalText: "hello",
			Translations: models.TranslationPair{Behdini: "سڵاڤ"},
			Dialect:      models.DialectBehdini,
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := s.ListEntriesByUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp))

	require.NoError(t, s.DeleteEntry(ctx, entries[0].ID))
	deleted, err := s.DeleteEntriesByUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
}
