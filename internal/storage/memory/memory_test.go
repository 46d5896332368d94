package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/storage"
)

func newUser(email string) *models.User {
	return &models.User{
		ID:           uuid.NewString(),
		Name:         "Test User",
		Email:        email,
		Phone:        "+9647501234567",
		PasswordHash: "hash",
		Role:         models.RoleUser,
		Status:       models.StatusActive,
		CreatedAt:    time.Now(),
	}
}

func TestUsers_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	s := New()

	user := newUser("a@example.com")
	require.NoError(t, s.CreateUser(ctx, user))

	byID, err := s.UserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	byEmail, err := s.UserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = s.UserByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	count, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUsers_DuplicateEmailRejected(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateUser(ctx, newUser("dup@example.com")))
	err := s.CreateUser(ctx, newUser("dup@example.com"))
	assert.ErrorIs(t, err, storage.ErrEmailTaken)
}

func TestUsers_UpdateDoesNotAliasStoredState(t *testing.T) {
	ctx := context.Background()
	s := New()

	user := newUser("alias@example.com")
	require.NoError(t, s.CreateUser(ctx, user))

	// Mutating the caller's copy must not leak into the store.
	user.Name = "changed outside"
	stored, err := s.UserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test User", stored.Name)

	stored.Name = "changed via update"
	require.NoError(t, s.UpdateUser(ctx, stored))
	again, err := s.UserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "changed via update", again.Name)
}

func TestKeys_MarkUsedExactlyOnce(t *testing.T) {
	ctx := context.Background()
	s := New()

	key := models.ActivationKey{
		Key:       uuid.NewString(),
		PlanID:    models.PlanWeekly,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.SaveKey(ctx, key))

	require.NoError(t, s.MarkKeyUsed(ctx, key.Key, "user-1", time.Now()))

	err := s.MarkKeyUsed(ctx, key.Key, "user-2", time.Now())
	assert.ErrorIs(t, err, storage.ErrKeyUsed)

	stored, err := s.KeyByValue(ctx, key.Key)
	require.NoError(t, err)
	assert.True(t, stored.Used)
	assert.Equal(t, "user-1", stored.UsedBy)
	require.NotNil(t, stored.UsedAt)

	err = s.MarkKeyUsed(ctx, "missing-key", "user-1", time.Now())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUsage_IncrementDecrementFloor(t *testing.T) {
	ctx := context.Background()
	s := New()
	day := storage.DayKey(time.Now())

	usage, err := s.DailyUsage(ctx, "user-1", day)
	require.NoError(t, err)
	assert.Equal(t, 0, usage)

	n, err := s.IncrementUsage(ctx, "user-1", day)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.IncrementUsage(ctx, "user-1", day)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.DecrementUsage(ctx, "user-1", day))
	require.NoError(t, s.DecrementUsage(ctx, "user-1", day))
	// Floor at zero even when decremented more often than incremented.
	require.NoError(t, s.DecrementUsage(ctx, "user-1", day))

	usage, err = s.DailyUsage(ctx, "user-1", day)
	require.NoError(t, err)
	assert.Equal(t, 0, usage)
}

func TestUsage_SeparateDays(t *testing.T) {
	ctx := context.Background()
	s := New()

	today := storage.DayKey(time.Now())
	yesterday := storage.DayKey(time.Now().AddDate(0, 0, -1))

	_, err := s.IncrementUsage(ctx, "user-1", yesterday)
	require.NoError(t, err)

	usage, err := s.DailyUsage(ctx, "user-1", today)
	require.NoError(t, err)
	assert.Equal(t, 0, usage)
}

func TestHistory_ListNewestFirstAndClear(t *testing.T) {
	ctx := context.Background()
	s := New()

	base := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.SaveEntry(ctx, models.HistoryEntry{
			ID:           uuid.NewString(),
			UserID:       "owner",
			OriginalText: "hello",
			Dialect:      models.DialectBehdini,
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.SaveEntry(ctx, models.HistoryEntry{
		ID:        uuid.NewString(),
		UserID:    "someone-else",
		Timestamp: base,
	}))

	entries, err := s.ListEntriesByUser(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp))
	assert.True(t, entries[1].Timestamp.After(entries[2].Timestamp))

	deleted, err := s.DeleteEntriesByUser(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	remaining, err := s.ListEntriesByUser(ctx, "someone-else")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestPlans_SaveAndListOrdered(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.SavePlan(ctx, models.Plan{ID: models.PlanMonthly, DurationDays: 30}))
	require.NoError(t, s.SavePlan(ctx, models.Plan{ID: models.PlanFree, DurationDays: 0}))
	require.NoError(t, s.SavePlan(ctx, models.Plan{ID: models.PlanWeekly, DurationDays: 7}))

	plans, err := s.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, models.PlanFree, plans[0].ID)
	assert.Equal(t, models.PlanWeekly, plans[1].ID)
	assert.Equal(t, models.PlanMonthly, plans[2].ID)
}
