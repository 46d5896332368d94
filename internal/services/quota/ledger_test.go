package quota

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/services/subscription"
	"github.com/wergeran/wergeran/internal/storage"
	"github.com/wergeran/wergeran/internal/storage/memory"
)

func newTestLedger(t *testing.T) (*Ledger, *memory.Storage) {
	t.Helper()
	store := memory.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := subscription.New(log, store, store, store, store)
	require.NoError(t, svc.SeedPlans(context.Background()))
	return NewLedger(log, store, store), store
}

func freeUser(id string) *models.User {
	return &models.User{ID: id, Status: models.StatusActive}
}

func TestReserve_ChargesUpToLimit(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()
	user := freeUser("u1")

	// The free plan allows 10 per day.
	for i := 0; i < 10; i++ {
		res, err := ledger.Reserve(ctx, user)
		require.NoError(t, err, "reservation %d", i)
		require.NotNil(t, res)
	}

	_, err := ledger.Reserve(ctx, user)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	used, err := store.DailyUsage(ctx, "u1", storage.DayKey(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, 10, used)
}

func TestReserve_NilUserFailsClosed(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.Reserve(context.Background(), nil)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestReserve_UnknownPlanFailsClosed(t *testing.T) {
	ledger, _ := newTestLedger(t)
	user := freeUser("u1")
	user.Subscription = &models.Subscription{
		PlanID:    "enterprise",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	_, err := ledger.Reserve(context.Background(), user)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestReserve_ExpiredSubscriptionUsesFreeLimit(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	user := freeUser("u1")
	user.Subscription = &models.Subscription{
		PlanID:    models.PlanMonthly,
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	for i := 0; i < 10; i++ {
		_, err := ledger.Reserve(ctx, user)
		require.NoError(t, err)
	}
	_, err := ledger.Reserve(ctx, user)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestRelease_ReturnsSlotOnce(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()
	user := freeUser("u1")
	day := storage.DayKey(time.Now())

	res, err := ledger.Reserve(ctx, user)
	require.NoError(t, err)

	res.Release(ctx)
	res.Release(ctx) // idempotent

	used, err := store.DailyUsage(ctx, "u1", day)
	require.NoError(t, err)
	assert.Equal(t, 0, used)

	remaining, err := ledger.Remaining(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 10, remaining)
}

func TestReserve_ConcurrentNeverOvershoots(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()
	user := freeUser("u1")

	var wg sync.WaitGroup
	granted := make(chan struct{}, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Reserve(ctx, user); err == nil {
				granted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(granted)

	assert.Equal(t, 10, len(granted))

	used, err := store.DailyUsage(ctx, "u1", storage.DayKey(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, 10, used)
}

func TestRemaining_FloorsAtZero(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()
	user := freeUser("u1")
	day := storage.DayKey(time.Now())

	for i := 0; i < 12; i++ {
		_, err := store.IncrementUsage(ctx, "u1", day)
		require.NoError(t, err)
	}

	remaining, err := ledger.Remaining(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}
