// Package quota meters daily translation usage. A translation first
// reserves a slot (atomic check-and-increment against the effective plan's
// daily limit), then either keeps the charge on success or releases it when
// every upstream call failed. The check and the increment happen under a
// per-user lock, so two concurrent requests can never both squeeze into the
// last remaining slot.
package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wergeran/wergeran/internal/lib/sl"
	"github.com/wergeran/wergeran/internal/metrics"
	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/services/subscription"
	"github.com/wergeran/wergeran/internal/storage"
)

// ErrQuotaExceeded is returned when the user has no translations left today.
var ErrQuotaExceeded = errors.New("daily translation limit reached")

// Ledger serializes quota reservations per user.
type Ledger struct {
	log    *slog.Logger
	plans  storage.PlanStore
	usage  storage.UsageStore
	nowFun func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLedger constructs a quota ledger over the plan and usage stores.
func NewLedger(log *slog.Logger, plans storage.PlanStore, usage storage.UsageStore) *Ledger {
	return &Ledger{
		log:    log,
		plans:  plans,
		usage:  usage,
		nowFun: time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Reservation is one charged translation slot. Release undoes the charge;
// doing nothing keeps it.
type Reservation struct {
	ledger *Ledger
	userID string
	day    string

	mu       sync.Mutex
	released bool
}

// userLock returns the mutex that serializes reservations for one user.
// Locks are never evicted; the map grows with the number of distinct users
// seen since startup, which is bounded by the user table.
func (l *Ledger) userLock(userID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[userID] = lock
	}
	return lock
}

// Reserve charges one translation against the user's daily quota. It fails
// closed: a nil user or an unknown plan yields ErrQuotaExceeded, never a
// free pass.
func (l *Ledger) Reserve(ctx context.Context, user *models.User) (*Reservation, error) {
	const op = "services.quota.Reserve"

	if user == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrQuotaExceeded)
	}

	now := l.nowFun()
	planID, _ := subscription.EffectivePlan(user.Subscription, now)
	plan, err := l.plans.PlanByID(ctx, planID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrQuotaExceeded)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	day := storage.DayKey(now)

	lock := l.userLock(user.ID)
	lock.Lock()
	defer lock.Unlock()

	used, err := l.usage.DailyUsage(ctx, user.ID, day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if used >= plan.DailyLimit {
		metrics.QuotaRejectionsTotal.Inc()
		return nil, fmt.Errorf("%s: %w", op, ErrQuotaExceeded)
	}

	if _, err := l.usage.IncrementUsage(ctx, user.ID, day); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Reservation{ledger: l, userID: user.ID, day: day}, nil
}

// Remaining reports how many translations the user has left today under
// their effective plan.
func (l *Ledger) Remaining(ctx context.Context, user *models.User) (int, error) {
	const op = "services.quota.Remaining"

	now := l.nowFun()
	planID, _ := subscription.EffectivePlan(user.Subscription, now)
	plan, err := l.plans.PlanByID(ctx, planID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	used, err := l.usage.DailyUsage(ctx, user.ID, storage.DayKey(now))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	remaining := plan.DailyLimit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Release returns the reserved slot to the user's daily budget. It is
// idempotent; calling it twice undoes only one charge.
func (r *Reservation) Release(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true

	if err := r.ledger.usage.DecrementUsage(ctx, r.userID, r.day); err != nil {
		// The slot stays charged; undercounting quota is worse than
		// overcounting it.
		r.ledger.log.Error("failed to release quota reservation",
			slog.String("user_id", r.userID),
			slog.String("day", r.day),
			sl.Err(err))
	}
}
