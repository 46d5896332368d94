// Package storage defines the store interfaces the service depends on and
// the sentinel errors shared by their implementations. Two backends exist:
// an in-process one (storage/memory, the default) and a PostgreSQL one
// (storage/postgres).
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/wergeran/wergeran/internal/models"
)

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when a user with the same email already exists.
	ErrEmailTaken = errors.New("email already in use")
	// ErrKeyUsed is returned when an activation key has already been redeemed.
	ErrKeyUsed = errors.New("activation key already used")
)

// UserStore manages user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]*models.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// PlanStore manages subscription plans.
type PlanStore interface {
	SavePlan(ctx context.Context, plan models.Plan) error
	PlanByID(ctx context.Context, id string) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]models.Plan, error)
}

// KeyStore manages activation keys. MarkKeyUsed is the single atomic
// unused -> used transition; it fails with ErrKeyUsed when the key was
// redeemed before, whoever tries.
type KeyStore interface {
	SaveKey(ctx context.Context, key models.ActivationKey) error
	KeyByValue(ctx context.Context, key string) (*models.ActivationKey, error)
	MarkKeyUsed(ctx context.Context, key, usedBy string, usedAt time.Time) error
	ListKeys(ctx context.Context) ([]models.ActivationKey, error)
}

// UsageStore tracks per-user, per-day counters of successful translations.
// Day keys are local calendar dates formatted as 2006-01-02.
type UsageStore interface {
	DailyUsage(ctx context.Context, userID, day string) (int, error)
	IncrementUsage(ctx context.Context, userID, day string) (int, error)
	// DecrementUsage undoes one speculative charge; the counter never
	// goes below zero.
	DecrementUsage(ctx context.Context, userID, day string) error
}

// HistoryStore manages translation history entries.
type HistoryStore interface {
	SaveEntry(ctx context.Context, entry models.HistoryEntry) error
	EntryByID(ctx context.Context, id string) (*models.HistoryEntry, error)
	// ListEntriesByUser returns the user's entries, newest first.
	ListEntriesByUser(ctx context.Context, userID string) ([]models.HistoryEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	// DeleteEntriesByUser removes all of the user's entries and returns
	// how many were deleted.
	DeleteEntriesByUser(ctx context.Context, userID string) (int, error)
}

// Store bundles every store the application wires together.
type Store interface {
	UserStore
	PlanStore
	KeyStore
	UsageStore
	HistoryStore
}

// DayKey formats a point in time as the calendar-day key used by UsageStore.
// Usage resets at local midnight, not on a rolling 24h window.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
