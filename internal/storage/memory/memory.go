// Package memory implements the storage interfaces with in-process maps.
//
// This is the reference backend: all state lives for the lifetime of the
// process and is lost on restart. Unlike the single-threaded original, Go
// handlers run concurrently, so every map is guarded by one RWMutex.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/storage"
)

// Storage keeps all service state in process memory.
type Storage struct {
	mu      sync.RWMutex
	users   map[string]*models.User
	plans   map[string]models.Plan
	keys    map[string]models.ActivationKey
	usage   map[string]map[string]int // user id -> day key -> count
	history map[string]models.HistoryEntry
}

// New returns an empty in-memory storage.
func New() *Storage {
	return &Storage{
		users:   make(map[string]*models.User),
		plans:   make(map[string]models.Plan),
		keys:    make(map[string]models.ActivationKey),
		usage:   make(map[string]map[string]int),
		history: make(map[string]models.HistoryEntry),
	}
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	if u.Subscription != nil {
		sub := *u.Subscription
		cp.Subscription = &sub
	}
	if u.LastLogin != nil {
		ts := *u.LastLogin
		cp.LastLogin = &ts
	}
	return &cp
}

// ===== USERS =====

// CreateUser stores a new user, rejecting duplicate emails.
func (s *Storage) CreateUser(_ context.Context, user *models.User) error {
	const op = "storage.memory.CreateUser"
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return fmt.Errorf("%s: %w", op, storage.ErrEmailTaken)
		}
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

// UserByID returns the user with the given id.
func (s *Storage) UserByID(_ context.Context, id string) (*models.User, error) {
	const op = "storage.memory.UserByID"
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return cloneUser(user), nil
}

// UserByEmail returns the user with the given email.
func (s *Storage) UserByEmail(_ context.Context, email string) (*models.User, error) {
	const op = "storage.memory.UserByEmail"
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
}

// UpdateUser replaces a stored user, rejecting an email already held by
// another account.
func (s *Storage) UpdateUser(_ context.Context, user *models.User) error {
	const op = "storage.memory.UpdateUser"
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	for _, existing := range s.users {
		if existing.ID != user.ID && existing.Email == user.Email {
			return fmt.Errorf("%s: %w", op, storage.ErrEmailTaken)
		}
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

// DeleteUser removes a user.
func (s *Storage) DeleteUser(_ context.Context, id string) error {
	const op = "storage.memory.DeleteUser"
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	delete(s.users, id)
	return nil
}

// ListUsers returns all users ordered by creation time.
func (s *Storage) ListUsers(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, cloneUser(user))
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// CountUsers returns the number of stored users.
func (s *Storage) CountUsers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// ===== PLANS =====

// SavePlan inserts or replaces a plan.
func (s *Storage) SavePlan(_ context.Context, plan models.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.ID] = plan
	return nil
}

// PlanByID returns the plan with the given id.
func (s *Storage) PlanByID(_ context.Context, id string) (*models.Plan, error) {
	const op = "storage.memory.PlanByID"
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.plans[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return &plan, nil
}

// ListPlans returns all plans, cheapest tier first.
func (s *Storage) ListPlans(_ context.Context) ([]models.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plans := make([]models.Plan, 0, len(s.plans))
	for _, plan := range s.plans {
		plans = append(plans, plan)
	}
	sort.Slice(plans, func(i, j int) bool {
		if plans[i].DurationDays == plans[j].DurationDays {
			return plans[i].ID < plans[j].ID
		}
		return plans[i].DurationDays < plans[j].DurationDays
	})
	return plans, nil
}

// ===== ACTIVATION KEYS =====

// SaveKey stores a freshly issued activation key.
func (s *Storage) SaveKey(_ context.Context, key models.ActivationKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.Key] = key
	return nil
}

// KeyByValue returns the activation key with the given token.
func (s *Storage) KeyByValue(_ context.Context, key string) (*models.ActivationKey, error) {
	const op = "storage.memory.KeyByValue"
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.keys[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return &data, nil
}

// MarkKeyUsed performs the atomic unused -> used transition.
func (s *Storage) MarkKeyUsed(_ context.Context, key, usedBy string, usedAt time.Time) error {
	const op = "storage.memory.MarkKeyUsed"
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.keys[key]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if data.Used {
		return fmt.Errorf("%s: %w", op, storage.ErrKeyUsed)
	}
	data.Used = true
	data.UsedBy = usedBy
	data.UsedAt = &usedAt
	s.keys[key] = data
	return nil
}

// ListKeys returns every issued key, oldest first.
func (s *Storage) ListKeys(_ context.Context) ([]models.ActivationKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]models.ActivationKey, 0, len(s.keys))
	for _, key := range s.keys {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CreatedAt.Equal(keys[j].CreatedAt) {
			return keys[i].Key < keys[j].Key
		}
		return keys[i].CreatedAt.Before(keys[j].CreatedAt)
	})
	return keys, nil
}

// ===== USAGE =====

// DailyUsage returns the usage counter for one user and day, 0 if absent.
func (s *Storage) DailyUsage(_ context.Context, userID, day string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usage[userID][day], nil
}

// IncrementUsage bumps the counter for one user and day and returns the
// new value.
func (s *Storage) IncrementUsage(_ context.Context, userID, day string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	days, ok := s.usage[userID]
	if !ok {
		days = make(map[string]int)
		s.usage[userID] = days
	}
	days[day]++
	return days[day], nil
}

// DecrementUsage floors the counter down by one, never below zero.
func (s *Storage) DecrementUsage(_ context.Context, userID, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	days, ok := s.usage[userID]
	if !ok || days[day] == 0 {
		return nil
	}
	days[day]--
	return nil
}

// ===== HISTORY =====

// SaveEntry stores a translation history entry.
func (s *Storage) SaveEntry(_ context.Context, entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[entry.ID] = entry
	return nil
}

// EntryByID returns the history entry with the given id.
func (s *Storage) EntryByID(_ context.Context, id string) (*models.HistoryEntry, error) {
	const op = "storage.memory.EntryByID"
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.history[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return &entry, nil
}

// ListEntriesByUser returns the user's history, newest first.
func (s *Storage) ListEntriesByUser(_ context.Context, userID string) ([]models.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]models.HistoryEntry, 0)
	for _, entry := range s.history {
		if entry.UserID == userID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}

// DeleteEntry removes one history entry.
func (s *Storage) DeleteEntry(_ context.Context, id string) error {
	const op = "storage.memory.DeleteEntry"
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.history[id]; !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	delete(s.history, id)
	return nil
}

// DeleteEntriesByUser removes all history entries owned by the user.
func (s *Storage) DeleteEntriesByUser(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, entry := range s.history {
		if entry.UserID == userID {
			delete(s.history, id)
			deleted++
		}
	}
	return deleted, nil
}
