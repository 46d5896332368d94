// Package admin implements user administration: listing, editing, blocking
// and deleting accounts, plus aggregate statistics. Destructive actions on
// the acting admin's own account are refused.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/services/auth"
	"github.com/wergeran/wergeran/internal/storage"
)

var (
	// ErrSelfAction is returned when an admin tries to delete or block
	// their own account.
	ErrSelfAction = errors.New("action not allowed on own account")
	// ErrInvalidStatus is returned for statuses other than active/blocked.
	ErrInvalidStatus = errors.New("invalid status")
)

// UserUpdate carries the editable account fields; empty fields keep their
// current value.
type UserUpdate struct {
	Name   string
	Email  string
	Phone  string
	Status string
	Role   string
}

// Stats is the aggregate user statistics snapshot.
type Stats struct {
	TotalUsers    int `json:"total_users"`
	ActiveUsers   int `json:"active_users"`
	BlockedUsers  int `json:"blocked_users"`
	NewUsersToday int `json:"new_users_today"`
}

// Service implements administration on top of the user store.
type Service struct {
	log    *slog.Logger
	users  storage.UserStore
	nowFun func() time.Time
}

// New constructs the admin service.
func New(log *slog.Logger, users storage.UserStore) *Service {
	return &Service{
		log:    log,
		users:  users,
		nowFun: time.Now,
	}
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "services.admin.ListUsers"

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// GetUser returns one account by id.
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "services.admin.GetUser"

	user, err := s.users.UserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// UpdateUser applies the non-empty fields of upd to the account.
func (s *Service) UpdateUser(ctx context.Context, id string, upd UserUpdate) (*models.User, error) {
	const op = "services.admin.UpdateUser"

	user, err := s.users.UserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if upd.Email != "" && upd.Email != user.Email {
		other, err := s.users.UserByEmail(ctx, upd.Email)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if other != nil && other.ID != user.ID {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrEmailTaken)
		}
		user.Email = upd.Email
	}
	if upd.Phone != "" && upd.Phone != user.Phone {
		if !auth.ValidPhone(upd.Phone) {
			return nil, fmt.Errorf("%s: %w", op, auth.ErrInvalidPhone)
		}
		user.Phone = upd.Phone
	}
	if upd.Name != "" {
		user.Name = upd.Name
	}
	if upd.Status != "" {
		if upd.Status != models.StatusActive && upd.Status != models.StatusBlocked {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
		}
		user.Status = upd.Status
	}
	if upd.Role != "" {
		if upd.Role != models.RoleUser && upd.Role != models.RoleAdmin {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
		}
		user.Role = upd.Role
	}
	user.UpdatedAt = s.nowFun()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user updated by admin", slog.String("user_id", id))
	return user, nil
}

// DeleteUser removes an account. The acting admin cannot delete themselves.
func (s *Service) DeleteUser(ctx context.Context, actorID, id string) error {
	const op = "services.admin.DeleteUser"

	if actorID == id {
		return fmt.Errorf("%s: %w", op, ErrSelfAction)
	}
	if _, err := s.users.UserByID(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user deleted by admin", slog.String("user_id", id))
	return nil
}

// SetStatus blocks or unblocks an account. The acting admin cannot change
// their own status.
func (s *Service) SetStatus(ctx context.Context, actorID, id, status string) (*models.User, error) {
	const op = "services.admin.SetStatus"

	if status != models.StatusActive && status != models.StatusBlocked {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
	}
	if actorID == id {
		return nil, fmt.Errorf("%s: %w", op, ErrSelfAction)
	}

	user, err := s.users.UserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user.Status = status
	user.UpdatedAt = s.nowFun()
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user status changed",
		slog.String("user_id", id),
		slog.String("status", status))
	return user, nil
}

// Stats aggregates user counts. New-today counts by the local calendar day.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	const op = "services.admin.Stats"

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	today := storage.DayKey(s.nowFun())
	stats := &Stats{TotalUsers: len(users)}
	for _, u := range users {
		switch u.Status {
		case models.StatusBlocked:
			stats.BlockedUsers++
		default:
			stats.ActiveUsers++
		}
		if storage.DayKey(u.CreatedAt) == today {
			stats.NewUsersToday++
		}
	}
	return stats, nil
}
