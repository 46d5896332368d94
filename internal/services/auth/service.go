// Package auth implements account registration, login and profile
// management. Passwords are stored as bcrypt hashes; sessions are stateless
// JWTs issued here and verified by the auth middleware.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/wergeran/wergeran/internal/lib/jwt"
	"github.com/wergeran/wergeran/internal/lib/password"
	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/storage"
)

// MinPasswordLength applies to registration and password changes.
const MinPasswordLength = 8

// phoneRe accepts an optional leading plus and at least ten digits.
var phoneRe = regexp.MustCompile(`^\+?\d{10,}$`)

var (
	// ErrInvalidCredentials is returned on login with a wrong email or
	// password; the two cases are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrWrongPassword is returned when the confirmation password does
	// not match the account's current one.
	ErrWrongPassword = errors.New("wrong password")
	// ErrInvalidPhone is returned for phone numbers that do not look
	// like international numbers.
	ErrInvalidPhone = errors.New("invalid phone number")
)

// Service implements accounts on top of the user store.
type Service struct {
	log    *slog.Logger
	users  storage.UserStore
	maker  jwt.Maker
	nowFun func() time.Time
}

// New constructs the auth service.
func New(log *slog.Logger, users storage.UserStore, maker jwt.Maker) *Service {
	return &Service{
		log:    log,
		users:  users,
		maker:  maker,
		nowFun: time.Now,
	}
}

// ValidPhone reports whether the phone number has an acceptable shape.
func ValidPhone(phone string) bool {
	return phoneRe.MatchString(phone)
}

// Register creates an account and returns it with a fresh token. The very
// first registered user becomes the admin.
func (s *Service) Register(ctx context.Context, name, email, phone, pass string) (*models.User, string, error) {
	const op = "services.auth.Register"

	if !ValidPhone(phone) {
		return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidPhone)
	}

	hash, err := password.GetHash(pass)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	count, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	role := models.RoleUser
	if count == 0 {
		role = models.RoleAdmin
	}

	now := s.nowFun()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         role,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.maker.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role))

	return user, token, nil
}

// Login verifies the credentials, records the login time and returns the
// account with a fresh token.
func (s *Service) Login(ctx context.Context, email, pass string) (*models.User, string, error) {
	const op = "services.auth.Login"

	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(user.PasswordHash, pass); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	now := s.nowFun()
	user.LastLogin = &now
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.maker.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user logged in", slog.String("user_id", user.ID))

	return user, token, nil
}

// UpdateProfile changes name, email and phone. Empty fields keep their
// current value. A new token is issued so clients can rotate immediately.
func (s *Service) UpdateProfile(ctx context.Context, user *models.User, name, email, phone string) (*models.User, string, error) {
	const op = "services.auth.UpdateProfile"

	if phone != "" && phone != user.Phone && !ValidPhone(phone) {
		return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidPhone)
	}

	if email != "" && email != user.Email {
		other, err := s.users.UserByEmail(ctx, email)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
		if other != nil && other.ID != user.ID {
			return nil, "", fmt.Errorf("%s: %w", op, storage.ErrEmailTaken)
		}
	}

	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}
	if phone != "" {
		user.Phone = phone
	}
	user.UpdatedAt = s.nowFun()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.maker.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	return user, token, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, user *models.User, current, next string) error {
	const op = "services.auth.ChangePassword"

	if err := password.CompareHash(user.PasswordHash, current); err != nil {
		return fmt.Errorf("%s: %w", op, ErrWrongPassword)
	}

	hash, err := password.GetHash(next)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user.PasswordHash = hash
	user.UpdatedAt = s.nowFun()
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("password changed", slog.String("user_id", user.ID))
	return nil
}

// DeleteAccount removes the account after a password confirmation.
func (s *Service) DeleteAccount(ctx context.Context, user *models.User, pass string) error {
	const op = "services.auth.DeleteAccount"

	if err := password.CompareHash(user.PasswordHash, pass); err != nil {
		return fmt.Errorf("%s: %w", op, ErrWrongPassword)
	}

	if err := s.users.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("account deleted", slog.String("user_id", user.ID))
	return nil
}
