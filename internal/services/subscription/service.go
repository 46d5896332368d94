// Package subscription manages plans, activation keys and the derivation of
// a user's effective plan from their possibly expired subscription.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/storage"
)

// Limits for bulk key generation.
const (
	MinKeysPerBatch = 1
	MaxKeysPerBatch = 100
)

// DefaultPlans are seeded into the plan store on startup if missing.
// Monthly limits are always DailyLimit * 30.
func DefaultPlans() []models.Plan {
	return []models.Plan{
		{
			ID:           models.PlanFree,
			Name:         "بێ بەرامبەر",
			Description:  "رۆژانە ١٠ جاران وەرگێڕانێ",
			DailyLimit:   10,
			MonthlyLimit: 300,
			Price:        0,
			DurationDays: 0,
		},
		{
			ID:           models.PlanWeekly,
			Name:         "هەفتیانە",
			Description:  "رۆژانە ٢٠ جاران وەرگێڕانێ",
			DailyLimit:   20,
			MonthlyLimit: 600,
			Price:        5000,
			DurationDays: 7,
		},
		{
			ID:           models.PlanMonthly,
			Name:         "هەیڤانە",
			Description:  "رۆژانە ٣٠ جاران وەرگێڕانێ",
			DailyLimit:   30,
			MonthlyLimit: 900,
			Price:        15000,
			DurationDays: 30,
		},
	}
}

// Service implements plan management and key redemption on top of the
// plan, key, user and usage stores.
type Service struct {
	log    *slog.Logger
	plans  storage.PlanStore
	keys   storage.KeyStore
	users  storage.UserStore
	usage  storage.UsageStore
	nowFun func() time.Time
}

// New constructs the subscription service.
func New(log *slog.Logger, plans storage.PlanStore, keys storage.KeyStore,
	users storage.UserStore, usage storage.UsageStore) *Service {
	return &Service{
		log:    log,
		plans:  plans,
		keys:   keys,
		users:  users,
		usage:  usage,
		nowFun: time.Now,
	}
}

// SeedPlans stores every default plan that is not present yet. Existing
// plans are left untouched so admin limit changes survive restarts.
func (s *Service) SeedPlans(ctx context.Context) error {
	const op = "services.subscription.SeedPlans"

	for _, plan := range DefaultPlans() {
		_, err := s.plans.PlanByID(ctx, plan.ID)
		if err == nil {
			continue
		}
		if !errorsIsNotFound(err) {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := s.plans.SavePlan(ctx, plan); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("seeded plan", slog.String("plan_id", plan.ID))
	}
	return nil
}

// ListPlans returns all plans.
func (s *Service) ListPlans(ctx context.Context) ([]models.Plan, error) {
	const op = "services.subscription.ListPlans"

	plans, err := s.plans.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// UpdatePlan changes the daily limit and price of an existing plan. The
// monthly limit is derived, never set directly.
func (s *Service) UpdatePlan(ctx context.Context, planID string, dailyLimit, price int) (*models.Plan, error) {
	const op = "services.subscription.UpdatePlan"

	if dailyLimit < 1 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidLimit)
	}
	if price < 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidPrice)
	}

	plan, err := s.plans.PlanByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	plan.DailyLimit = dailyLimit
	plan.MonthlyLimit = dailyLimit * 30
	plan.Price = price

	if err := s.plans.SavePlan(ctx, *plan); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("plan updated",
		slog.String("plan_id", planID),
		slog.Int("daily_limit", dailyLimit),
		slog.Int("price", price))

	return plan, nil
}

// GenerateKeys mints count single-use activation keys for the given plan.
func (s *Service) GenerateKeys(ctx context.Context, planID string, count int) ([]models.ActivationKey, error) {
	const op = "services.subscription.GenerateKeys"

	if count < MinKeysPerBatch || count > MaxKeysPerBatch {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCount)
	}

	plan, err := s.plans.PlanByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if plan.DurationDays == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrPlanNotRedeemable)
	}

	now := s.nowFun()
	keys := make([]models.ActivationKey, 0, count)
	for i := 0; i < count; i++ {
		key := models.ActivationKey{
			Key:       uuid.NewString(),
			PlanID:    planID,
			CreatedAt: now,
		}
		if err := s.keys.SaveKey(ctx, key); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		keys = append(keys, key)
	}

	s.log.Info("activation keys generated",
		slog.String("plan_id", planID),
		slog.Int("count", count))

	return keys, nil
}

// ListKeys returns every activation key, used or not.
func (s *Service) ListKeys(ctx context.Context) ([]models.ActivationKey, error) {
	const op = "services.subscription.ListKeys"

	keys, err := s.keys.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return keys, nil
}

// ValidateKey returns the key if it exists and has not been used yet,
// nil otherwise. Lookup errors other than absence are reported.
func (s *Service) ValidateKey(ctx context.Context, key string) (*models.ActivationKey, error) {
	const op = "services.subscription.ValidateKey"

	k, err := s.keys.KeyByValue(ctx, key)
	if err != nil {
		if errorsIsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if k.Used {
		return nil, nil
	}
	return k, nil
}

// Redeem consumes an activation key and attaches the resulting subscription
// to the user. The unused -> used transition is atomic in the key store, so
// two concurrent redemptions of the same key cannot both succeed.
func (s *Service) Redeem(ctx context.Context, user *models.User, key string) (*models.SubscriptionStatus, error) {
	const op = "services.subscription.Redeem"

	k, err := s.keys.KeyByValue(ctx, key)
	if err != nil {
		if errorsIsNotFound(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrKeyInvalid)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if k.Used {
		return nil, fmt.Errorf("%s: %w", op, ErrKeyInvalid)
	}

	plan, err := s.plans.PlanByID(ctx, k.PlanID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if plan.DurationDays == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrPlanNotRedeemable)
	}

	now := s.nowFun()
	if err := s.keys.MarkKeyUsed(ctx, key, user.ID, now); err != nil {
		if errors.Is(err, storage.ErrKeyUsed) || errorsIsNotFound(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrKeyInvalid)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user.Subscription = &models.Subscription{
		PlanID:      plan.ID,
		ActivatedAt: now,
		ExpiresAt:   now.AddDate(0, 0, plan.DurationDays),
	}
	user.UpdatedAt = now

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription activated",
		slog.String("user_id", user.ID),
		slog.String("plan_id", plan.ID))

	status, err := s.Status(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return status, nil
}

// EffectivePlan resolves which plan governs the user right now: the
// subscribed plan while the subscription is current, the free plan once it
// has lapsed or when there is no subscription at all.
func EffectivePlan(sub *models.Subscription, now time.Time) (planID string, expired bool) {
	if sub == nil {
		return models.PlanFree, false
	}
	if !sub.ExpiresAt.After(now) {
		return models.PlanFree, true
	}
	return sub.PlanID, false
}

// Status builds the subscription snapshot for a user: effective plan,
// active/expired marker and the remaining translations for today.
func (s *Service) Status(ctx context.Context, user *models.User) (*models.SubscriptionStatus, error) {
	const op = "services.subscription.Status"

	now := s.nowFun()
	planID, expired := EffectivePlan(user.Subscription, now)

	plan, err := s.plans.PlanByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	used, err := s.usage.DailyUsage(ctx, user.ID, storage.DayKey(now))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	remaining := plan.DailyLimit - used
	if remaining < 0 {
		remaining = 0
	}

	status := &models.SubscriptionStatus{
		PlanID:                planID,
		Status:                models.StatusActive,
		RemainingTranslations: remaining,
		Plan:                  plan,
	}
	if expired {
		status.Status = "expired"
	}
	if user.Subscription != nil {
		expiresAt := user.Subscription.ExpiresAt
		status.ExpiresAt = &expiresAt
	}
	return status, nil
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
