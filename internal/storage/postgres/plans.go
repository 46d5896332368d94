package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/storage"
)

// SavePlan inserts or replaces a plan row.
func (s *Storage) SavePlan(ctx context.Context, plan models.Plan) error {
	const op = "storage.postgres.SavePlan"

	query := `INSERT INTO plans (id, name, description, daily_limit, monthly_limit, price, duration_days)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (id) DO UPDATE SET
				  name = EXCLUDED.name,
				  description = EXCLUDED.description,
				  daily_limit = EXCLUDED.daily_limit,
				  monthly_limit = EXCLUDED.monthly_limit,
				  price = EXCLUDED.price,
				  duration_days = EXCLUDED.duration_days`
	_, err := s.DB.ExecContext(ctx, query,
		plan.ID, plan.Name, plan.Description, plan.DailyLimit,
		plan.MonthlyLimit, plan.Price, plan.DurationDays)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PlanByID returns the plan with the given id.
func (s *Storage) PlanByID(ctx context.Context, id string) (*models.Plan, error) {
	const op = "storage.postgres.PlanByID"

	query := `SELECT id, name, description, daily_limit, monthly_limit, price, duration_days
			  FROM plans WHERE id = $1`
	var plan models.Plan
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&plan.ID, &plan.Name,
		&plan.Description, &plan.DailyLimit, &plan.MonthlyLimit, &plan.Price, &plan.DurationDays)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &plan, nil
}

// ListPlans returns all plans, cheapest tier first.
func (s *Storage) ListPlans(ctx context.Context) ([]models.Plan, error) {
	const op = "storage.postgres.ListPlans"

	query := `SELECT id, name, description, daily_limit, monthly_limit, price, duration_days
			  FROM plans ORDER BY duration_days, id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		var plan models.Plan
		if err := rows.Scan(&plan.ID, &plan.Name, &plan.Description,
			&plan.DailyLimit, &plan.MonthlyLimit, &plan.Price, &plan.DurationDays); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}
