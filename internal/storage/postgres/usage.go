package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DailyUsage returns the usage counter for one user and day, 0 if absent.
func (s *Storage) DailyUsage(ctx context.Context, userID, day string) (int, error) {
	const op = "storage.postgres.DailyUsage"

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT count FROM usage_records WHERE user_id = $1 AND day = $2::date`,
		userID, day).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// IncrementUsage bumps the counter for one user and day through an upsert
// and returns the new value.
func (s *Storage) IncrementUsage(ctx context.Context, userID, day string) (int, error) {
	const op = "storage.postgres.IncrementUsage"

	query := `INSERT INTO usage_records (user_id, day, count)
			  VALUES ($1, $2::date, 1)
			  ON CONFLICT (user_id, day)
			  DO UPDATE SET count = usage_records.count + 1
			  RETURNING count`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userID, day).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// DecrementUsage floors the counter down by one, never below zero.
func (s *Storage) DecrementUsage(ctx context.Context, userID, day string) error {
	const op = "storage.postgres.DecrementUsage"

	query := `UPDATE usage_records SET count = GREATEST(count - 1, 0)
			  WHERE user_id = $1 AND day = $2::date`
	if _, err := s.DB.ExecContext(ctx, query, userID, day); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
