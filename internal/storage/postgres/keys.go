package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/storage"
)

func scanKey(row interface{ Scan(...any) error }) (*models.ActivationKey, error) {
	var (
		key    models.ActivationKey
		usedBy sql.NullString
		usedAt sql.NullTime
	)
	if err := row.Scan(&key.Key, &key.PlanID, &key.Used, &key.CreatedAt, &usedBy, &usedAt); err != nil {
		return nil, err
	}
	key.UsedBy = usedBy.String
	if usedAt.Valid {
		key.UsedAt = &usedAt.Time
	}
	return &key, nil
}

// SaveKey stores a freshly issued activation key.
func (s *Storage) SaveKey(ctx context.Context, key models.ActivationKey) error {
	const op = "storage.postgres.SaveKey"

	query := `INSERT INTO activation_keys (key, plan_id, used, created_at)
			  VALUES ($1, $2, $3, $4)`
	_, err := s.DB.ExecContext(ctx, query, key.Key, key.PlanID, key.Used, key.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// KeyByValue returns the activation key with the given token.
func (s *Storage) KeyByValue(ctx context.Context, key string) (*models.ActivationKey, error) {
	const op = "storage.postgres.KeyByValue"

	query := `SELECT key, plan_id, used, created_at, used_by, used_at
			  FROM activation_keys WHERE key = $1`
	data, err := scanKey(s.DB.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

// MarkKeyUsed performs the atomic unused -> used transition. The WHERE
// clause makes a second redemption a no-op, reported as ErrKeyUsed.
func (s *Storage) MarkKeyUsed(ctx context.Context, key, usedBy string, usedAt time.Time) error {
	const op = "storage.postgres.MarkKeyUsed"

	query := `UPDATE activation_keys SET used = TRUE, used_by = $2, used_at = $3
			  WHERE key = $1 AND used = FALSE`
	res, err := s.DB.ExecContext(ctx, query, key, usedBy, usedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		var exists bool
		err = s.DB.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM activation_keys WHERE key = $1)`, key).Scan(&exists)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, storage.ErrKeyUsed)
	}
	return nil
}

// ListKeys returns every issued key, oldest first.
func (s *Storage) ListKeys(ctx context.Context) ([]models.ActivationKey, error) {
	const op = "storage.postgres.ListKeys"

	query := `SELECT key, plan_id, used, created_at, used_by, used_at
			  FROM activation_keys ORDER BY created_at, key`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var keys []models.ActivationKey
	for rows.Next() {
		key, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		keys = append(keys, *key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return keys, nil
}
