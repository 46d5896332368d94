package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/storage"
)

// SaveEntry stores a translation history entry.
func (s *Storage) SaveEntry(ctx context.Context, entry models.HistoryEntry) error {
	const op = "storage.postgres.SaveEntry"

	query := `INSERT INTO translation_history (id, user_id, original_text, behdini, sorani, dialect, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.DB.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.OriginalText,
		entry.Translations.Behdini, entry.Translations.Sorani,
		entry.Dialect, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// EntryByID returns the history entry with the given id.
func (s *Storage) EntryByID(ctx context.Context, id string) (*models.HistoryEntry, error) {
	const op = "storage.postgres.EntryByID"

	query := `SELECT id, user_id, original_text, behdini, sorani, dialect, created_at
			  FROM translation_history WHERE id = $1`
	var entry models.HistoryEntry
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&entry.ID, &entry.UserID,
		&entry.OriginalText, &entry.Translations.Behdini, &entry.Translations.Sorani,
		&entry.Dialect, &entry.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &entry, nil
}

// ListEntriesByUser returns the user's history, newest first.
func (s *Storage) ListEntriesByUser(ctx context.Context, userID string) ([]models.HistoryEntry, error) {
	const op = "storage.postgres.ListEntriesByUser"

	query := `SELECT id, user_id, original_text, behdini, sorani, dialect, created_at
			  FROM translation_history WHERE user_id = $1
			  ORDER BY created_at DESC, id`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	entries := make([]models.HistoryEntry, 0)
	for rows.Next() {
		var entry models.HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.OriginalText,
			&entry.Translations.Behdini, &entry.Translations.Sorani,
			&entry.Dialect, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

// DeleteEntry removes one history entry.
func (s *Storage) DeleteEntry(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteEntry"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM translation_history WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}

// DeleteEntriesByUser removes all history entries owned by the user.
func (s *Storage) DeleteEntriesByUser(ctx context.Context, userID string) (int, error) {
	const op = "storage.postgres.DeleteEntriesByUser"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM translation_history WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(affected), nil
}
