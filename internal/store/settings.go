package store

import (
	"context"
	"database/sql"
	"errors"
)

func (e *Engine) getSetting(ctx context.Context, key string) (value string, found bool, err error) {
	err = e.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (e *Engine) putSetting(ctx context.Context, key, value string) error {
	_, err := e.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

// GetSetting exposes the settings registry to other packages (e.g. a
// stats command reporting the configured model).
func (e *Engine) GetSetting(ctx context.Context, key string) (string, bool, error) {
	return e.getSetting(ctx, key)
}
