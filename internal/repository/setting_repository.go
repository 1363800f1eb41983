package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
)

// SettingRepository persists flat business configuration key/value pairs.
type SettingRepository struct {
	db *sqlx.DB
}

// NewSettingRepository creates a new setting repository.
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get returns the raw value for a key, or sql.ErrNoRows.
func (r *SettingRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	if err := r.db.GetContext(ctx, &value, `SELECT value FROM business_settings WHERE key = $1`, key); err != nil {
		return "", err
	}
	return value, nil
}

// List returns all settings ordered by key.
func (r *SettingRepository) List(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	if err := r.db.SelectContext(ctx, &settings, `SELECT key, value, updated_at FROM business_settings ORDER BY key ASC`); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// Upsert writes a setting value.
func (r *SettingRepository) Upsert(ctx context.Context, key, value string) error {
	const query = `INSERT INTO business_settings (key, value, updated_at) VALUES ($1, $2, $3) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

// Delete removes a setting by key.
func (r *SettingRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM business_settings WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	return nil
}
