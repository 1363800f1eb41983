package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
)

// AvailabilityRepository persists recurring weekly windows and date-specific
// exceptions for resources.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository creates a new availability repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListWindowsForDay returns a resource's recurring windows for a weekday,
// ordered by start time.
func (r *AvailabilityRepository) ListWindowsForDay(ctx context.Context, resourceID string, dayOfWeek int) ([]models.AvailabilityWindow, error) {
	const query = `SELECT id, resource_id, day_of_week, start_time, end_time, created_at FROM availability_windows WHERE resource_id = $1 AND day_of_week = $2 ORDER BY start_time ASC`
	var windows []models.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, query, resourceID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list availability windows: %w", err)
	}
	return windows, nil
}

// ListWindows returns all recurring windows for a resource ordered by day
// then start time.
func (r *AvailabilityRepository) ListWindows(ctx context.Context, resourceID string) ([]models.AvailabilityWindow, error) {
	const query = `SELECT id, resource_id, day_of_week, start_time, end_time, created_at FROM availability_windows WHERE resource_id = $1 ORDER BY day_of_week ASC, start_time ASC`
	var windows []models.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, query, resourceID); err != nil {
		return nil, fmt.Errorf("list availability windows: %w", err)
	}
	return windows, nil
}

// CreateWindow stores a recurring weekly window.
func (r *AvailabilityRepository) CreateWindow(ctx context.Context, window *models.AvailabilityWindow) error {
	if window.ID == "" {
		window.ID = uuid.NewString()
	}
	if window.CreatedAt.IsZero() {
		window.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO availability_windows (id, resource_id, day_of_week, start_time, end_time, created_at) VALUES (:id, :resource_id, :day_of_week, :start_time, :end_time, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, window); err != nil {
		return fmt.Errorf("create availability window: %w", err)
	}
	return nil
}

// DeleteWindow removes a recurring window by id.
func (r *AvailabilityRepository) DeleteWindow(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM availability_windows WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete availability window: %w", err)
	}
	return nil
}

// FindException returns the exception row for a resource and calendar date,
// or sql.ErrNoRows when none exists. Dates are matched on the civil date.
func (r *AvailabilityRepository) FindException(ctx context.Context, resourceID string, date time.Time) (*models.AvailabilityException, error) {
	const query = `SELECT id, resource_id, date, is_blocked, custom_start, custom_end, reason, created_at FROM availability_exceptions WHERE resource_id = $1 AND date = $2 LIMIT 1`
	var exc models.AvailabilityException
	if err := r.db.GetContext(ctx, &exc, query, resourceID, date.Format("2006-01-02")); err != nil {
		return nil, err
	}
	return &exc, nil
}

// ListExceptions returns exceptions for a resource within [from, to].
func (r *AvailabilityRepository) ListExceptions(ctx context.Context, resourceID string, from, to time.Time) ([]models.AvailabilityException, error) {
	const query = `SELECT id, resource_id, date, is_blocked, custom_start, custom_end, reason, created_at FROM availability_exceptions WHERE resource_id = $1 AND date BETWEEN $2 AND $3 ORDER BY date ASC`
	var exceptions []models.AvailabilityException
	if err := r.db.SelectContext(ctx, &exceptions, query, resourceID, from.Format("2006-01-02"), to.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list availability exceptions: %w", err)
	}
	return exceptions, nil
}

// UpsertException stores an exception, replacing any existing row for the
// same resource and date. One meaningful exception per (resource, date).
func (r *AvailabilityRepository) UpsertException(ctx context.Context, exc *models.AvailabilityException) error {
	if exc.ID == "" {
		exc.ID = uuid.NewString()
	}
	if exc.CreatedAt.IsZero() {
		exc.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO availability_exceptions (id, resource_id, date, is_blocked, custom_start, custom_end, reason, created_at) VALUES (:id, :resource_id, :date, :is_blocked, :custom_start, :custom_end, :reason, :created_at) ON CONFLICT (resource_id, date) DO UPDATE SET is_blocked = EXCLUDED.is_blocked, custom_start = EXCLUDED.custom_start, custom_end = EXCLUDED.custom_end, reason = EXCLUDED.reason`
	if _, err := r.db.NamedExecContext(ctx, query, exc); err != nil {
		return fmt.Errorf("upsert availability exception: %w", err)
	}
	return nil
}

// DeleteException removes an exception by id.
func (r *AvailabilityRepository) DeleteException(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM availability_exceptions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete availability exception: %w", err)
	}
	return nil
}
