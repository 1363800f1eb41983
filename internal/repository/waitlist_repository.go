package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
)

// WaitlistRepository persists waitlist entries and their state transitions.
type WaitlistRepository struct {
	db *sqlx.DB
}

// NewWaitlistRepository creates a new waitlist repository.
func NewWaitlistRepository(db *sqlx.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

const waitlistColumns = "id, appointment_type_id, customer_name, customer_email, status, priority, offered_start, offer_expires_at, booked_appointment_id, created_at, updated_at"

// FindByID loads a waitlist entry by id.
func (r *WaitlistRepository) FindByID(ctx context.Context, id string) (*models.WaitlistEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM waitlist_entries WHERE id = $1", waitlistColumns)
	var entry models.WaitlistEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByType returns entries for an appointment type, newest last.
func (r *WaitlistRepository) ListByType(ctx context.Context, appointmentTypeID string) ([]models.WaitlistEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM waitlist_entries WHERE appointment_type_id = $1 ORDER BY created_at ASC", waitlistColumns)
	var entries []models.WaitlistEntry
	if err := r.db.SelectContext(ctx, &entries, query, appointmentTypeID); err != nil {
		return nil, fmt.Errorf("list waitlist entries: %w", err)
	}
	return entries, nil
}

// Create stores a new entry in waiting state.
func (r *WaitlistRepository) Create(ctx context.Context, entry *models.WaitlistEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	if entry.Status == "" {
		entry.Status = models.WaitlistWaiting
	}

	const query = `INSERT INTO waitlist_entries (id, appointment_type_id, customer_name, customer_email, status, priority, offered_start, offer_expires_at, booked_appointment_id, created_at, updated_at) VALUES (:id, :appointment_type_id, :customer_name, :customer_email, :status, :priority, :offered_start, :offer_expires_at, :booked_appointment_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create waitlist entry: %w", err)
	}
	return nil
}

// ExpireOffers transitions every offered entry for the type whose offer
// deadline has passed into the expired terminal state, returning how many
// rows changed.
func (r *WaitlistRepository) ExpireOffers(ctx context.Context, appointmentTypeID string, now time.Time) (int64, error) {
	const query = `UPDATE waitlist_entries SET status = 'expired', updated_at = $3 WHERE appointment_type_id = $1 AND status = 'offered' AND offer_expires_at < $2`
	res, err := r.db.ExecContext(ctx, query, appointmentTypeID, now, now)
	if err != nil {
		return 0, fmt.Errorf("expire waitlist offers: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire waitlist offers rows: %w", err)
	}
	return affected, nil
}

// NextWaiting returns the top-ranked waiting entry for the type: highest
// priority first, oldest created_at breaking ties. sql.ErrNoRows when the
// waitlist is empty.
func (r *WaitlistRepository) NextWaiting(ctx context.Context, appointmentTypeID string) (*models.WaitlistEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM waitlist_entries WHERE appointment_type_id = $1 AND status = 'waiting' ORDER BY priority DESC, created_at ASC LIMIT 1", waitlistColumns)
	var entry models.WaitlistEntry
	if err := r.db.GetContext(ctx, &entry, query, appointmentTypeID); err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarkOffered transitions an entry to offered with the given slot and expiry.
func (r *WaitlistRepository) MarkOffered(ctx context.Context, id string, offeredStart *time.Time, expiresAt time.Time) error {
	const query = `UPDATE waitlist_entries SET status = 'offered', offered_start = $2, offer_expires_at = $3, updated_at = $4 WHERE id = $1 AND status = 'waiting'`
	res, err := r.db.ExecContext(ctx, query, id, offeredStart, expiresAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark waitlist entry offered: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindMatchWithTx looks for the entry to reconcile against a fresh booking:
// an offered entry for (email, type) first, else a waiting one. Runs inside
// the booking transaction.
func (r *WaitlistRepository) FindMatchWithTx(ctx context.Context, exec sqlx.ExtContext, email, appointmentTypeID string) (*models.WaitlistEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM waitlist_entries WHERE customer_email = $1 AND appointment_type_id = $2 AND status IN ('offered', 'waiting') ORDER BY CASE status WHEN 'offered' THEN 0 ELSE 1 END, created_at ASC LIMIT 1", waitlistColumns)
	var entry models.WaitlistEntry
	if err := sqlx.GetContext(ctx, exec, &entry, query, email, appointmentTypeID); err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarkBookedWithTx transitions an entry to booked and links the appointment,
// inside the booking transaction.
func (r *WaitlistRepository) MarkBookedWithTx(ctx context.Context, exec sqlx.ExtContext, id, appointmentID string) error {
	const query = `UPDATE waitlist_entries SET status = 'booked', booked_appointment_id = $2, updated_at = $3 WHERE id = $1`
	if _, err := exec.ExecContext(ctx, query, id, appointmentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark waitlist entry booked: %w", err)
	}
	return nil
}

// Delete removes an entry by id.
func (r *WaitlistRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM waitlist_entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete waitlist entry: %w", err)
	}
	return nil
}
