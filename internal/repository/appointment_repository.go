package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
	"github.com/versoindustries/verso-backend-sub001/pkg/timerange"
)

// AppointmentRepository persists appointments and their dependent resource
// bookings. Methods taking sqlx.ExtContext participate in a caller-owned
// transaction.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository creates a new appointment repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// BeginTxx starts a transaction on the underlying database.
func (r *AppointmentRepository) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

const appointmentColumns = "id, resource_id, appointment_type_id, service_id, customer_name, customer_email, start_at, end_at, duration_minutes, status, notes, is_recurring, recurring_parent_id, created_at, updated_at"

// FindByID loads an appointment by id.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE id = $1", appointmentColumns)
	var appt models.Appointment
	if err := r.db.GetContext(ctx, &appt, query, id); err != nil {
		return nil, err
	}
	return &appt, nil
}

// BookedRanges returns all committed (non-cancelled) time ranges held against
// a resource inside the explicit [dayStart, dayEnd) window: appointments on
// the resource plus resource bookings reserving it.
func (r *AppointmentRepository) BookedRanges(ctx context.Context, resourceID string, dayStart, dayEnd time.Time) ([]timerange.Range, error) {
	const apptQuery = `SELECT start_at AS "start", end_at AS "end" FROM appointments WHERE resource_id = $1 AND status <> 'cancelled' AND start_at < $3 AND end_at > $2 ORDER BY start_at ASC`
	var ranges []timerange.Range
	if err := r.db.SelectContext(ctx, &ranges, apptQuery, resourceID, dayStart, dayEnd); err != nil {
		return nil, fmt.Errorf("booked appointment ranges: %w", err)
	}

	const bookingQuery = `SELECT start_at AS "start", end_at AS "end" FROM resource_bookings WHERE resource_id = $1 AND status <> 'cancelled' AND start_at < $3 AND end_at > $2 ORDER BY start_at ASC`
	var reservations []timerange.Range
	if err := r.db.SelectContext(ctx, &reservations, bookingQuery, resourceID, dayStart, dayEnd); err != nil {
		return nil, fmt.Errorf("booked reservation ranges: %w", err)
	}

	return append(ranges, reservations...), nil
}

// CountOverlapping counts committed bookings on the resource that conflict
// with the candidate [start, end): a raw interval overlap, or the candidate
// start inside a booking widened by the buffer minutes. Same rule as
// timerange.ConflictsWith. Used for commit-time re-validation inside the
// booking transaction; the display-time read is never trusted on its own.
func (r *AppointmentRepository) CountOverlapping(ctx context.Context, exec sqlx.ExtContext, resourceID string, start, end time.Time, beforeMins, afterMins int, excludeID string) (int, error) {
	const query = `SELECT (SELECT COUNT(*) FROM appointments WHERE resource_id = $1 AND status <> 'cancelled' AND id <> $6 AND ((start_at < $3 AND end_at > $2) OR (start_at - make_interval(mins => $4) <= $2 AND end_at + make_interval(mins => $5) > $2))) + (SELECT COUNT(*) FROM resource_bookings WHERE resource_id = $1 AND status <> 'cancelled' AND appointment_id <> $6 AND ((start_at < $3 AND end_at > $2) OR (start_at - make_interval(mins => $4) <= $2 AND end_at + make_interval(mins => $5) > $2))) AS total`
	var total int
	if err := sqlx.GetContext(ctx, exec, &total, query, resourceID, start, end, beforeMins, afterMins, excludeID); err != nil {
		return 0, fmt.Errorf("count overlapping bookings: %w", err)
	}
	return total, nil
}

// CreateWithTx inserts an appointment within the supplied transaction.
func (r *AppointmentRepository) CreateWithTx(ctx context.Context, exec sqlx.ExtContext, appt *models.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now

	const query = `INSERT INTO appointments (id, resource_id, appointment_type_id, service_id, customer_name, customer_email, start_at, end_at, duration_minutes, status, notes, is_recurring, recurring_parent_id, created_at, updated_at) VALUES (:id, :resource_id, :appointment_type_id, :service_id, :customer_name, :customer_email, :start_at, :end_at, :duration_minutes, :status, :notes, :is_recurring, :recurring_parent_id, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, appt); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// CreateResourceBookingWithTx inserts a resource reservation within the
// supplied transaction.
func (r *AppointmentRepository) CreateResourceBookingWithTx(ctx context.Context, exec sqlx.ExtContext, booking *models.ResourceBooking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO resource_bookings (id, appointment_id, resource_id, start_at, end_at, status, created_at) VALUES (:id, :appointment_id, :resource_id, :start_at, :end_at, :status, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, booking); err != nil {
		return fmt.Errorf("create resource booking: %w", err)
	}
	return nil
}

// ListResourceBookings returns the reservations linked to an appointment.
func (r *AppointmentRepository) ListResourceBookings(ctx context.Context, appointmentID string) ([]models.ResourceBooking, error) {
	const query = `SELECT id, appointment_id, resource_id, start_at, end_at, status, created_at FROM resource_bookings WHERE appointment_id = $1 ORDER BY created_at ASC`
	var bookings []models.ResourceBooking
	if err := r.db.SelectContext(ctx, &bookings, query, appointmentID); err != nil {
		return nil, fmt.Errorf("list resource bookings: %w", err)
	}
	return bookings, nil
}

// OverlappingResourceBookings counts committed reservations of a resource
// intersecting [start, end). Runs against exec so the allocator can query
// under the booking transaction's locks.
func (r *AppointmentRepository) OverlappingResourceBookings(ctx context.Context, exec sqlx.ExtContext, resourceID string, start, end time.Time) (int, error) {
	if exec == nil {
		exec = r.db
	}
	const query = `SELECT COUNT(*) FROM resource_bookings WHERE resource_id = $1 AND status <> 'cancelled' AND start_at < $3 AND end_at > $2`
	var total int
	if err := sqlx.GetContext(ctx, exec, &total, query, resourceID, start, end); err != nil {
		return 0, fmt.Errorf("count overlapping resource bookings: %w", err)
	}
	return total, nil
}

// UpdateStatus transitions an appointment's status.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	const query = `UPDATE appointments SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CancelResourceBookings marks all reservations of an appointment cancelled.
func (r *AppointmentRepository) CancelResourceBookings(ctx context.Context, appointmentID string) error {
	const query = `UPDATE resource_bookings SET status = 'cancelled' WHERE appointment_id = $1`
	if _, err := r.db.ExecContext(ctx, query, appointmentID); err != nil {
		return fmt.Errorf("cancel resource bookings: %w", err)
	}
	return nil
}

// ListForDay returns committed appointments for a resource whose interval
// intersects [dayStart, dayEnd), ordered by start.
func (r *AppointmentRepository) ListForDay(ctx context.Context, resourceID string, dayStart, dayEnd time.Time) ([]models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE resource_id = $1 AND status <> 'cancelled' AND start_at < $3 AND end_at > $2 ORDER BY start_at ASC", appointmentColumns)
	var appts []models.Appointment
	if err := r.db.SelectContext(ctx, &appts, query, resourceID, dayStart, dayEnd); err != nil {
		return nil, fmt.Errorf("list appointments for day: %w", err)
	}
	return appts, nil
}
