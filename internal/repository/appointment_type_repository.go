package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
)

// AppointmentTypeRepository provides persistence for appointment types.
type AppointmentTypeRepository struct {
	db *sqlx.DB
}

// NewAppointmentTypeRepository creates a new appointment type repository.
func NewAppointmentTypeRepository(db *sqlx.DB) *AppointmentTypeRepository {
	return &AppointmentTypeRepository{db: db}
}

const appointmentTypeColumns = "id, name, duration_minutes, buffer_before_minutes, buffer_after_minutes, required_resource_type, location_id, active, created_at, updated_at"

// FindByID loads an appointment type by id.
func (r *AppointmentTypeRepository) FindByID(ctx context.Context, id string) (*models.AppointmentType, error) {
	query := fmt.Sprintf("SELECT %s FROM appointment_types WHERE id = $1", appointmentTypeColumns)
	var apptType models.AppointmentType
	if err := r.db.GetContext(ctx, &apptType, query, id); err != nil {
		return nil, err
	}
	return &apptType, nil
}

// List returns appointment types, optionally active only.
func (r *AppointmentTypeRepository) List(ctx context.Context, activeOnly bool) ([]models.AppointmentType, error) {
	query := fmt.Sprintf("SELECT %s FROM appointment_types", appointmentTypeColumns)
	if activeOnly {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY name ASC"

	var types []models.AppointmentType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("list appointment types: %w", err)
	}
	return types, nil
}

// ListActiveIDs returns the ids of all active appointment types.
func (r *AppointmentTypeRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM appointment_types WHERE active = TRUE ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list active appointment type ids: %w", err)
	}
	return ids, nil
}

// Create stores a new appointment type.
func (r *AppointmentTypeRepository) Create(ctx context.Context, apptType *models.AppointmentType) error {
	if apptType.ID == "" {
		apptType.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if apptType.CreatedAt.IsZero() {
		apptType.CreatedAt = now
	}
	apptType.UpdatedAt = now

	const query = `INSERT INTO appointment_types (id, name, duration_minutes, buffer_before_minutes, buffer_after_minutes, required_resource_type, location_id, active, created_at, updated_at) VALUES (:id, :name, :duration_minutes, :buffer_before_minutes, :buffer_after_minutes, :required_resource_type, :location_id, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, apptType); err != nil {
		return fmt.Errorf("create appointment type: %w", err)
	}
	return nil
}

// Update modifies an appointment type.
func (r *AppointmentTypeRepository) Update(ctx context.Context, apptType *models.AppointmentType) error {
	apptType.UpdatedAt = time.Now().UTC()
	const query = `UPDATE appointment_types SET name = :name, duration_minutes = :duration_minutes, buffer_before_minutes = :buffer_before_minutes, buffer_after_minutes = :buffer_after_minutes, required_resource_type = :required_resource_type, location_id = :location_id, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, apptType); err != nil {
		return fmt.Errorf("update appointment type: %w", err)
	}
	return nil
}

// Delete removes an appointment type by id.
func (r *AppointmentTypeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM appointment_types WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete appointment type: %w", err)
	}
	return nil
}
