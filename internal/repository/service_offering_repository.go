package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
)

// ServiceOfferingRepository provides persistence for simple-model services.
type ServiceOfferingRepository struct {
	db *sqlx.DB
}

// NewServiceOfferingRepository creates a new service offering repository.
func NewServiceOfferingRepository(db *sqlx.DB) *ServiceOfferingRepository {
	return &ServiceOfferingRepository{db: db}
}

// FindByID loads a service offering by id.
func (r *ServiceOfferingRepository) FindByID(ctx context.Context, id string) (*models.ServiceOffering, error) {
	const query = `SELECT id, name, duration_minutes, active, created_at, updated_at FROM service_offerings WHERE id = $1`
	var svc models.ServiceOffering
	if err := r.db.GetContext(ctx, &svc, query, id); err != nil {
		return nil, err
	}
	return &svc, nil
}

// List returns service offerings, optionally active only.
func (r *ServiceOfferingRepository) List(ctx context.Context, activeOnly bool) ([]models.ServiceOffering, error) {
	query := `SELECT id, name, duration_minutes, active, created_at, updated_at FROM service_offerings`
	if activeOnly {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY name ASC"

	var offerings []models.ServiceOffering
	if err := r.db.SelectContext(ctx, &offerings, query); err != nil {
		return nil, fmt.Errorf("list service offerings: %w", err)
	}
	return offerings, nil
}

// Create stores a new service offering.
func (r *ServiceOfferingRepository) Create(ctx context.Context, svc *models.ServiceOffering) error {
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if svc.CreatedAt.IsZero() {
		svc.CreatedAt = now
	}
	svc.UpdatedAt = now

	const query = `INSERT INTO service_offerings (id, name, duration_minutes, active, created_at, updated_at) VALUES (:id, :name, :duration_minutes, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, svc); err != nil {
		return fmt.Errorf("create service offering: %w", err)
	}
	return nil
}

// Update modifies a service offering.
func (r *ServiceOfferingRepository) Update(ctx context.Context, svc *models.ServiceOffering) error {
	svc.UpdatedAt = time.Now().UTC()
	const query = `UPDATE service_offerings SET name = :name, duration_minutes = :duration_minutes, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, svc); err != nil {
		return fmt.Errorf("update service offering: %w", err)
	}
	return nil
}

// Delete removes a service offering by id.
func (r *ServiceOfferingRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM service_offerings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete service offering: %w", err)
	}
	return nil
}
