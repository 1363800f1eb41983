package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
)

// ResourceRepository provides persistence for schedulable resources.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository creates a new resource repository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

const resourceColumns = "id, name, type, location_id, timezone, active, sort_order, created_at, updated_at"

// FindByID loads a resource by id.
func (r *ResourceRepository) FindByID(ctx context.Context, id string) (*models.Resource, error) {
	query := fmt.Sprintf("SELECT %s FROM resources WHERE id = $1", resourceColumns)
	var res models.Resource
	if err := r.db.GetContext(ctx, &res, query, id); err != nil {
		return nil, err
	}
	return &res, nil
}

// List returns resources, optionally filtered by type and active flag.
func (r *ResourceRepository) List(ctx context.Context, resourceType *models.ResourceType, activeOnly bool) ([]models.Resource, error) {
	base := fmt.Sprintf("SELECT %s FROM resources WHERE 1=1", resourceColumns)
	var conditions []string
	var args []interface{}

	if resourceType != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, *resourceType)
	}
	if activeOnly {
		conditions = append(conditions, "active = TRUE")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}
	base += " ORDER BY sort_order ASC, name ASC"

	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, base, args...); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return resources, nil
}

// ListActiveByType returns active resources of a type in catalog order,
// optionally scoped to a location.
func (r *ResourceRepository) ListActiveByType(ctx context.Context, resourceType models.ResourceType, locationID *string) ([]models.Resource, error) {
	query := fmt.Sprintf("SELECT %s FROM resources WHERE type = $1 AND active = TRUE", resourceColumns)
	args := []interface{}{resourceType}
	if locationID != nil && *locationID != "" {
		query += " AND location_id = $2"
		args = append(args, *locationID)
	}
	query += " ORDER BY sort_order ASC, name ASC"

	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, query, args...); err != nil {
		return nil, fmt.Errorf("list active resources by type: %w", err)
	}
	return resources, nil
}

// LockByIDs acquires row locks on the given resources within the supplied
// transaction, serializing concurrent bookings that touch the same resources.
// IDs are sorted before locking so concurrent transactions acquire locks in
// the same order.
func (r *ResourceRepository) LockByIDs(ctx context.Context, tx *sqlx.Tx, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	var locked []string
	const query = `SELECT id FROM resources WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	if err := tx.SelectContext(ctx, &locked, query, pq.Array(sorted)); err != nil {
		return fmt.Errorf("lock resources: %w", err)
	}
	if len(locked) != len(sorted) {
		return fmt.Errorf("lock resources: expected %d rows, locked %d", len(sorted), len(locked))
	}
	return nil
}

// Create stores a new resource.
func (r *ResourceRepository) Create(ctx context.Context, res *models.Resource) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = now
	}
	res.UpdatedAt = now

	const query = `INSERT INTO resources (id, name, type, location_id, timezone, active, sort_order, created_at, updated_at) VALUES (:id, :name, :type, :location_id, :timezone, :active, :sort_order, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, res); err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

// Update modifies a resource record.
func (r *ResourceRepository) Update(ctx context.Context, res *models.Resource) error {
	res.UpdatedAt = time.Now().UTC()
	const query = `UPDATE resources SET name = :name, type = :type, location_id = :location_id, timezone = :timezone, active = :active, sort_order = :sort_order, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, res); err != nil {
		return fmt.Errorf("update resource: %w", err)
	}
	return nil
}

// Delete removes a resource by id.
func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	return nil
}
