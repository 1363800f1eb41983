package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
)

type resourceCatalog interface {
	ListActiveByType(ctx context.Context, resourceType models.ResourceType, locationID *string) ([]models.Resource, error)
}

type bookingOverlapCounter interface {
	OverlappingResourceBookings(ctx context.Context, exec sqlx.ExtContext, resourceID string, start, end time.Time) (int, error)
}

// AllocatorService picks a concrete shared resource (room, equipment) for an
// appointment that declares a required resource type. Candidates are walked in
// catalog order so allocation is deterministic for a given ledger state.
type AllocatorService struct {
	resources resourceCatalog
	bookings  bookingOverlapCounter
	logger    *zap.Logger
}

// NewAllocatorService instantiates AllocatorService.
func NewAllocatorService(resources resourceCatalog, bookings bookingOverlapCounter, logger *zap.Logger) *AllocatorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocatorService{resources: resources, bookings: bookings, logger: logger}
}

// FindAvailable returns the first active resource of the requested type that
// is free for the whole interval [start, end). ErrResourceExhausted when every
// candidate is taken, ErrNotFound when no candidate exists at all.
func (s *AllocatorService) FindAvailable(ctx context.Context, resourceType models.ResourceType, locationID *string, start, end time.Time) (*models.Resource, error) {
	return s.findAvailable(ctx, nil, resourceType, locationID, start, end)
}

// FindAvailableWithTx is FindAvailable running against a caller-owned
// transaction, so the booking transactor can allocate under its row locks.
func (s *AllocatorService) FindAvailableWithTx(ctx context.Context, exec sqlx.ExtContext, resourceType models.ResourceType, locationID *string, start, end time.Time) (*models.Resource, error) {
	return s.findAvailable(ctx, exec, resourceType, locationID, start, end)
}

func (s *AllocatorService) findAvailable(ctx context.Context, exec sqlx.ExtContext, resourceType models.ResourceType, locationID *string, start, end time.Time) (*models.Resource, error) {
	candidates, err := s.resources.ListActiveByType(ctx, resourceType, locationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list candidate resources")
	}
	if len(candidates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no %s resources are configured", resourceType))
	}

	for i := range candidates {
		candidate := &candidates[i]
		overlaps, err := s.bookings.OverlappingResourceBookings(ctx, exec, candidate.ID, start, end)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check resource occupancy")
		}
		if overlaps == 0 {
			return candidate, nil
		}
	}

	s.logger.Debug("all candidate resources are busy",
		zap.String("resource_type", string(resourceType)),
		zap.Int("candidates", len(candidates)),
		zap.Time("start", start),
		zap.Time("end", end))
	return nil, appErrors.Clone(appErrors.ErrResourceExhausted, fmt.Sprintf("no free %s for the requested interval", resourceType))
}
