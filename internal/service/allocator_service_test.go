package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
)

type overlapCounterStub struct {
	busy map[string]int
}

func (s *overlapCounterStub) OverlappingResourceBookings(_ context.Context, _ sqlx.ExtContext, resourceID string, _, _ time.Time) (int, error) {
	return s.busy[resourceID], nil
}

func newAllocatorFixture(rooms []models.Resource, busy map[string]int) *AllocatorService {
	return NewAllocatorService(
		&resourceCatalogStub{byType: map[models.ResourceType][]models.Resource{models.ResourceTypeRoom: rooms}},
		&overlapCounterStub{busy: busy},
		zap.NewNop(),
	)
}

func TestAllocatorPicksFirstFreeCandidate(t *testing.T) {
	rooms := []models.Resource{
		{ID: "room-1", Type: models.ResourceTypeRoom, Active: true},
		{ID: "room-2", Type: models.ResourceTypeRoom, Active: true},
	}
	svc := newAllocatorFixture(rooms, map[string]int{"room-1": 1})

	res, err := svc.FindAvailable(context.Background(), models.ResourceTypeRoom, nil, mondayAt(9, 0), mondayAt(10, 0))
	require.NoError(t, err)
	assert.Equal(t, "room-2", res.ID)
}

func TestAllocatorDeterministicOrder(t *testing.T) {
	rooms := []models.Resource{
		{ID: "room-1", Type: models.ResourceTypeRoom, Active: true},
		{ID: "room-2", Type: models.ResourceTypeRoom, Active: true},
	}
	svc := newAllocatorFixture(rooms, nil)

	res, err := svc.FindAvailable(context.Background(), models.ResourceTypeRoom, nil, mondayAt(9, 0), mondayAt(10, 0))
	require.NoError(t, err)
	assert.Equal(t, "room-1", res.ID)
}

func TestAllocatorExhausted(t *testing.T) {
	rooms := []models.Resource{
		{ID: "room-1", Type: models.ResourceTypeRoom, Active: true},
	}
	svc := newAllocatorFixture(rooms, map[string]int{"room-1": 2})

	_, err := svc.FindAvailable(context.Background(), models.ResourceTypeRoom, nil, mondayAt(9, 0), mondayAt(10, 0))
	require.Error(t, err)

	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrResourceExhausted.Code, typed.Code)
	// Callers surface this message, so it has to say which type ran out.
	assert.Contains(t, typed.Message, "room")
}

func TestAllocatorNoCandidatesConfigured(t *testing.T) {
	svc := newAllocatorFixture(nil, nil)

	_, err := svc.FindAvailable(context.Background(), models.ResourceTypeRoom, nil, mondayAt(9, 0), mondayAt(10, 0))
	require.Error(t, err)

	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrNotFound.Code, typed.Code)
}
