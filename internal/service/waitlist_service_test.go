package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
	"github.com/versoindustries/verso-backend-sub001/internal/notify"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
)

type offerCall struct {
	id        string
	slotStart *time.Time
	expiresAt time.Time
}

type waitlistRepoStub struct {
	entries        map[string]models.WaitlistEntry
	queue          []models.WaitlistEntry
	expired        int64
	offers         []offerCall
	markOfferedErr error
	deleted        []string
}

func (s *waitlistRepoStub) FindByID(_ context.Context, id string) (*models.WaitlistEntry, error) {
	if entry, ok := s.entries[id]; ok {
		return &entry, nil
	}
	return nil, sql.ErrNoRows
}

func (s *waitlistRepoStub) ListByType(_ context.Context, _ string) ([]models.WaitlistEntry, error) {
	var all []models.WaitlistEntry
	for _, entry := range s.entries {
		all = append(all, entry)
	}
	return all, nil
}

func (s *waitlistRepoStub) Create(_ context.Context, entry *models.WaitlistEntry) error {
	entry.ID = "entry-new"
	return nil
}

func (s *waitlistRepoStub) ExpireOffers(_ context.Context, _ string, _ time.Time) (int64, error) {
	return s.expired, nil
}

func (s *waitlistRepoStub) NextWaiting(_ context.Context, _ string) (*models.WaitlistEntry, error) {
	if len(s.queue) == 0 {
		return nil, sql.ErrNoRows
	}
	entry := s.queue[0]
	s.queue = s.queue[1:]
	return &entry, nil
}

func (s *waitlistRepoStub) MarkOffered(_ context.Context, id string, slotStart *time.Time, expiresAt time.Time) error {
	if s.markOfferedErr != nil {
		return s.markOfferedErr
	}
	s.offers = append(s.offers, offerCall{id: id, slotStart: slotStart, expiresAt: expiresAt})
	return nil
}

func (s *waitlistRepoStub) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type notifierStub struct {
	messages []notify.Message
}

func (s *notifierStub) Notify(_ context.Context, msg notify.Message) error {
	s.messages = append(s.messages, msg)
	return nil
}

type waitlistMetricsStub struct {
	offersMade, offersExpired int
}

func (s *waitlistMetricsStub) WaitlistOfferMade()    { s.offersMade++ }
func (s *waitlistMetricsStub) WaitlistOfferExpired() { s.offersExpired++ }

var waitlistNow = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

func newWaitlistFixture(repo *waitlistRepoStub, settings map[string]int) (*WaitlistService, *notifierStub, *waitlistMetricsStub) {
	notifier := &notifierStub{}
	metrics := &waitlistMetricsStub{}
	types := &typeLookupStub{types: map[string]models.AppointmentType{
		"type-1": {ID: "type-1", Name: "Consult", DurationMinutes: 60, Active: true},
		"type-2": {ID: "type-2", Name: "Retired", DurationMinutes: 30, Active: false},
	}}
	svc := NewWaitlistService(repo, types, &settingsStub{ints: settings}, notifier, metrics, 2*time.Hour, nil, zap.NewNop())
	svc.now = func() time.Time { return waitlistNow }
	return svc, notifier, metrics
}

func TestOfferNextPromotesTopEntry(t *testing.T) {
	repo := &waitlistRepoStub{queue: []models.WaitlistEntry{
		{ID: "entry-1", AppointmentTypeID: "type-1", CustomerEmail: "grace@example.com", Priority: 10, Status: models.WaitlistWaiting},
	}}
	svc, notifier, metrics := newWaitlistFixture(repo, nil)

	require.NoError(t, svc.OfferNext(context.Background(), "type-1"))

	require.Len(t, repo.offers, 1)
	assert.Equal(t, "entry-1", repo.offers[0].id)
	assert.Equal(t, waitlistNow.Add(2*time.Hour), repo.offers[0].expiresAt)
	assert.Equal(t, 1, metrics.offersMade)

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, notify.KindWaitlistOffer, notifier.messages[0].Kind)
	assert.Equal(t, "grace@example.com", notifier.messages[0].Recipient)
}

func TestOfferNextEmptyWaitlistIsNoop(t *testing.T) {
	repo := &waitlistRepoStub{}
	svc, notifier, metrics := newWaitlistFixture(repo, nil)

	require.NoError(t, svc.OfferNext(context.Background(), "type-1"))
	assert.Empty(t, repo.offers)
	assert.Empty(t, notifier.messages)
	assert.Zero(t, metrics.offersMade)
}

func TestOfferNextToleratesLostRace(t *testing.T) {
	// Another worker transitioned the entry between select and update.
	repo := &waitlistRepoStub{
		queue:          []models.WaitlistEntry{{ID: "entry-1", AppointmentTypeID: "type-1", Status: models.WaitlistWaiting}},
		markOfferedErr: sql.ErrNoRows,
	}
	svc, notifier, metrics := newWaitlistFixture(repo, nil)

	require.NoError(t, svc.OfferNext(context.Background(), "type-1"))
	assert.Empty(t, notifier.messages)
	assert.Zero(t, metrics.offersMade)
}

func TestOfferLifetimeFromSettings(t *testing.T) {
	repo := &waitlistRepoStub{queue: []models.WaitlistEntry{
		{ID: "entry-1", AppointmentTypeID: "type-1", Status: models.WaitlistWaiting},
	}}
	svc, _, _ := newWaitlistFixture(repo, map[string]int{models.SettingWaitlistOfferTTL: 30})

	require.NoError(t, svc.OfferNext(context.Background(), "type-1"))
	require.Len(t, repo.offers, 1)
	assert.Equal(t, waitlistNow.Add(30*time.Minute), repo.offers[0].expiresAt)
}

func TestOfferSlotCarriesStart(t *testing.T) {
	repo := &waitlistRepoStub{queue: []models.WaitlistEntry{
		{ID: "entry-1", AppointmentTypeID: "type-1", CustomerEmail: "grace@example.com", Status: models.WaitlistWaiting},
	}}
	svc, notifier, _ := newWaitlistFixture(repo, nil)

	slotStart := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	require.NoError(t, svc.OfferSlot(context.Background(), "type-1", slotStart))

	require.Len(t, repo.offers, 1)
	require.NotNil(t, repo.offers[0].slotStart)
	assert.Equal(t, slotStart, *repo.offers[0].slotStart)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0].Body, "2024-03-05T09:00:00Z")
}

func TestProcessExpiresThenReoffers(t *testing.T) {
	repo := &waitlistRepoStub{
		expired: 2,
		queue: []models.WaitlistEntry{
			{ID: "entry-3", AppointmentTypeID: "type-1", Status: models.WaitlistWaiting},
			{ID: "entry-4", AppointmentTypeID: "type-1", Status: models.WaitlistWaiting},
		},
	}
	svc, _, metrics := newWaitlistFixture(repo, nil)

	require.NoError(t, svc.Process(context.Background(), "type-1"))
	assert.Equal(t, 2, metrics.offersExpired)
	// Each expired offer frees capacity for one fresh offer.
	require.Len(t, repo.offers, 2)
	assert.Equal(t, "entry-3", repo.offers[0].id)
	assert.Equal(t, "entry-4", repo.offers[1].id)
}

func TestProcessNothingExpired(t *testing.T) {
	repo := &waitlistRepoStub{queue: []models.WaitlistEntry{
		{ID: "entry-1", AppointmentTypeID: "type-1", Status: models.WaitlistWaiting},
	}}
	svc, _, metrics := newWaitlistFixture(repo, nil)

	require.NoError(t, svc.Process(context.Background(), "type-1"))
	assert.Empty(t, repo.offers)
	assert.Zero(t, metrics.offersExpired)
}

func TestJoinCreatesWaitingEntry(t *testing.T) {
	repo := &waitlistRepoStub{}
	svc, _, _ := newWaitlistFixture(repo, nil)

	entry, err := svc.Join(context.Background(), JoinWaitlistRequest{
		AppointmentTypeID: "type-1",
		CustomerName:      "Grace",
		CustomerEmail:     "grace@example.com",
		Priority:          5,
	})
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistWaiting, entry.Status)
	assert.Equal(t, 5, entry.Priority)
	assert.NotEmpty(t, entry.ID)
}

func TestJoinUnknownType(t *testing.T) {
	svc, _, _ := newWaitlistFixture(&waitlistRepoStub{}, nil)

	_, err := svc.Join(context.Background(), JoinWaitlistRequest{
		AppointmentTypeID: "missing",
		CustomerName:      "Grace",
		CustomerEmail:     "grace@example.com",
	})
	require.Error(t, err)

	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrNotFound.Code, typed.Code)
}

func TestJoinInactiveType(t *testing.T) {
	svc, _, _ := newWaitlistFixture(&waitlistRepoStub{}, nil)

	_, err := svc.Join(context.Background(), JoinWaitlistRequest{
		AppointmentTypeID: "type-2",
		CustomerName:      "Grace",
		CustomerEmail:     "grace@example.com",
	})
	require.Error(t, err)

	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrValidation.Code, typed.Code)
}

func TestLeaveRemovesEntry(t *testing.T) {
	repo := &waitlistRepoStub{entries: map[string]models.WaitlistEntry{
		"entry-1": {ID: "entry-1", AppointmentTypeID: "type-1"},
	}}
	svc, _, _ := newWaitlistFixture(repo, nil)

	require.NoError(t, svc.Leave(context.Background(), "entry-1"))
	assert.Equal(t, []string{"entry-1"}, repo.deleted)

	err := svc.Leave(context.Background(), "missing")
	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrNotFound.Code, typed.Code)
}
