package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
)

// appointmentStoreStub backs BeginTxx with a sqlmock connection so the
// transaction protocol is real, while the domain methods are plain stubs.
type appointmentStoreStub struct {
	db        *sqlx.DB
	overlaps  int
	appts     map[string]*models.Appointment
	created   []models.Appointment
	bookings  []models.ResourceBooking
	cancelled []string
	nextID    int
}

func (s *appointmentStoreStub) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return s.db.BeginTxx(ctx, opts)
}

func (s *appointmentStoreStub) FindByID(_ context.Context, id string) (*models.Appointment, error) {
	if appt, ok := s.appts[id]; ok {
		copied := *appt
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *appointmentStoreStub) CountOverlapping(_ context.Context, _ sqlx.ExtContext, _ string, _, _ time.Time, _, _ int, _ string) (int, error) {
	return s.overlaps, nil
}

func (s *appointmentStoreStub) CreateWithTx(_ context.Context, _ sqlx.ExtContext, appt *models.Appointment) error {
	s.nextID++
	appt.ID = fmt.Sprintf("appt-%d", s.nextID)
	s.created = append(s.created, *appt)
	return nil
}

func (s *appointmentStoreStub) CreateResourceBookingWithTx(_ context.Context, _ sqlx.ExtContext, booking *models.ResourceBooking) error {
	s.bookings = append(s.bookings, *booking)
	return nil
}

func (s *appointmentStoreStub) ListResourceBookings(_ context.Context, appointmentID string) ([]models.ResourceBooking, error) {
	var out []models.ResourceBooking
	for _, b := range s.bookings {
		if b.AppointmentID == appointmentID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *appointmentStoreStub) UpdateStatus(_ context.Context, id string, status models.AppointmentStatus) error {
	appt, ok := s.appts[id]
	if !ok {
		return sql.ErrNoRows
	}
	appt.Status = status
	return nil
}

func (s *appointmentStoreStub) CancelResourceBookings(_ context.Context, appointmentID string) error {
	s.cancelled = append(s.cancelled, appointmentID)
	return nil
}

func (s *appointmentStoreStub) ListForDay(_ context.Context, _ string, _, _ time.Time) ([]models.Appointment, error) {
	return nil, nil
}

type resourceLockerStub struct {
	resources map[string]models.Resource
	byType    map[models.ResourceType][]models.Resource
	locked    [][]string
}

func (s *resourceLockerStub) FindByID(_ context.Context, id string) (*models.Resource, error) {
	if res, ok := s.resources[id]; ok {
		return &res, nil
	}
	return nil, sql.ErrNoRows
}

func (s *resourceLockerStub) ListActiveByType(_ context.Context, resourceType models.ResourceType, _ *string) ([]models.Resource, error) {
	return s.byType[resourceType], nil
}

func (s *resourceLockerStub) LockByIDs(_ context.Context, _ *sqlx.Tx, ids []string) error {
	s.locked = append(s.locked, ids)
	return nil
}

type waitlistReconcilerStub struct {
	entries map[string]models.WaitlistEntry
	booked  map[string]string
}

func (s *waitlistReconcilerStub) FindMatchWithTx(_ context.Context, _ sqlx.ExtContext, email, _ string) (*models.WaitlistEntry, error) {
	if entry, ok := s.entries[email]; ok {
		return &entry, nil
	}
	return nil, sql.ErrNoRows
}

func (s *waitlistReconcilerStub) MarkBookedWithTx(_ context.Context, _ sqlx.ExtContext, id, appointmentID string) error {
	if s.booked == nil {
		s.booked = map[string]string{}
	}
	s.booked[id] = appointmentID
	return nil
}

type slotCheckerStub struct {
	unavailable map[time.Time]string
}

func (s *slotCheckerStub) CheckSlot(_ context.Context, _ string, start time.Time, _, _, _ time.Duration) (SlotCheck, error) {
	if reason, ok := s.unavailable[start.UTC()]; ok {
		return SlotCheck{Available: false, Reason: reason}, nil
	}
	return SlotCheck{Available: true}, nil
}

// allocatorStub hands out one fixed instance per resource type and records
// the allocation order.
type allocatorStub struct {
	byType map[models.ResourceType]*models.Resource
	errs   map[models.ResourceType]error
	calls  []models.ResourceType
}

func (s *allocatorStub) FindAvailableWithTx(_ context.Context, _ sqlx.ExtContext, resourceType models.ResourceType, _ *string, _, _ time.Time) (*models.Resource, error) {
	s.calls = append(s.calls, resourceType)
	if err, ok := s.errs[resourceType]; ok {
		return nil, err
	}
	if res, ok := s.byType[resourceType]; ok {
		return res, nil
	}
	return nil, appErrors.Clone(appErrors.ErrResourceExhausted, fmt.Sprintf("no free %s for the requested interval", resourceType))
}

type offererStub struct {
	offered []string
}

func (s *offererStub) OfferNext(_ context.Context, appointmentTypeID string) error {
	s.offered = append(s.offered, appointmentTypeID)
	return nil
}

type bookingMetricsStub struct {
	created, conflicts, cancelled int
}

func (s *bookingMetricsStub) BookingCreated()   { s.created++ }
func (s *bookingMetricsStub) BookingConflict()  { s.conflicts++ }
func (s *bookingMetricsStub) BookingCancelled() { s.cancelled++ }

type bookingFixture struct {
	svc       *BookingService
	store     *appointmentStoreStub
	locker    *resourceLockerStub
	waitlist  *waitlistReconcilerStub
	checker   *slotCheckerStub
	allocator *allocatorStub
	offerer   *offererStub
	metrics   *bookingMetricsStub
	mock      sqlmock.Sqlmock
	cleanup   func()
}

func newBookingFixture(t *testing.T, types map[string]models.AppointmentType) *bookingFixture {
	t.Helper()
	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(rawDB, "sqlmock")

	f := &bookingFixture{
		store: &appointmentStoreStub{db: db, appts: map[string]*models.Appointment{}},
		locker: &resourceLockerStub{
			resources: map[string]models.Resource{
				"res-1": {ID: "res-1", Type: models.ResourceTypeStaff, Timezone: "UTC", Active: true},
			},
			byType: map[models.ResourceType][]models.Resource{
				models.ResourceTypeRoom: {
					{ID: "room-1", Type: models.ResourceTypeRoom, Active: true},
					{ID: "room-2", Type: models.ResourceTypeRoom, Active: true},
				},
				models.ResourceTypeEquipment: {
					{ID: "cam-1", Type: models.ResourceTypeEquipment, Active: true},
				},
			},
		},
		waitlist: &waitlistReconcilerStub{entries: map[string]models.WaitlistEntry{}},
		checker:  &slotCheckerStub{unavailable: map[time.Time]string{}},
		allocator: &allocatorStub{byType: map[models.ResourceType]*models.Resource{
			models.ResourceTypeRoom:      {ID: "room-1", Type: models.ResourceTypeRoom},
			models.ResourceTypeEquipment: {ID: "cam-1", Type: models.ResourceTypeEquipment},
		}},
		offerer:   &offererStub{},
		metrics:   &bookingMetricsStub{},
		mock:      mock,
		cleanup:   func() { db.Close() },
	}
	f.svc = NewBookingService(
		f.store,
		f.locker,
		f.waitlist,
		f.checker,
		f.allocator,
		&typeLookupStub{types: types},
		&offeringLookupStub{offerings: map[string]models.ServiceOffering{
			"svc-1": {ID: "svc-1", Name: "Estimate", DurationMinutes: 45, Active: true},
		}},
		&settingsStub{},
		f.offerer,
		f.metrics,
		SlotDefaults{StepMinutes: 30, DurationMinutes: 60},
		nil,
		zap.NewNop(),
	)
	return f
}

func consultType() map[string]models.AppointmentType {
	return map[string]models.AppointmentType{
		"type-1": {ID: "type-1", Name: "Consult", DurationMinutes: 60, BufferBeforeMinutes: 15, BufferAfterMinutes: 15, Active: true},
	}
}

func bookingRequest() CreateAppointmentRequest {
	typeID := "type-1"
	return CreateAppointmentRequest{
		ResourceID:        "res-1",
		AppointmentTypeID: &typeID,
		CustomerName:      "Grace",
		CustomerEmail:     "grace@example.com",
		StartAt:           time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestBookSingleAppointment(t *testing.T) {
	f := newBookingFixture(t, consultType())
	defer f.cleanup()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.svc.Book(context.Background(), bookingRequest())
	require.NoError(t, err)
	require.Len(t, result.Appointments, 1)

	appt := result.Appointments[0]
	assert.Equal(t, models.AppointmentConfirmed, appt.Status)
	assert.Equal(t, 60, appt.DurationMinutes)
	assert.Equal(t, appt.StartAt.Add(time.Hour), appt.EndAt)
	assert.Equal(t, 1, f.metrics.created)
	require.Len(t, f.locker.locked, 1)
	assert.Contains(t, f.locker.locked[0], "res-1")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookCommitTimeConflictRollsBack(t *testing.T) {
	f := newBookingFixture(t, consultType())
	defer f.cleanup()
	f.store.overlaps = 1
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.Book(context.Background(), bookingRequest())
	require.Error(t, err)

	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrSlotUnavailable.Code, typed.Code)
	assert.Empty(t, f.store.created)
	assert.Equal(t, 1, f.metrics.conflicts)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookDisplayCheckCarriesReason(t *testing.T) {
	f := newBookingFixture(t, consultType())
	defer f.cleanup()
	req := bookingRequest()
	f.checker.unavailable[req.StartAt] = ReasonOutsideHours

	_, err := f.svc.Book(context.Background(), req)
	require.Error(t, err)

	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, ReasonOutsideHours, typed.Message)
	// No transaction is opened for a slot that fails the display check.
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookSettlesWaitlistEntryInTransaction(t *testing.T) {
	f := newBookingFixture(t, consultType())
	defer f.cleanup()
	f.waitlist.entries["grace@example.com"] = models.WaitlistEntry{
		ID: "entry-1", AppointmentTypeID: "type-1", Status: models.WaitlistOffered,
	}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.svc.Book(context.Background(), bookingRequest())
	require.NoError(t, err)
	assert.Equal(t, result.Appointments[0].ID, f.waitlist.booked["entry-1"])
}

func TestBookAllocatesSharedResource(t *testing.T) {
	roomType := models.ResourceTypeRoom
	types := consultType()
	apptType := types["type-1"]
	apptType.RequiredResourceType = &roomType
	types["type-1"] = apptType

	f := newBookingFixture(t, types)
	defer f.cleanup()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.svc.Book(context.Background(), bookingRequest())
	require.NoError(t, err)

	// Staff plus every candidate room is locked before allocation.
	require.Len(t, f.locker.locked, 1)
	assert.ElementsMatch(t, []string{"res-1", "room-1", "room-2"}, f.locker.locked[0])
	require.Len(t, f.store.bookings, 1)
	assert.Equal(t, "room-1", f.store.bookings[0].ResourceID)
	assert.Equal(t, result.Appointments[0].ID, f.store.bookings[0].AppointmentID)
}

func TestBookSharedResourceExhausted(t *testing.T) {
	roomType := models.ResourceTypeRoom
	types := consultType()
	apptType := types["type-1"]
	apptType.RequiredResourceType = &roomType
	types["type-1"] = apptType

	f := newBookingFixture(t, types)
	defer f.cleanup()
	f.allocator.errs = map[models.ResourceType]error{
		models.ResourceTypeRoom: appErrors.Clone(appErrors.ErrResourceExhausted, "no free room for the requested interval"),
	}
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.Book(context.Background(), bookingRequest())
	require.Error(t, err)

	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrResourceExhausted.Code, typed.Code)
	assert.Contains(t, typed.Message, "room")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookWithResourceRequirementsList(t *testing.T) {
	f := newBookingFixture(t, consultType())
	defer f.cleanup()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	req := bookingRequest()
	req.ResourceRequirements = []models.ResourceType{models.ResourceTypeRoom, models.ResourceTypeEquipment}

	result, err := f.svc.Book(context.Background(), req)
	require.NoError(t, err)

	// The staff resource and both candidate pools are locked up front.
	require.Len(t, f.locker.locked, 1)
	assert.ElementsMatch(t, []string{"res-1", "room-1", "room-2", "cam-1"}, f.locker.locked[0])

	// One reservation lands per requested type, all on the same appointment.
	require.Len(t, f.store.bookings, 2)
	reserved := []string{f.store.bookings[0].ResourceID, f.store.bookings[1].ResourceID}
	assert.ElementsMatch(t, []string{"room-1", "cam-1"}, reserved)
	for _, booking := range f.store.bookings {
		assert.Equal(t, result.Appointments[0].ID, booking.AppointmentID)
	}
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookRequirementsMergeWithTypeRequirement(t *testing.T) {
	roomType := models.ResourceTypeRoom
	types := consultType()
	apptType := types["type-1"]
	apptType.RequiredResourceType = &roomType
	types["type-1"] = apptType

	f := newBookingFixture(t, types)
	defer f.cleanup()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	// The type already requires a room; asking for one again must not reserve
	// it twice.
	req := bookingRequest()
	req.ResourceRequirements = []models.ResourceType{models.ResourceTypeRoom, models.ResourceTypeEquipment}

	_, err := f.svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []models.ResourceType{models.ResourceTypeRoom, models.ResourceTypeEquipment}, f.allocator.calls)
	require.Len(t, f.store.bookings, 2)
}

func TestBookMissingRequirementRollsBackNamingType(t *testing.T) {
	f := newBookingFixture(t, consultType())
	defer f.cleanup()
	f.allocator.errs = map[models.ResourceType]error{
		models.ResourceTypeEquipment: appErrors.Clone(appErrors.ErrResourceExhausted, "no free equipment for the requested interval"),
	}
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	req := bookingRequest()
	req.ResourceRequirements = []models.ResourceType{models.ResourceTypeRoom, models.ResourceTypeEquipment}

	// The room allocates but the whole booking still rolls back when the
	// equipment pool is empty.
	_, err := f.svc.Book(context.Background(), req)
	require.Error(t, err)

	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrResourceExhausted.Code, typed.Code)
	assert.Contains(t, typed.Message, "equipment")
	assert.Equal(t, 1, f.metrics.conflicts)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookRejectsUnknownRequirementType(t *testing.T) {
	f := newBookingFixture(t, consultType())
	defer f.cleanup()
	req := bookingRequest()
	req.ResourceRequirements = []models.ResourceType{models.ResourceType("projector")}

	_, err := f.svc.Book(context.Background(), req)
	require.Error(t, err)

	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrValidation.Code, typed.Code)
}

func TestBookWeeklyRecurrence(t *testing.T) {
	f := newBookingFixture(t, consultType())
	defer f.cleanup()
	for i := 0; i < 4; i++ {
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()
	}

	req := bookingRequest()
	req.Recurrence = &RecurrenceRequest{Type: models.RecurrenceWeekly, Count: 4}

	result, err := f.svc.Book(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Appointments, 4)
	assert.Empty(t, result.Skipped)

	wants := []time.Time{
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 22, 9, 0, 0, 0, time.UTC),
	}
	for i, want := range wants {
		assert.Equal(t, want, result.Appointments[i].StartAt)
	}

	// Later occurrences link back to the chain anchor.
	first := result.Appointments[0]
	assert.False(t, first.IsRecurring)
	for _, appt := range result.Appointments[1:] {
		assert.True(t, appt.IsRecurring)
		require.NotNil(t, appt.RecurringParentID)
		assert.Equal(t, first.ID, *appt.RecurringParentID)
	}
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookRecurrenceSkipsConflictingOccurrences(t *testing.T) {
	f := newBookingFixture(t, consultType())
	defer f.cleanup()
	// Occurrence two collides; one and three commit.
	f.checker.unavailable[time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)] = ReasonConflict
	for i := 0; i < 2; i++ {
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()
	}

	req := bookingRequest()
	req.Recurrence = &RecurrenceRequest{Type: models.RecurrenceWeekly, Count: 3}

	result, err := f.svc.Book(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Appointments, 2)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC), result.Skipped[0].StartAt)
	assert.Equal(t, ReasonConflict, result.Skipped[0].Reason)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestGenerateRecurringWeeklyDrafts(t *testing.T) {
	f := newBookingFixture(t, nil)
	defer f.cleanup()
	typeID := "type-1"
	f.store.appts["appt-1"] = &models.Appointment{
		ID:                "appt-1",
		ResourceID:        "res-1",
		AppointmentTypeID: &typeID,
		CustomerName:      "Grace",
		CustomerEmail:     "grace@example.com",
		StartAt:           time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		EndAt:             time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		DurationMinutes:   60,
		Status:            models.AppointmentConfirmed,
	}

	drafts, err := f.svc.GenerateRecurring(context.Background(), "appt-1", models.RecurrenceWeekly, 3)
	require.NoError(t, err)
	require.Len(t, drafts, 3)

	wants := []time.Time{
		time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 22, 9, 0, 0, 0, time.UTC),
	}
	for i, want := range wants {
		assert.Equal(t, want, drafts[i].StartAt)
		assert.Equal(t, want.Add(time.Hour), drafts[i].EndAt)
		assert.True(t, drafts[i].IsRecurring)
		require.NotNil(t, drafts[i].RecurringParentID)
		assert.Equal(t, "appt-1", *drafts[i].RecurringParentID)
		assert.Empty(t, drafts[i].ID)
	}
	// Drafts are not persisted.
	assert.Empty(t, f.store.created)
}

func TestGenerateRecurringMonthlyUsesThirtyDayStep(t *testing.T) {
	f := newBookingFixture(t, nil)
	defer f.cleanup()
	f.store.appts["appt-1"] = &models.Appointment{
		ID:              "appt-1",
		ResourceID:      "res-1",
		StartAt:         time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		EndAt:           time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Status:          models.AppointmentConfirmed,
	}

	drafts, err := f.svc.GenerateRecurring(context.Background(), "appt-1", models.RecurrenceMonthly, 1)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC), drafts[0].StartAt)
}

func TestGenerateRecurringInvalidType(t *testing.T) {
	f := newBookingFixture(t, nil)
	defer f.cleanup()

	_, err := f.svc.GenerateRecurring(context.Background(), "appt-1", models.RecurrenceType("daily"), 3)
	require.Error(t, err)

	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrValidation.Code, typed.Code)
}

func TestBookRejectsBothCatalogModels(t *testing.T) {
	f := newBookingFixture(t, consultType())
	defer f.cleanup()
	req := bookingRequest()
	serviceID := "svc-1"
	req.ServiceID = &serviceID

	_, err := f.svc.Book(context.Background(), req)
	require.Error(t, err)

	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrValidation.Code, typed.Code)
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	f := newBookingFixture(t, nil)
	defer f.cleanup()
	f.store.appts["appt-1"] = &models.Appointment{ID: "appt-1", Status: models.AppointmentCompleted}

	_, err := f.svc.UpdateStatus(context.Background(), "appt-1", models.AppointmentConfirmed)
	require.Error(t, err)

	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrConflict.Status, typed.Status)
}

func TestUpdateStatusConfirmedToCompleted(t *testing.T) {
	f := newBookingFixture(t, nil)
	defer f.cleanup()
	f.store.appts["appt-1"] = &models.Appointment{ID: "appt-1", Status: models.AppointmentConfirmed}

	appt, err := f.svc.UpdateStatus(context.Background(), "appt-1", models.AppointmentCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCompleted, appt.Status)
}

func TestCancelReleasesAndOffersToWaitlist(t *testing.T) {
	f := newBookingFixture(t, consultType())
	defer f.cleanup()
	typeID := "type-1"
	f.store.appts["appt-1"] = &models.Appointment{
		ID: "appt-1", Status: models.AppointmentConfirmed, AppointmentTypeID: &typeID,
	}

	appt, err := f.svc.Cancel(context.Background(), "appt-1")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCancelled, appt.Status)
	assert.Equal(t, []string{"appt-1"}, f.store.cancelled)
	assert.Equal(t, []string{"type-1"}, f.offerer.offered)
	assert.Equal(t, 1, f.metrics.cancelled)
}

func TestCancelAlreadyCancelled(t *testing.T) {
	f := newBookingFixture(t, nil)
	defer f.cleanup()
	f.store.appts["appt-1"] = &models.Appointment{ID: "appt-1", Status: models.AppointmentCancelled}

	_, err := f.svc.Cancel(context.Background(), "appt-1")
	require.Error(t, err)

	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrConflict.Status, typed.Status)
}
