package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
)

type appointmentStore interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	CountOverlapping(ctx context.Context, exec sqlx.ExtContext, resourceID string, start, end time.Time, beforeMins, afterMins int, excludeID string) (int, error)
	CreateWithTx(ctx context.Context, exec sqlx.ExtContext, appt *models.Appointment) error
	CreateResourceBookingWithTx(ctx context.Context, exec sqlx.ExtContext, booking *models.ResourceBooking) error
	ListResourceBookings(ctx context.Context, appointmentID string) ([]models.ResourceBooking, error)
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error
	CancelResourceBookings(ctx context.Context, appointmentID string) error
	ListForDay(ctx context.Context, resourceID string, dayStart, dayEnd time.Time) ([]models.Appointment, error)
}

type resourceLocker interface {
	FindByID(ctx context.Context, id string) (*models.Resource, error)
	ListActiveByType(ctx context.Context, resourceType models.ResourceType, locationID *string) ([]models.Resource, error)
	LockByIDs(ctx context.Context, tx *sqlx.Tx, ids []string) error
}

type waitlistReconciler interface {
	FindMatchWithTx(ctx context.Context, exec sqlx.ExtContext, email, appointmentTypeID string) (*models.WaitlistEntry, error)
	MarkBookedWithTx(ctx context.Context, exec sqlx.ExtContext, id, appointmentID string) error
}

type slotChecker interface {
	CheckSlot(ctx context.Context, resourceID string, start time.Time, duration, before, after time.Duration) (SlotCheck, error)
}

type resourceAllocator interface {
	FindAvailableWithTx(ctx context.Context, exec sqlx.ExtContext, resourceType models.ResourceType, locationID *string, start, end time.Time) (*models.Resource, error)
}

type waitlistOfferer interface {
	OfferNext(ctx context.Context, appointmentTypeID string) error
}

type bookingMetrics interface {
	BookingCreated()
	BookingConflict()
	BookingCancelled()
}

// RecurrenceRequest asks for a chain of appointments at a fixed cadence.
// Count includes the first occurrence.
type RecurrenceRequest struct {
	Type  models.RecurrenceType `json:"type" validate:"required"`
	Count int                   `json:"count" validate:"min=2,max=52"`
}

// CreateAppointmentRequest is the booking payload for both catalog models.
// Exactly one of AppointmentTypeID and ServiceID may be set; with neither the
// default duration from business settings applies. ResourceRequirements lists
// shared resource types the booking must reserve alongside the staff
// resource; the appointment type's own required type is added to the list
// when not already present.
type CreateAppointmentRequest struct {
	ResourceID           string                `json:"resource_id" validate:"required"`
	AppointmentTypeID    *string               `json:"appointment_type_id,omitempty"`
	ServiceID            *string               `json:"service_id,omitempty"`
	CustomerName         string                `json:"customer_name" validate:"required"`
	CustomerEmail        string                `json:"customer_email" validate:"required,email"`
	StartAt              time.Time             `json:"start_at" validate:"required"`
	Notes                string                `json:"notes"`
	ResourceRequirements []models.ResourceType `json:"resource_requirements,omitempty" validate:"omitempty,dive,oneof=room equipment vehicle"`
	Recurrence           *RecurrenceRequest    `json:"recurrence,omitempty"`
}

// SkippedOccurrence records a recurring occurrence that could not be booked.
type SkippedOccurrence struct {
	StartAt time.Time `json:"start_at"`
	Reason  string    `json:"reason"`
}

// RecurringResult reports a recurring booking: the occurrences that landed
// and the ones skipped over conflicts.
type RecurringResult struct {
	Appointments []models.Appointment `json:"appointments"`
	Skipped      []SkippedOccurrence  `json:"skipped"`
}

// bookingParams is a resolved booking: catalog lookups done, duration
// snapshotted, buffers fixed.
type bookingParams struct {
	duration time.Duration
	before   time.Duration
	after    time.Duration
	apptType *models.AppointmentType
}

// BookingService is the atomic booking transactor. All writes for one booking
// happen in a single database transaction under resource row locks, with a
// commit-time overlap re-check, so two clients racing for the same slot
// produce exactly one appointment.
type BookingService struct {
	appointments appointmentStore
	resources    resourceLocker
	waitlist     waitlistReconciler
	slots        slotChecker
	allocator    resourceAllocator
	types        appointmentTypeLookup
	offerings    offeringLookup
	settings     schedulingSettings
	offerer      waitlistOfferer
	metrics      bookingMetrics
	defaults     SlotDefaults
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewBookingService instantiates BookingService. offerer and metrics may be
// nil.
func NewBookingService(
	appointments appointmentStore,
	resources resourceLocker,
	waitlist waitlistReconciler,
	slots slotChecker,
	allocator resourceAllocator,
	types appointmentTypeLookup,
	offerings offeringLookup,
	settings schedulingSettings,
	offerer waitlistOfferer,
	metrics bookingMetrics,
	defaults SlotDefaults,
	validate *validator.Validate,
	logger *zap.Logger,
) *BookingService {
	if defaults.DurationMinutes <= 0 {
		defaults.DurationMinutes = 60
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		appointments: appointments,
		resources:    resources,
		waitlist:     waitlist,
		slots:        slots,
		allocator:    allocator,
		types:        types,
		offerings:    offerings,
		settings:     settings,
		offerer:      offerer,
		metrics:      metrics,
		defaults:     defaults,
		validator:    validate,
		logger:       logger,
	}
}

// resolveParams snapshots duration and buffers for the request: appointment
// type first, then service offering, then the business-settings default with
// a symmetric buffer.
func (s *BookingService) resolveParams(ctx context.Context, req CreateAppointmentRequest) (bookingParams, error) {
	if req.AppointmentTypeID != nil && req.ServiceID != nil {
		return bookingParams{}, appErrors.Clone(appErrors.ErrValidation, "appointment type and service offering are mutually exclusive")
	}

	if req.AppointmentTypeID != nil {
		apptType, err := s.types.FindByID(ctx, *req.AppointmentTypeID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return bookingParams{}, appErrors.Clone(appErrors.ErrNotFound, "unknown appointment type")
			}
			return bookingParams{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment type")
		}
		if !apptType.Active {
			return bookingParams{}, appErrors.Clone(appErrors.ErrValidation, "appointment type is inactive")
		}
		return bookingParams{
			duration: time.Duration(apptType.DurationMinutes) * time.Minute,
			before:   time.Duration(apptType.BufferBeforeMinutes) * time.Minute,
			after:    time.Duration(apptType.BufferAfterMinutes) * time.Minute,
			apptType: apptType,
		}, nil
	}

	buffer := time.Duration(s.settings.Int(ctx, models.SettingBufferMinutes, s.defaults.BufferMinutes)) * time.Minute
	if buffer < 0 {
		buffer = 0
	}

	if req.ServiceID != nil {
		offering, err := s.offerings.FindByID(ctx, *req.ServiceID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return bookingParams{}, appErrors.Clone(appErrors.ErrNotFound, "unknown service offering")
			}
			return bookingParams{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service offering")
		}
		if !offering.Active {
			return bookingParams{}, appErrors.Clone(appErrors.ErrValidation, "service offering is inactive")
		}
		return bookingParams{
			duration: time.Duration(offering.DurationMinutes) * time.Minute,
			before:   buffer,
			after:    buffer,
		}, nil
	}

	durationMin := s.settings.Int(ctx, models.SettingDefaultDurationMin, s.defaults.DurationMinutes)
	return bookingParams{
		duration: time.Duration(durationMin) * time.Minute,
		before:   buffer,
		after:    buffer,
	}, nil
}

// Book creates a single appointment, or a recurring chain when the request
// carries a recurrence.
func (s *BookingService) Book(ctx context.Context, req CreateAppointmentRequest) (*RecurringResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	if req.Recurrence != nil {
		if !req.Recurrence.Type.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported recurrence type")
		}
		if err := s.validator.Struct(req.Recurrence); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurrence payload")
		}
	}

	params, err := s.resolveParams(ctx, req)
	if err != nil {
		return nil, err
	}

	first, err := s.bookOne(ctx, req, params, false, nil)
	if err != nil {
		return nil, err
	}
	result := &RecurringResult{Appointments: []models.Appointment{*first}}
	if req.Recurrence == nil {
		return result, nil
	}

	// The first occurrence anchors the chain; later occurrences that collide
	// with committed time are skipped, not errors.
	interval := req.Recurrence.Type.Interval()
	for i := 1; i < req.Recurrence.Count; i++ {
		occurrence := req
		occurrence.StartAt = req.StartAt.Add(time.Duration(i) * interval)
		occurrence.Recurrence = nil

		appt, err := s.bookOne(ctx, occurrence, params, true, &first.ID)
		if err != nil {
			var typed *appErrors.Error
			if errors.As(err, &typed) && typed.Status == appErrors.ErrConflict.Status {
				result.Skipped = append(result.Skipped, SkippedOccurrence{StartAt: occurrence.StartAt, Reason: typed.Message})
				continue
			}
			return nil, err
		}
		result.Appointments = append(result.Appointments, *appt)
	}
	return result, nil
}

func (s *BookingService) bookOne(ctx context.Context, req CreateAppointmentRequest, params bookingParams, recurring bool, parentID *string) (*models.Appointment, error) {
	end := req.StartAt.Add(params.duration)

	// Display-time check: cheap rejection with a customer-facing reason. The
	// commit-time re-check below is the one that holds under concurrency.
	check, err := s.slots.CheckSlot(ctx, req.ResourceID, req.StartAt, params.duration, params.before, params.after)
	if err != nil {
		return nil, err
	}
	if !check.Available {
		if s.metrics != nil {
			s.metrics.BookingConflict()
		}
		return nil, appErrors.Clone(appErrors.ErrSlotUnavailable, check.Reason)
	}

	tx, err := s.appointments.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open booking transaction")
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Error("booking rollback failed", zap.Error(rbErr))
			}
		}
	}()

	// The shared resource types this booking must reserve: the explicit
	// requirements from the request plus the appointment type's own
	// requirement when not already listed.
	requirements := append([]models.ResourceType(nil), req.ResourceRequirements...)
	if params.apptType != nil && params.apptType.RequiredResourceType != nil {
		listed := false
		for _, rt := range requirements {
			if rt == *params.apptType.RequiredResourceType {
				listed = true
				break
			}
		}
		if !listed {
			requirements = append(requirements, *params.apptType.RequiredResourceType)
		}
	}
	var location *string
	if params.apptType != nil {
		location = params.apptType.LocationID
	}

	// Lock the staff resource plus every candidate shared resource so
	// concurrent bookings on the same pools serialize. IDs are sorted inside
	// LockByIDs to keep lock order deadlock-free.
	lockIDs := []string{req.ResourceID}
	seen := map[string]struct{}{req.ResourceID: {}}
	for _, rt := range requirements {
		candidates, err := s.resources.ListActiveByType(ctx, rt, location)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shared resources")
		}
		for i := range candidates {
			if _, dup := seen[candidates[i].ID]; dup {
				continue
			}
			seen[candidates[i].ID] = struct{}{}
			lockIDs = append(lockIDs, candidates[i].ID)
		}
	}
	if err := s.resources.LockByIDs(ctx, tx, lockIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock resources")
	}

	// Commit-time re-check under the locks, with the same conflict rule the
	// slot generator uses. A racing transaction that already committed an
	// overlapping booking is visible here.
	overlaps, err := s.appointments.CountOverlapping(ctx, tx, req.ResourceID, req.StartAt, end, int(params.before/time.Minute), int(params.after/time.Minute), "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to re-check slot")
	}
	if overlaps > 0 {
		if s.metrics != nil {
			s.metrics.BookingConflict()
		}
		return nil, appErrors.ErrSlotUnavailable
	}

	appt := &models.Appointment{
		ResourceID:        req.ResourceID,
		AppointmentTypeID: req.AppointmentTypeID,
		ServiceID:         req.ServiceID,
		CustomerName:      req.CustomerName,
		CustomerEmail:     req.CustomerEmail,
		StartAt:           req.StartAt,
		EndAt:             end,
		DurationMinutes:   int(params.duration / time.Minute),
		Status:            models.AppointmentConfirmed,
		Notes:             req.Notes,
		IsRecurring:       recurring,
		RecurringParentID: parentID,
	}
	if err := s.appointments.CreateWithTx(ctx, tx, appt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create appointment")
	}

	// One reservation per required type, all inside this transaction: a
	// single type with no free instance rolls back the whole booking, and the
	// allocator's error names it.
	for _, rt := range requirements {
		shared, err := s.allocator.FindAvailableWithTx(ctx, tx, rt, location, req.StartAt, end)
		if err != nil {
			if s.metrics != nil {
				s.metrics.BookingConflict()
			}
			return nil, err
		}
		booking := &models.ResourceBooking{
			AppointmentID: appt.ID,
			ResourceID:    shared.ID,
			StartAt:       req.StartAt,
			EndAt:         end,
			Status:        models.ResourceBookingConfirmed,
		}
		if err := s.appointments.CreateResourceBookingWithTx(ctx, tx, booking); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reserve shared resource")
		}
	}

	// A booking from a customer who was waiting (or holding an offer) for
	// this type settles their waitlist entry in the same transaction.
	if req.AppointmentTypeID != nil {
		entry, err := s.waitlist.FindMatchWithTx(ctx, tx, req.CustomerEmail, *req.AppointmentTypeID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reconcile waitlist")
		}
		if entry != nil {
			if err := s.waitlist.MarkBookedWithTx(ctx, tx, entry.ID, appt.ID); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to settle waitlist entry")
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit booking")
	}
	committed = true

	if s.metrics != nil {
		s.metrics.BookingCreated()
	}
	s.logger.Info("appointment booked",
		zap.String("appointment_id", appt.ID),
		zap.String("resource_id", appt.ResourceID),
		zap.Time("start_at", appt.StartAt))
	return appt, nil
}

// GenerateRecurring expands a committed appointment into a chain of drafts at
// the requested cadence. count is the number of new occurrences after the
// base. Drafts are not persisted; the caller books or stores them, so a
// conflicting occurrence surfaces when it is actually committed.
func (s *BookingService) GenerateRecurring(ctx context.Context, baseID string, recurrenceType models.RecurrenceType, count int) ([]models.Appointment, error) {
	if !recurrenceType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported recurrence type")
	}
	if count < 1 || count > 52 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "recurrence count must be between 1 and 52")
	}

	base, err := s.appointments.FindByID(ctx, baseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}

	duration := time.Duration(base.DurationMinutes) * time.Minute
	if duration <= 0 {
		duration = base.EndAt.Sub(base.StartAt)
	}

	interval := recurrenceType.Interval()
	drafts := make([]models.Appointment, 0, count)
	for i := 1; i <= count; i++ {
		draft := *base
		draft.ID = ""
		draft.StartAt = base.StartAt.Add(time.Duration(i) * interval)
		draft.EndAt = draft.StartAt.Add(duration)
		draft.Status = models.AppointmentPending
		draft.IsRecurring = true
		parentID := base.ID
		draft.RecurringParentID = &parentID
		draft.CreatedAt = time.Time{}
		draft.UpdatedAt = time.Time{}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// Get loads a single appointment with its resource reservations.
func (s *BookingService) Get(ctx context.Context, id string) (*models.Appointment, []models.ResourceBooking, error) {
	appt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	bookings, err := s.appointments.ListResourceBookings(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource bookings")
	}
	return appt, bookings, nil
}

// ListDay returns committed appointments intersecting the resource's day.
func (s *BookingService) ListDay(ctx context.Context, resourceID string, date time.Time) ([]models.Appointment, error) {
	resource, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown resource")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	dayStart, dayEnd := dayBounds(date, resource.Location())
	appts, err := s.appointments.ListForDay(ctx, resourceID, dayStart, dayEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	return appts, nil
}

var allowedTransitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.AppointmentPending:   {models.AppointmentConfirmed, models.AppointmentCancelled},
	models.AppointmentConfirmed: {models.AppointmentCompleted, models.AppointmentCancelled, models.AppointmentNoShow},
}

func transitionAllowed(from, to models.AppointmentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateStatus transitions an appointment through its lifecycle. Completed,
// cancelled and no_show are terminal.
func (s *BookingService) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	if status == models.AppointmentCancelled {
		return s.Cancel(ctx, id)
	}

	appt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	if !transitionAllowed(appt.Status, status) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "invalid status transition")
	}

	if err := s.appointments.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update appointment status")
	}
	appt.Status = status
	return appt, nil
}

// Cancel releases the appointment's time and its resource reservations, then
// asks the waitlist to offer the freed capacity to the next customer.
func (s *BookingService) Cancel(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	if appt.Status == models.AppointmentCancelled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "appointment is already cancelled")
	}
	if !transitionAllowed(appt.Status, models.AppointmentCancelled) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "invalid status transition")
	}

	if err := s.appointments.UpdateStatus(ctx, id, models.AppointmentCancelled); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel appointment")
	}
	if err := s.appointments.CancelResourceBookings(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release resource bookings")
	}
	appt.Status = models.AppointmentCancelled

	if s.metrics != nil {
		s.metrics.BookingCancelled()
	}

	// The freed slot may satisfy someone waiting; offer failures must not
	// undo the cancellation.
	if s.offerer != nil && appt.AppointmentTypeID != nil {
		if err := s.offerer.OfferNext(ctx, *appt.AppointmentTypeID); err != nil {
			s.logger.Warn("failed to make waitlist offer after cancellation",
				zap.String("appointment_id", id),
				zap.Error(err))
		}
	}
	return appt, nil
}
