package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
	"github.com/versoindustries/verso-backend-sub001/pkg/timerange"
)

// Slot-availability reason strings surfaced to booking clients.
const (
	ReasonDayUnavailable = "not available on this day"
	ReasonOutsideHours   = "outside available hours"
	ReasonConflict       = "conflicts with existing appointment"
)

type slotAvailability interface {
	Resolve(ctx context.Context, resourceID string, date time.Time) ([]timerange.Range, error)
}

type bookedLedger interface {
	BookedRanges(ctx context.Context, resourceID string, dayStart, dayEnd time.Time) ([]timerange.Range, error)
}

type appointmentTypeLookup interface {
	FindByID(ctx context.Context, id string) (*models.AppointmentType, error)
}

type offeringLookup interface {
	FindByID(ctx context.Context, id string) (*models.ServiceOffering, error)
}

type schedulingSettings interface {
	Int(ctx context.Context, key string, fallback int) int
}

type slotAllocator interface {
	FindAvailable(ctx context.Context, resourceType models.ResourceType, locationID *string, start, end time.Time) (*models.Resource, error)
}

// SlotDefaults carries the deployment-level fallbacks used when no business
// setting overrides them.
type SlotDefaults struct {
	StepMinutes     int
	BufferMinutes   int
	DurationMinutes int
}

// SlotCheck is the outcome of asking whether one concrete slot is bookable.
type SlotCheck struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// TypeSlot is a bookable start offered for an appointment type together with
// the staff resources that could take it.
type TypeSlot struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	ResourceIDs []string  `json:"resource_ids"`
}

// SlotService generates bookable slot starts for a resource and date, and
// answers point checks for a single candidate slot. The same walk backs both
// the simple service-offering model (symmetric buffer from business settings)
// and the appointment-type model (per-type asymmetric buffers).
type SlotService struct {
	availability slotAvailability
	ledger       bookedLedger
	resources    resourceCatalog
	resourceByID resourceLookup
	types        appointmentTypeLookup
	offerings    offeringLookup
	settings     schedulingSettings
	allocator    slotAllocator
	defaults     SlotDefaults
	logger       *zap.Logger
}

// NewSlotService instantiates SlotService.
func NewSlotService(
	availability slotAvailability,
	ledger bookedLedger,
	resources resourceCatalog,
	resourceByID resourceLookup,
	types appointmentTypeLookup,
	offerings offeringLookup,
	settings schedulingSettings,
	allocator slotAllocator,
	defaults SlotDefaults,
	logger *zap.Logger,
) *SlotService {
	if defaults.StepMinutes <= 0 {
		defaults.StepMinutes = 30
	}
	if defaults.DurationMinutes <= 0 {
		defaults.DurationMinutes = 60
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotService{
		availability: availability,
		ledger:       ledger,
		resources:    resources,
		resourceByID: resourceByID,
		types:        types,
		offerings:    offerings,
		settings:     settings,
		allocator:    allocator,
		defaults:     defaults,
		logger:       logger,
	}
}

func (s *SlotService) stepMinutes(ctx context.Context) int {
	step := s.settings.Int(ctx, models.SettingSlotStepMinutes, s.defaults.StepMinutes)
	if step <= 0 {
		step = s.defaults.StepMinutes
	}
	return step
}

func (s *SlotService) symmetricBuffer(ctx context.Context) time.Duration {
	minutes := s.settings.Int(ctx, models.SettingBufferMinutes, s.defaults.BufferMinutes)
	if minutes < 0 {
		minutes = 0
	}
	return time.Duration(minutes) * time.Minute
}

// dayBounds returns the [midnight, next midnight) pair for the date in the
// resource's timezone. AddDate keeps the boundary correct across DST shifts.
func dayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	year, month, day := date.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// GenerateSlots walks a resource's open windows on the date in step-sized
// increments and returns every candidate [start, start+duration) that fits a
// window and clears all committed bookings: no raw overlap, and the start
// outside every booking's buffer-padded interval. A candidate ending exactly
// where a booking starts is kept, so buffers never eat the preceding
// back-to-back slot.
func (s *SlotService) GenerateSlots(ctx context.Context, resourceID string, date time.Time, duration time.Duration, step time.Duration, before, after time.Duration) ([]timerange.Range, error) {
	if duration <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot duration must be positive")
	}
	if step <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot step must be positive")
	}

	windows, err := s.availability.Resolve(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return []timerange.Range{}, nil
	}

	resource, err := s.resourceByID.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown resource")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	dayStart, dayEnd := dayBounds(date, resource.Location())

	booked, err := s.ledger.BookedRanges(ctx, resourceID, dayStart, dayEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booked ranges")
	}

	var slots []timerange.Range
	for _, window := range windows {
		for start := window.Start; !start.Add(duration).After(window.End); start = start.Add(step) {
			candidate := timerange.Range{Start: start, End: start.Add(duration)}
			if conflictsAny(candidate, booked, before, after) {
				continue
			}
			slots = append(slots, candidate)
		}
	}
	if slots == nil {
		slots = []timerange.Range{}
	}
	return slots, nil
}

func conflictsAny(candidate timerange.Range, booked []timerange.Range, before, after time.Duration) bool {
	for _, b := range booked {
		if candidate.ConflictsWith(b, before, after) {
			return true
		}
	}
	return false
}

// ResourceSlots produces slots for one staff resource under the simple
// booking model: duration from the optional service offering and a symmetric
// buffer from business settings.
func (s *SlotService) ResourceSlots(ctx context.Context, resourceID string, date time.Time, serviceID *string) ([]timerange.Range, error) {
	durationMin := s.settings.Int(ctx, models.SettingDefaultDurationMin, s.defaults.DurationMinutes)
	if serviceID != nil && *serviceID != "" {
		offering, err := s.offerings.FindByID(ctx, *serviceID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown service offering")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service offering")
		}
		if !offering.Active {
			return nil, appErrors.Clone(appErrors.ErrValidation, "service offering is inactive")
		}
		durationMin = offering.DurationMinutes
	}

	buffer := s.symmetricBuffer(ctx)
	step := time.Duration(s.stepMinutes(ctx)) * time.Minute
	return s.GenerateSlots(ctx, resourceID, date, time.Duration(durationMin)*time.Minute, step, buffer, buffer)
}

// AppointmentTypeSlots produces the merged slot list for an appointment type
// across every active staff resource: per-resource walks with the type's
// duration and asymmetric buffers, unioned on start time with the capable
// resources recorded per slot. When the type requires a shared resource, only
// slots with at least one free instance survive. locationID overrides the
// type's own location when set.
func (s *SlotService) AppointmentTypeSlots(ctx context.Context, appointmentTypeID string, date time.Time, locationID *string) ([]TypeSlot, error) {
	apptType, err := s.types.FindByID(ctx, appointmentTypeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown appointment type")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment type")
	}
	if !apptType.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "appointment type is inactive")
	}

	location := apptType.LocationID
	if locationID != nil && *locationID != "" {
		location = locationID
	}

	staff, err := s.resources.ListActiveByType(ctx, models.ResourceTypeStaff, location)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff resources")
	}

	duration := time.Duration(apptType.DurationMinutes) * time.Minute
	before := time.Duration(apptType.BufferBeforeMinutes) * time.Minute
	after := time.Duration(apptType.BufferAfterMinutes) * time.Minute
	step := time.Duration(s.stepMinutes(ctx)) * time.Minute

	merged := make(map[time.Time]*TypeSlot)
	for i := range staff {
		slots, err := s.GenerateSlots(ctx, staff[i].ID, date, duration, step, before, after)
		if err != nil {
			return nil, err
		}
		for _, slot := range slots {
			key := slot.Start.UTC()
			entry, ok := merged[key]
			if !ok {
				entry = &TypeSlot{Start: slot.Start, End: slot.End}
				merged[key] = entry
			}
			entry.ResourceIDs = append(entry.ResourceIDs, staff[i].ID)
		}
	}

	result := make([]TypeSlot, 0, len(merged))
	for _, entry := range merged {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })

	if apptType.RequiredResourceType != nil {
		filtered := result[:0]
		for _, slot := range result {
			if _, err := s.allocator.FindAvailable(ctx, *apptType.RequiredResourceType, location, slot.Start, slot.End); err != nil {
				var typed *appErrors.Error
				if errors.As(err, &typed) && typed.Status != appErrors.ErrInternal.Status {
					continue
				}
				return nil, err
			}
			filtered = append(filtered, slot)
		}
		result = filtered
	}
	return result, nil
}

// CheckSlot validates one concrete candidate slot on a resource, reporting
// why it is unavailable: the day has no open windows, the interval falls
// outside them, or the slot collides with a committed booking or its buffer
// padding. The check applies the same conflict rule as GenerateSlots so the
// two never disagree.
func (s *SlotService) CheckSlot(ctx context.Context, resourceID string, start time.Time, duration, before, after time.Duration) (SlotCheck, error) {
	if duration <= 0 {
		return SlotCheck{}, appErrors.Clone(appErrors.ErrValidation, "slot duration must be positive")
	}
	end := start.Add(duration)

	windows, err := s.availability.Resolve(ctx, resourceID, start)
	if err != nil {
		return SlotCheck{}, err
	}
	if len(windows) == 0 {
		return SlotCheck{Available: false, Reason: ReasonDayUnavailable}, nil
	}

	inside := false
	for _, window := range windows {
		if window.Contains(start, end) {
			inside = true
			break
		}
	}
	if !inside {
		return SlotCheck{Available: false, Reason: ReasonOutsideHours}, nil
	}

	resource, err := s.resourceByID.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SlotCheck{}, appErrors.Clone(appErrors.ErrNotFound, "unknown resource")
		}
		return SlotCheck{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	dayStart, dayEnd := dayBounds(start.In(resource.Location()), resource.Location())

	booked, err := s.ledger.BookedRanges(ctx, resourceID, dayStart, dayEnd)
	if err != nil {
		return SlotCheck{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booked ranges")
	}

	candidate := timerange.Range{Start: start, End: end}
	if conflictsAny(candidate, booked, before, after) {
		return SlotCheck{Available: false, Reason: ReasonConflict}, nil
	}
	return SlotCheck{Available: true}, nil
}

// CheckTypeSlot is CheckSlot parameterised by an appointment type's duration
// and asymmetric buffers.
func (s *SlotService) CheckTypeSlot(ctx context.Context, resourceID, appointmentTypeID string, start time.Time) (SlotCheck, error) {
	apptType, err := s.types.FindByID(ctx, appointmentTypeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SlotCheck{}, appErrors.Clone(appErrors.ErrNotFound, "unknown appointment type")
		}
		return SlotCheck{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment type")
	}
	return s.CheckSlot(ctx, resourceID, start,
		time.Duration(apptType.DurationMinutes)*time.Minute,
		time.Duration(apptType.BufferBeforeMinutes)*time.Minute,
		time.Duration(apptType.BufferAfterMinutes)*time.Minute)
}
