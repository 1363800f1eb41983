package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
	"github.com/versoindustries/verso-backend-sub001/pkg/timerange"
)

type availabilityRepository interface {
	ListWindowsForDay(ctx context.Context, resourceID string, dayOfWeek int) ([]models.AvailabilityWindow, error)
	ListWindows(ctx context.Context, resourceID string) ([]models.AvailabilityWindow, error)
	CreateWindow(ctx context.Context, window *models.AvailabilityWindow) error
	DeleteWindow(ctx context.Context, id string) error
	FindException(ctx context.Context, resourceID string, date time.Time) (*models.AvailabilityException, error)
	ListExceptions(ctx context.Context, resourceID string, from, to time.Time) ([]models.AvailabilityException, error)
	UpsertException(ctx context.Context, exc *models.AvailabilityException) error
	DeleteException(ctx context.Context, id string) error
}

type resourceLookup interface {
	FindByID(ctx context.Context, id string) (*models.Resource, error)
}

// CreateWindowRequest describes payload for adding a recurring weekly window.
type CreateWindowRequest struct {
	ResourceID string `json:"resource_id" validate:"required"`
	DayOfWeek  int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime  string `json:"start_time" validate:"required"`
	EndTime    string `json:"end_time" validate:"required"`
}

// UpsertExceptionRequest describes payload for a date-specific override.
type UpsertExceptionRequest struct {
	ResourceID  string  `json:"resource_id" validate:"required"`
	Date        string  `json:"date" validate:"required"`
	IsBlocked   bool    `json:"is_blocked"`
	CustomStart *string `json:"custom_start,omitempty"`
	CustomEnd   *string `json:"custom_end,omitempty"`
	Reason      string  `json:"reason"`
}

// AvailabilityService resolves a resource's open time ranges for a date and
// manages the recurring windows and exceptions behind them.
type AvailabilityService struct {
	repo      availabilityRepository
	resources resourceLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService instantiates AvailabilityService.
func NewAvailabilityService(repo availabilityRepository, resources resourceLookup, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{repo: repo, resources: resources, validator: validate, logger: logger}
}

// Weekday converts a date in the given location to the scheduling weekday
// convention: 0 = Monday through 6 = Sunday.
func Weekday(date time.Time, loc *time.Location) int {
	year, month, day := date.Date()
	local := time.Date(year, month, day, 0, 0, 0, 0, loc)
	return (int(local.Weekday()) + 6) % 7
}

// Resolve computes the ordered, non-overlapping open intervals for a resource
// on a calendar date, expressed in the resource's timezone.
//
// A blocked exception removes the whole day. A custom-hours exception
// replaces the recurring windows with exactly one interval. An exception
// that is neither blocked nor carries custom hours is treated as "no
// override": it logs a data-quality warning and falls through to the
// recurring windows for that weekday.
func (s *AvailabilityService) Resolve(ctx context.Context, resourceID string, date time.Time) ([]timerange.Range, error) {
	resource, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown resource")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	loc := resource.Location()

	exc, err := s.repo.FindException(ctx, resourceID, date)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability exception")
	}
	if exc != nil {
		if exc.IsBlocked {
			return []timerange.Range{}, nil
		}
		if exc.HasCustomHours() {
			start, err := models.ClockOnDate(*exc.CustomStart, date, loc)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid custom start on exception")
			}
			end, err := models.ClockOnDate(*exc.CustomEnd, date, loc)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid custom end on exception")
			}
			return []timerange.Range{{Start: start, End: end}}, nil
		}
		s.logger.Warn("availability exception has neither block nor custom hours, ignoring",
			zap.String("resource_id", resourceID),
			zap.String("exception_id", exc.ID),
			zap.Time("date", date))
	}

	windows, err := s.repo.ListWindowsForDay(ctx, resourceID, Weekday(date, loc))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability windows")
	}

	ranges := make([]timerange.Range, 0, len(windows))
	for _, window := range windows {
		start, err := models.ClockOnDate(window.StartTime, date, loc)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid window start time")
		}
		end, err := models.ClockOnDate(window.EndTime, date, loc)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid window end time")
		}
		ranges = append(ranges, timerange.Range{Start: start, End: end})
	}
	return ranges, nil
}

// ListWindows returns the recurring windows configured for a resource.
func (s *AvailabilityService) ListWindows(ctx context.Context, resourceID string) ([]models.AvailabilityWindow, error) {
	windows, err := s.repo.ListWindows(ctx, resourceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability windows")
	}
	return windows, nil
}

// AddWindow creates a recurring weekly window after validating the interval.
func (s *AvailabilityService) AddWindow(ctx context.Context, req CreateWindowRequest) (*models.AvailabilityWindow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability window payload")
	}

	startMin, err := models.ParseClock(req.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start time")
	}
	endMin, err := models.ParseClock(req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end time")
	}
	if startMin >= endMin {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start time must be before end time")
	}

	if _, err := s.resources.FindByID(ctx, req.ResourceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown resource")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}

	window := models.AvailabilityWindow{
		ResourceID: req.ResourceID,
		DayOfWeek:  req.DayOfWeek,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}
	if err := s.repo.CreateWindow(ctx, &window); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create availability window")
	}
	return &window, nil
}

// RemoveWindow deletes a recurring window.
func (s *AvailabilityService) RemoveWindow(ctx context.Context, id string) error {
	if err := s.repo.DeleteWindow(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete availability window")
	}
	return nil
}

// ListExceptions returns a resource's exceptions within a date range.
func (s *AvailabilityService) ListExceptions(ctx context.Context, resourceID string, from, to time.Time) ([]models.AvailabilityException, error) {
	exceptions, err := s.repo.ListExceptions(ctx, resourceID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability exceptions")
	}
	return exceptions, nil
}

// SetException stores a date override. An exception with is_blocked false and
// no custom hours is accepted but flagged, matching Resolve's fallthrough.
func (s *AvailabilityService) SetException(ctx context.Context, req UpsertExceptionRequest) (*models.AvailabilityException, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability exception payload")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date, expected YYYY-MM-DD")
	}

	hasStart := req.CustomStart != nil && *req.CustomStart != ""
	hasEnd := req.CustomEnd != nil && *req.CustomEnd != ""
	if hasStart != hasEnd {
		return nil, appErrors.Clone(appErrors.ErrValidation, "custom hours require both start and end")
	}
	if hasStart {
		startMin, err := models.ParseClock(*req.CustomStart)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid custom start")
		}
		endMin, err := models.ParseClock(*req.CustomEnd)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid custom end")
		}
		if startMin >= endMin {
			return nil, appErrors.Clone(appErrors.ErrValidation, "custom start must be before custom end")
		}
	}
	if !req.IsBlocked && !hasStart {
		s.logger.Warn("storing exception with no override effect",
			zap.String("resource_id", req.ResourceID),
			zap.String("date", req.Date))
	}

	if _, err := s.resources.FindByID(ctx, req.ResourceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown resource")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}

	exc := models.AvailabilityException{
		ResourceID:  req.ResourceID,
		Date:        date,
		IsBlocked:   req.IsBlocked,
		CustomStart: req.CustomStart,
		CustomEnd:   req.CustomEnd,
		Reason:      req.Reason,
	}
	if err := s.repo.UpsertException(ctx, &exc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store availability exception")
	}
	return &exc, nil
}

// RemoveException deletes a date override.
func (s *AvailabilityService) RemoveException(ctx context.Context, id string) error {
	if err := s.repo.DeleteException(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete availability exception")
	}
	return nil
}
