package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
	"github.com/versoindustries/verso-backend-sub001/internal/notify"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
)

type waitlistRepository interface {
	FindByID(ctx context.Context, id string) (*models.WaitlistEntry, error)
	ListByType(ctx context.Context, appointmentTypeID string) ([]models.WaitlistEntry, error)
	Create(ctx context.Context, entry *models.WaitlistEntry) error
	ExpireOffers(ctx context.Context, appointmentTypeID string, now time.Time) (int64, error)
	NextWaiting(ctx context.Context, appointmentTypeID string) (*models.WaitlistEntry, error)
	MarkOffered(ctx context.Context, id string, offeredStart *time.Time, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
}

type waitlistMetrics interface {
	WaitlistOfferMade()
	WaitlistOfferExpired()
}

// JoinWaitlistRequest enrolls a customer for an appointment type.
type JoinWaitlistRequest struct {
	AppointmentTypeID string `json:"appointment_type_id" validate:"required"`
	CustomerName      string `json:"customer_name" validate:"required"`
	CustomerEmail     string `json:"customer_email" validate:"required,email"`
	Priority          int    `json:"priority" validate:"min=0,max=100"`
}

// WaitlistService runs the waitlist state machine: waiting entries receive
// offers when capacity frees up, offers expire after a deadline, and the
// sweep converts stale offers into fresh ones for the next customer in line.
type WaitlistService struct {
	repo      waitlistRepository
	types     appointmentTypeLookup
	settings  schedulingSettings
	notifier  notify.Notifier
	metrics   waitlistMetrics
	offerTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewWaitlistService instantiates WaitlistService. offerTTL is the fallback
// offer lifetime when no business setting overrides it; metrics may be nil.
func NewWaitlistService(
	repo waitlistRepository,
	types appointmentTypeLookup,
	settings schedulingSettings,
	notifier notify.Notifier,
	metrics waitlistMetrics,
	offerTTL time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
) *WaitlistService {
	if offerTTL <= 0 {
		offerTTL = 24 * time.Hour
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WaitlistService{
		repo:      repo,
		types:     types,
		settings:  settings,
		notifier:  notifier,
		metrics:   metrics,
		offerTTL:  offerTTL,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *WaitlistService) offerLifetime(ctx context.Context) time.Duration {
	minutes := s.settings.Int(ctx, models.SettingWaitlistOfferTTL, 0)
	if minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}
	return s.offerTTL
}

// Join enrolls a customer on the waitlist for an appointment type.
func (s *WaitlistService) Join(ctx context.Context, req JoinWaitlistRequest) (*models.WaitlistEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid waitlist payload")
	}

	apptType, err := s.types.FindByID(ctx, req.AppointmentTypeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown appointment type")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment type")
	}
	if !apptType.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "appointment type is inactive")
	}

	entry := &models.WaitlistEntry{
		AppointmentTypeID: req.AppointmentTypeID,
		CustomerName:      req.CustomerName,
		CustomerEmail:     req.CustomerEmail,
		Priority:          req.Priority,
		Status:            models.WaitlistWaiting,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create waitlist entry")
	}
	return entry, nil
}

// List returns all waitlist entries for an appointment type.
func (s *WaitlistService) List(ctx context.Context, appointmentTypeID string) ([]models.WaitlistEntry, error) {
	entries, err := s.repo.ListByType(ctx, appointmentTypeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list waitlist entries")
	}
	return entries, nil
}

// Leave removes an entry from the waitlist.
func (s *WaitlistService) Leave(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "waitlist entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load waitlist entry")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete waitlist entry")
	}
	return nil
}

// OfferNext promotes the top-ranked waiting entry for the type to offered and
// notifies the customer. Highest priority wins, oldest enrollment breaking
// ties. A quiet no-op when nobody is waiting.
func (s *WaitlistService) OfferNext(ctx context.Context, appointmentTypeID string) error {
	return s.offerNext(ctx, appointmentTypeID, nil)
}

// OfferSlot is OfferNext carrying a concrete freed slot start in the offer.
func (s *WaitlistService) OfferSlot(ctx context.Context, appointmentTypeID string, slotStart time.Time) error {
	return s.offerNext(ctx, appointmentTypeID, &slotStart)
}

func (s *WaitlistService) offerNext(ctx context.Context, appointmentTypeID string, slotStart *time.Time) error {
	entry, err := s.repo.NextWaiting(ctx, appointmentTypeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to select waitlist entry")
	}

	expiresAt := s.now().Add(s.offerLifetime(ctx))
	if err := s.repo.MarkOffered(ctx, entry.ID, slotStart, expiresAt); err != nil {
		// Someone else transitioned the entry first; nothing to offer.
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark waitlist entry offered")
	}

	if s.metrics != nil {
		s.metrics.WaitlistOfferMade()
	}
	s.logger.Info("waitlist offer made",
		zap.String("entry_id", entry.ID),
		zap.String("appointment_type_id", appointmentTypeID),
		zap.Time("expires_at", expiresAt))

	if s.notifier != nil {
		body := "A slot has opened up. Book before the offer expires."
		if slotStart != nil {
			body = fmt.Sprintf("A slot at %s has opened up. Book before the offer expires.", slotStart.Format(time.RFC3339))
		}
		msg := notify.Message{
			Kind:      notify.KindWaitlistOffer,
			Recipient: entry.CustomerEmail,
			Subject:   "An appointment slot is available",
			Body:      body,
		}
		if err := s.notifier.Notify(ctx, msg); err != nil {
			s.logger.Warn("failed to send waitlist offer notification",
				zap.String("entry_id", entry.ID),
				zap.Error(err))
		}
	}
	return nil
}

// Process runs one sweep for an appointment type: expire every lapsed offer,
// then make one fresh offer per expired one so the freed capacity moves down
// the line.
func (s *WaitlistService) Process(ctx context.Context, appointmentTypeID string) error {
	expired, err := s.repo.ExpireOffers(ctx, appointmentTypeID, s.now())
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to expire waitlist offers")
	}
	if expired == 0 {
		return nil
	}

	if s.metrics != nil {
		for i := int64(0); i < expired; i++ {
			s.metrics.WaitlistOfferExpired()
		}
	}
	s.logger.Info("waitlist offers expired",
		zap.String("appointment_type_id", appointmentTypeID),
		zap.Int64("count", expired))

	for i := int64(0); i < expired; i++ {
		if err := s.OfferNext(ctx, appointmentTypeID); err != nil {
			return err
		}
	}
	return nil
}
