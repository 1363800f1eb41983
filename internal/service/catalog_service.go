package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
)

type appointmentTypeStore interface {
	FindByID(ctx context.Context, id string) (*models.AppointmentType, error)
	List(ctx context.Context, activeOnly bool) ([]models.AppointmentType, error)
	Create(ctx context.Context, apptType *models.AppointmentType) error
	Update(ctx context.Context, apptType *models.AppointmentType) error
	Delete(ctx context.Context, id string) error
}

type offeringStore interface {
	FindByID(ctx context.Context, id string) (*models.ServiceOffering, error)
	List(ctx context.Context, activeOnly bool) ([]models.ServiceOffering, error)
	Create(ctx context.Context, svc *models.ServiceOffering) error
	Update(ctx context.Context, svc *models.ServiceOffering) error
	Delete(ctx context.Context, id string) error
}

// UpsertAppointmentTypeRequest is the admin payload for the advanced catalog.
type UpsertAppointmentTypeRequest struct {
	Name                 string  `json:"name" validate:"required"`
	DurationMinutes      int     `json:"duration_minutes" validate:"required,min=5,max=480"`
	BufferBeforeMinutes  int     `json:"buffer_before_minutes" validate:"min=0,max=240"`
	BufferAfterMinutes   int     `json:"buffer_after_minutes" validate:"min=0,max=240"`
	RequiredResourceType *string `json:"required_resource_type,omitempty" validate:"omitempty,oneof=room equipment vehicle"`
	LocationID           *string `json:"location_id,omitempty"`
	Active               *bool   `json:"active,omitempty"`
}

// UpsertOfferingRequest is the admin payload for the simple catalog.
type UpsertOfferingRequest struct {
	Name            string `json:"name" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=5,max=480"`
	Active          *bool  `json:"active,omitempty"`
}

// CatalogService manages both booking catalogs: appointment types with
// buffers and resource requirements, and plain service offerings.
type CatalogService struct {
	types     appointmentTypeStore
	offerings offeringStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService instantiates CatalogService.
func NewCatalogService(types appointmentTypeStore, offerings offeringStore, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{types: types, offerings: offerings, validator: validate, logger: logger}
}

// GetType loads an appointment type.
func (s *CatalogService) GetType(ctx context.Context, id string) (*models.AppointmentType, error) {
	apptType, err := s.types.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment type")
	}
	return apptType, nil
}

// ListTypes returns appointment types.
func (s *CatalogService) ListTypes(ctx context.Context, activeOnly bool) ([]models.AppointmentType, error) {
	types, err := s.types.List(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointment types")
	}
	return types, nil
}

func (s *CatalogService) applyTypeRequest(apptType *models.AppointmentType, req UpsertAppointmentTypeRequest) {
	apptType.Name = req.Name
	apptType.DurationMinutes = req.DurationMinutes
	apptType.BufferBeforeMinutes = req.BufferBeforeMinutes
	apptType.BufferAfterMinutes = req.BufferAfterMinutes
	apptType.LocationID = req.LocationID
	if req.RequiredResourceType != nil {
		rt := models.ResourceType(*req.RequiredResourceType)
		apptType.RequiredResourceType = &rt
	} else {
		apptType.RequiredResourceType = nil
	}
	if req.Active != nil {
		apptType.Active = *req.Active
	}
}

// CreateType stores a new appointment type.
func (s *CatalogService) CreateType(ctx context.Context, req UpsertAppointmentTypeRequest) (*models.AppointmentType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid appointment type payload")
	}
	apptType := &models.AppointmentType{Active: true}
	s.applyTypeRequest(apptType, req)
	if err := s.types.Create(ctx, apptType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create appointment type")
	}
	return apptType, nil
}

// UpdateType modifies an appointment type. Duration and buffer edits only
// affect future bookings; committed appointments keep their snapshot.
func (s *CatalogService) UpdateType(ctx context.Context, id string, req UpsertAppointmentTypeRequest) (*models.AppointmentType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid appointment type payload")
	}
	apptType, err := s.GetType(ctx, id)
	if err != nil {
		return nil, err
	}
	s.applyTypeRequest(apptType, req)
	if err := s.types.Update(ctx, apptType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update appointment type")
	}
	return apptType, nil
}

// DeleteType removes an appointment type.
func (s *CatalogService) DeleteType(ctx context.Context, id string) error {
	if _, err := s.GetType(ctx, id); err != nil {
		return err
	}
	if err := s.types.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete appointment type")
	}
	return nil
}

// GetOffering loads a service offering.
func (s *CatalogService) GetOffering(ctx context.Context, id string) (*models.ServiceOffering, error) {
	offering, err := s.offerings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service offering not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service offering")
	}
	return offering, nil
}

// ListOfferings returns service offerings.
func (s *CatalogService) ListOfferings(ctx context.Context, activeOnly bool) ([]models.ServiceOffering, error) {
	offerings, err := s.offerings.List(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list service offerings")
	}
	return offerings, nil
}

// CreateOffering stores a new service offering.
func (s *CatalogService) CreateOffering(ctx context.Context, req UpsertOfferingRequest) (*models.ServiceOffering, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service offering payload")
	}
	offering := &models.ServiceOffering{
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		Active:          true,
	}
	if req.Active != nil {
		offering.Active = *req.Active
	}
	if err := s.offerings.Create(ctx, offering); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create service offering")
	}
	return offering, nil
}

// UpdateOffering modifies a service offering.
func (s *CatalogService) UpdateOffering(ctx context.Context, id string, req UpsertOfferingRequest) (*models.ServiceOffering, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service offering payload")
	}
	offering, err := s.GetOffering(ctx, id)
	if err != nil {
		return nil, err
	}
	offering.Name = req.Name
	offering.DurationMinutes = req.DurationMinutes
	if req.Active != nil {
		offering.Active = *req.Active
	}
	if err := s.offerings.Update(ctx, offering); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update service offering")
	}
	return offering, nil
}

// DeleteOffering removes a service offering.
func (s *CatalogService) DeleteOffering(ctx context.Context, id string) error {
	if _, err := s.GetOffering(ctx, id); err != nil {
		return err
	}
	if err := s.offerings.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete service offering")
	}
	return nil
}
