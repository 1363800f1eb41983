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
)

type resourceStore interface {
	FindByID(ctx context.Context, id string) (*models.Resource, error)
	List(ctx context.Context, resourceType *models.ResourceType, activeOnly bool) ([]models.Resource, error)
	Create(ctx context.Context, res *models.Resource) error
	Update(ctx context.Context, res *models.Resource) error
	Delete(ctx context.Context, id string) error
}

// UpsertResourceRequest is the admin payload for creating or updating a
// schedulable resource.
type UpsertResourceRequest struct {
	Name       string  `json:"name" validate:"required"`
	Type       string  `json:"type" validate:"required,oneof=staff room equipment vehicle"`
	LocationID *string `json:"location_id,omitempty"`
	Timezone   string  `json:"timezone"`
	Active     *bool   `json:"active,omitempty"`
	SortOrder  int     `json:"sort_order" validate:"min=0"`
}

// ResourceService manages the catalog of schedulable resources.
type ResourceService struct {
	repo            resourceStore
	defaultTimezone string
	validator       *validator.Validate
	logger          *zap.Logger
}

// NewResourceService instantiates ResourceService.
func NewResourceService(repo resourceStore, defaultTimezone string, validate *validator.Validate, logger *zap.Logger) *ResourceService {
	if defaultTimezone == "" {
		defaultTimezone = "UTC"
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceService{repo: repo, defaultTimezone: defaultTimezone, validator: validate, logger: logger}
}

// Get loads a resource by id.
func (s *ResourceService) Get(ctx context.Context, id string) (*models.Resource, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	return res, nil
}

// List returns resources with optional type and active filters.
func (s *ResourceService) List(ctx context.Context, resourceType *models.ResourceType, activeOnly bool) ([]models.Resource, error) {
	resources, err := s.repo.List(ctx, resourceType, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list resources")
	}
	return resources, nil
}

func (s *ResourceService) validateTimezone(tz string) (string, error) {
	if tz == "" {
		return s.defaultTimezone, nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown timezone")
	}
	return tz, nil
}

// Create stores a new resource.
func (s *ResourceService) Create(ctx context.Context, req UpsertResourceRequest) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resource payload")
	}
	tz, err := s.validateTimezone(req.Timezone)
	if err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	res := &models.Resource{
		Name:       req.Name,
		Type:       models.ResourceType(req.Type),
		LocationID: req.LocationID,
		Timezone:   tz,
		Active:     active,
		SortOrder:  req.SortOrder,
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create resource")
	}
	return res, nil
}

// Update modifies an existing resource.
func (s *ResourceService) Update(ctx context.Context, id string, req UpsertResourceRequest) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resource payload")
	}
	tz, err := s.validateTimezone(req.Timezone)
	if err != nil {
		return nil, err
	}

	res, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res.Name = req.Name
	res.Type = models.ResourceType(req.Type)
	res.LocationID = req.LocationID
	res.Timezone = tz
	if req.Active != nil {
		res.Active = *req.Active
	}
	res.SortOrder = req.SortOrder

	if err := s.repo.Update(ctx, res); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update resource")
	}
	return res, nil
}

// Delete removes a resource.
func (s *ResourceService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete resource")
	}
	return nil
}
