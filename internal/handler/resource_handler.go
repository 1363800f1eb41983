package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
	"github.com/versoindustries/verso-backend-sub001/internal/service"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
	"github.com/versoindustries/verso-backend-sub001/pkg/response"
)

// ResourceHandler manages resource catalog endpoints.
type ResourceHandler struct {
	service *service.ResourceService
}

// NewResourceHandler constructs handler.
func NewResourceHandler(svc *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{service: svc}
}

// List godoc
// @Summary List resources
// @Tags Resources
// @Produce json
// @Param type query string false "Filter by resource type"
// @Param active query bool false "Only active resources"
// @Success 200 {object} response.Envelope
// @Router /resources [get]
func (h *ResourceHandler) List(c *gin.Context) {
	var resourceType *models.ResourceType
	if raw := c.Query("type"); raw != "" {
		rt := models.ResourceType(raw)
		resourceType = &rt
	}
	activeOnly := c.Query("active") == "true"

	resources, err := h.service.List(c.Request.Context(), resourceType, activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resources, nil)
}

// Get godoc
// @Summary Get a resource
// @Tags Resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Router /resources/{id} [get]
func (h *ResourceHandler) Get(c *gin.Context) {
	resource, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resource, nil)
}

// Create godoc
// @Summary Create a resource
// @Tags Resources
// @Accept json
// @Produce json
// @Param payload body service.UpsertResourceRequest true "Resource payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /resources [post]
func (h *ResourceHandler) Create(c *gin.Context) {
	var req service.UpsertResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resource, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resource)
}

// Update godoc
// @Summary Update a resource
// @Tags Resources
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body service.UpsertResourceRequest true "Resource payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /resources/{id} [put]
func (h *ResourceHandler) Update(c *gin.Context) {
	var req service.UpsertResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resource, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resource, nil)
}

// Delete godoc
// @Summary Delete a resource
// @Tags Resources
// @Param id path string true "Resource ID"
// @Success 204
// @Security BearerAuth
// @Router /resources/{id} [delete]
func (h *ResourceHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
