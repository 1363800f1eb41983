package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/versoindustries/verso-backend-sub001/internal/service"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
	"github.com/versoindustries/verso-backend-sub001/pkg/response"
)

// CatalogHandler manages appointment type and service offering endpoints.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// ListTypes godoc
// @Summary List appointment types
// @Tags Catalog
// @Produce json
// @Param active query bool false "Only active types"
// @Success 200 {object} response.Envelope
// @Router /appointment-types [get]
func (h *CatalogHandler) ListTypes(c *gin.Context) {
	types, err := h.service.ListTypes(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, types, nil)
}

// GetType godoc
// @Summary Get an appointment type
// @Tags Catalog
// @Produce json
// @Param id path string true "Appointment type ID"
// @Success 200 {object} response.Envelope
// @Router /appointment-types/{id} [get]
func (h *CatalogHandler) GetType(c *gin.Context) {
	apptType, err := h.service.GetType(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apptType, nil)
}

// CreateType godoc
// @Summary Create an appointment type
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body service.UpsertAppointmentTypeRequest true "Type payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /appointment-types [post]
func (h *CatalogHandler) CreateType(c *gin.Context) {
	var req service.UpsertAppointmentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	apptType, err := h.service.CreateType(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, apptType)
}

// UpdateType godoc
// @Summary Update an appointment type
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Appointment type ID"
// @Param payload body service.UpsertAppointmentTypeRequest true "Type payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /appointment-types/{id} [put]
func (h *CatalogHandler) UpdateType(c *gin.Context) {
	var req service.UpsertAppointmentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	apptType, err := h.service.UpdateType(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apptType, nil)
}

// DeleteType godoc
// @Summary Delete an appointment type
// @Tags Catalog
// @Param id path string true "Appointment type ID"
// @Success 204
// @Security BearerAuth
// @Router /appointment-types/{id} [delete]
func (h *CatalogHandler) DeleteType(c *gin.Context) {
	if err := h.service.DeleteType(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListOfferings godoc
// @Summary List service offerings
// @Tags Catalog
// @Produce json
// @Param active query bool false "Only active offerings"
// @Success 200 {object} response.Envelope
// @Router /services [get]
func (h *CatalogHandler) ListOfferings(c *gin.Context) {
	offerings, err := h.service.ListOfferings(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offerings, nil)
}

// CreateOffering godoc
// @Summary Create a service offering
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body service.UpsertOfferingRequest true "Offering payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /services [post]
func (h *CatalogHandler) CreateOffering(c *gin.Context) {
	var req service.UpsertOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	offering, err := h.service.CreateOffering(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, offering)
}

// UpdateOffering godoc
// @Summary Update a service offering
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Offering ID"
// @Param payload body service.UpsertOfferingRequest true "Offering payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /services/{id} [put]
func (h *CatalogHandler) UpdateOffering(c *gin.Context) {
	var req service.UpsertOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	offering, err := h.service.UpdateOffering(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offering, nil)
}

// DeleteOffering godoc
// @Summary Delete a service offering
// @Tags Catalog
// @Param id path string true "Offering ID"
// @Success 204
// @Security BearerAuth
// @Router /services/{id} [delete]
func (h *CatalogHandler) DeleteOffering(c *gin.Context) {
	if err := h.service.DeleteOffering(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
