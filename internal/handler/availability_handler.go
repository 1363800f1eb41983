package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/versoindustries/verso-backend-sub001/internal/service"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
	"github.com/versoindustries/verso-backend-sub001/pkg/response"
)

// AvailabilityHandler manages availability window and exception endpoints.
type AvailabilityHandler struct {
	service *service.AvailabilityService
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// Resolve godoc
// @Summary Resolved open intervals for a resource on a date
// @Tags Availability
// @Produce json
// @Param id path string true "Resource ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /resources/{id}/availability [get]
func (h *AvailabilityHandler) Resolve(c *gin.Context) {
	date, err := parseDateQuery(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	ranges, err := h.service.Resolve(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ranges, nil)
}

// ListWindows godoc
// @Summary List recurring availability windows
// @Tags Availability
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /resources/{id}/windows [get]
func (h *AvailabilityHandler) ListWindows(c *gin.Context) {
	windows, err := h.service.ListWindows(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, nil)
}

// CreateWindow godoc
// @Summary Add a recurring availability window
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body service.CreateWindowRequest true "Window payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /resources/{id}/windows [post]
func (h *AvailabilityHandler) CreateWindow(c *gin.Context) {
	var req service.CreateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.ResourceID = c.Param("id")

	window, err := h.service.AddWindow(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, window)
}

// DeleteWindow godoc
// @Summary Remove a recurring availability window
// @Tags Availability
// @Param id path string true "Window ID"
// @Success 204
// @Security BearerAuth
// @Router /windows/{id} [delete]
func (h *AvailabilityHandler) DeleteWindow(c *gin.Context) {
	if err := h.service.RemoveWindow(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListExceptions godoc
// @Summary List availability exceptions in a date range
// @Tags Availability
// @Produce json
// @Param id path string true "Resource ID"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /resources/{id}/exceptions [get]
func (h *AvailabilityHandler) ListExceptions(c *gin.Context) {
	from, err := parseDateQuery(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}
	if to.Before(from) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must not precede from"))
		return
	}
	exceptions, err := h.service.ListExceptions(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exceptions, nil)
}

// UpsertException godoc
// @Summary Set a date-specific availability override
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body service.UpsertExceptionRequest true "Exception payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /resources/{id}/exceptions [put]
func (h *AvailabilityHandler) UpsertException(c *gin.Context) {
	var req service.UpsertExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.ResourceID = c.Param("id")

	exc, err := h.service.SetException(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exc)
}

// DeleteException godoc
// @Summary Remove an availability exception
// @Tags Availability
// @Param id path string true "Exception ID"
// @Success 204
// @Security BearerAuth
// @Router /exceptions/{id} [delete]
func (h *AvailabilityHandler) DeleteException(c *gin.Context) {
	if err := h.service.RemoveException(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
