package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/versoindustries/verso-backend-sub001/internal/service"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
	"github.com/versoindustries/verso-backend-sub001/pkg/response"
)

// SlotHandler manages slot discovery endpoints.
type SlotHandler struct {
	service *service.SlotService
}

// NewSlotHandler constructs handler.
func NewSlotHandler(svc *service.SlotService) *SlotHandler {
	return &SlotHandler{service: svc}
}

// ResourceSlots godoc
// @Summary Bookable slots for a resource on a date
// @Tags Slots
// @Produce json
// @Param id path string true "Resource ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param serviceId query string false "Service offering governing duration"
// @Success 200 {object} response.Envelope
// @Router /resources/{id}/slots [get]
func (h *SlotHandler) ResourceSlots(c *gin.Context) {
	date, err := parseDateQuery(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	slots, err := h.service.ResourceSlots(c.Request.Context(), c.Param("id"), date, optionalString(c, "serviceId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// TypeSlots godoc
// @Summary Bookable slots for an appointment type across staff
// @Tags Slots
// @Produce json
// @Param id path string true "Appointment type ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param locationId query string false "Location filter overriding the type's location"
// @Success 200 {object} response.Envelope
// @Router /appointment-types/{id}/slots [get]
func (h *SlotHandler) TypeSlots(c *gin.Context) {
	date, err := parseDateQuery(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	slots, err := h.service.AppointmentTypeSlots(c.Request.Context(), c.Param("id"), date, optionalString(c, "locationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Check godoc
// @Summary Check whether one concrete slot is bookable
// @Tags Slots
// @Produce json
// @Param resourceId query string true "Resource ID"
// @Param typeId query string true "Appointment type ID"
// @Param start query string true "Slot start (RFC3339)"
// @Success 200 {object} response.Envelope
// @Router /slots/check [get]
func (h *SlotHandler) Check(c *gin.Context) {
	resourceID := c.Query("resourceId")
	typeID := c.Query("typeId")
	if resourceID == "" || typeID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "resourceId and typeId query parameters are required"))
		return
	}
	start, err := parseTimeQuery(c, "start")
	if err != nil {
		response.Error(c, err)
		return
	}

	check, err := h.service.CheckTypeSlot(c.Request.Context(), resourceID, typeID, start)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, check, nil)
}
