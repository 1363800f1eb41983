package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
	"github.com/versoindustries/verso-backend-sub001/internal/service"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
	"github.com/versoindustries/verso-backend-sub001/pkg/response"
)

// BookingHandler manages appointment endpoints.
type BookingHandler struct {
	service *service.BookingService
}

// NewBookingHandler constructs handler.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{service: svc}
}

// Create godoc
// @Summary Book an appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param payload body service.CreateAppointmentRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Router /appointments [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req service.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Book(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Get godoc
// @Summary Get an appointment with its resource reservations
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	appt, bookings, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"appointment":       appt,
		"resource_bookings": bookings,
	}, nil)
}

// ListDay godoc
// @Summary Appointments for a resource on a date
// @Tags Appointments
// @Produce json
// @Param id path string true "Resource ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /resources/{id}/appointments [get]
func (h *BookingHandler) ListDay(c *gin.Context) {
	date, err := parseDateQuery(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	appts, err := h.service.ListDay(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appts, nil)
}

type updateStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required"`
}

// UpdateStatus godoc
// @Summary Transition an appointment's status
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body updateStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /appointments/{id}/status [patch]
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	appt, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appt, nil)
}

type recurrenceDraftRequest struct {
	Type  models.RecurrenceType `json:"type" binding:"required"`
	Count int                   `json:"count" binding:"required,min=1,max=52"`
}

// Recurrences godoc
// @Summary Expand an appointment into recurring drafts
// @Description Returns unpersisted draft occurrences after the base appointment. Book each draft to commit it.
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Base appointment ID"
// @Param payload body recurrenceDraftRequest true "Recurrence payload"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/recurrences [post]
func (h *BookingHandler) Recurrences(c *gin.Context) {
	var req recurrenceDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	drafts, err := h.service.GenerateRecurring(c.Request.Context(), c.Param("id"), req.Type, req.Count)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, drafts, nil)
}

// Cancel godoc
// @Summary Cancel an appointment
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id} [delete]
func (h *BookingHandler) Cancel(c *gin.Context) {
	appt, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appt, nil)
}
