package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/versoindustries/verso-backend-sub001/internal/service"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
	"github.com/versoindustries/verso-backend-sub001/pkg/response"
)

// WaitlistHandler manages waitlist endpoints.
type WaitlistHandler struct {
	service *service.WaitlistService
}

// NewWaitlistHandler constructs handler.
func NewWaitlistHandler(svc *service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{service: svc}
}

// Join godoc
// @Summary Join the waitlist for an appointment type
// @Tags Waitlist
// @Accept json
// @Produce json
// @Param payload body service.JoinWaitlistRequest true "Waitlist payload"
// @Success 201 {object} response.Envelope
// @Router /waitlist [post]
func (h *WaitlistHandler) Join(c *gin.Context) {
	var req service.JoinWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.service.Join(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// List godoc
// @Summary Waitlist entries for an appointment type
// @Tags Waitlist
// @Produce json
// @Param id path string true "Appointment type ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /appointment-types/{id}/waitlist [get]
func (h *WaitlistHandler) List(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Leave godoc
// @Summary Remove a waitlist entry
// @Tags Waitlist
// @Param id path string true "Entry ID"
// @Success 204
// @Router /waitlist/{id} [delete]
func (h *WaitlistHandler) Leave(c *gin.Context) {
	if err := h.service.Leave(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Process godoc
// @Summary Run a waitlist sweep for an appointment type
// @Tags Waitlist
// @Produce json
// @Param id path string true "Appointment type ID"
// @Success 202 {object} response.Envelope
// @Security BearerAuth
// @Router /appointment-types/{id}/waitlist/process [post]
func (h *WaitlistHandler) Process(c *gin.Context) {
	if err := h.service.Process(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"processed": true}, nil)
}
