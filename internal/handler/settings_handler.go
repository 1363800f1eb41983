package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/versoindustries/verso-backend-sub001/internal/service"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
	"github.com/versoindustries/verso-backend-sub001/pkg/response"
)

// SettingsHandler manages business-setting endpoints.
type SettingsHandler struct {
	service *service.SettingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(svc *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: svc}
}

// List godoc
// @Summary List business settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /settings [get]
func (h *SettingsHandler) List(c *gin.Context) {
	settings, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

type setSettingRequest struct {
	Value string `json:"value"`
}

// Set godoc
// @Summary Write a business setting
// @Tags Settings
// @Accept json
// @Produce json
// @Param key path string true "Setting key"
// @Param payload body setSettingRequest true "Setting value"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /settings/{key} [put]
func (h *SettingsHandler) Set(c *gin.Context) {
	var req setSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.Set(c.Request.Context(), c.Param("key"), req.Value); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"key": c.Param("key"), "value": req.Value}, nil)
}

// Unset godoc
// @Summary Remove a business setting
// @Tags Settings
// @Param key path string true "Setting key"
// @Success 204
// @Security BearerAuth
// @Router /settings/{key} [delete]
func (h *SettingsHandler) Unset(c *gin.Context) {
	if err := h.service.Unset(c.Request.Context(), c.Param("key")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
