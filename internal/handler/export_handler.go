package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/versoindustries/verso-backend-sub001/internal/service"
	"github.com/versoindustries/verso-backend-sub001/pkg/response"
)

// ExportHandler serves downloadable schedule documents.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// DaySchedule godoc
// @Summary Export a resource's day schedule
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Resource ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /resources/{id}/schedule/export [get]
func (h *ExportHandler) DaySchedule(c *gin.Context) {
	date, err := parseDateQuery(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))

	payload, contentType, err := h.service.DaySchedule(c.Request.Context(), c.Param("id"), date, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("schedule-%s-%s.%s", c.Param("id"), date.Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, contentType, payload)
}
