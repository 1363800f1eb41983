package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
	"github.com/versoindustries/verso-backend-sub001/pkg/export"
)

// ExportFormat selects the rendered document type.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

type dayScheduleReader interface {
	ListForDay(ctx context.Context, resourceID string, dayStart, dayEnd time.Time) ([]models.Appointment, error)
}

// ExportService renders a resource's day schedule as a downloadable document.
type ExportService struct {
	appointments dayScheduleReader
	resources    resourceLookup
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	logger       *zap.Logger
}

// NewExportService instantiates ExportService.
func NewExportService(appointments dayScheduleReader, resources resourceLookup, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		appointments: appointments,
		resources:    resources,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
	}
}

// DaySchedule renders the committed appointments for a resource's day.
// Returns the document bytes and a content type.
func (s *ExportService) DaySchedule(ctx context.Context, resourceID string, date time.Time, format ExportFormat) ([]byte, string, error) {
	resource, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "unknown resource")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}

	loc := resource.Location()
	dayStart, dayEnd := dayBounds(date, loc)
	appts, err := s.appointments.ListForDay(ctx, resourceID, dayStart, dayEnd)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}

	dataset := export.Dataset{
		Headers: []string{"Start", "End", "Customer", "Email", "Status", "Notes"},
	}
	for _, appt := range appts {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Start":    appt.StartAt.In(loc).Format("15:04"),
			"End":      appt.EndAt.In(loc).Format("15:04"),
			"Customer": appt.CustomerName,
			"Email":    appt.CustomerEmail,
			"Status":   string(appt.Status),
			"Notes":    appt.Notes,
		})
	}

	switch format {
	case ExportCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case ExportPDF:
		title := fmt.Sprintf("%s schedule %s", resource.Name, dayStart.Format("2006-01-02"))
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
