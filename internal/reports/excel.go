// Package reports exports appointment data for back-office use.
package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Vmp3/Inkspiration-sub001/internal/models"
)

// AppointmentSource lists a professional's appointments in [from, to).
type AppointmentSource interface {
	ListAppointmentsByProfessional(ctx context.Context, professionalID int64, from, to time.Time) ([]models.Appointment, error)
}

// ExcelReporter writes appointment reports as xlsx workbooks.
type ExcelReporter struct {
	appointments AppointmentSource
}

// NewExcelReporter creates a reporter backed by the given source.
func NewExcelReporter(appointments AppointmentSource) *ExcelReporter {
	return &ExcelReporter{appointments: appointments}
}

var reportColumns = []string{
	"Reference", "Client ID", "Service", "Date", "Start", "End", "Status", "Comment",
}

// WriteAppointments writes one sheet of appointments for a professional
// within [from, to) to w.
func (r *ExcelReporter) WriteAppointments(ctx context.Context, w io.Writer, professionalID int64, from, to time.Time) error {
	appts, err := r.appointments.ListAppointmentsByProfessional(ctx, professionalID, from, to)
	if err != nil {
		return fmt.Errorf("list appointments: %w", err)
	}

	file := excelize.NewFile()
	defer file.Close()

	sheet := "Appointments"
	file.SetSheetName("Sheet1", sheet)

	for i, col := range reportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}
	if style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(reportColumns), 1)
		_ = file.SetCellStyle(sheet, startCell, endCell, style)
	}

	for i := range appts {
		a := &appts[i]
		values := []interface{}{
			a.Reference,
			a.ClientID,
			a.ServiceType,
			a.StartTime.Format("2006-01-02"),
			a.StartTime.Format("15:04"),
			a.EndTime.Format("15:04"),
			a.Status,
			a.Comment,
		}
		for j, val := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
	}

	return file.Write(w)
}
