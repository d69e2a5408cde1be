// Package report renders booking reports as Excel workbooks for the admin.
// Data is read live from the calendar; nothing is stored.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"bookdesk/internal/models"
)

// EventSource reads calendar events for a time range.
type EventSource interface {
	EventsBetween(ctx context.Context, from, to time.Time) ([]models.Event, error)
}

// Service builds monthly booking reports.
type Service struct {
	calendar EventSource
	location *time.Location
	logger   zerolog.Logger
}

// NewService creates a report service rendering times in loc.
func NewService(calendar EventSource, loc *time.Location, logger zerolog.Logger) *Service {
	return &Service{
		calendar: calendar,
		location: loc,
		logger:   logger.With().Str("component", "report").Logger(),
	}
}

var reportColumns = []string{"Date", "Start", "End", "Summary", "Meeting Link"}

// WriteMonth writes an xlsx workbook with all events of the YYYY-MM month.
func (s *Service) WriteMonth(ctx context.Context, month string, w io.Writer) error {
	from, err := time.ParseInLocation("2006-01", month, s.location)
	if err != nil {
		return fmt.Errorf("invalid month %q: expected YYYY-MM", month)
	}
	to := from.AddDate(0, 1, 0)

	events, err := s.calendar.EventsBetween(ctx, from, to)
	if err != nil {
		return fmt.Errorf("list events for %s: %w", month, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Bookings " + month
	f.SetSheetName("Sheet1", sheet)

	if err := writeRow(f, sheet, 1, toAny(reportColumns)); err != nil {
		return err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		start, _ := excelize.CoordinatesToCellName(1, 1)
		end, _ := excelize.CoordinatesToCellName(len(reportColumns), 1)
		_ = f.SetCellStyle(sheet, start, end, style)
	}

	for i, ev := range events {
		local := ev.Start.In(s.location)
		row := []interface{}{
			local.Format("2006-01-02"),
			local.Format("15:04"),
			ev.End.In(s.location).Format("15:04"),
			ev.Summary,
			ev.MeetingLink,
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	s.logger.Info().Str("month", month).Int("events", len(events)).Msg("report generated")
	return f.Write(w)
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	for i, val := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, val); err != nil {
			return err
		}
	}
	return nil
}

func toAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
