package reservation

import (
	"bytes"
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"

	"queueless/internal/domain"
	"queueless/internal/pkg/apperr"
	"queueless/internal/repository"
)

const (
	exportSheet   = "Reservations"
	icsProductID  = "-//QueueLess//Reservations//EN"
	exportMaxDays = 366
)

var exportHeader = []string{"ID", "Start", "End", "Status", "Customer", "Email", "Worker", "Service", "Notes"}

// ExportCompanyXLSX renders the company's reservations in [from, to) as a
// single-sheet workbook.
func (s *Service) ExportCompanyXLSX(ctx context.Context, companyID int64, from, to string) (*bytes.Buffer, error) {
	start, end, err := s.exportRange(from, to)
	if err != nil {
		return nil, err
	}

	rows, err := s.reservations.ListForExport(ctx, repository.ReservationFilter{
		CompanyID: companyID,
		From:      &start,
		To:        &end,
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to export reservations")
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, apperr.Internal("Failed to export reservations", err)
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, apperr.Internal("Failed to export reservations", err)
	}

	for i, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
	_ = f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle)
	_ = f.SetColWidth(exportSheet, "B", "C", 18)
	_ = f.SetColWidth(exportSheet, "E", "I", 22)

	for i, r := range rows {
		values := []any{
			r.ID,
			r.SlotStart.In(s.loc).Format("2006-01-02 15:04"),
			r.SlotEnd.In(s.loc).Format("2006-01-02 15:04"),
			string(r.Status),
			"", "", "", "",
			r.Notes,
		}
		if r.User != nil {
			values[4], values[5] = r.User.Name, r.User.Email
		}
		if r.Worker != nil {
			values[6] = r.Worker.Name
		}
		if r.Service != nil {
			values[7] = r.Service.Name
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, apperr.Internal("Failed to export reservations", err)
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, apperr.Internal("Failed to export reservations", err)
	}
	return buf, nil
}

// ExportUserICS returns the user's upcoming active reservations as an
// iCalendar feed.
func (s *Service) ExportUserICS(ctx context.Context, userID int64) (string, error) {
	from := s.now().Add(-24 * time.Hour)
	rows, err := s.reservations.ListForExport(ctx, repository.ReservationFilter{
		UserID: userID,
		From:   &from,
	})
	if err != nil {
		return "", apperr.Wrap(err, "Failed to export calendar")
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	stamp := s.now().UTC()
	for _, r := range rows {
		if !r.Status.IsActive() {
			continue
		}
		ev := cal.AddEvent(fmt.Sprintf("reservation-%d@queueless", r.ID))
		ev.SetDtStampTime(stamp)
		ev.SetCreatedTime(r.CreatedAt.UTC())
		ev.SetStartAt(r.SlotStart.UTC())
		ev.SetEndAt(r.SlotEnd.UTC())
		ev.SetSummary(eventSummary(r))
		ev.SetDescription(fmt.Sprintf("Status: %s", r.Status))
		if r.Company != nil && r.Company.Address != "" {
			ev.SetLocation(r.Company.Address)
		}
	}
	return cal.Serialize(), nil
}

func eventSummary(r domain.Reservation) string {
	summary := "Reservation"
	if r.Service != nil {
		summary = r.Service.Name
	}
	if r.Company != nil {
		summary += " at " + r.Company.Name
	}
	return summary
}

func (s *Service) exportRange(from, to string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(domain.DateLayout, from, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("from must be in YYYY-MM-DD format")
	}
	end, err := time.ParseInLocation(domain.DateLayout, to, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("to must be in YYYY-MM-DD format")
	}
	// to is inclusive for callers
	end = end.AddDate(0, 0, 1)
	if !start.Before(end) {
		return time.Time{}, time.Time{}, apperr.Validation("from must not be after to")
	}
	if end.Sub(start) > exportMaxDays*24*time.Hour {
		return time.Time{}, time.Time{}, apperr.Validation(fmt.Sprintf("export range must not exceed %d days", exportMaxDays))
	}
	return start, end, nil
}
