package api

import (
	"fmt"
	"net/http"
	"time"

	"shareit/internal/models"

	"github.com/xuri/excelize/v2"
)

var exportColumns = []string{"ID", "Item", "Booker", "Start", "End", "Status"}

// handleExportOwnerBookings streams the owner's bookings as an xlsx sheet.
func (s *Server) handleExportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	ownerID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := models.ParseBookingState(r.URL.Query().Get("state"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := s.bookings.GetOwnerBookingRows(r.Context(), ownerID, state)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for col, title := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, title)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for row, booking := range bookings {
		values := []any{
			booking.ID,
			booking.ItemName,
			booking.BookerName,
			booking.Start.Format(models.TimeLayout),
			booking.End.Format(models.TimeLayout),
			string(booking.Status),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "B", "E", 22)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%d_%s.xlsx", ownerID, time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if err := f.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("write export error")
	}
}
