package export

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"visit-service/internal/model"
)

const sheetName = "Requests"

var requestColumns = []string{
	"ID",
	"Visitor",
	"Visit type",
	"Companions",
	"Phone",
	"Status",
	"Deposit paid",
	"Total amount",
	"Assigned to",
	"Arrival date",
	"Departure date",
	"Trip status",
	"Booking confirmed",
	"Latest response",
	"Created at",
}

// WriteRequests renders the request queue as an xlsx workbook into w.
func WriteRequests(w io.Writer, records []model.RequestRecord, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	header, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, title := range requestColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, title)
		_ = f.SetCellStyle(sheetName, cell, cell, header)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(requestColumns))
	_ = f.SetColWidth(sheetName, "A", lastCol, 18)
	_ = f.SetColWidth(sheetName, "B", "B", 28)

	for i, record := range records {
		row := i + 2
		req := record.Request
		values := []interface{}{
			req.ID.String(),
			req.VisitorName,
			string(req.VisitType),
			req.CompanionsCount,
			req.Phone,
			string(req.Status),
			yesNo(req.DepositPaid),
			amount(req.TotalAmount),
			optionalID(req.AssignedTo),
			date(req.ArrivalDate),
			date(req.DepartureDate),
			string(req.TripStatus),
			yesNo(req.BookingConfirmed()),
			latestBody(record.LatestResponse),
			req.CreatedAt.In(loc).Format("2006-01-02 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func amount(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func optionalID(v *uuid.UUID) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func latestBody(r *model.ResponseBrief) string {
	if r == nil {
		return ""
	}
	return r.Body
}
