package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"quickclean/internal/domain"
)

const (
	exportSheet   = "Bookings"
	exportMaxRows = 10000
)

var exportHeader = []any{
	"ID", "Created", "Customer", "Phone", "Service", "Price", "Date",
	"Status", "Assigned To", "Store", "Items", "Total", "Notes",
}

// ExportBookings renders every booking matching q (admin filters, paging
// ignored) as an XLSX workbook, newest first.
func (s *BookingService) ExportBookings(q ListQuery) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}

	row := 2
	q.Limit = AdminScope.MaxLimit
	for q.Page = 1; row-2 < exportMaxRows; q.Page++ {
		res, err := s.List(AdminScope, q)
		if err != nil {
			return nil, err
		}
		for _, b := range res.Bookings {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			vals := exportRow(b)
			if err := f.SetSheetRow(exportSheet, cell, &vals); err != nil {
				return nil, err
			}
			row++
		}
		if q.Page >= res.Meta.Pages {
			break
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "A", 38); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "B", "M", 18); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func exportRow(b domain.Booking) []any {
	name, ph := "", ""
	if b.Customer != nil {
		name, ph = b.Customer.Name, b.Customer.Phone
	}
	total := b.Price
	if b.OrderSummary != nil && b.OrderSummary.Total > 0 {
		total = b.OrderSummary.Total
	}
	items := ""
	for i, it := range b.Items {
		if i > 0 {
			items += "; "
		}
		items += fmt.Sprintf("%dx %s", it.Qty, it.Name)
	}
	return []any{
		b.ID, b.CreatedAt, name, ph, b.Service, b.Price, b.Date,
		string(b.Status), b.AssignedTo, b.Store, items, total, b.Notes,
	}
}
