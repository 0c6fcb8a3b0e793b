// Package report renders spreadsheet exports for restaurant owners.
package report

import (
	"bytes"
	"fmt"

	"delliapp/models"

	"github.com/xuri/excelize/v2"
)

const OrdersSheet = "Orders"

var OrdersHeader = []string{
	"Order ID",
	"Created At",
	"Customer",
	"Phone",
	"Type",
	"Status",
	"Payment Method",
	"Payment Status",
	"Items",
	"Subtotal",
	"Delivery Fee",
	"Total",
}

// Orders renders orders as an xlsx workbook.
func Orders(orders []models.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", OrdersSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FDE9D9"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("money style: %w", err)
	}

	for i, h := range OrdersHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(OrdersSheet, cell, h); err != nil {
			return nil, err
		}
	}
	last, _ := excelize.ColumnNumberToName(len(OrdersHeader))
	if err := f.SetCellStyle(OrdersSheet, "A1", last+"1", headerStyle); err != nil {
		return nil, err
	}

	var total float64
	for i, o := range orders {
		row := i + 2
		values := []any{
			o.ID,
			o.CreatedAt.Format("2006-01-02 15:04"),
			o.CustomerName,
			o.CustomerPhone,
			string(o.Type),
			string(o.Status),
			string(o.PaymentMethod),
			string(o.PaymentStatus),
			itemCount(o),
			o.Subtotal,
			o.DeliveryFee,
			o.Total,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(OrdersSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		total += o.Total
	}

	if len(orders) > 0 {
		end := len(orders) + 1
		if err := f.SetCellStyle(OrdersSheet, "J2", fmt.Sprintf("L%d", end+1), moneyStyle); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(OrdersSheet, fmt.Sprintf("K%d", end+1), "Total"); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(OrdersSheet, fmt.Sprintf("L%d", end+1), total); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(OrdersSheet, "A", "A", 38)
	_ = f.SetColWidth(OrdersSheet, "B", "D", 18)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func itemCount(o models.Order) int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
