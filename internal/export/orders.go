// Package export renders admin reports as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/tealeg/xlsx"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	timeLayout      = "2006-01-02 15:04:05"
)

var orderHeaders = []string{
	"ID", "UserID", "Status", "TotalAmount", "PaymentMethod",
	"PhoneNumber", "ShippingAddress", "Items", "CreatedAt", "UpdatedAt",
}

// WriteOrders writes one sheet with a row per order. Items are flattened to
// "name x qty @ price" joined by semicolons.
func WriteOrders(w io.Writer, orders []domain.Order) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("could not create orders sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range orderHeaders {
		headerRow.AddCell().SetString(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetInt64(o.ID)
		row.AddCell().SetInt64(o.UserID)
		row.AddCell().SetString(string(o.Status))
		row.AddCell().SetString(o.TotalAmount.StringFixed(2))
		row.AddCell().SetString(string(o.PaymentMethod))
		row.AddCell().SetString(o.PhoneNumber)
		row.AddCell().SetString(o.ShippingAddress)
		row.AddCell().SetString(describeItems(o.Items))
		row.AddCell().SetString(o.CreatedAt.Format(timeLayout))
		row.AddCell().SetString(o.UpdatedAt.Format(timeLayout))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("could not write orders workbook: %w", err)
	}
	return nil
}

func describeItems(items []domain.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x%d @ %s", item.ProductName, item.Quantity, item.Price.StringFixed(2)))
	}
	return strings.Join(parts, "; ")
}
