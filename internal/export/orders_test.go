package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func TestWriteOrders(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	orders := []domain.Order{{
		ID:              12,
		UserID:          3,
		Status:          domain.StatusShipped,
		TotalAmount:     decimal.NewFromInt(2200),
		PaymentMethod:   domain.PaymentMpesa,
		ShippingAddress: "Moi Avenue, Nairobi",
		Items: []domain.OrderItem{
			{ProductName: "Mug", Quantity: 2, Price: decimal.NewFromInt(500)},
			{ProductName: "Speaker", Quantity: 1, Price: decimal.NewFromInt(1200)},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteOrders(&buf, orders))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")), "xlsx is a zip archive")

	book, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, book.Sheets, 1)
	sheet := book.Sheets[0]
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "TotalAmount", sheet.Rows[0].Cells[3].Value)
	row := sheet.Rows[1]
	assert.Equal(t, "12", row.Cells[0].Value)
	assert.Equal(t, "shipped", row.Cells[2].Value)
	assert.Equal(t, "2200.00", row.Cells[3].Value)
	assert.Equal(t, "Mug x2 @ 500.00; Speaker x1 @ 1200.00", row.Cells[7].Value)
	assert.Equal(t, "2024-03-01 09:30:00", row.Cells[8].Value)
}

func TestWriteOrdersEmpty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteOrders(&buf, nil))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))
}
