package report

import (
	"bytes"
	"testing"
	"time"

	"delliapp/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestOrders(t *testing.T) {
	orders := []models.Order{
		{
			Base:         models.Base{ID: "o1", CreatedAt: time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)},
			CustomerName: "Ana",
			Type:         models.OrderDelivery,
			Status:       models.StatusDelivered,
			Subtotal:     30,
			DeliveryFee:  5,
			Total:        35,
			Items:        []models.OrderItem{{Quantity: 2}, {Quantity: 1}},
		},
		{Base: models.Base{ID: "o2"}, CustomerName: "Bruno", Total: 10},
	}

	data, err := Orders(orders)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(OrdersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, OrdersHeader, rows[0])
	assert.Equal(t, "o1", rows[1][0])
	assert.Equal(t, "2026-03-01 12:30", rows[1][1])
	assert.Equal(t, "3", rows[1][8])

	total, err := f.GetCellValue(OrdersSheet, "L4")
	require.NoError(t, err)
	assert.Equal(t, "45.00", total)
}

func TestOrders_Empty(t *testing.T) {
	data, err := Orders(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(OrdersSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
