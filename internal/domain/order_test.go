package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateTotal(t *testing.T) {
	items := []OrderItem{
		{ProductID: 1, Quantity: 2, Price: decimal.NewFromInt(500)},
		{ProductID: 2, Quantity: 1, Price: decimal.NewFromInt(1200)},
	}

	total := CalculateTotal(items)

	assert.True(t, total.Equal(decimal.NewFromInt(2200)), "got %s", total)
}

func TestCalculateTotalKeepsMinorUnits(t *testing.T) {
	items := []OrderItem{
		{Quantity: 3, Price: decimal.RequireFromString("0.10")},
		{Quantity: 7, Price: decimal.RequireFromString("19.99")},
	}

	total := CalculateTotal(items)

	assert.Equal(t, "140.23", total.StringFixed(2))
}

func TestCalculateTotalEmpty(t *testing.T) {
	assert.True(t, CalculateTotal(nil).IsZero())
}

func TestRequestedQuantitiesMergesDuplicateLines(t *testing.T) {
	got := RequestedQuantities([]OrderItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
		{ProductID: 1, Quantity: 3},
	})

	assert.Equal(t, map[int64]int{1: 5, 2: 1}, got)
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusProcessing, StatusPending, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusShipped.IsTerminal())
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus(StatusShipped))
	assert.False(t, IsValidStatus("completed"))
	assert.False(t, IsValidStatus(""))
}
