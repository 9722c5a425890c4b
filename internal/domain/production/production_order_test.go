package production

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/backend/internal/domain/shared"
)

func newTestOrder(t *testing.T, items ...Item) *Order {
	t.Helper()
	if len(items) == 0 {
		items = []Item{{SKU: "SKU-1", Quantity: 100}}
	}
	o, err := NewOrder("PO-2026-001", "factory-cn", "warehouse-us", items, nil, "", "tester", "tester@example.com")
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("creates an in_production order with an activity entry", func(t *testing.T) {
		o := newTestOrder(t)
		assert.Equal(t, StatusInProduction, o.Status)
		require.Len(t, o.Activity, 1)
		assert.Equal(t, "created", o.Activity[0].Action)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderCreated, events[0].EventType())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		cases := []struct {
			name        string
			orderNumber string
			factory     string
			items       []Item
		}{
			{"empty order number", "", "factory-cn", []Item{{SKU: "A", Quantity: 1}}},
			{"empty factory", "PO-1", "", []Item{{SKU: "A", Quantity: 1}}},
			{"no items", "PO-1", "factory-cn", nil},
			{"zero quantity", "PO-1", "factory-cn", []Item{{SKU: "A", Quantity: 0}}},
			{"duplicate sku", "PO-1", "factory-cn", []Item{{SKU: "A", Quantity: 1}, {SKU: "A", Quantity: 2}}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := NewOrder(tc.orderNumber, tc.factory, "warehouse-us", tc.items, nil, "", "tester", "tester@example.com")
				require.Error(t, err)
				assert.Equal(t, "VALIDATION_ERROR", err.(*shared.DomainError).Code)
			})
		}
	})
}

func TestLogDelivery(t *testing.T) {
	t.Run("partial then complete", func(t *testing.T) {
		o := newTestOrder(t, Item{SKU: "SKU-1", Quantity: 100})

		applied, err := o.LogDelivery(map[string]int{"SKU-1": 30}, "tester", "first batch")
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"SKU-1": 30}, applied)
		assert.Equal(t, StatusPartial, o.Status)

		applied, err = o.LogDelivery(map[string]int{"SKU-1": 70}, "tester", "")
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"SKU-1": 70}, applied)
		assert.Equal(t, StatusCompleted, o.Status)

		events := o.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypeOrderCompleted, events[1].EventType())
	})

	t.Run("caps over-delivery at remaining", func(t *testing.T) {
		o := newTestOrder(t, Item{SKU: "SKU-1", Quantity: 10})
		applied, err := o.LogDelivery(map[string]int{"SKU-1": 50}, "tester", "")
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"SKU-1": 10}, applied)
		assert.Equal(t, StatusCompleted, o.Status)
	})

	t.Run("appends an activity entry with the applied quantities", func(t *testing.T) {
		o := newTestOrder(t)
		_, err := o.LogDelivery(map[string]int{"SKU-1": 5}, "tester", "spot check")
		require.NoError(t, err)
		last := o.Activity[len(o.Activity)-1]
		assert.Equal(t, "delivery", last.Action)
		assert.Equal(t, map[string]int{"SKU-1": 5}, last.Delivered)
	})

	t.Run("rejects unknown SKU non-positive deltas and terminal status", func(t *testing.T) {
		o := newTestOrder(t)
		_, err := o.LogDelivery(map[string]int{"SKU-MISSING": 1}, "tester", "")
		assert.Error(t, err)
		_, err = o.LogDelivery(map[string]int{"SKU-1": 0}, "tester", "")
		assert.Error(t, err)

		require.NoError(t, o.Cancel("factory fire", "tester"))
		_, err = o.LogDelivery(map[string]int{"SKU-1": 1}, "tester", "")
		assert.Error(t, err)
	})
}

func TestOrderCancel(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.Cancel("mold retooling", "tester"))
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Error(t, o.Cancel("again", "tester"))
}

func TestUpdateDetails(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.UpdateDetails("factory-vn", "", nil, "moved production", "tester"))
	assert.Equal(t, "factory-vn", o.Factory)
	assert.Equal(t, "warehouse-us", o.Destination)

	require.NoError(t, o.Cancel("", "tester"))
	assert.Error(t, o.UpdateDetails("factory-cn", "", nil, "", "tester"))
}

func TestOrderRemainingBySKU(t *testing.T) {
	o := newTestOrder(t, Item{SKU: "SKU-1", Quantity: 10}, Item{SKU: "SKU-2", Quantity: 5})
	_, err := o.LogDelivery(map[string]int{"SKU-2": 5}, "tester", "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"SKU-1": 10}, o.RemainingBySKU())
}
