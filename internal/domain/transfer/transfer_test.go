package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/backend/internal/domain/shared"
)

func newTestTransfer(t *testing.T, items ...Item) *Transfer {
	t.Helper()
	if len(items) == 0 {
		items = []Item{{SKU: "SKU-1", Quantity: 10}}
	}
	tr, err := NewTransfer("factory-cn", "warehouse-us", TypeSea, items, "tester", "tester@example.com")
	require.NoError(t, err)
	return tr
}

func TestNewTransfer(t *testing.T) {
	t.Run("creates a draft with normalized items", func(t *testing.T) {
		tr := newTestTransfer(t, Item{SKU: "SKU-1", Quantity: 10, ReceivedQuantity: 7})

		assert.Equal(t, StatusDraft, tr.Status)
		assert.Equal(t, 0, tr.Items[0].ReceivedQuantity)
		assert.Equal(t, "tester", tr.CreatedBy)

		events := tr.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeTransferCreated, events[0].EventType())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		cases := []struct {
			name        string
			origin      string
			destination string
			typ         Type
			items       []Item
		}{
			{"empty origin", "", "warehouse-us", TypeSea, []Item{{SKU: "A", Quantity: 1}}},
			{"same origin and destination", "warehouse-us", "warehouse-us", TypeSea, []Item{{SKU: "A", Quantity: 1}}},
			{"unknown type", "factory-cn", "warehouse-us", Type("truck"), []Item{{SKU: "A", Quantity: 1}}},
			{"no items", "factory-cn", "warehouse-us", TypeSea, nil},
			{"zero quantity", "factory-cn", "warehouse-us", TypeSea, []Item{{SKU: "A", Quantity: 0}}},
			{"duplicate sku", "factory-cn", "warehouse-us", TypeSea, []Item{{SKU: "A", Quantity: 1}, {SKU: "A", Quantity: 2}}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := NewTransfer(tc.origin, tc.destination, tc.typ, tc.items, "tester", "tester@example.com")
				require.Error(t, err)
				assert.Equal(t, "VALIDATION_ERROR", err.(*shared.DomainError).Code)
			})
		}
	})
}

func TestTypeMode(t *testing.T) {
	assert.Equal(t, ModeAir, TypeAirExpress.Mode())
	assert.Equal(t, ModeAir, TypeAirSlow.Mode())
	assert.Equal(t, ModeSea, TypeSea.Mode())
	assert.Equal(t, ModeNone, TypeImmediate.Mode())
	assert.False(t, TypeImmediate.Tracked())
	assert.True(t, TypeSea.Tracked())
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusDraft.CanTransitionTo(StatusInTransit))
	assert.True(t, StatusDraft.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusDraft.CanTransitionTo(StatusDelivered))
	assert.True(t, StatusInTransit.CanTransitionTo(StatusPartial))
	assert.True(t, StatusPartial.CanTransitionTo(StatusPartial))
	assert.False(t, StatusDelivered.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusInTransit))
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, StatusInTransit, DeriveStatus([]Item{{SKU: "A", Quantity: 5}}))
	assert.Equal(t, StatusPartial, DeriveStatus([]Item{{SKU: "A", Quantity: 5, ReceivedQuantity: 2}}))
	assert.Equal(t, StatusPartial, DeriveStatus([]Item{
		{SKU: "A", Quantity: 5, ReceivedQuantity: 5},
		{SKU: "B", Quantity: 3},
	}))
	assert.Equal(t, StatusDelivered, DeriveStatus([]Item{
		{SKU: "A", Quantity: 5, ReceivedQuantity: 5},
		{SKU: "B", Quantity: 3, ReceivedQuantity: 3},
	}))
}

func TestDispatch(t *testing.T) {
	t.Run("moves draft to in_transit", func(t *testing.T) {
		tr := newTestTransfer(t)
		require.NoError(t, tr.Dispatch())
		assert.Equal(t, StatusInTransit, tr.Status)
	})

	t.Run("rejects double dispatch", func(t *testing.T) {
		tr := newTestTransfer(t)
		require.NoError(t, tr.Dispatch())
		assert.Error(t, tr.Dispatch())
	})
}

func TestRecordDelivery(t *testing.T) {
	t.Run("partial then complete", func(t *testing.T) {
		tr := newTestTransfer(t, Item{SKU: "SKU-1", Quantity: 100})
		require.NoError(t, tr.Dispatch())

		applied, err := tr.RecordDelivery(map[string]int{"SKU-1": 40})
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"SKU-1": 40}, applied)
		assert.Equal(t, StatusPartial, tr.Status)
		assert.Equal(t, 60, tr.Items[0].Remaining())

		applied, err = tr.RecordDelivery(map[string]int{"SKU-1": 60})
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"SKU-1": 60}, applied)
		assert.Equal(t, StatusDelivered, tr.Status)
	})

	t.Run("caps over-delivery at the remaining quantity", func(t *testing.T) {
		tr := newTestTransfer(t, Item{SKU: "SKU-1", Quantity: 10})
		require.NoError(t, tr.Dispatch())

		applied, err := tr.RecordDelivery(map[string]int{"SKU-1": 25})
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"SKU-1": 10}, applied)
		assert.Equal(t, StatusDelivered, tr.Status)
		assert.Equal(t, 10, tr.Items[0].ReceivedQuantity)
	})

	t.Run("rejects unknown SKU and non-positive deltas", func(t *testing.T) {
		tr := newTestTransfer(t)
		require.NoError(t, tr.Dispatch())

		_, err := tr.RecordDelivery(map[string]int{"SKU-MISSING": 1})
		assert.Error(t, err)
		_, err = tr.RecordDelivery(map[string]int{"SKU-1": 0})
		assert.Error(t, err)
	})

	t.Run("rejects delivery on draft or terminal transfers", func(t *testing.T) {
		tr := newTestTransfer(t)
		_, err := tr.RecordDelivery(map[string]int{"SKU-1": 1})
		assert.Error(t, err)

		require.NoError(t, tr.Dispatch())
		require.NoError(t, tr.Cancel("supplier recalled the batch", nil))
		_, err = tr.RecordDelivery(map[string]int{"SKU-1": 1})
		assert.Error(t, err)
	})

	t.Run("emits a delivery event only on status entry", func(t *testing.T) {
		tr := newTestTransfer(t, Item{SKU: "SKU-1", Quantity: 100})
		require.NoError(t, tr.Dispatch())
		tr.ClearDomainEvents()

		_, err := tr.RecordDelivery(map[string]int{"SKU-1": 10})
		require.NoError(t, err)
		assert.Len(t, tr.GetDomainEvents(), 1)

		_, err = tr.RecordDelivery(map[string]int{"SKU-1": 10})
		require.NoError(t, err)
		assert.Len(t, tr.GetDomainEvents(), 1)

		_, err = tr.RecordDelivery(map[string]int{"SKU-1": 80})
		require.NoError(t, err)
		assert.Len(t, tr.GetDomainEvents(), 2)
	})
}

func TestReplaceItems(t *testing.T) {
	t.Run("preserves receipts by SKU", func(t *testing.T) {
		tr := newTestTransfer(t, Item{SKU: "SKU-1", Quantity: 10})
		require.NoError(t, tr.Dispatch())
		_, err := tr.RecordDelivery(map[string]int{"SKU-1": 4})
		require.NoError(t, err)

		require.NoError(t, tr.ReplaceItems([]Item{{SKU: "SKU-1", Quantity: 20}}, false))
		assert.Equal(t, 4, tr.Items[0].ReceivedQuantity)
		assert.Equal(t, 20, tr.Items[0].Quantity)
		assert.Equal(t, StatusPartial, tr.Status)
	})

	t.Run("rejects quantity below received", func(t *testing.T) {
		tr := newTestTransfer(t, Item{SKU: "SKU-1", Quantity: 10})
		require.NoError(t, tr.Dispatch())
		_, err := tr.RecordDelivery(map[string]int{"SKU-1": 4})
		require.NoError(t, err)

		err = tr.ReplaceItems([]Item{{SKU: "SKU-1", Quantity: 3}}, false)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", err.(*shared.DomainError).Code)
	})

	t.Run("sku set change with receipts requires confirmation", func(t *testing.T) {
		tr := newTestTransfer(t, Item{SKU: "SKU-1", Quantity: 10})
		require.NoError(t, tr.Dispatch())
		_, err := tr.RecordDelivery(map[string]int{"SKU-1": 4})
		require.NoError(t, err)

		err = tr.ReplaceItems([]Item{{SKU: "SKU-1", Quantity: 10}, {SKU: "SKU-2", Quantity: 5}}, false)
		require.Error(t, err)
		assert.Equal(t, "ITEM_SET_CHANGED_WITH_RECEIPTS", err.(*shared.DomainError).Code)

		require.NoError(t, tr.ReplaceItems([]Item{{SKU: "SKU-1", Quantity: 10}, {SKU: "SKU-2", Quantity: 5}}, true))
		assert.Len(t, tr.Items, 2)
	})

	t.Run("sku set change without receipts needs no confirmation", func(t *testing.T) {
		tr := newTestTransfer(t, Item{SKU: "SKU-1", Quantity: 10})
		require.NoError(t, tr.ReplaceItems([]Item{{SKU: "SKU-2", Quantity: 5}}, false))
		assert.Equal(t, "SKU-2", tr.Items[0].SKU)
	})
}

func TestCancel(t *testing.T) {
	t.Run("cancels from draft and records the reason", func(t *testing.T) {
		tr := newTestTransfer(t)
		require.NoError(t, tr.Cancel("duplicate entry", []RestockedItem{{SKU: "SKU-1", Quantity: 10}}))
		assert.Equal(t, StatusCancelled, tr.Status)
		assert.Equal(t, "Cancelled: duplicate entry", tr.Notes)
	})

	t.Run("keeps existing notes when recording the reason", func(t *testing.T) {
		tr := newTestTransfer(t)
		require.NoError(t, tr.SetShippingDetails("", "", nil, "fragile, keep upright"))
		require.NoError(t, tr.Cancel("supplier recalled the batch", nil))
		assert.Equal(t, "fragile, keep upright\nCancelled: supplier recalled the batch", tr.Notes)
	})

	t.Run("rejects cancelling a delivered transfer", func(t *testing.T) {
		tr := newTestTransfer(t, Item{SKU: "SKU-1", Quantity: 5})
		require.NoError(t, tr.Dispatch())
		_, err := tr.RecordDelivery(map[string]int{"SKU-1": 5})
		require.NoError(t, err)
		assert.Error(t, tr.Cancel("too late", nil))
	})
}

func TestSetShippingDetails(t *testing.T) {
	tr := newTestTransfer(t)
	eta := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, tr.SetShippingDetails("Maersk", "MAEU1234567", &eta, "port of LA"))
	assert.Equal(t, "Maersk", tr.Carrier)
	require.NotNil(t, tr.ETA)
	assert.True(t, eta.Equal(*tr.ETA))

	require.NoError(t, tr.Cancel("", nil))
	assert.Error(t, tr.SetShippingDetails("DHL", "", nil, ""))
}

func TestRemainingBySKU(t *testing.T) {
	tr := newTestTransfer(t, Item{SKU: "SKU-1", Quantity: 10}, Item{SKU: "SKU-2", Quantity: 5})
	require.NoError(t, tr.Dispatch())
	_, err := tr.RecordDelivery(map[string]int{"SKU-2": 5})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"SKU-1": 10}, tr.RemainingBySKU())
}
