package incoming

import (
	"sort"

	"github.com/stockpilot/backend/internal/domain/transfer"
)

// Rebuild derives a fresh projection from the full transfer ledger. Only
// tracked transfers still on the water or in the air contribute, and each
// contributes its remaining (shipped minus received) quantity per SKU.
// The ledger is sorted by creation time then ID before application, so two
// rebuilds over the same ledger produce identical detail ordering and the
// serialized document is byte-stable.
func Rebuild(transfers []*transfer.Transfer) *Cache {
	cache := NewCache()

	ordered := make([]*transfer.Transfer, len(transfers))
	copy(ordered, transfers)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID.String() < ordered[j].ID.String()
	})

	for _, t := range ordered {
		if !t.Type.Tracked() {
			continue
		}
		if t.Status != transfer.StatusInTransit && t.Status != transfer.StatusPartial {
			continue
		}
		var lines []QuantityLine
		for _, item := range t.Items {
			if remaining := item.Remaining(); remaining > 0 {
				lines = append(lines, QuantityLine{SKU: item.SKU, Quantity: remaining})
			}
		}
		if len(lines) == 0 {
			continue
		}
		cache.Add(t.Destination, t.Type.Mode(), lines, DetailMeta{
			TransferID:        t.ID,
			Note:              t.Notes,
			CreatedAt:         t.CreatedAt,
			ExpectedArrivalAt: t.ETA,
		})
	}

	return cache
}
