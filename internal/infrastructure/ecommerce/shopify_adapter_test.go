package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/backend/internal/domain/inventory"
)

func TestShopifyConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *ShopifyConfig
		wantErr error
	}{
		{
			name:   "valid config",
			config: &ShopifyConfig{ShopDomain: "acme.myshopify.com", AccessToken: "shpat_test"},
		},
		{
			name:    "missing domain",
			config:  &ShopifyConfig{AccessToken: "shpat_test"},
			wantErr: ErrShopifyConfigMissingDomain,
		},
		{
			name:    "missing token",
			config:  &ShopifyConfig{ShopDomain: "acme.myshopify.com"},
			wantErr: ErrShopifyConfigMissingToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tt.config.APIVersion)
			assert.True(t, tt.config.PageSize > 0)
			assert.Contains(t, tt.config.BaseURL(), "acme.myshopify.com/admin/api/")
		})
	}
}

func TestNextPageURL(t *testing.T) {
	link := `<https://acme.myshopify.com/admin/api/2024-10/products.json?page_info=abc&limit=2>; rel="next", <https://x>; rel="previous"`
	assert.Equal(t, "https://acme.myshopify.com/admin/api/2024-10/products.json?page_info=abc&limit=2", nextPageURL(link))
	assert.Equal(t, "", nextPageURL(`<https://x>; rel="previous"`))
	assert.Equal(t, "", nextPageURL(""))
}

func newShopifyTestServer(t *testing.T) (*httptest.Server, *ShopifyAdapter) {
	t.Helper()

	var server *httptest.Server
	mux := http.NewServeMux()

	mux.HandleFunc("/locations.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ShopifyLocationsResponse{Locations: []ShopifyLocation{
			{ID: 1, Name: "LA Office", Active: true},
			{ID: 2, Name: "Closed WH", Active: false},
		}})
	})

	mux.HandleFunc("/products.json", func(w http.ResponseWriter, r *http.Request) {
		// two pages linked via the Link header cursor
		if r.URL.Query().Get("page_info") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/products.json?page_info=p2>; rel="next"`, server.URL))
			json.NewEncoder(w).Encode(ShopifyProductsResponse{Products: []ShopifyProduct{
				{ID: 10, Variants: []ShopifyVariant{{ID: 100, SKU: "X1", InventoryItemID: 1001}}},
			}})
			return
		}
		json.NewEncoder(w).Encode(ShopifyProductsResponse{Products: []ShopifyProduct{
			{ID: 11, Variants: []ShopifyVariant{{ID: 101, SKU: "X2", InventoryItemID: 1002}}},
		}})
	})

	mux.HandleFunc("/inventory_levels.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ShopifyInventoryLevelsResponse{InventoryLevels: []ShopifyInventoryLevel{
			{InventoryItemID: 1001, LocationID: 1, Available: 42, OnHand: 50, Committed: 8},
			{InventoryItemID: 1002, LocationID: 1, Available: 7, OnHand: 7},
			{InventoryItemID: 9999, LocationID: 1, Available: 3}, // no SKU mapping
		}})
	})

	mux.HandleFunc("/inventory_levels/set.json", func(w http.ResponseWriter, r *http.Request) {
		var req ShopifyInventorySetRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.InventoryItemID == 1002 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(ShopifyErrorResponse{Errors: "item is untracked"})
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)

	adapter, err := NewShopifyAdapter(&ShopifyConfig{
		AccessToken:     "shpat_test",
		BaseURLOverride: server.URL,
	}, nil)
	require.NoError(t, err)
	return server, adapter
}

func TestShopifyAdapterFetchStockLevels(t *testing.T) {
	_, adapter := newShopifyTestServer(t)

	snapshot, err := adapter.FetchStockLevels(context.Background())
	require.NoError(t, err)

	// inactive locations are skipped
	require.Len(t, snapshot, 1)
	levels := snapshot["LA Office"]
	require.NotNil(t, levels)

	assert.Equal(t, 42, levels["X1"].Available)
	assert.Equal(t, 50, levels["X1"].OnHand)
	assert.Equal(t, 8, levels["X1"].Committed)
	assert.Equal(t, 7, levels["X2"].Available)

	// unmapped inventory items are dropped
	assert.Len(t, levels, 2)
	assert.Equal(t, 42, snapshot.AvailableAt("LA Office", "X1"))
	assert.Equal(t, 0, snapshot.AvailableAt("Nowhere", "X1"))
}

func TestShopifyAdapterUpdateStock(t *testing.T) {
	_, adapter := newShopifyTestServer(t)

	t.Run("reports per-item outcomes", func(t *testing.T) {
		result, err := adapter.UpdateStock(context.Background(), "LA Office", []inventory.StockUpdate{
			{SKU: "X1", Available: 20},
			{SKU: "X2", Available: 5},       // platform rejects
			{SKU: "GHOST", Available: 1},    // unknown SKU
		})
		require.NoError(t, err)

		assert.Equal(t, inventory.SyncStatusPartial, result.Status)
		assert.Equal(t, 3, result.TotalCount)
		assert.Equal(t, 1, result.SuccessCount)
		assert.Equal(t, 2, result.FailedCount)
		require.Len(t, result.FailedItems, 2)
	})

	t.Run("unknown location is an error", func(t *testing.T) {
		_, err := adapter.UpdateStock(context.Background(), "Nowhere", []inventory.StockUpdate{{SKU: "X1", Available: 1}})
		assert.ErrorIs(t, err, inventory.ErrPlatformRequestFailed)
	})
}
