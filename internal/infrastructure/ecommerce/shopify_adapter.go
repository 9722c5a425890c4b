package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/domain/inventory"
)

// maxResponseSize is the maximum allowed response size from the Admin API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// linkNextRe extracts the next-page URL from the Link response header
var linkNextRe = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// Ensure ShopifyAdapter implements the platform port
var _ inventory.Platform = (*ShopifyAdapter)(nil)

// ShopifyAdapter implements the inventory.Platform port against the Shopify
// Admin REST API. Reads are cursor-paginated via the Link header; stock
// pushes are per-item and never atomic.
type ShopifyAdapter struct {
	config     *ShopifyConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewShopifyAdapter creates a new adapter with the given configuration
func NewShopifyAdapter(config *ShopifyConfig, logger *zap.Logger) (*ShopifyAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShopifyAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}, nil
}

// FetchStockLevels pulls the live snapshot for every active location: the
// locations listing, the variant catalog (for inventory item to SKU mapping)
// and per-location inventory levels, each read paged to exhaustion.
func (a *ShopifyAdapter) FetchStockLevels(ctx context.Context) (inventory.Snapshot, error) {
	locations, err := a.fetchLocations(ctx)
	if err != nil {
		return nil, err
	}

	skuByItem, err := a.fetchVariantCatalog(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := make(inventory.Snapshot, len(locations))
	for _, loc := range locations {
		if !loc.Active {
			continue
		}
		levels, err := a.fetchInventoryLevels(ctx, loc.ID)
		if err != nil {
			return nil, err
		}
		stock := make(map[string]inventory.StockLevel, len(levels))
		for _, level := range levels {
			sku, ok := skuByItem[level.InventoryItemID]
			if !ok || sku == "" {
				continue
			}
			stock[sku] = inventory.StockLevel{
				SKU:       sku,
				Available: level.Available,
				OnHand:    level.OnHand,
				Committed: level.Committed,
				Incoming:  level.Incoming,
			}
		}
		snapshot[loc.Name] = stock
	}

	return snapshot, nil
}

// UpdateStock sets available quantities at the named location one item at a
// time, collecting per-item failures instead of aborting the batch.
func (a *ShopifyAdapter) UpdateStock(ctx context.Context, location string, updates []inventory.StockUpdate) (*inventory.SyncResult, error) {
	locations, err := a.fetchLocations(ctx)
	if err != nil {
		return nil, err
	}
	var locationID int64
	found := false
	for _, loc := range locations {
		if loc.Name == location {
			locationID = loc.ID
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: unknown location %q", inventory.ErrPlatformRequestFailed, location)
	}

	skuByItem, err := a.fetchVariantCatalog(ctx)
	if err != nil {
		return nil, err
	}
	itemBySKU := make(map[string]int64, len(skuByItem))
	for itemID, sku := range skuByItem {
		itemBySKU[sku] = itemID
	}

	result := &inventory.SyncResult{
		TotalCount: len(updates),
		SyncedAt:   time.Now(),
	}
	for _, update := range updates {
		itemID, ok := itemBySKU[update.SKU]
		if !ok {
			result.FailedCount++
			result.FailedItems = append(result.FailedItems, inventory.SyncFailure{
				SKU:          update.SKU,
				ErrorMessage: inventory.ErrUnknownSKU.Error(),
			})
			continue
		}
		if err := a.setInventoryLevel(ctx, ShopifyInventorySetRequest{
			LocationID:      locationID,
			InventoryItemID: itemID,
			Available:       update.Available,
		}); err != nil {
			a.logger.Warn("Stock update failed",
				zap.String("sku", update.SKU),
				zap.String("location", location),
				zap.Error(err))
			result.FailedCount++
			result.FailedItems = append(result.FailedItems, inventory.SyncFailure{
				SKU:          update.SKU,
				ErrorMessage: err.Error(),
			})
			continue
		}
		result.SuccessCount++
	}
	result.Finalize()

	return result, nil
}

func (a *ShopifyAdapter) fetchLocations(ctx context.Context) ([]ShopifyLocation, error) {
	body, _, err := a.get(ctx, a.config.BaseURL()+"/locations.json")
	if err != nil {
		return nil, err
	}
	var resp ShopifyLocationsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse locations: %v", inventory.ErrPlatformInvalidResponse, err)
	}
	return resp.Locations, nil
}

// fetchVariantCatalog pages through the product catalog building the
// inventory item id to SKU mapping
func (a *ShopifyAdapter) fetchVariantCatalog(ctx context.Context) (map[int64]string, error) {
	skuByItem := make(map[int64]string)
	next := fmt.Sprintf("%s/products.json?limit=%d&fields=id,variants", a.config.BaseURL(), a.config.PageSize)
	for next != "" {
		body, link, err := a.get(ctx, next)
		if err != nil {
			return nil, err
		}
		var resp ShopifyProductsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: failed to parse products: %v", inventory.ErrPlatformInvalidResponse, err)
		}
		for _, product := range resp.Products {
			for _, variant := range product.Variants {
				if variant.SKU != "" {
					skuByItem[variant.InventoryItemID] = variant.SKU
				}
			}
		}
		next = nextPageURL(link)
	}
	return skuByItem, nil
}

func (a *ShopifyAdapter) fetchInventoryLevels(ctx context.Context, locationID int64) ([]ShopifyInventoryLevel, error) {
	var levels []ShopifyInventoryLevel
	next := fmt.Sprintf("%s/inventory_levels.json?location_ids=%s&limit=%d",
		a.config.BaseURL(), url.QueryEscape(strconv.FormatInt(locationID, 10)), a.config.PageSize)
	for next != "" {
		body, link, err := a.get(ctx, next)
		if err != nil {
			return nil, err
		}
		var resp ShopifyInventoryLevelsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: failed to parse inventory levels: %v", inventory.ErrPlatformInvalidResponse, err)
		}
		levels = append(levels, resp.InventoryLevels...)
		next = nextPageURL(link)
	}
	return levels, nil
}

func (a *ShopifyAdapter) setInventoryLevel(ctx context.Context, req ShopifyInventorySetRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	_, _, err = a.do(ctx, http.MethodPost, a.config.BaseURL()+"/inventory_levels/set.json", payload)
	return err
}

func (a *ShopifyAdapter) get(ctx context.Context, rawURL string) ([]byte, string, error) {
	return a.do(ctx, http.MethodGet, rawURL, nil)
}

// do performs one Admin API call, returning the body and the Link header
func (a *ShopifyAdapter) do(ctx context.Context, method, rawURL string, payload []byte) ([]byte, string, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, "", fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", a.config.AccessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", inventory.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, "", fmt.Errorf("shopify: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr ShopifyErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Errors != nil {
			return nil, "", fmt.Errorf("%w: HTTP %d: %v", inventory.ErrPlatformRequestFailed, resp.StatusCode, apiErr.Errors)
		}
		return nil, "", fmt.Errorf("%w: HTTP %d", inventory.ErrPlatformRequestFailed, resp.StatusCode)
	}

	return body, resp.Header.Get("Link"), nil
}

// nextPageURL extracts the rel="next" cursor URL from a Link header
func nextPageURL(link string) string {
	if link == "" {
		return ""
	}
	m := linkNextRe.FindStringSubmatch(link)
	if len(m) != 2 {
		return ""
	}
	return m[1]
}
