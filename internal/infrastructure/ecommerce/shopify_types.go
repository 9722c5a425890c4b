package ecommerce

// ShopifyLocation is one entry of the locations listing
type ShopifyLocation struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// ShopifyLocationsResponse wraps GET /locations.json
type ShopifyLocationsResponse struct {
	Locations []ShopifyLocation `json:"locations"`
}

// ShopifyVariant is the slice of a product variant the adapter needs: the
// SKU and its inventory item id
type ShopifyVariant struct {
	ID              int64  `json:"id"`
	SKU             string `json:"sku"`
	InventoryItemID int64  `json:"inventory_item_id"`
}

// ShopifyProduct carries the variants of one product
type ShopifyProduct struct {
	ID       int64            `json:"id"`
	Variants []ShopifyVariant `json:"variants"`
}

// ShopifyProductsResponse wraps GET /products.json
type ShopifyProductsResponse struct {
	Products []ShopifyProduct `json:"products"`
}

// ShopifyInventoryLevel is the quantity breakdown of one inventory item at
// one location
type ShopifyInventoryLevel struct {
	InventoryItemID int64 `json:"inventory_item_id"`
	LocationID      int64 `json:"location_id"`
	Available       int   `json:"available"`
	OnHand          int   `json:"on_hand"`
	Committed       int   `json:"committed"`
	Incoming        int   `json:"incoming"`
}

// ShopifyInventoryLevelsResponse wraps GET /inventory_levels.json
type ShopifyInventoryLevelsResponse struct {
	InventoryLevels []ShopifyInventoryLevel `json:"inventory_levels"`
}

// ShopifyInventorySetRequest is the body of POST /inventory_levels/set.json
type ShopifyInventorySetRequest struct {
	LocationID      int64 `json:"location_id"`
	InventoryItemID int64 `json:"inventory_item_id"`
	Available       int   `json:"available"`
}

// ShopifyErrorResponse is the uniform error body of the Admin API
type ShopifyErrorResponse struct {
	Errors any `json:"errors"`
}
