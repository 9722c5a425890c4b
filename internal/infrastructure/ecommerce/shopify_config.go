package ecommerce

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ShopifyConfig holds configuration for the Shopify Admin REST API
type ShopifyConfig struct {
	// ShopDomain is the myshopify domain, e.g. "acme.myshopify.com"
	ShopDomain string
	// AccessToken is the Admin API access token
	AccessToken string
	// APIVersion is the Admin API version, e.g. "2024-10"
	APIVersion string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
	// PageSize is the per-page limit for paginated reads (max 250)
	PageSize int
	// BaseURLOverride replaces the shop domain URL, used in tests
	BaseURLOverride string
}

// Errors for Shopify configuration
var (
	ErrShopifyConfigMissingDomain = errors.New("shopify: shop domain is required")
	ErrShopifyConfigMissingToken  = errors.New("shopify: access token is required")
)

// Validate validates the configuration and fills defaults
func (c *ShopifyConfig) Validate() error {
	if c.ShopDomain == "" && c.BaseURLOverride == "" {
		return ErrShopifyConfigMissingDomain
	}
	if c.AccessToken == "" {
		return ErrShopifyConfigMissingToken
	}
	if c.APIVersion == "" {
		c.APIVersion = "2024-10"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.PageSize <= 0 || c.PageSize > 250 {
		c.PageSize = 250
	}
	return nil
}

// BaseURL returns the versioned Admin API base URL
func (c *ShopifyConfig) BaseURL() string {
	if c.BaseURLOverride != "" {
		return strings.TrimSuffix(c.BaseURLOverride, "/")
	}
	domain := c.ShopDomain
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "https://" + domain
	}
	return fmt.Sprintf("%s/admin/api/%s", strings.TrimSuffix(domain, "/"), c.APIVersion)
}
