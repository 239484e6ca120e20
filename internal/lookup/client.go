// Package lookup resolves barcodes against the Open Food Facts catalog.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lager/internal/config"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// maxResponseBytes caps how much of an upstream payload is decoded
const maxResponseBytes = 2 << 20

// Result is the advisory product information found for a barcode
type Result struct {
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

type productResponse struct {
	Status  int                    `json:"status"`
	Product map[string]interface{} `json:"product"`
}

// Client queries the upstream catalog. Every failure degrades to "not found".
type Client struct {
	httpClient *http.Client
	baseURL    string
	lang       string
	logger     *zap.Logger
}

// NewClient creates a catalog client preferring names in the given locale
func NewClient(cfg config.LookupConfig, locale string, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		lang:       baseLanguage(locale),
		logger:     logger,
	}
}

// Lookup fetches product details for code. ok is false when the catalog has
// no usable entry or could not be reached.
func (c *Client) Lookup(ctx context.Context, code string) (Result, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Result{}, false
	}

	endpoint := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Warn("Failed to build lookup request", zap.String("barcode", code), zap.Error(err))
		return Result{}, false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Product lookup failed", zap.String("barcode", code), zap.Error(err))
		return Result{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Product lookup returned non-success status",
			zap.String("barcode", code),
			zap.Int("status", resp.StatusCode),
		)
		return Result{}, false
	}

	var payload productResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		c.logger.Warn("Malformed lookup response", zap.String("barcode", code), zap.Error(err))
		return Result{}, false
	}

	if payload.Status != 1 || payload.Product == nil {
		c.logger.Debug("No catalog entry for barcode", zap.String("barcode", code))
		return Result{}, false
	}

	result := Result{
		Name:  firstString(payload.Product, "product_name_"+c.lang, "product_name"),
		Image: firstString(payload.Product, "image_front_url", "image_url"),
	}
	if result.Name == "" && result.Image == "" {
		return Result{}, false
	}

	c.logger.Debug("Catalog entry found", zap.String("barcode", code), zap.String("name", result.Name))
	return result, true
}

// firstString returns the first non-empty string value among keys
func firstString(fields map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := fields[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func baseLanguage(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return "de"
	}
	base, _ := tag.Base()
	return base.String()
}

// Disabled never finds anything. It stands in when lookups are switched off.
type Disabled struct{}

func (Disabled) Lookup(ctx context.Context, code string) (Result, bool) {
	return Result{}, false
}
