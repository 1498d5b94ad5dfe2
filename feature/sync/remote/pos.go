package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"catalog-sync/core/config"
	"catalog-sync/feature/sync"
)

// PosClient talks to the POS catalog API for one shop.
type PosClient struct {
	cfg  config.CatalogConfig
	http *http.Client
}

// NewPosClient creates a catalog client from configuration.
func NewPosClient(cfg config.CatalogConfig) *PosClient {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &PosClient{
		cfg:  cfg,
		http: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

func (c *PosClient) shopURL(resource string) string {
	return fmt.Sprintf("%s/shops/%s/%s", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.ShopID, resource)
}

// Create publishes the product with its full variant matrix. The API takes a
// url-encoded form with indexed variation keys.
func (c *PosClient) Create(ctx context.Context, payload sync.ProductPayload) (string, error) {
	form := url.Values{}
	form.Set("product[name]", payload.Name)
	form.Set("product[custom_id]", payload.CustomID)
	for i, v := range payload.Variants {
		prefix := fmt.Sprintf("product[variations][%d]", i)
		form.Set(prefix+"[custom_id]", v.SKU)
		form.Set(prefix+"[retail_price]", strconv.Itoa(v.Price))
		form.Set(prefix+"[fields][0][name]", "color")
		form.Set(prefix+"[fields][0][value]", v.ColorName)
		form.Set(prefix+"[fields][1][name]", "size")
		form.Set(prefix+"[fields][1][value]", v.Size)
		if v.ImageURL != "" {
			form.Set(prefix+"[images][0]", v.ImageURL)
		}
	}

	endpoint := fmt.Sprintf("%s?access_token=%s", c.shopURL("products"), c.cfg.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("product create failed: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			ID json.Number `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("invalid product create response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !body.Success {
		return "", fmt.Errorf("product create rejected (HTTP %d): %s", resp.StatusCode, body.Message)
	}
	return body.Data.ID.String(), nil
}

// Search queries the catalog by product code.
func (c *PosClient) Search(ctx context.Context, code string) (sync.SearchResult, error) {
	endpoint := fmt.Sprintf("%s?access_token=%s&search=%s&include_combo_info=true",
		c.shopURL("products"), c.cfg.AccessToken, url.QueryEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return sync.SearchResult{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return sync.SearchResult{}, fmt.Errorf("product search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return sync.SearchResult{}, fmt.Errorf("product search returned HTTP %d", resp.StatusCode)
	}

	var body struct {
		Data []struct {
			ID       json.Number `json:"id"`
			Name     string      `json:"name"`
			CustomID string      `json:"custom_id"`
		} `json:"data"`
		TotalEntries int `json:"total_entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return sync.SearchResult{}, fmt.Errorf("invalid product search response: %w", err)
	}

	result := sync.SearchResult{Total: body.TotalEntries}
	for _, p := range body.Data {
		result.Products = append(result.Products, sync.RemoteProduct{
			ID:       p.ID.String(),
			Name:     p.Name,
			CustomID: p.CustomID,
		})
	}
	return result, nil
}

// CreateCombo creates a value bundle referencing one verified product.
func (c *PosClient) CreateCombo(ctx context.Context, payload sync.ComboPayload) (string, error) {
	variation := map[string]any{
		"count":        payload.Count,
		"product_id":   comboProductID(payload.ProductID),
		"variation_id": nil,
	}
	combo := map[string]any{
		"combo_product": map[string]any{
			"name":           payload.Name,
			"value_combo":    payload.Value,
			"is_value_combo": true,
			"variations":     []any{variation},
		},
	}

	data, err := json.Marshal(combo)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s?access_token=%s", c.shopURL("combo_products"), c.cfg.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("combo create failed: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			ID json.Number `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("invalid combo create response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !body.Success {
		return "", fmt.Errorf("combo create rejected (HTTP %d): %s", resp.StatusCode, body.Message)
	}
	return body.Data.ID.String(), nil
}

// comboProductID keeps numeric remote ids numeric on the wire.
func comboProductID(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}
