package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"catalog-sync/core/config"
	"catalog-sync/feature/sync/models"
)

// FeedSource reads the catalog feed: a JSON document served over HTTP or
// exported to a local file. Both a bare product array and a wrapper object
// with a "products" key are accepted.
type FeedSource struct {
	feed string
	http *http.Client
}

// NewFeedSource creates a source for the configured feed location.
func NewFeedSource(cfg config.SourceConfig) *FeedSource {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &FeedSource{
		feed: cfg.Feed,
		http: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

// Fetch returns the current product list in feed order.
func (s *FeedSource) Fetch(ctx context.Context) ([]models.Product, error) {
	data, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return decodeFeed(data)
}

func (s *FeedSource) read(ctx context.Context) ([]byte, error) {
	if !strings.HasPrefix(s.feed, "http://") && !strings.HasPrefix(s.feed, "https://") {
		data, err := os.ReadFile(s.feed)
		if err != nil {
			return nil, fmt.Errorf("cannot read feed %s: %w", s.feed, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feed, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed fetch returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("feed read failed: %w", err)
	}
	return data, nil
}

func decodeFeed(data []byte) ([]models.Product, error) {
	var products []models.Product
	if err := json.Unmarshal(data, &products); err == nil {
		return products, nil
	}

	var wrapper struct {
		Products []models.Product `json:"products"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("invalid feed document: %w", err)
	}
	return wrapper.Products, nil
}
