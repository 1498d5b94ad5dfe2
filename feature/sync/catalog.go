package sync

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"catalog-sync/feature/sync/models"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Variant is one color x size instance of a product in the POS catalog.
type Variant struct {
	Index      int
	SKU        string
	Price      int
	ColorName  string
	ColorIndex int
	Size       string
	// ImageURL is the variant's image, chosen by color index. Empty when
	// the color index exceeds the product's image list.
	ImageURL string
}

// ProductPayload is the POS product-creation request.
type ProductPayload struct {
	Name     string
	CustomID string
	Price    int
	Colors   []string
	Sizes    []string
	Variants []Variant
}

// CatalogPublisher builds and sends POS product payloads and verifies
// creation by search.
type CatalogPublisher struct {
	catalog Catalog
	logger  *zap.Logger
}

// NewCatalogPublisher creates a catalog publisher.
func NewCatalogPublisher(catalog Catalog, logger *zap.Logger) *CatalogPublisher {
	return &CatalogPublisher{catalog: catalog, logger: logger}
}

// Publish sends the product-creation payload. This is the one hard
// requirement in the per-product pipeline.
func (c *CatalogPublisher) Publish(ctx context.Context, product models.Product, cache *AssetCache) error {
	payload := BuildPayload(product, cache)

	remoteID, err := c.catalog.Create(ctx, payload)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", product.Code, err)
	}

	c.logger.Info("product published",
		zap.String("code", product.Code),
		zap.String("custom_id", payload.CustomID),
		zap.Int("variants", len(payload.Variants)),
		zap.String("remote_id", remoteID))
	return nil
}

// Verify re-queries the catalog for the created product. It searches by the
// POS product code first, falling back to the plain code, and succeeds iff
// at least one match comes back. A miss is a warning, not a failure: the
// search index may lag a successful creation.
func (c *CatalogPublisher) Verify(ctx context.Context, product models.Product) (*RemoteProduct, error) {
	codes := []string{product.POSCode}
	if product.Code != product.POSCode {
		codes = append(codes, product.Code)
	}

	for _, code := range codes {
		if code == "" {
			continue
		}
		result, err := c.catalog.Search(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("catalog search for %q failed: %w", code, err)
		}
		if len(result.Products) > 0 {
			first := result.Products[0]
			c.logger.Info("product verified",
				zap.String("code", product.Code),
				zap.String("remote_id", first.ID),
				zap.Int("total_entries", result.Total))
			return &first, nil
		}
	}

	return nil, ErrNotFound
}

// BuildPayload assembles the attribute x variant matrix for a product.
// Variant count is |colors| x |sizes|; each variant's image is the
// product image at its color's index, shared across that color's sizes.
func BuildPayload(p models.Product, cache *AssetCache) ProductPayload {
	payload := ProductPayload{
		Name:     p.POSName,
		CustomID: p.POSCode,
		Price:    int(p.POSPrice),
		Colors:   p.Colors,
		Sizes:    p.Sizes,
	}

	base := NormalizeSKU(p.Code)
	idx := 0
	for colorIdx, color := range p.Colors {
		imageURL := variantImageURL(p, colorIdx, cache)
		for _, size := range p.Sizes {
			payload.Variants = append(payload.Variants, Variant{
				Index:      idx,
				SKU:        NormalizeSKU(base + "-" + color + "-" + size),
				Price:      int(p.POSPrice),
				ColorName:  color,
				ColorIndex: colorIdx,
				Size:       size,
				ImageURL:   imageURL,
			})
			idx++
		}
	}
	return payload
}

// variantImageURL picks the image for a color index. Out of range means no
// image for that variant, not an error.
func variantImageURL(p models.Product, colorIdx int, cache *AssetCache) string {
	if colorIdx >= len(p.Images) {
		return ""
	}
	imageID := p.Images[colorIdx]
	if asset, ok := cache.Asset(imageID); ok {
		return asset.URL
	}
	if strings.HasPrefix(imageID, "http://") || strings.HasPrefix(imageID, "https://") {
		return imageID
	}
	return ""
}

// skuStripper builds a transformer that decomposes to NFD and drops
// combining marks, which removes Vietnamese diacritics while preserving
// base letters. A chain keeps internal state across Transform calls, so a
// fresh one is built per use rather than shared between product workers.
func skuStripper() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// NormalizeSKU strips diacritics, upper-cases, and removes spaces. The
// transformation is pure and total, so equal inputs always yield equal SKUs.
func NormalizeSKU(s string) string {
	// Đ does not decompose under NFD and needs an explicit mapping.
	s = strings.NewReplacer("Đ", "D", "đ", "d").Replace(s)

	stripped, _, err := transform.String(skuStripper(), s)
	if err != nil {
		stripped = s
	}
	return strings.ReplaceAll(strings.ToUpper(stripped), " ", "")
}
