package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"catalog-sync/feature/sync/models"
)

// fingerprintFields is the change-relevant subset of a product. The code is
// deliberately excluded: a rename is an unchanged fingerprint under a new
// code. Struct marshaling fixes the field order, so the hash is stable
// regardless of how the product was assembled.
type fingerprintFields struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Price         float64 `json:"price"`
	Material      string  `json:"material"`
	ImageCount    int     `json:"image_count"`
	HasPriceQuote bool    `json:"has_price_quote"`
}

// Fingerprint returns the hex-encoded content fingerprint of a product.
func Fingerprint(p models.Product) string {
	f := fingerprintFields{
		Name:          p.POSName,
		Type:          p.Type,
		Price:         p.Price,
		Material:      p.Material,
		ImageCount:    len(p.Images),
		HasPriceQuote: len(p.PriceQuote) > 0,
	}

	// Marshaling a flat struct of scalars cannot fail.
	b, _ := json.Marshal(f)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
