package sync

import (
	"context"

	"catalog-sync/feature/sync/models"

	"go.uber.org/zap"
)

// ComboEngine derives bundle products from a product's combo specs and
// creates them against the POS catalog. Every spec is attempted regardless
// of earlier failures; one bad entry never aborts its siblings.
type ComboEngine struct {
	catalog Catalog
	logger  *zap.Logger
}

// NewComboEngine creates a combo engine.
func NewComboEngine(catalog Catalog, logger *zap.Logger) *ComboEngine {
	return &ComboEngine{catalog: catalog, logger: logger}
}

// CreateCombos creates one bundle per spec, each referencing the verified
// remote product as its sole line item. It returns true only when every
// spec succeeded; a product without specs succeeds trivially.
func (e *ComboEngine) CreateCombos(ctx context.Context, product models.Product, remote RemoteProduct) bool {
	if len(product.Combos) == 0 {
		return true
	}

	log := e.logger.With(zap.String("code", product.Code))
	allOK := true

	for i, spec := range product.Combos {
		if reason := validateComboSpec(spec); reason != "" {
			log.Warn("invalid combo spec",
				zap.Int("index", i),
				zap.String("combo", spec.Name),
				zap.String("reason", reason))
			allOK = false
			continue
		}

		payload := ComboPayload{
			Name:      spec.Name,
			Value:     int(spec.Price),
			ProductID: remote.ID,
			Count:     spec.Quantity,
		}

		remoteID, err := e.catalog.CreateCombo(ctx, payload)
		if err != nil {
			log.Warn("combo creation failed",
				zap.Int("index", i),
				zap.String("combo", spec.Name),
				zap.Error(err))
			allOK = false
			continue
		}

		log.Info("combo created",
			zap.String("combo", spec.Name),
			zap.Int("quantity", spec.Quantity),
			zap.String("remote_id", remoteID))
	}

	return allOK
}

// validateComboSpec returns a rejection reason, or empty for a valid spec.
func validateComboSpec(spec models.ComboSpec) string {
	switch {
	case spec.Name == "":
		return "empty name"
	case spec.Price <= 0:
		return "price must be positive"
	case spec.Quantity <= 0:
		return "quantity must be positive"
	default:
		return ""
	}
}
