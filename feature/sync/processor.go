package sync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// State is a product's position in the per-pass pipeline.
type State int

const (
	StatePending State = iota
	StateImagesDone
	StateSettingsDone
	StatePublished
	StateVerified
	StateComboDone
	StateComplete
	StateFailed
)

// String returns the state's wire name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateImagesDone:
		return "images-done"
	case StateSettingsDone:
		return "settings-done"
	case StatePublished:
		return "published"
	case StateVerified:
		return "verified"
	case StateComboDone:
		return "combo-done"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of running one product through the pipeline.
type Outcome struct {
	Code string     `json:"code"`
	Kind ChangeKind `json:"kind"`
	// State is the furthest state the product reached.
	State State `json:"state"`
	// Completed is true when the full chain succeeded; only then does the
	// code join the processed set.
	Completed bool `json:"completed"`
	// SoftFailures lists tolerated problems (asset gaps, verification
	// misses) for the pass report.
	SoftFailures []string `json:"soft_failures,omitempty"`
	// Err is the hard failure that stopped the pipeline, if any.
	Err error `json:"-"`
}

// Processor drives one product through images, settings, publish,
// verification, and combos.
type Processor struct {
	images        *ImagePipeline
	settings      *SettingsSynchronizer
	publisher     *CatalogPublisher
	combos        *ComboEngine
	requireImages bool
	logger        *zap.Logger
}

// NewProcessor creates a product processor. requireImages promotes image
// pipeline failure from soft to hard.
func NewProcessor(images *ImagePipeline, settings *SettingsSynchronizer, publisher *CatalogPublisher, combos *ComboEngine, requireImages bool, logger *zap.Logger) *Processor {
	return &Processor{
		images:        images,
		settings:      settings,
		publisher:     publisher,
		combos:        combos,
		requireImages: requireImages,
		logger:        logger,
	}
}

// Process runs the full state machine for one change. Panics are converted
// to a failed outcome so one product cannot abort its siblings.
func (p *Processor) Process(ctx context.Context, change Change, cache *AssetCache) (out Outcome) {
	product := change.Product
	out = Outcome{Code: product.Code, Kind: change.Kind, State: StatePending}
	log := p.logger.With(zap.String("code", product.Code), zap.String("kind", string(change.Kind)))

	defer func() {
		if r := recover(); r != nil {
			out.State = StateFailed
			out.Completed = false
			out.Err = fmt.Errorf("panic processing %s: %v", product.Code, r)
			log.Error("product processing panicked", zap.Any("panic", r))
		}
	}()

	// Images: soft unless configured hard.
	imgResult := p.images.Process(ctx, product, cache)
	if !imgResult.OK() {
		msg := fmt.Sprintf("images %d/%d uploaded", imgResult.Uploaded, imgResult.Total)
		if p.requireImages {
			out.State = StateFailed
			out.Err = errors.New(msg)
			log.Error("image pipeline failed", zap.String("detail", msg))
			return out
		}
		out.SoftFailures = append(out.SoftFailures, msg)
	}
	out.State = StateImagesDone

	// Settings: soft-fail tolerated.
	if err := p.settings.Sync(ctx, product, cache); err != nil {
		out.SoftFailures = append(out.SoftFailures, "settings: "+err.Error())
		log.Warn("settings sync failed", zap.Error(err))
	}
	out.State = StateSettingsDone

	// Publish: the hard requirement.
	if err := p.publisher.Publish(ctx, product, cache); err != nil {
		out.State = StateFailed
		out.Err = err
		log.Error("publish failed", zap.Error(err))
		return out
	}
	out.State = StatePublished

	// Verify: best-effort; a miss never blocks the next transition.
	remote, err := p.publisher.Verify(ctx, product)
	if err != nil {
		out.SoftFailures = append(out.SoftFailures, "verification: "+err.Error())
		log.Warn("verification miss", zap.Error(err))
	}
	out.State = StateVerified

	if change.NeedsCombo() {
		if remote == nil {
			// Combos reference the verified remote id; without a cached
			// search result there is nothing to attach the bundle to.
			out.Err = fmt.Errorf("combos for %s skipped: product not verified", product.Code)
			log.Warn("combos skipped, no verified product")
			return out
		}
		if !p.combos.CreateCombos(ctx, product, *remote) {
			out.Err = fmt.Errorf("one or more combos failed for %s", product.Code)
			return out
		}
		out.State = StateComboDone
	}

	out.State = StateComplete
	out.Completed = true
	log.Info("product completed")
	return out
}
