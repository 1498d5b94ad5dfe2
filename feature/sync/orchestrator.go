package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PassReport summarizes one reconciliation pass.
type PassReport struct {
	PassID     string    `json:"pass_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	// Fetched is the number of products the source yielded.
	Fetched int `json:"fetched"`
	// Unchanged counts products skipped by the change detector.
	Unchanged int `json:"unchanged"`
	// Skipped counts products already processed this epoch.
	Skipped int `json:"skipped"`
	// Attempted and Completed count products entering and finishing the
	// pipeline.
	Attempted int `json:"attempted"`
	Completed int `json:"completed"`
	// SoftFailures totals tolerated problems across all products.
	SoftFailures int       `json:"soft_failures"`
	Outcomes     []Outcome `json:"outcomes,omitempty"`
}

// Orchestrator drives reconciliation passes: fetch, detect, fan out, and
// commit the updated state. It is the only component that touches the
// state store.
type Orchestrator struct {
	source    ProductSource
	store     StateStore
	detector  *Detector
	processor *Processor
	workers   int
	logger    *zap.Logger
}

// NewOrchestrator creates an orchestrator. workers bounds the per-product
// fan-out independently of the product count.
func NewOrchestrator(source ProductSource, store StateStore, detector *Detector, processor *Processor, workers int, logger *zap.Logger) *Orchestrator {
	if workers <= 0 {
		workers = 4
	}
	return &Orchestrator{
		source:    source,
		store:     store,
		detector:  detector,
		processor: processor,
		workers:   workers,
		logger:    logger,
	}
}

// RunOnce performs one reconciliation pass. A source fetch failure aborts
// the pass with the state untouched; per-product failures are isolated and
// reflected in the report.
func (o *Orchestrator) RunOnce(ctx context.Context) (*PassReport, error) {
	report := &PassReport{
		PassID:    uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := o.logger.With(zap.String("pass_id", report.PassID))

	snap, err := o.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	products, err := o.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("source fetch failed: %w", err)
	}
	report.Fetched = len(products)

	det := o.detector.Classify(products, snap.Fingerprints)
	report.Unchanged = det.Unchanged
	log.Info("change detection finished",
		zap.Int("fetched", report.Fetched),
		zap.Int("to_process", len(det.ToProcess)),
		zap.Int("unchanged", det.Unchanged))

	// One asset cache per pass, shared across products so identical
	// images upload once.
	cache := NewAssetCache()

	var (
		mu       stdsync.Mutex
		outcomes []Outcome
	)

	g := new(errgroup.Group)
	g.SetLimit(o.workers)
	for _, change := range det.ToProcess {
		change := change
		if snap.IsProcessed(change.Product.Code) {
			report.Skipped++
			log.Info("skipping already processed product", zap.String("code", change.Product.Code))
			continue
		}
		report.Attempted++
		g.Go(func() error {
			outcome := o.processor.Process(ctx, change, cache)
			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	// Commit: fingerprints replaced wholesale with the current pass,
	// completed codes joining the processed set.
	next := snap
	next.Fingerprints = det.Next
	for _, outcome := range outcomes {
		report.SoftFailures += len(outcome.SoftFailures)
		if outcome.Completed {
			report.Completed++
			next.Processed[outcome.Code] = struct{}{}
		}
	}
	report.Outcomes = outcomes

	if err := o.store.Commit(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to commit state: %w", err)
	}

	report.FinishedAt = time.Now()
	log.Info("pass finished",
		zap.Int("attempted", report.Attempted),
		zap.Int("completed", report.Completed),
		zap.Int("skipped", report.Skipped),
		zap.Int("soft_failures", report.SoftFailures))
	return report, nil
}

// RunForever runs passes on a fixed interval until the context is
// cancelled. With autoReset, the processed set clears at every wake-up so
// each cycle reprocesses everything the detector flags.
func (o *Orchestrator) RunForever(ctx context.Context, interval time.Duration, autoReset bool, onPass func(*PassReport)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if autoReset {
			if err := o.store.ResetProcessed(ctx); err != nil {
				o.logger.Error("failed to reset processed set", zap.Error(err))
			}
		}

		report, err := o.RunOnce(ctx)
		if err != nil {
			o.logger.Error("pass failed", zap.Error(err))
		} else if onPass != nil {
			onPass(report)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
