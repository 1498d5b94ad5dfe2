package sync

import (
	"context"
	stdsync "sync"

	"go.uber.org/zap"
)

// Service exposes the engine to the status server: it retains the most
// recent pass report and summarizes the persisted state.
type Service struct {
	orchestrator *Orchestrator
	store        StateStore
	logger       *zap.Logger

	mu   stdsync.RWMutex
	last *PassReport
}

// NewService creates a status service around the orchestrator.
func NewService(orchestrator *Orchestrator, store StateStore, logger *zap.Logger) *Service {
	return &Service{
		orchestrator: orchestrator,
		store:        store,
		logger:       logger,
	}
}

// RecordPass retains a finished pass report for the status API.
func (s *Service) RecordPass(report *PassReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = report
}

// LastPass returns the most recent pass report, or nil before the first pass.
func (s *Service) LastPass() *PassReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// StateSummary is the persisted-state view served by the status API.
type StateSummary struct {
	Fingerprints int    `json:"fingerprints"`
	Processed    int    `json:"processed"`
	LastUpdated  string `json:"last_updated,omitempty"`
}

// StateSummary loads and summarizes the persisted state.
func (s *Service) StateSummary(ctx context.Context) (*StateSummary, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	summary := &StateSummary{
		Fingerprints: len(snap.Fingerprints),
		Processed:    len(snap.Processed),
	}
	if !snap.LastUpdated.IsZero() {
		summary.LastUpdated = snap.LastUpdated.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return summary, nil
}
