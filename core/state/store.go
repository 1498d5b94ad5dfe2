package state

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists fingerprints and the processed set between passes.
// It is owned by the orchestrator; worker goroutines never touch it.
type Store struct {
	db *gorm.DB
}

// NewStore migrates the state schema and returns a store.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&ProductFingerprint{}, &ProcessedCode{}, &SyncMeta{}); err != nil {
		return nil, fmt.Errorf("failed to migrate state schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Load reads the full persisted state.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	snap := NewSnapshot()

	var fps []ProductFingerprint
	if err := s.db.WithContext(ctx).Find(&fps).Error; err != nil {
		return snap, fmt.Errorf("failed to load fingerprints: %w", err)
	}
	for _, fp := range fps {
		snap.Fingerprints[fp.Code] = fp.Fingerprint
	}

	var processed []ProcessedCode
	if err := s.db.WithContext(ctx).Find(&processed).Error; err != nil {
		return snap, fmt.Errorf("failed to load processed set: %w", err)
	}
	for _, p := range processed {
		snap.Processed[p.Code] = struct{}{}
	}

	var meta SyncMeta
	err := s.db.WithContext(ctx).First(&meta, 1).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return snap, fmt.Errorf("failed to load sync meta: %w", err)
	}
	snap.LastUpdated = meta.LastUpdated

	return snap, nil
}

// Commit replaces the persisted state with the snapshot in one transaction.
// The replace is wholesale: codes absent from the snapshot are dropped,
// which is how removed products leave the store without a deletion event.
func (s *Store) Commit(ctx context.Context, snap Snapshot) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&ProductFingerprint{}).Error; err != nil {
			return fmt.Errorf("failed to clear fingerprints: %w", err)
		}
		if len(snap.Fingerprints) > 0 {
			rows := make([]ProductFingerprint, 0, len(snap.Fingerprints))
			for code, fp := range snap.Fingerprints {
				rows = append(rows, ProductFingerprint{Code: code, Fingerprint: fp})
			}
			if err := tx.CreateInBatches(rows, 200).Error; err != nil {
				return fmt.Errorf("failed to write fingerprints: %w", err)
			}
		}

		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&ProcessedCode{}).Error; err != nil {
			return fmt.Errorf("failed to clear processed set: %w", err)
		}
		if len(snap.Processed) > 0 {
			rows := make([]ProcessedCode, 0, len(snap.Processed))
			for code := range snap.Processed {
				rows = append(rows, ProcessedCode{Code: code})
			}
			if err := tx.CreateInBatches(rows, 200).Error; err != nil {
				return fmt.Errorf("failed to write processed set: %w", err)
			}
		}

		meta := SyncMeta{ID: 1, LastUpdated: time.Now()}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&meta).Error; err != nil {
			return fmt.Errorf("failed to write sync meta: %w", err)
		}
		return nil
	})
}

// ResetProcessed clears the processed set, starting a new epoch.
func (s *Store) ResetProcessed(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&ProcessedCode{}).Error
	if err != nil {
		return fmt.Errorf("failed to reset processed set: %w", err)
	}
	return nil
}
