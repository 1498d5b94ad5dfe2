package state

import "time"

// ProductFingerprint is one row of the persisted fingerprint map.
type ProductFingerprint struct {
	// Code is the product business key.
	Code string `gorm:"primaryKey;size:191"`
	// Fingerprint is the hex-encoded content fingerprint.
	Fingerprint string `gorm:"size:64"`
}

// ProcessedCode marks a product code as fully processed in the current epoch.
type ProcessedCode struct {
	Code string `gorm:"primaryKey;size:191"`
}

// SyncMeta is a single-row table carrying pass-level metadata.
type SyncMeta struct {
	ID          uint `gorm:"primaryKey"`
	LastUpdated time.Time
}

// Snapshot is the in-memory image of the persisted state for one pass.
// Commit replaces the stored state with the snapshot wholesale, so a
// write-then-read round-trips exactly.
type Snapshot struct {
	// Fingerprints maps product code to content fingerprint.
	Fingerprints map[string]string
	// Processed is the set of codes completed in the current epoch.
	Processed map[string]struct{}
	// LastUpdated is when the state was last committed.
	LastUpdated time.Time
}

// NewSnapshot returns an empty snapshot with initialized maps.
func NewSnapshot() Snapshot {
	return Snapshot{
		Fingerprints: make(map[string]string),
		Processed:    make(map[string]struct{}),
	}
}

// IsProcessed reports whether the code completed the pipeline this epoch.
func (s Snapshot) IsProcessed(code string) bool {
	_, ok := s.Processed[code]
	return ok
}
