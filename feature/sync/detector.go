package sync

import (
	"sort"

	"catalog-sync/feature/sync/models"

	"go.uber.org/zap"
)

// ChangeKind classifies one product relative to the previous pass.
type ChangeKind string

const (
	// ChangeNew is a product whose code and fingerprint are both unseen.
	ChangeNew ChangeKind = "new"
	// ChangeContent is a known code with a different fingerprint.
	ChangeContent ChangeKind = "content-changed"
	// ChangeRenamed is an unseen code whose fingerprint matches a previous
	// code. Renames trigger combo creation exactly once.
	ChangeRenamed ChangeKind = "renamed"
)

// Change is one product requiring downstream work.
type Change struct {
	Product models.Product
	Kind    ChangeKind
	// PreviousCode is set for renames only.
	PreviousCode string
}

// NeedsCombo reports whether this change requires combo (re)creation.
// Content edits propagate but must not re-create a bundle that already
// references the same remote product.
func (c Change) NeedsCombo() bool {
	return c.Kind == ChangeNew || c.Kind == ChangeRenamed
}

// Detection is the outcome of classifying one pass's products.
type Detection struct {
	// ToProcess lists products requiring any downstream work, in source order.
	ToProcess []Change
	// Next is the wholesale fingerprint snapshot for the end-of-pass commit.
	Next map[string]string
	// Unchanged counts products skipped entirely.
	Unchanged int
}

// Detector compares current products against the previous fingerprint
// snapshot. Re-running it with an unchanged source yields no work.
type Detector struct {
	logger *zap.Logger
}

// NewDetector creates a change detector.
func NewDetector(logger *zap.Logger) *Detector {
	return &Detector{logger: logger}
}

// Classify computes fingerprints for the current products and classifies
// each as unchanged, new, content-changed, or renamed against prev.
func (d *Detector) Classify(products []models.Product, prev map[string]string) Detection {
	det := Detection{Next: make(map[string]string, len(products))}

	// Fingerprint everything first so rename scans can see the whole pass.
	for _, p := range products {
		if p.Code == "" {
			continue
		}
		det.Next[p.Code] = Fingerprint(p)
	}

	for _, p := range products {
		if p.Code == "" {
			continue
		}
		fp := det.Next[p.Code]

		if prevFP, known := prev[p.Code]; known {
			if prevFP == fp {
				det.Unchanged++
				continue
			}
			d.logger.Info("content change detected", zap.String("code", p.Code))
			det.ToProcess = append(det.ToProcess, Change{Product: p, Kind: ChangeContent})
			continue
		}

		if oldCode, ok := d.findRename(p.Code, fp, prev, det.Next); ok {
			d.logger.Info("rename detected",
				zap.String("old_code", oldCode),
				zap.String("code", p.Code))
			det.ToProcess = append(det.ToProcess, Change{Product: p, Kind: ChangeRenamed, PreviousCode: oldCode})
			continue
		}

		d.logger.Info("new product detected", zap.String("code", p.Code))
		det.ToProcess = append(det.ToProcess, Change{Product: p, Kind: ChangeNew})
	}

	return det
}

// findRename scans the previous snapshot for an old code carrying the same
// fingerprint. Codes still present in the current pass are not rename
// candidates. When several old codes match, the lexicographically smallest
// wins so the choice is deterministic; the ambiguity is logged.
func (d *Detector) findRename(code, fp string, prev, current map[string]string) (string, bool) {
	var candidates []string
	for oldCode, oldFP := range prev {
		if oldCode == code || oldFP != fp {
			continue
		}
		if _, stillPresent := current[oldCode]; stillPresent {
			continue
		}
		candidates = append(candidates, oldCode)
	}

	if len(candidates) == 0 {
		return "", false
	}
	sort.Strings(candidates)
	if len(candidates) > 1 {
		d.logger.Warn("ambiguous rename, picking first candidate",
			zap.String("code", code),
			zap.Strings("candidates", candidates))
	}
	return candidates[0], true
}
