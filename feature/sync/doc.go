// Package sync implements the catalog reconciliation engine.
//
// One pass flows strictly top to bottom: the product source yields the
// current catalog, the detector classifies each product against the
// persisted fingerprint snapshot, and changed products fan out through the
// per-product pipeline (images, quick-reply settings, POS publish,
// verification, combos) under a bounded worker pool. The orchestrator is
// the sole writer of the durable state, committing a wholesale snapshot at
// the end of the pass.
//
// Remote systems are reached through the capability interfaces in
// ports.go; HTTP implementations live in the remote sub-package.
package sync
