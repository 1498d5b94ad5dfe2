// Package state persists the reconciliation engine's durable bookkeeping:
// the code-to-fingerprint map and the processed set for the current epoch.
//
// The store is mutated only by the orchestrator at the end of a pass, as a
// wholesale snapshot replace inside one transaction. This keeps a pass
// atomic from the store's point of view and guarantees exact round-trips.
package state
