package sync

import (
	"context"
	"errors"

	"catalog-sync/core/state"
	"catalog-sync/feature/sync/models"
)

var (
	// ErrConflict reports that a settings write lost the optimistic
	// concurrency race; the caller should re-read and retry in-pass.
	ErrConflict = errors.New("settings key conflict")

	// ErrNotFound reports that a remote lookup returned nothing.
	ErrNotFound = errors.New("not found")
)

// ProductSource yields the current ordered product list for one pass.
type ProductSource interface {
	Fetch(ctx context.Context) ([]models.Product, error)
}

// ImageHost downloads source images to local storage and uploads them to
// the messaging platform.
type ImageHost interface {
	// Download fetches the image for the identifier and returns a local path.
	Download(ctx context.Context, imageID string) (string, error)
	// Upload pushes a local file and returns the remote asset handle.
	Upload(ctx context.Context, localPath string) (models.UploadedAsset, error)
}

// SettingsPage is the platform's template set plus its concurrency key,
// fetched in one call.
type SettingsPage struct {
	Replies []models.QuickReply
	Key     string
}

// MessagingSettings reads and writes the quick-reply template set.
type MessagingSettings interface {
	Get(ctx context.Context) (SettingsPage, error)
	// Put writes the template set under the concurrency key. A stale key
	// yields ErrConflict.
	Put(ctx context.Context, replies []models.QuickReply, key string) error
}

// RemoteProduct is a POS-side product returned by search.
type RemoteProduct struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	CustomID string `json:"custom_id"`
}

// SearchResult is the outcome of a POS catalog search.
type SearchResult struct {
	// Total is the shop-wide entry count reported by the API.
	Total int
	// Products are the matches for the searched code.
	Products []RemoteProduct
}

// ComboPayload is one bundle-creation request: the verified remote product
// as the sole line item at the given quantity.
type ComboPayload struct {
	Name      string
	Value     int
	ProductID string
	Count     int
}

// Catalog creates and queries POS products.
type Catalog interface {
	// Create publishes the product payload; the returned remote id may be
	// empty when the API does not echo one.
	Create(ctx context.Context, payload ProductPayload) (string, error)
	Search(ctx context.Context, code string) (SearchResult, error)
	CreateCombo(ctx context.Context, payload ComboPayload) (string, error)
}

// StateStore persists fingerprints and the processed set between passes.
// core/state.Store is the production implementation.
type StateStore interface {
	Load(ctx context.Context) (state.Snapshot, error)
	Commit(ctx context.Context, snap state.Snapshot) error
	ResetProcessed(ctx context.Context) error
}
