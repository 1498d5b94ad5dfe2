package sync

import (
	stdsync "sync"

	"catalog-sync/feature/sync/models"
)

// AssetCache memoizes both image pipeline stages for the duration of one
// pass: downloaded local paths and uploaded remote assets, keyed by the
// source image identifier. Products processed in parallel share it, so all
// access goes through the mutex.
type AssetCache struct {
	mu         stdsync.Mutex
	downloaded map[string]string
	assets     map[string]models.UploadedAsset
}

// NewAssetCache creates an empty cache scoped to a single pass.
func NewAssetCache() *AssetCache {
	return &AssetCache{
		downloaded: make(map[string]string),
		assets:     make(map[string]models.UploadedAsset),
	}
}

// LocalPath returns the downloaded file path for an image identifier.
func (c *AssetCache) LocalPath(imageID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	path, ok := c.downloaded[imageID]
	return path, ok
}

// PutLocalPath records a successful download.
func (c *AssetCache) PutLocalPath(imageID, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.downloaded[imageID] = path
}

// Asset returns the uploaded asset for an image identifier.
func (c *AssetCache) Asset(imageID string) (models.UploadedAsset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	asset, ok := c.assets[imageID]
	return asset, ok
}

// PutAsset records a successful upload.
func (c *AssetCache) PutAsset(imageID string, asset models.UploadedAsset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assets[imageID] = asset
}

// Assets returns a copy of the uploaded asset map.
func (c *AssetCache) Assets() map[string]models.UploadedAsset {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]models.UploadedAsset, len(c.assets))
	for k, v := range c.assets {
		out[k] = v
	}
	return out
}
