package sync

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"catalog-sync/core/storage"
	"catalog-sync/feature/sync/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ImageResult reports how far a product's image pipeline got.
type ImageResult struct {
	Total      int
	Downloaded int
	Uploaded   int
}

// OK reports whether every referenced image both downloaded and uploaded.
func (r ImageResult) OK() bool {
	return r.Uploaded == r.Total
}

// ImagePipeline downloads a product's referenced images and uploads them to
// the messaging platform. Downloads fan out concurrently up to a configured
// cap; uploads run sequentially per product, matching the remote API's rate
// tolerance. Downloaded files are optionally archived to staging storage so
// a failed upload can be re-driven without re-downloading.
type ImagePipeline struct {
	host          ImageHost
	staging       storage.Client
	stagingBucket string
	workers       int
	logger        *zap.Logger

	// flight collapses concurrent downloads of the same image id. Two
	// products sharing an image would otherwise race through the cache
	// check and truncate a destination file the other is still reading.
	flight singleflight.Group
}

// NewImagePipeline creates an image pipeline. staging may be nil to
// disable the archive.
func NewImagePipeline(host ImageHost, staging storage.Client, stagingBucket string, workers int, logger *zap.Logger) *ImagePipeline {
	if workers <= 0 {
		workers = 4
	}
	return &ImagePipeline{
		host:          host,
		staging:       staging,
		stagingBucket: stagingBucket,
		workers:       workers,
		logger:        logger,
	}
}

// Process runs both stages for one product. It returns success only if
// every referenced identifier downloaded and uploaded; the partial asset
// map in the cache remains usable by later stages either way.
func (p *ImagePipeline) Process(ctx context.Context, product models.Product, cache *AssetCache) ImageResult {
	ids := dedupeImageIDs(product.Images)
	result := ImageResult{Total: len(ids)}
	if len(ids) == 0 {
		return result
	}

	log := p.logger.With(zap.String("code", product.Code))

	// Stage 1: bounded concurrent downloads. A failure here has a
	// different remediation path than an upload failure (source-host
	// permissions vs asset-store outage), so it is logged distinctly.
	g := new(errgroup.Group)
	g.SetLimit(p.workers)
	for _, id := range ids {
		id := id
		if _, done := cache.Asset(id); done {
			continue
		}
		if _, have := cache.LocalPath(id); have {
			continue
		}
		g.Go(func() error {
			_, err, _ := p.flight.Do(id, func() (any, error) {
				if path, have := cache.LocalPath(id); have {
					return path, nil
				}
				path, err := p.host.Download(ctx, id)
				if err != nil {
					return nil, err
				}
				cache.PutLocalPath(id, path)
				p.archive(ctx, id, path, log)
				return path, nil
			})
			if err != nil {
				log.Error("image download failed", zap.String("image_id", id), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	// Stage 2: uploads, memoized across products referencing the same image.
	for _, id := range ids {
		if _, done := cache.Asset(id); done {
			result.Downloaded++
			result.Uploaded++
			continue
		}
		path, have := cache.LocalPath(id)
		if !have {
			continue
		}
		result.Downloaded++

		asset, err := p.host.Upload(ctx, path)
		if err != nil {
			log.Error("image upload failed", zap.String("image_id", id), zap.Error(err))
			continue
		}
		cache.PutAsset(id, asset)
		result.Uploaded++
	}

	if !result.OK() {
		log.Warn("image pipeline incomplete",
			zap.Int("uploaded", result.Uploaded),
			zap.Int("total", result.Total))
	}
	return result
}

// archive copies a downloaded file into the staging bucket. Failures are
// soft; the archive only exists to avoid repeat downloads on re-drives.
func (p *ImagePipeline) archive(ctx context.Context, imageID, path string, log *zap.Logger) {
	if p.staging == nil {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		log.Warn("staging archive skipped", zap.String("image_id", imageID), zap.Error(err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		log.Warn("staging archive skipped", zap.String("image_id", imageID), zap.Error(err))
		return
	}

	objectName := "staging/" + filepath.Base(path)
	_, err = p.staging.PutObject(ctx, p.stagingBucket, objectName, f, info.Size(), minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		log.Warn("staging archive failed", zap.String("image_id", imageID), zap.Error(err))
	}
}

// dedupeImageIDs trims, drops empties, and de-duplicates preserving order.
func dedupeImageIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
