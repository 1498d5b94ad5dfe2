package cmd

import (
	"context"
	"fmt"

	"catalog-sync/core/config"
	"catalog-sync/core/database"
	"catalog-sync/core/state"
	"catalog-sync/core/storage"
	"catalog-sync/feature/sync"
	"catalog-sync/feature/sync/remote"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// engine bundles the wired reconciliation components shared by the run and
// serve commands.
type engine struct {
	orchestrator *sync.Orchestrator
	store        *state.Store
}

// buildEngine wires config into a ready orchestrator: database-backed state,
// remote clients, optional staging storage, and the per-product pipeline.
func buildEngine(ctx context.Context, cfg *config.Config, logg *zap.Logger) (*engine, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store, err := state.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state store: %w", err)
	}

	// Staging storage is optional; without it downloaded images are simply
	// not archived.
	var staging storage.Client
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to check staging bucket: %w", err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, cfg.Storage.Bucket, minio.MakeBucketOptions{Region: cfg.Storage.Region}); err != nil {
				return nil, fmt.Errorf("failed to create staging bucket: %w", err)
			}
			logg.Info("created staging bucket", zap.String("bucket", cfg.Storage.Bucket))
		}
		staging = client
	}

	source := remote.NewFeedSource(cfg.Source)
	pancake := remote.NewPancakeClient(cfg.Messaging)
	images := remote.NewImageService(remote.NewDriveDownloader(cfg.Sync), pancake)
	catalog := remote.NewPosClient(cfg.Catalog)

	pipeline := sync.NewImagePipeline(images, staging, cfg.Storage.Bucket, cfg.Sync.ImageWorkers, logg)
	settings := sync.NewSettingsSynchronizer(pancake, cfg.Messaging.CDNBase, logg)
	publisher := sync.NewCatalogPublisher(catalog, logg)
	combos := sync.NewComboEngine(catalog, logg)
	processor := sync.NewProcessor(pipeline, settings, publisher, combos, cfg.Sync.RequireImages, logg)
	detector := sync.NewDetector(logg)

	return &engine{
		orchestrator: sync.NewOrchestrator(source, store, detector, processor, cfg.Sync.Workers, logg),
		store:        store,
	}, nil
}
