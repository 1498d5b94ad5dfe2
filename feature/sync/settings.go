package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog-sync/feature/sync/models"

	"go.uber.org/zap"
)

// SettingsSynchronizer merges per-product text and photo data into the
// messaging platform's quick-reply template set. Writes are guarded by the
// platform's optimistic concurrency key; a lost race is retried once
// in-pass after re-reading.
type SettingsSynchronizer struct {
	settings MessagingSettings
	cdnBase  string
	logger   *zap.Logger
}

// NewSettingsSynchronizer creates a settings synchronizer. cdnBase is the
// public content root used to build fallback asset URLs.
func NewSettingsSynchronizer(settings MessagingSettings, cdnBase string, logger *zap.Logger) *SettingsSynchronizer {
	return &SettingsSynchronizer{
		settings: settings,
		cdnBase:  strings.TrimRight(cdnBase, "/"),
		logger:   logger,
	}
}

// Sync fetches the template set, substitutes the product's entries, and
// writes it back under the concurrency key.
func (s *SettingsSynchronizer) Sync(ctx context.Context, product models.Product, cache *AssetCache) error {
	page, err := s.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch settings: %w", err)
	}
	if page.Key == "" {
		return errors.New("settings response carried no concurrency key")
	}

	err = s.settings.Put(ctx, s.merge(page.Replies, product, cache), page.Key)
	if !errors.Is(err, ErrConflict) {
		return err
	}

	// The remote key advanced since we read it. Retry once with fresh state.
	s.logger.Warn("settings key conflict, retrying", zap.String("code", product.Code))
	page, err = s.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to re-fetch settings after conflict: %w", err)
	}
	return s.settings.Put(ctx, s.merge(page.Replies, product, cache), page.Key)
}

// shortcutFields maps quick-reply shortcut categories to the product's
// message templates. The product's own code is a dedicated category
// carrying the price-quote template.
func shortcutFields(p models.Product) map[string][]models.Message {
	return map[string][]models.Message{
		strings.ToLower(p.Code): p.PriceQuote,
		"1b":                    p.Message1B,
		"2b":                    p.Message2B,
		"3b":                    p.Message3B,
		"4b":                    p.Message4B,
		"cl":                    p.MessageCL,
		"ld":                    p.MessageLD,
	}
}

// merge substitutes the product's messages into matching template entries.
// Entries for other products pass through untouched.
func (s *SettingsSynchronizer) merge(replies []models.QuickReply, p models.Product, cache *AssetCache) []models.QuickReply {
	fields := shortcutFields(p)

	out := make([]models.QuickReply, len(replies))
	for i, reply := range replies {
		if msgs, ok := fields[strings.ToLower(reply.Shortcut)]; ok && len(msgs) > 0 {
			for j := range reply.Messages {
				if j >= len(msgs) {
					break
				}
				if msgs[j].Text != "" {
					reply.Messages[j].Message = msgs[j].Text
				}
				if len(msgs[j].Images) > 0 {
					reply.Messages[j].Photos = s.photos(msgs[j].Images, cache)
				}
			}
		}

		// The entry coded with the product replaces its lead photos with
		// the product's own image set.
		if reply.Code == p.Code && len(reply.Messages) > 0 && len(p.Images) > 0 {
			reply.Messages[0].Photos = s.photos(p.Images, cache)
		}

		out[i] = reply
	}
	return out
}

// photos resolves image identifiers through the pass's asset map. An
// unresolved identifier falls back to a deterministically constructed URL
// so the template never carries a dangling reference.
func (s *SettingsSynchronizer) photos(imageIDs []string, cache *AssetCache) []models.Photo {
	photos := make([]models.Photo, 0, len(imageIDs))
	for _, id := range imageIDs {
		if asset, ok := cache.Asset(id); ok {
			photos = append(photos, models.Photo{
				ID:         asset.ID,
				URL:        asset.URL,
				PreviewURL: asset.PreviewURL,
				Name:       asset.Name,
				Dims:       asset.Dims,
			})
			continue
		}
		url := s.fallbackURL(id)
		photos = append(photos, models.Photo{
			URL:        url,
			PreviewURL: url,
			Name:       id,
		})
	}
	return photos
}

// fallbackURL builds the platform's conventional content URL for an image
// identifier that never made it through the upload stage.
func (s *SettingsSynchronizer) fallbackURL(imageID string) string {
	if strings.HasPrefix(imageID, "http://") || strings.HasPrefix(imageID, "https://") {
		return imageID
	}
	return s.cdnBase + "/" + imageID
}
