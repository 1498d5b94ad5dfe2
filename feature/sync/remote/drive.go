package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"catalog-sync/core/config"
	"catalog-sync/feature/sync/models"
)

// DriveDownloader fetches source images into a local staging directory.
// Image references are either bare Google Drive file IDs or full URLs.
type DriveDownloader struct {
	dir  string
	http *http.Client
}

// NewDriveDownloader creates a downloader writing into cfg.DownloadDir.
func NewDriveDownloader(cfg config.SyncConfig) *DriveDownloader {
	dir := cfg.DownloadDir
	if dir == "" {
		dir = "downloads"
	}
	return &DriveDownloader{
		dir:  dir,
		http: &http.Client{Timeout: 2 * time.Minute},
	}
}

// Download fetches one image and returns the local file path.
func (d *DriveDownloader) Download(ctx context.Context, imageID string) (string, error) {
	src := imageID
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		src = fmt.Sprintf("https://drive.google.com/uc?id=%s&export=download", url.QueryEscape(imageID))
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create download dir: %w", err)
	}
	dest := filepath.Join(d.dir, localName(imageID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", err
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned HTTP %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("cannot create %s: %w", dest, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("write failed for %s: %w", dest, err)
	}
	return dest, nil
}

// localName derives a stable filename for an image reference. URL references
// use their path basename; bare IDs get a .jpg suffix.
func localName(imageID string) string {
	if strings.HasPrefix(imageID, "http://") || strings.HasPrefix(imageID, "https://") {
		if u, err := url.Parse(imageID); err == nil {
			if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
				return base
			}
		}
	}
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '?', '&', '=':
			return '_'
		}
		return r
	}, imageID)
	if filepath.Ext(name) == "" {
		name += ".jpg"
	}
	return name
}

// ImageService pairs the downloader with the messaging upload endpoint to
// satisfy the engine's image host contract.
type ImageService struct {
	downloader *DriveDownloader
	uploader   *PancakeClient
}

// NewImageService combines a downloader and an upload client.
func NewImageService(downloader *DriveDownloader, uploader *PancakeClient) *ImageService {
	return &ImageService{downloader: downloader, uploader: uploader}
}

func (s *ImageService) Download(ctx context.Context, imageID string) (string, error) {
	return s.downloader.Download(ctx, imageID)
}

func (s *ImageService) Upload(ctx context.Context, localPath string) (models.UploadedAsset, error) {
	return s.uploader.Upload(ctx, localPath)
}
