package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"catalog-sync/core/config"
	"catalog-sync/feature/sync"
	"catalog-sync/feature/sync/models"
)

// PancakeClient talks to the messaging platform: quick-reply settings and
// content uploads for one page.
type PancakeClient struct {
	cfg  config.MessagingConfig
	http *http.Client
}

// NewPancakeClient creates a messaging client from configuration.
func NewPancakeClient(cfg config.MessagingConfig) *PancakeClient {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &PancakeClient{
		cfg:  cfg,
		http: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

func (c *PancakeClient) settingsURL() string {
	return fmt.Sprintf("%s/pages/%s/settings", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.PageID)
}

func (c *PancakeClient) contentsURL() string {
	return fmt.Sprintf("%s/pages/%s/contents", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.PageID)
}

// Get fetches the quick-reply template set and its concurrency key in one
// call.
func (c *PancakeClient) Get(ctx context.Context) (sync.SettingsPage, error) {
	url := fmt.Sprintf("%s?access_token=%s&separate_pos=true", c.settingsURL(), c.cfg.AccessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return sync.SettingsPage{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return sync.SettingsPage{}, fmt.Errorf("settings fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return sync.SettingsPage{}, fmt.Errorf("settings fetch returned HTTP %d", resp.StatusCode)
	}

	var body struct {
		Settings struct {
			QuickReplies       []models.QuickReply `json:"quick_replies"`
			CurrentSettingsKey string              `json:"current_settings_key"`
		} `json:"settings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return sync.SettingsPage{}, fmt.Errorf("invalid settings response: %w", err)
	}

	return sync.SettingsPage{
		Replies: body.Settings.QuickReplies,
		Key:     body.Settings.CurrentSettingsKey,
	}, nil
}

// Put writes the template set back under the concurrency key. A stale key
// surfaces as sync.ErrConflict so the synchronizer can retry in-pass.
func (c *PancakeClient) Put(ctx context.Context, replies []models.QuickReply, key string) error {
	changes, err := json.Marshal(map[string]any{"quick_replies": replies})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("changes", string(changes)); err != nil {
		return err
	}
	if err := form.WriteField("current_settings_key", key); err != nil {
		return err
	}
	if err := form.Close(); err != nil {
		return err
	}

	url := fmt.Sprintf("%s?access_token=%s", c.settingsURL(), c.cfg.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("settings update failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return sync.ErrConflict
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("invalid settings update response: %w", err)
	}
	if resp.StatusCode == http.StatusOK && body.Success {
		return nil
	}
	if strings.Contains(strings.ToLower(body.Message), "key") {
		return sync.ErrConflict
	}
	return fmt.Errorf("settings update rejected: %s", body.Message)
}

// Upload pushes a local image file and returns the platform asset handle.
func (c *PancakeClient) Upload(ctx context.Context, localPath string) (models.UploadedAsset, error) {
	var asset models.UploadedAsset

	data, err := readFile(localPath)
	if err != nil {
		return asset, err
	}
	filename := filepath.Base(localPath)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return asset, err
	}
	if _, err := part.Write(data); err != nil {
		return asset, err
	}
	if err := form.WriteField("action", "upload"); err != nil {
		return asset, err
	}
	if err := form.WriteField("needsCompress", "false"); err != nil {
		return asset, err
	}
	if err := form.Close(); err != nil {
		return asset, err
	}

	url := fmt.Sprintf("%s?access_token=%s", c.contentsURL(), c.cfg.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return asset, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return asset, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return asset, fmt.Errorf("upload returned HTTP %d", resp.StatusCode)
	}

	var body struct {
		Success           bool             `json:"success"`
		Message           string           `json:"message"`
		ContentID         string           `json:"content_id"`
		ContentURL        string           `json:"content_url"`
		ContentPreviewURL string           `json:"content_preview_url"`
		Name              string           `json:"name"`
		ImageData         models.ImageDims `json:"image_data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return asset, fmt.Errorf("invalid upload response: %w", err)
	}
	if !body.Success {
		return asset, fmt.Errorf("upload rejected: %s", body.Message)
	}

	name := body.Name
	if name == "" {
		name = filename
	}
	return models.UploadedAsset{
		ID:         body.ContentID,
		URL:        body.ContentURL,
		PreviewURL: body.ContentPreviewURL,
		Name:       name,
		Dims:       body.ImageData,
	}, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}
