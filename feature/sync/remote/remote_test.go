package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"catalog-sync/core/config"
	"catalog-sync/feature/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonDecode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

const feedDocument = `{"products": [
	{"code": "AT001", "pos_name": "Summer Dress", "price": 250000, "type": "dress"},
	{"code": "AT002", "pos_name": "Linen Shirt", "price": 180000, "type": "shirt"}
]}`

func TestFeedSource_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(feedDocument), 0o644))

	source := NewFeedSource(config.SourceConfig{Feed: path})
	products, err := source.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, "AT001", products[0].Code)
	assert.Equal(t, "Summer Dress", products[0].POSName)
	assert.Equal(t, 180000.0, products[1].Price)
}

func TestFeedSource_BareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"code": "AT001"}]`), 0o644))

	source := NewFeedSource(config.SourceConfig{Feed: path})
	products, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
}

func TestFeedSource_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feedDocument))
	}))
	defer server.Close()

	source := NewFeedSource(config.SourceConfig{Feed: server.URL})
	products, err := source.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestFeedSource_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	source := NewFeedSource(config.SourceConfig{Feed: server.URL})
	_, err := source.Fetch(context.Background())
	assert.Error(t, err)
}

func TestFeedSource_InvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"products": 7}`), 0o644))

	source := NewFeedSource(config.SourceConfig{Feed: path})
	_, err := source.Fetch(context.Background())
	assert.Error(t, err)
}

func TestPosClient_CreateSendsVariantForm(t *testing.T) {
	var form map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		assert.Equal(t, "token-1", r.URL.Query().Get("access_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": {"id": 42}}`))
	}))
	defer server.Close()

	client := NewPosClient(config.CatalogConfig{ShopID: "shop-1", AccessToken: "token-1", BaseURL: server.URL})
	id, err := client.Create(context.Background(), sync.ProductPayload{
		Name:     "Summer Dress",
		CustomID: "AT001-POS",
		Variants: []sync.Variant{
			{Index: 0, SKU: "AT001-DO-S", Price: 250000, ColorName: "Đỏ", Size: "S", ImageURL: "https://cdn/red"},
			{Index: 1, SKU: "AT001-DO-M", Price: 250000, ColorName: "Đỏ", Size: "M"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	assert.Equal(t, []string{"Summer Dress"}, form["product[name]"])
	assert.Equal(t, []string{"AT001-DO-S"}, form["product[variations][0][custom_id]"])
	assert.Equal(t, []string{"250000"}, form["product[variations][0][retail_price]"])
	assert.Equal(t, []string{"Đỏ"}, form["product[variations][0][fields][0][value]"])
	assert.Equal(t, []string{"https://cdn/red"}, form["product[variations][0][images][0]"])
	// A variant without an image sends no image key.
	assert.NotContains(t, form, "product[variations][1][images][0]")
}

func TestPosClient_CreateRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false, "message": "duplicate custom_id"}`))
	}))
	defer server.Close()

	client := NewPosClient(config.CatalogConfig{ShopID: "shop-1", BaseURL: server.URL})
	_, err := client.Create(context.Background(), sync.ProductPayload{CustomID: "AT001-POS"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate custom_id")
}

func TestPosClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AT001-POS", r.URL.Query().Get("search"))
		assert.Equal(t, "true", r.URL.Query().Get("include_combo_info"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{"id": 42, "name": "Summer Dress", "custom_id": "AT001-POS"}], "total_entries": 17}`))
	}))
	defer server.Close()

	client := NewPosClient(config.CatalogConfig{ShopID: "shop-1", BaseURL: server.URL})
	result, err := client.Search(context.Background(), "AT001-POS")
	require.NoError(t, err)

	assert.Equal(t, 17, result.Total)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "42", result.Products[0].ID)
	assert.Equal(t, "AT001-POS", result.Products[0].CustomID)
}

func TestPosClient_CreateCombo(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, jsonDecode(r, &received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": {"id": 77}}`))
	}))
	defer server.Close()

	client := NewPosClient(config.CatalogConfig{ShopID: "shop-1", BaseURL: server.URL})
	id, err := client.CreateCombo(context.Background(), sync.ComboPayload{
		Name:      "combo 2 ao",
		Value:     400000,
		ProductID: "42",
		Count:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, "77", id)

	combo := received["combo_product"].(map[string]any)
	assert.Equal(t, "combo 2 ao", combo["name"])
	assert.Equal(t, 400000.0, combo["value_combo"])
	assert.Equal(t, true, combo["is_value_combo"])

	variations := combo["variations"].([]any)
	require.Len(t, variations, 1)
	variation := variations[0].(map[string]any)
	assert.Equal(t, 42.0, variation["product_id"])
	assert.Equal(t, 2.0, variation["count"])
	assert.Nil(t, variation["variation_id"])
}

func TestPancakeClient_PutConflict(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http 409", http.StatusConflict, `{}`},
		{"stale key message", http.StatusOK, `{"success": false, "message": "current_settings_key mismatch"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewPancakeClient(config.MessagingConfig{PageID: "page-1", BaseURL: server.URL})
			err := client.Put(context.Background(), nil, "key-1")
			assert.ErrorIs(t, err, sync.ErrConflict)
		})
	}
}

func TestPancakeClient_GetSettings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"settings": {
			"current_settings_key": "key-9",
			"quick_replies": [{"shortcut": "1b", "messages": [{"message": "hello"}]}]
		}}`))
	}))
	defer server.Close()

	client := NewPancakeClient(config.MessagingConfig{PageID: "page-1", BaseURL: server.URL})
	page, err := client.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "key-9", page.Key)
	require.Len(t, page.Replies, 1)
	assert.Equal(t, "1b", page.Replies[0].Shortcut)
}

func TestDriveDownloader_LocalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1AbC-file_id", "1AbC-file_id.jpg"},
		{"https://pictures.example/assets/red.jpg", "red.jpg"},
		{"photo.png", "photo.png"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, localName(tt.in))
		})
	}
}

func TestDriveDownloader_DownloadURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	d := NewDriveDownloader(config.SyncConfig{DownloadDir: t.TempDir()})
	path, err := d.Download(context.Background(), server.URL+"/assets/red.jpg")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
	assert.Equal(t, "red.jpg", filepath.Base(path))
}
