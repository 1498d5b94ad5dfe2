package config

import (
	"reflect"
	"strings"

	"catalog-sync/core/database"
	"catalog-sync/core/logger"
	"catalog-sync/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the status HTTP server.
	Server ServerConfig `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the state database connection.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the image staging archive.
	Storage storage.Config `mapstructure:"storage"`
	// Messaging holds configuration for the quick-reply platform.
	Messaging MessagingConfig `mapstructure:"messaging"`
	// Catalog holds configuration for the POS catalog.
	Catalog CatalogConfig `mapstructure:"catalog"`
	// Source holds configuration for the product feed.
	Source SourceConfig `mapstructure:"source"`
	// Sync holds configuration for the reconciliation engine.
	Sync SyncConfig `mapstructure:"sync"`
}

// ServerConfig holds configuration for the status HTTP server.
type ServerConfig struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
}

// MessagingConfig holds credentials and endpoints for the quick-reply platform.
type MessagingConfig struct {
	// PageID is the page whose quick replies are synchronized.
	PageID string `mapstructure:"page_id" default:""`
	// AccessToken authenticates settings and content requests.
	AccessToken string `mapstructure:"access_token" default:""`
	// BaseURL is the platform API root.
	BaseURL string `mapstructure:"base_url" default:"https://pancake.vn/api/v1"`
	// CDNBase is the public content root used for asset URL fallbacks.
	CDNBase string `mapstructure:"cdn_base" default:"https://content.pancake.vn"`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// CatalogConfig holds credentials and endpoints for the POS catalog.
type CatalogConfig struct {
	// ShopID is the POS shop whose catalog is published to.
	ShopID string `mapstructure:"shop_id" default:""`
	// AccessToken authenticates catalog requests.
	AccessToken string `mapstructure:"access_token" default:""`
	// BaseURL is the POS API root.
	BaseURL string `mapstructure:"base_url" default:"https://pos.pancake.vn/api/v1"`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// SourceConfig holds configuration for the product feed.
type SourceConfig struct {
	// Feed is a file path or http(s) URL to the JSON product feed.
	Feed string `mapstructure:"feed" default:"products.json"`
	// TimeoutSeconds is the fetch timeout for URL feeds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// SyncConfig holds tunables for the reconciliation engine.
type SyncConfig struct {
	// Workers bounds the per-product fan-out.
	Workers int `mapstructure:"workers" default:"4"`
	// ImageWorkers bounds the per-image fan-out within one product.
	ImageWorkers int `mapstructure:"image_workers" default:"4"`
	// IntervalSeconds is the wake-up interval for run-forever mode.
	IntervalSeconds int `mapstructure:"interval_seconds" default:"30"`
	// AutoReset clears the processed set at every wake-up when true.
	AutoReset bool `mapstructure:"auto_reset" default:"true"`
	// RequireImages hard-fails a product when its image pipeline fails.
	// When false the pipeline continues with the partial asset map.
	RequireImages bool `mapstructure:"require_images" default:"false"`
	// DownloadDir is the local directory for downloaded images.
	DownloadDir string `mapstructure:"download_dir" default:"downloads"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// Load .env file if it exists; ignore error in production.
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. MESSAGING_PAGE_ID -> messaging.page_id)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values
// in Viper based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
