// Package config loads runtime configuration for the data layer.
//
// Sources & precedence:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
package config

import "time"

// Config holds runtime settings for the offline-first data layer.
type Config struct {
	// DBPath is the embedded SQLite file location.
	DBPath string

	// RemoteBaseURL and RemoteAPIKey address the remote document API.
	RemoteBaseURL string
	RemoteAPIKey  string

	// Object store settings; empty AccessKey falls back to the ambient
	// credential chain, empty Endpoint means AWS proper.
	S3Region    string
	S3Bucket    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	// ImageCacheBytes bounds decoded image memory; ImageMaxDim is the
	// longest side images are downsampled to before caching.
	ImageCacheBytes int64
	ImageMaxDim     int

	// ProfileCacheEntries bounds the profile-summary cache.
	ProfileCacheEntries int

	// RefreshTimeout caps each detached background refresh.
	RefreshTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DBPath = "platescout.db"
	c.RemoteBaseURL = "http://127.0.0.1:8080/api"
	c.S3Region = "eu-central-1"
	c.S3Bucket = "platescout-media"
	c.ImageCacheBytes = 64 << 20
	c.ImageMaxDim = 1024
	c.ProfileCacheEntries = 256
	c.RefreshTimeout = 15 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
