package config

import (
	"encoding/json"
	"os"

	"platescout/internal/flagx"
	"platescout/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so intervals can be written either as strings like "15s"
// or as integer nanoseconds. Absent fields keep their earlier values.
type JsonConfig struct {
	DBPath              *string         `json:"db_path"`
	RemoteBaseURL       *string         `json:"remote_base_url"`
	RemoteAPIKey        *string         `json:"remote_api_key"`
	S3Region            *string         `json:"s3_region"`
	S3Bucket            *string         `json:"s3_bucket"`
	S3Endpoint          *string         `json:"s3_endpoint"`
	S3AccessKey         *string         `json:"s3_access_key"`
	S3SecretKey         *string         `json:"s3_secret_key"`
	ImageCacheBytes     *int64          `json:"image_cache_bytes"`
	ImageMaxDim         *int            `json:"image_max_dim"`
	ProfileCacheEntries *int            `json:"profile_cache_entries"`
	RefreshTimeout      *timex.Duration `json:"refresh_timeout"`
}

// parseJson overlays cfg with values from the JSON file named by the -c or
// -config flag. Without the flag it is a no-op. Read or unmarshal errors
// panic; configuration is resolved once at startup and a broken file should
// stop the process.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DBPath != nil {
		cfg.DBPath = *jc.DBPath
	}
	if jc.RemoteBaseURL != nil {
		cfg.RemoteBaseURL = *jc.RemoteBaseURL
	}
	if jc.RemoteAPIKey != nil {
		cfg.RemoteAPIKey = *jc.RemoteAPIKey
	}
	if jc.S3Region != nil {
		cfg.S3Region = *jc.S3Region
	}
	if jc.S3Bucket != nil {
		cfg.S3Bucket = *jc.S3Bucket
	}
	if jc.S3Endpoint != nil {
		cfg.S3Endpoint = *jc.S3Endpoint
	}
	if jc.S3AccessKey != nil {
		cfg.S3AccessKey = *jc.S3AccessKey
	}
	if jc.S3SecretKey != nil {
		cfg.S3SecretKey = *jc.S3SecretKey
	}
	if jc.ImageCacheBytes != nil {
		cfg.ImageCacheBytes = *jc.ImageCacheBytes
	}
	if jc.ImageMaxDim != nil {
		cfg.ImageMaxDim = *jc.ImageMaxDim
	}
	if jc.ProfileCacheEntries != nil {
		cfg.ProfileCacheEntries = *jc.ProfileCacheEntries
	}
	if jc.RefreshTimeout != nil {
		cfg.RefreshTimeout = jc.RefreshTimeout.Duration
	}
}
