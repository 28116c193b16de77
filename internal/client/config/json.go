package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/minetrack/plodsync/internal/flagx"
	"github.com/minetrack/plodsync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	LocalDBPath         string         `json:"local_db_path"`
	RemoteDSN           string         `json:"remote_dsn"`
	GatewayMode         string         `json:"gateway_mode"`
	OnlineAddr          string         `json:"online_addr"`
	SecretKey           string         `json:"secret_key"`
	TokenValidity       timex.Duration `json:"token_validity"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	AutoSyncInterval    timex.Duration `json:"auto_sync_interval"`
	S3Region            string         `json:"s3_region"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint"`
	S3AccessKey         string         `json:"s3_access_key"`
	S3SecretKey         string         `json:"s3_secret_key"`
	S3Bucket            string         `json:"s3_bucket"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags via flagx.JsonConfigFlags; without
// one nothing is loaded. Empty JSON fields keep the current value, so the
// file only needs the settings it changes. Panics on read or unmarshal
// errors (caller should recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlayString(&cfg.LocalDBPath, jc.LocalDBPath)
	overlayString(&cfg.RemoteDSN, jc.RemoteDSN)
	overlayString(&cfg.GatewayMode, jc.GatewayMode)
	overlayString(&cfg.OnlineAddr, jc.OnlineAddr)
	overlayString(&cfg.SecretKey, jc.SecretKey)
	overlayDuration(&cfg.TokenValidity, jc.TokenValidity)
	overlayDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	overlayDuration(&cfg.AutoSyncInterval, jc.AutoSyncInterval)
	overlayString(&cfg.S3Region, jc.S3Region)
	overlayString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	overlayString(&cfg.S3AccessKey, jc.S3AccessKey)
	overlayString(&cfg.S3SecretKey, jc.S3SecretKey)
	overlayString(&cfg.S3Bucket, jc.S3Bucket)
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overlayDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
