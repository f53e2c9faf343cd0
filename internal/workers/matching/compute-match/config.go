package computematch

import (
	"time"

	"venture-match/internal/common/config"
	"venture-match/internal/models"
)

type Config struct {
	Timeout          time.Duration
	DefaultMatchType string
}

// LoadConfig returns the default compute-match worker config.
func LoadConfig() *Config {
	return &Config{
		Timeout:          30 * time.Second,
		DefaultMatchType: models.DefaultMatchType,
	}
}

// FromWorkerConfig applies the per-worker settings from the application config.
func FromWorkerConfig(wc config.WorkerConfig) *Config {
	cfg := LoadConfig()
	if wc.Timeout > 0 {
		cfg.Timeout = time.Duration(wc.Timeout) * time.Millisecond
	}
	return cfg
}
