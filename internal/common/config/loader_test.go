package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: ${TEST_DB_HOST}
    database: venture_match
    user: matcher
  redis:
    address: localhost:6379
workers:
  compute-match:
    enabled: true
    max_jobs_active: 8
  expire-stale-matches:
    enabled: false
matching:
  freshness_window: 72h
  weights:
    timing: 10
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// ==========================
// Loading
// ==========================

func TestLoadFromFile_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "host=db.internal port=5432 user=matcher")

	assert.Equal(t, 72*time.Hour, cfg.Matching.FreshnessWindow)
	assert.Equal(t, 30*24*time.Hour, cfg.Matching.ExpiryHorizon)
	assert.Equal(t, 3, cfg.Matching.HistoryK)
	assert.Equal(t, 0.30, cfg.Matching.HistoryBlendCap)
	assert.Equal(t, HistoryBackendPostgres, cfg.Matching.HistoryBackend)
	assert.True(t, cfg.Matching.CacheEnabled)
	assert.Equal(t, 10.0, cfg.Matching.Weights["timing"])

	assert.True(t, cfg.Maintenance.ExpireEnabled)
	assert.Equal(t, time.Hour, cfg.Maintenance.ExpireInterval)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Equal(t, 1.0, cfg.Metrics.TraceSampleRatio)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

// ==========================
// Workers
// ==========================

func TestWorkerConfig(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")
	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	compute := GetWorkerConfig(cfg, "compute-match")
	assert.Equal(t, 8, compute.MaxJobsActive)
	assert.Equal(t, 30000, compute.Timeout)
	assert.Equal(t, 3, compute.MaxRetries)

	assert.False(t, IsWorkerEnabled(cfg, "expire-stale-matches"))
	assert.True(t, IsWorkerEnabled(cfg, "rank-matches"))
	assert.Equal(t, 5, GetWorkerConfig(cfg, "rank-matches").MaxJobsActive)

	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

// ==========================
// Validation
// ==========================

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{
			Camunda: CamundaConfig{BrokerAddress: "localhost:26500"},
			Database: DatabaseConfig{
				Postgres: PostgresConfig{Host: "h", Database: "d", User: "u"},
				Redis:    RedisConfig{Address: "localhost:6379"},
			},
			Matching: MatchingConfig{CacheEnabled: true},
		}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no broker", func(c *Config) { c.Camunda.BrokerAddress = "" }, "camunda.broker_address"},
		{"no postgres user", func(c *Config) { c.Database.Postgres.User = "" }, "database.postgres.user"},
		{"cache without redis", func(c *Config) { c.Database.Redis.Address = "" }, "database.redis.address"},
		{"cache disabled needs no redis", func(c *Config) {
			c.Matching.CacheEnabled = false
			c.Database.Redis.Address = ""
		}, ""},
		{"unknown history backend", func(c *Config) { c.Matching.HistoryBackend = "mongo" }, "matching.history_backend"},
		{"elasticsearch backend without address", func(c *Config) {
			c.Matching.HistoryBackend = HistoryBackendElasticsearch
		}, "database.elasticsearch"},
		{"blend cap out of range", func(c *Config) { c.Matching.HistoryBlendCap = 1.5 }, "history_blend_cap"},
		{"freshness beyond expiry", func(c *Config) { c.Matching.FreshnessWindow = 60 * 24 * time.Hour }, "freshness_window"},
		{"sns without topic", func(c *Config) { c.Events.SNS.Enabled = true }, "events.sns.topic_arn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestOverrideEmptyConfig(t *testing.T) {
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("MATCH_EVENTS_TOPIC_ARN", "arn:aws:sns:us-east-1:123456789012:matches")

	cfg := &Config{}
	overrideEmptyConfig(cfg)

	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:matches", cfg.Events.SNS.TopicARN)
}
