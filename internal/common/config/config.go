// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App         AppConfig               `mapstructure:"app"`
	Camunda     CamundaConfig           `mapstructure:"camunda"`
	Database    DatabaseConfig          `mapstructure:"database"`
	Workers     map[string]WorkerConfig `mapstructure:"workers"`
	Logging     LoggingConfig           `mapstructure:"logging"`
	Matching    MatchingConfig          `mapstructure:"matching"`
	Events      EventsConfig            `mapstructure:"events"`
	Maintenance MaintenanceConfig       `mapstructure:"maintenance"`
	Metrics     MetricsConfig           `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	Insecure       bool   `mapstructure:"insecure"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // single address shorthand
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

const (
	HistoryBackendPostgres      = "postgres"
	HistoryBackendElasticsearch = "elasticsearch"
)

// MatchingConfig tunes the compatibility engine and the record store.
type MatchingConfig struct {
	FreshnessWindow time.Duration      `mapstructure:"freshness_window"`
	ExpiryHorizon   time.Duration      `mapstructure:"expiry_horizon"`
	CacheTTL        time.Duration      `mapstructure:"cache_ttl"`
	CacheEnabled    bool               `mapstructure:"cache_enabled"`
	HistoryK        int                `mapstructure:"history_k"`
	HistoryBlendCap float64            `mapstructure:"history_blend_cap"`
	HistoryPool     int                `mapstructure:"history_pool"`
	HistoryBackend  string             `mapstructure:"history_backend"`
	OutcomeIndex    string             `mapstructure:"outcome_index"`
	Weights         map[string]float64 `mapstructure:"weights"`
}

// EventsConfig controls outbound match notifications.
type EventsConfig struct {
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
		Region   string `mapstructure:"region"`
		Endpoint string `mapstructure:"endpoint"` // localstack and tests
	} `mapstructure:"sns"`
}

type MaintenanceConfig struct {
	ExpireEnabled  bool          `mapstructure:"expire_enabled"`
	ExpireInterval time.Duration `mapstructure:"expire_interval"`
}

type MetricsConfig struct {
	Port             int     `mapstructure:"port"`
	TraceSampleRatio float64 `mapstructure:"trace_sample_ratio"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
