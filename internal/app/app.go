// Package app assembles the matching service from configuration. Both the worker
// manager and matchctl build their dependencies here.
package app

import (
	"context"
	"fmt"

	"venture-match/internal/common/config"
	"venture-match/internal/common/database"
	"venture-match/internal/common/logger"
	"venture-match/internal/events"
	"venture-match/internal/matching"
	"venture-match/internal/matching/history"
	"venture-match/internal/matching/service"
	"venture-match/internal/matching/store"

	"go.opentelemetry.io/otel/trace"
)

// Deps holds the connected backing services and the service built on them.
type Deps struct {
	Postgres *database.PostgresClient
	Redis    *database.RedisClient
	Elastic  *database.ElasticsearchClient

	Repo    *store.PostgresRepository
	Docs    *store.DocumentSource
	Engine  *matching.Engine
	Service *service.Service

	logger logger.Logger
}

// NewEngine builds the scoring engine from the matching section.
func NewEngine(m config.MatchingConfig) (*matching.Engine, error) {
	weights, err := matching.WeightsWithOverrides(m.Weights)
	if err != nil {
		return nil, fmt.Errorf("matching.weights: %w", err)
	}
	return matching.NewEngine(weights, matching.WithPredictorConfig(matching.PredictorConfig{
		HistoryK: m.HistoryK,
		BlendCap: m.HistoryBlendCap,
	}))
}

// ServiceConfig extracts the record store timing from the matching section.
func ServiceConfig(m config.MatchingConfig) service.Config {
	return service.Config{
		FreshnessWindow: m.FreshnessWindow,
		ExpiryHorizon:   m.ExpiryHorizon,
	}
}

// Connect opens every backing service the configuration asks for and waits for each to answer.
// Redis is only opened when caching is enabled; Elasticsearch only when an address is configured.
func Connect(ctx context.Context, cfg *config.Config, log logger.Logger) (*Deps, error) {
	d := &Deps{logger: log}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}
	d.Postgres = pg
	if err := database.WaitReady(ctx, "postgres", pg, database.DefaultConnectTimeout, log); err != nil {
		d.Close()
		return nil, err
	}

	if cfg.Matching.CacheEnabled {
		rc, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.Redis = rc
		if err := database.WaitReady(ctx, "redis", rc, database.DefaultConnectTimeout, log); err != nil {
			d.Close()
			return nil, err
		}
	}

	if cfg.Database.Elasticsearch.GetURL() != "" {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			d.Close()
			return nil, err
		}
		if err := database.WaitReady(ctx, "elasticsearch", es, database.DefaultConnectTimeout, log); err != nil {
			if cfg.Matching.HistoryBackend == config.HistoryBackendElasticsearch {
				d.Close()
				return nil, err
			}
			log.Warn("elasticsearch unavailable, outcome indexing disabled", map[string]interface{}{"error": err.Error()})
		} else {
			d.Elastic = es
		}
	}

	d.Repo = store.NewPostgresRepository(pg.GetDB())
	d.Docs = store.NewDocumentSource(pg.GetDB())
	log.Info("backing services connected", map[string]interface{}{
		"redis":         d.Redis != nil,
		"elasticsearch": d.Elastic != nil,
	})
	return d, nil
}

// BuildService wires the engine, store, cache, history and event publisher together.
func (d *Deps) BuildService(ctx context.Context, cfg *config.Config, tracer trace.Tracer) (*service.Service, error) {
	engine, err := NewEngine(cfg.Matching)
	if err != nil {
		return nil, err
	}
	d.Engine = engine

	opts := []service.Option{}
	if tracer != nil {
		opts = append(opts, service.WithTracer(tracer))
	}
	if d.Redis != nil {
		opts = append(opts, service.WithCache(store.NewRedisCache(d.Redis.GetClient(), cfg.Matching.CacheTTL)))
	}

	var esHistory *history.ElasticsearchSource
	if d.Elastic != nil {
		esHistory = history.NewElasticsearchSource(d.Elastic.GetClient(), cfg.Matching.OutcomeIndex, cfg.Matching.HistoryPool)
		if err := esHistory.EnsureIndex(ctx); err != nil {
			d.logger.Warn("outcome index not ready; retrying on first write", map[string]interface{}{"error": err.Error()})
		}
		opts = append(opts, service.WithOutcomeIndexer(esHistory))
	}
	switch cfg.Matching.HistoryBackend {
	case config.HistoryBackendElasticsearch:
		if esHistory == nil {
			return nil, fmt.Errorf("elasticsearch history backend selected but no client is connected")
		}
		opts = append(opts, service.WithHistory(esHistory))
	default:
		opts = append(opts, service.WithHistory(history.NewPostgresSource(d.Postgres.GetDB(), cfg.Matching.HistoryPool)))
	}

	if cfg.Events.SNS.Enabled {
		sns := cfg.Events.SNS
		pub, err := events.NewSNSPublisher(ctx, sns.Region, sns.TopicARN, sns.Endpoint, d.logger)
		if err != nil {
			return nil, fmt.Errorf("sns publisher: %w", err)
		}
		opts = append(opts, service.WithPublisher(pub))
	}

	d.Service = service.New(engine, d.Repo, d.Docs, ServiceConfig(cfg.Matching), d.logger, opts...)
	return d.Service, nil
}

// Close releases every connection that was opened.
func (d *Deps) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.logger.Warn("redis close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if d.Postgres != nil {
		if err := d.Postgres.Close(); err != nil {
			d.logger.Warn("postgres close failed", map[string]interface{}{"error": err.Error()})
		}
	}
}
