// internal/matching/service/service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "venture-match/internal/common/errors"
	"venture-match/internal/common/logger"
	"venture-match/internal/common/metrics"
	"venture-match/internal/events"
	"venture-match/internal/matching"
	"venture-match/internal/matching/store"
	"venture-match/internal/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultFreshnessWindow = 7 * 24 * time.Hour
	DefaultExpiryHorizon   = 30 * 24 * time.Hour
	DefaultListLimit       = 10
	MaxListLimit           = 100
)

// Repository persists match records.
type Repository interface {
	FindLive(ctx context.Context, startupID, investorID, matchType string) (*models.MatchRecord, error)
	GetByID(ctx context.Context, id string) (*models.MatchRecord, error)
	Replace(ctx context.Context, rec *models.MatchRecord) (*models.MatchRecord, int64, error)
	UpdateFeedback(ctx context.Context, id string, side models.FeedbackSide, fb models.Feedback, outcome *models.ActualOutcome, now time.Time) (*models.MatchRecord, error)
	UpdateStatus(ctx context.Context, id string, next models.MatchStatus) (*models.MatchRecord, error)
	ExpireStale(ctx context.Context, now time.Time) ([]store.RecordKey, error)
	ListForStartup(ctx context.Context, startupID string, now time.Time, limit int) ([]*models.MatchRecord, error)
}

// Cache holds live match records keyed by startup, investor and match type.
type Cache interface {
	Get(ctx context.Context, startupID, investorID, matchType string) (*models.MatchRecord, error)
	Set(ctx context.Context, rec *models.MatchRecord, now time.Time) error
	Invalidate(ctx context.Context, startupID, investorID, matchType string) error
}

// Documents loads startup and investor profiles.
type Documents interface {
	LoadStartup(ctx context.Context, id string) (models.Startup, error)
	LoadInvestor(ctx context.Context, id string) (models.Investor, error)
}

// OutcomeIndexer receives records once their actual outcome is known.
type OutcomeIndexer interface {
	IndexOutcome(ctx context.Context, rec *models.MatchRecord) error
}

type Config struct {
	FreshnessWindow time.Duration
	ExpiryHorizon   time.Duration
}

// Options controls a single GetOrCompute call.
type Options struct {
	ForceRecalculate bool
	ReadOnly         bool
}

// Source reports where a returned record came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceStore    Source = "store"
	SourceComputed Source = "computed"
)

type Lookup struct {
	Record   *models.MatchRecord
	Source   Source
	Archived int64
}

// Service computes, caches and transitions matches.
type Service struct {
	engine    *matching.Engine
	repo      Repository
	docs      Documents
	cache     Cache
	history   matching.HistorySource
	indexer   OutcomeIndexer
	publisher events.Publisher
	tracer    trace.Tracer
	logger    logger.Logger
	cfg       Config
	now       func() time.Time
	newID     func() string
}

// Option configures optional Service collaborators.
type Option func(*Service)

func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }
func WithHistory(h matching.HistorySource) Option { return func(s *Service) { s.history = h } }
func WithOutcomeIndexer(i OutcomeIndexer) Option { return func(s *Service) { s.indexer = i } }
func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.publisher = p } }
func WithTracer(t trace.Tracer) Option { return func(s *Service) { s.tracer = t } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }
func WithIDGenerator(newID func() string) Option { return func(s *Service) { s.newID = newID } }

// New creates a Service. Cache, history and outcome indexing are skipped unless
// supplied as options; events go to a NoopPublisher by default.
func New(engine *matching.Engine, repo Repository, docs Documents, cfg Config, log logger.Logger, opts ...Option) *Service {
	if cfg.FreshnessWindow <= 0 {
		cfg.FreshnessWindow = DefaultFreshnessWindow
	}
	if cfg.ExpiryHorizon <= 0 {
		cfg.ExpiryHorizon = DefaultExpiryHorizon
	}
	s := &Service{
		engine:    engine,
		repo:      repo,
		docs:      docs,
		publisher: events.NoopPublisher{},
		tracer:    otel.Tracer("venture-match/matching"),
		logger:    log.WithFields(map[string]interface{}{"component": "match-service"}),
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCompute returns the live record for the identity, recomputing when it is missing,
// stale, expired or a recalculation is forced. ReadOnly never computes.
func (s *Service) GetOrCompute(ctx context.Context, startupID, investorID, matchType string, opts Options) (*Lookup, error) {
	startupID, investorID = strings.TrimSpace(startupID), strings.TrimSpace(investorID)
	if startupID == "" || investorID == "" {
		return nil, fmt.Errorf("%w: startupId and investorId are required", matching.ErrInvalidInput)
	}
	if matchType == "" {
		matchType = models.DefaultMatchType
	}

	ctx, span := s.tracer.Start(ctx, "match.getOrCompute", trace.WithAttributes(
		attribute.String("startupId", startupID),
		attribute.String("investorId", investorID),
		attribute.String("matchType", matchType),
		attribute.Bool("forceRecalculate", opts.ForceRecalculate),
		attribute.Bool("readOnly", opts.ReadOnly),
	))
	defer span.End()

	log := s.logger.WithFields(map[string]interface{}{
		"startupId":  startupID,
		"investorId": investorID,
		"matchType":  matchType,
	})
	now := s.now()

	if opts.ReadOnly || !opts.ForceRecalculate {
		lookup, err := s.lookup(ctx, startupID, investorID, matchType, now, opts.ReadOnly, log)
		if err != nil {
			recordError(span, err)
			return nil, err
		}
		if lookup != nil {
			span.SetAttributes(attribute.String("source", string(lookup.Source)))
			return lookup, nil
		}
		metrics.MatchCacheLookups.WithLabelValues("miss").Inc()
		if opts.ReadOnly {
			return nil, matching.ErrRecordNotFound
		}
	}

	lookup, err := s.compute(ctx, startupID, investorID, matchType, now, log)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("source", string(SourceComputed)),
		attribute.Int("overallScore", lookup.Record.OverallScore),
	)
	return lookup, nil
}

// lookup returns a reusable record or nil. In read-only mode any live unexpired record is reusable.
func (s *Service) lookup(ctx context.Context, startupID, investorID, matchType string, now time.Time, readOnly bool, log logger.Logger) (*Lookup, error) {
	usable := func(rec *models.MatchRecord) bool {
		if readOnly {
			return rec.Status.IsLive() && !rec.IsExpired(now)
		}
		return rec.IsFresh(now, s.cfg.FreshnessWindow)
	}

	if s.cache != nil {
		rec, err := s.cache.Get(ctx, startupID, investorID, matchType)
		switch {
		case err == nil && usable(rec):
			metrics.MatchCacheLookups.WithLabelValues("cache_hit").Inc()
			return &Lookup{Record: rec, Source: SourceCache}, nil
		case err != nil && !errors.Is(err, store.ErrCacheMiss):
			log.Warn("match cache read failed", map[string]interface{}{"error": err.Error()})
		}
	}

	rec, err := s.repo.FindLive(ctx, startupID, investorID, matchType)
	if errors.Is(err, matching.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !usable(rec) {
		return nil, nil
	}

	metrics.MatchCacheLookups.WithLabelValues("store_hit").Inc()
	s.cacheRecord(ctx, rec, now, log)
	return &Lookup{Record: rec, Source: SourceStore}, nil
}

func (s *Service) compute(ctx context.Context, startupID, investorID, matchType string, now time.Time, log logger.Logger) (*Lookup, error) {
	ev, err := s.Evaluate(ctx, startupID, investorID)
	if err != nil {
		return nil, err
	}

	rec := ev.ToRecord(s.newID(), matchType, now, s.cfg.ExpiryHorizon)
	rec.StartupID = startupID
	rec.InvestorID = investorID

	saved, archived, err := s.repo.Replace(ctx, rec)
	if err != nil {
		return nil, err
	}
	if saved.ID != rec.ID {
		log.Info("concurrent computation won the upsert", map[string]interface{}{
			"computedId": rec.ID,
			"survivorId": saved.ID,
		})
	}

	s.cacheRecord(ctx, saved, now, log)
	metrics.MatchesComputed.WithLabelValues(matchType, string(saved.ExpectedOutcome)).Inc()
	metrics.MatchOverallScore.Observe(float64(saved.OverallScore))
	s.publish(ctx, events.FromRecord(events.TypeMatchComputed, saved, now), log)

	log.Info("match computed", map[string]interface{}{
		"matchId":           saved.ID,
		"overallScore":      saved.OverallScore,
		"confidence":        saved.Confidence,
		"expectedOutcome":   string(saved.ExpectedOutcome),
		"recommendedAction": string(saved.RecommendedAction),
		"archived":          archived,
	})
	return &Lookup{Record: saved, Source: SourceComputed, Archived: archived}, nil
}

// Evaluate runs the full pipeline for a pair without persisting anything.
func (s *Service) Evaluate(ctx context.Context, startupID, investorID string) (*matching.Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "match.evaluate")
	defer span.End()

	startup, err := s.docs.LoadStartup(ctx, startupID)
	if err != nil {
		return nil, err
	}
	investor, err := s.docs.LoadInvestor(ctx, investorID)
	if err != nil {
		return nil, err
	}
	if startup.ID == "" {
		startup.ID = startupID
	}
	if investor.ID == "" {
		investor.ID = investorID
	}

	ev, err := s.engine.Score(startup, investor)
	if err != nil {
		return nil, err
	}
	s.engine.Predict(ev, s.resolvedHistory(ctx, ev))
	return ev, nil
}

// resolvedHistory never fails the computation; a broken source just means no calibration.
func (s *Service) resolvedHistory(ctx context.Context, ev *matching.Evaluation) []matching.HistoricalMatch {
	if s.history == nil {
		return nil
	}
	hist, err := s.history.ResolvedMatches(ctx, string(ev.Startup.Stage), ev.Startup.Industry)
	if err != nil {
		metrics.MatchHistoryFailures.Inc()
		lookupErr := apperrors.NewHistoryLookupFailedError(err)
		s.logger.Warn("historical outcome lookup failed", map[string]interface{}{
			"stage":     string(ev.Startup.Stage),
			"industry":  ev.Startup.Industry,
			"errorCode": string(lookupErr.Code),
			"error":     lookupErr.Details,
		})
		return nil
	}
	return hist
}

// SubmitFeedback records one side's feedback and, optionally, the actual outcome.
// It never recomputes scores.
func (s *Service) SubmitFeedback(ctx context.Context, recordID string, side models.FeedbackSide, fb models.Feedback, outcome *models.ActualOutcome) (*models.MatchRecord, error) {
	if strings.TrimSpace(recordID) == "" {
		return nil, fmt.Errorf("%w: matchId is required", matching.ErrInvalidInput)
	}
	if !side.Valid() {
		return nil, fmt.Errorf("%w: side must be startup or investor, got %q", matching.ErrInvalidInput, side)
	}
	switch {
	case fb.Rating < 0 || fb.Rating > 5:
		return nil, fmt.Errorf("%w: rating must be between 1 and 5 when given, got %d", matching.ErrInvalidInput, fb.Rating)
	case !fb.Rated() && strings.TrimSpace(fb.Notes) == "":
		return nil, fmt.Errorf("%w: feedback needs a rating or notes", matching.ErrInvalidInput)
	}
	if outcome != nil {
		if _, ok := outcome.SuccessValue(); !ok {
			return nil, fmt.Errorf("%w: unknown actual outcome %q", matching.ErrInvalidInput, *outcome)
		}
	}

	ctx, span := s.tracer.Start(ctx, "match.submitFeedback", trace.WithAttributes(
		attribute.String("matchId", recordID),
		attribute.String("side", string(side)),
	))
	defer span.End()

	log := s.logger.WithFields(map[string]interface{}{"matchId": recordID, "side": string(side)})
	now := s.now()

	rec, err := s.repo.UpdateFeedback(ctx, recordID, side, fb, outcome, now)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	s.invalidate(ctx, rec.StartupID, rec.InvestorID, rec.MatchType, log)

	if outcome != nil && rec.Status == models.MatchStatusCompleted && s.indexer != nil {
		if err := s.indexer.IndexOutcome(ctx, rec); err != nil {
			log.Warn("outcome indexing failed", map[string]interface{}{"error": err.Error()})
		}
	}

	metrics.MatchFeedbackSubmitted.WithLabelValues(string(side)).Inc()
	event := events.FromRecord(events.TypeMatchFeedback, rec, now)
	event.Side = side
	s.publish(ctx, event, log)

	log.Info("feedback recorded", map[string]interface{}{
		"rating": fb.Rating,
		"status": string(rec.Status),
	})
	return rec, nil
}

// ExpireStale moves every live record past its expiry to expired and returns how many moved.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "match.expireStale")
	defer span.End()

	now := s.now()
	keys, err := s.repo.ExpireStale(ctx, now)
	if err != nil {
		recordError(span, err)
		return 0, err
	}

	for _, k := range keys {
		s.invalidate(ctx, k.StartupID, k.InvestorID, k.MatchType, s.logger)
		s.publish(ctx, events.Event{
			Type:       events.TypeMatchExpired,
			MatchID:    k.ID,
			StartupID:  k.StartupID,
			InvestorID: k.InvestorID,
			MatchType:  k.MatchType,
			Status:     models.MatchStatusExpired,
			OccurredAt: now,
		}, s.logger)
	}

	metrics.MatchRecordsExpired.Add(float64(len(keys)))
	span.SetAttributes(attribute.Int("expired", len(keys)))
	if len(keys) > 0 {
		s.logger.Info("stale matches expired", map[string]interface{}{"count": len(keys)})
	}
	return len(keys), nil
}

// UpdateStatus moves a record along its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, recordID string, next models.MatchStatus) (*models.MatchRecord, error) {
	if strings.TrimSpace(recordID) == "" {
		return nil, fmt.Errorf("%w: matchId is required", matching.ErrInvalidInput)
	}
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", matching.ErrInvalidInput, next)
	}

	rec, err := s.repo.UpdateStatus(ctx, recordID, next)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, rec.StartupID, rec.InvestorID, rec.MatchType, s.logger)
	return rec, nil
}

// Get returns a stored match record by id.
func (s *Service) Get(ctx context.Context, recordID string) (*models.MatchRecord, error) {
	return s.repo.GetByID(ctx, recordID)
}

// ListForStartup returns the startup's live matches, best first.
func (s *Service) ListForStartup(ctx context.Context, startupID string, limit int) ([]*models.MatchRecord, error) {
	if strings.TrimSpace(startupID) == "" {
		return nil, fmt.Errorf("%w: startupId is required", matching.ErrInvalidInput)
	}
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	return s.repo.ListForStartup(ctx, startupID, s.now(), limit)
}

func (s *Service) cacheRecord(ctx context.Context, rec *models.MatchRecord, now time.Time, log logger.Logger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, rec, now); err != nil {
		log.Warn("match cache write failed", map[string]interface{}{"matchId": rec.ID, "error": err.Error()})
	}
}

func (s *Service) invalidate(ctx context.Context, startupID, investorID, matchType string, log logger.Logger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, startupID, investorID, matchType); err != nil {
		log.Warn("match cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Service) publish(ctx context.Context, event events.Event, log logger.Logger) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Warn("match event not published", map[string]interface{}{
			"eventType": event.Type,
			"matchId":   event.MatchID,
			"error":     err.Error(),
		})
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
