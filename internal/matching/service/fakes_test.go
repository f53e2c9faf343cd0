package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"venture-match/internal/events"
	"venture-match/internal/matching"
	"venture-match/internal/matching/store"
	"venture-match/internal/models"
)

// memoryRepo mirrors the PostgresRepository semantics closely enough for service tests.
type memoryRepo struct {
	mu       sync.Mutex
	records  map[string]*models.MatchRecord
	order    []string
	findErr  error
	replaced int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: map[string]*models.MatchRecord{}}
}

func clone(rec *models.MatchRecord) *models.MatchRecord {
	c := *rec
	return &c
}

func (r *memoryRepo) put(rec *models.MatchRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = clone(rec)
	r.order = append(r.order, rec.ID)
}

func (r *memoryRepo) get(id string) *models.MatchRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[id]; ok {
		return clone(rec)
	}
	return nil
}

func (r *memoryRepo) FindLive(_ context.Context, startupID, investorID, matchType string) (*models.MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var best *models.MatchRecord
	for _, rec := range r.records {
		if rec.StartupID == startupID && rec.InvestorID == investorID && rec.MatchType == matchType && rec.Status.IsLive() {
			if best == nil || rec.LastUpdated.After(best.LastUpdated) {
				best = rec
			}
		}
	}
	if best == nil {
		return nil, matching.ErrRecordNotFound
	}
	return clone(best), nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*models.MatchRecord, error) {
	if rec := r.get(id); rec != nil {
		return rec, nil
	}
	return nil, fmt.Errorf("%w: %s", matching.ErrNotFound, id)
}

func (r *memoryRepo) Replace(_ context.Context, rec *models.MatchRecord) (*models.MatchRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaced++
	var archived int64
	for _, existing := range r.records {
		if existing.StartupID == rec.StartupID && existing.InvestorID == rec.InvestorID &&
			existing.MatchType == rec.MatchType &&
			(existing.Status.IsLive() || existing.Status == models.MatchStatusExpired) {
			existing.Status = models.MatchStatusArchived
			archived++
		}
	}
	r.records[rec.ID] = clone(rec)
	r.order = append(r.order, rec.ID)
	return clone(rec), archived, nil
}

func (r *memoryRepo) UpdateFeedback(_ context.Context, id string, side models.FeedbackSide, fb models.Feedback, outcome *models.ActualOutcome, now time.Time) (*models.MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", matching.ErrNotFound, id)
	}
	f := fb
	if side == models.SideStartup {
		rec.StartupFeedback = &f
	} else {
		rec.InvestorFeedback = &f
	}
	if outcome != nil {
		o := *outcome
		rec.ActualOutcome = &o
		if rec.Status.IsLive() || rec.Status == models.MatchStatusExpired {
			rec.Status = models.MatchStatusCompleted
			rec.LastUpdated = now
		}
	}
	return clone(rec), nil
}

func (r *memoryRepo) UpdateStatus(_ context.Context, id string, next models.MatchStatus) (*models.MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", matching.ErrNotFound, id)
	}
	if !rec.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", matching.ErrInvalidTransition, rec.Status, next)
	}
	rec.Status = next
	return clone(rec), nil
}

func (r *memoryRepo) ExpireStale(_ context.Context, now time.Time) ([]store.RecordKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []store.RecordKey
	for _, id := range r.order {
		rec := r.records[id]
		if rec.Status.IsLive() && !now.Before(rec.ExpiresAt) {
			rec.Status = models.MatchStatusExpired
			keys = append(keys, store.RecordKey{ID: rec.ID, StartupID: rec.StartupID, InvestorID: rec.InvestorID, MatchType: rec.MatchType})
		}
	}
	return keys, nil
}

func (r *memoryRepo) ListForStartup(_ context.Context, startupID string, now time.Time, limit int) ([]*models.MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.MatchRecord
	for _, rec := range r.records {
		if rec.StartupID == startupID && rec.Status.IsLive() && now.Before(rec.ExpiresAt) {
			out = append(out, clone(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OverallScore != out[j].OverallScore {
			return out[i].OverallScore > out[j].OverallScore
		}
		return out[i].InvestorID < out[j].InvestorID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memoryCache struct {
	entries map[string]*models.MatchRecord
	getErr  error
	sets    int
	dels    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*models.MatchRecord{}}
}

func (c *memoryCache) Get(_ context.Context, startupID, investorID, matchType string) (*models.MatchRecord, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	rec, ok := c.entries[store.CacheKey(startupID, investorID, matchType)]
	if !ok {
		return nil, store.ErrCacheMiss
	}
	return clone(rec), nil
}

func (c *memoryCache) Set(_ context.Context, rec *models.MatchRecord, _ time.Time) error {
	c.sets++
	c.entries[store.CacheKey(rec.StartupID, rec.InvestorID, rec.MatchType)] = clone(rec)
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, startupID, investorID, matchType string) error {
	c.dels++
	delete(c.entries, store.CacheKey(startupID, investorID, matchType))
	return nil
}

type memoryDocs struct {
	startups  map[string]models.Startup
	investors map[string]models.Investor
	loads     int
}

func (d *memoryDocs) LoadStartup(_ context.Context, id string) (models.Startup, error) {
	d.loads++
	s, ok := d.startups[id]
	if !ok {
		return models.Startup{}, fmt.Errorf("%w: startup %s", matching.ErrDocumentNotFound, id)
	}
	return s, nil
}

func (d *memoryDocs) LoadInvestor(_ context.Context, id string) (models.Investor, error) {
	inv, ok := d.investors[id]
	if !ok {
		return models.Investor{}, fmt.Errorf("%w: investor %s", matching.ErrDocumentNotFound, id)
	}
	return inv, nil
}

type historyFunc func(ctx context.Context, stage, industry string) ([]matching.HistoricalMatch, error)

func (f historyFunc) ResolvedMatches(ctx context.Context, stage, industry string) ([]matching.HistoricalMatch, error) {
	return f(ctx, stage, industry)
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingIndexer struct {
	indexed []string
}

func (i *recordingIndexer) IndexOutcome(_ context.Context, rec *models.MatchRecord) error {
	i.indexed = append(i.indexed, rec.ID)
	return nil
}

var errBoom = errors.New("boom")
