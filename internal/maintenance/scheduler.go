// internal/maintenance/scheduler.go
package maintenance

import (
	"context"
	"fmt"
	"time"

	"venture-match/internal/common/logger"

	"github.com/go-co-op/gocron/v2"
)

type Expirer interface {
	ExpireStale(ctx context.Context) (int, error)
}

// ExpiryScheduler runs the stale-match sweep on a fixed interval.
type ExpiryScheduler struct {
	sched    gocron.Scheduler
	expirer  Expirer
	interval time.Duration
	timeout  time.Duration
	logger   logger.Logger
}

// NewExpiryScheduler runs expirer every interval once started.
func NewExpiryScheduler(interval time.Duration, expirer Expirer, log logger.Logger) (*ExpiryScheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("expiry interval must be positive, got %s", interval)
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	s := &ExpiryScheduler{
		sched:    sched,
		expirer:  expirer,
		interval: interval,
		timeout:  interval,
		logger:   log.WithFields(map[string]interface{}{"component": "expiry-scheduler"}),
	}
	if s.timeout > 5*time.Minute {
		s.timeout = 5 * time.Minute
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.RunOnce),
		gocron.WithName("expire-stale-matches"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule expiry sweep: %w", err)
	}
	return s, nil
}

// RunOnce performs one sweep and logs the result. Errors are logged, never returned.
func (s *ExpiryScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.expirer.ExpireStale(ctx)
	if err != nil {
		s.logger.Error("expiry sweep failed", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Debug("expiry sweep finished", map[string]interface{}{"expired": n})
}

func (s *ExpiryScheduler) Start() {
	s.sched.Start()
	s.logger.Info("expiry scheduler started", map[string]interface{}{"interval": s.interval.String()})
}

func (s *ExpiryScheduler) Shutdown() error {
	return s.sched.Shutdown()
}
