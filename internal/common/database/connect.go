package database

import (
	"context"
	"fmt"
	"time"

	"venture-match/internal/common/logger"

	"github.com/cenkalti/backoff/v4"
)

// Pinger is any backing service that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DefaultConnectTimeout bounds how long startup waits for a dependency.
const DefaultConnectTimeout = 30 * time.Second

// WaitReady pings target with exponential backoff until it answers or maxElapsed passes.
func WaitReady(ctx context.Context, name string, target Pinger, maxElapsed time.Duration, log logger.Logger) error {
	strategy := backoff.NewExponentialBackOff()
	strategy.InitialInterval = 250 * time.Millisecond
	strategy.MaxInterval = 5 * time.Second
	strategy.MaxElapsedTime = maxElapsed

	attempt := 0
	operation := func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return target.Ping(pingCtx)
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("dependency not ready, retrying", map[string]interface{}{
			"dependency": name,
			"attempt":    attempt,
			"retryIn":    wait.String(),
			"error":      err.Error(),
		})
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(strategy, ctx), notify); err != nil {
		return fmt.Errorf("%s not ready after %d attempts: %w", name, attempt, err)
	}
	log.Info("dependency ready", map[string]interface{}{"dependency": name, "attempts": attempt})
	return nil
}
