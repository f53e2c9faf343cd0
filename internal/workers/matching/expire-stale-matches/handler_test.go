package expirestalematches

import (
	"context"
	"testing"
	"time"

	"venture-match/internal/common/camunda/camundatest"
	"venture-match/internal/common/errors"
	"venture-match/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expirerFunc func(ctx context.Context) (int, error)

func (f expirerFunc) ExpireStale(ctx context.Context) (int, error) { return f(ctx) }

func TestHandler_Execute(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	handler := NewHandler(nil, expirerFunc(func(context.Context) (int, error) { return 3, nil }), logger.NewTestLogger(t))
	handler.now = func() time.Time { return fixed }

	output, err := handler.Execute(context.Background(), &Input{RequestedBy: "nightly"})

	require.NoError(t, err)
	assert.Equal(t, 3, output.ExpiredCount)
	assert.Equal(t, fixed, output.SweptAt)
}

func TestHandler_Execute_NothingToExpire(t *testing.T) {
	handler := NewHandler(nil, expirerFunc(func(context.Context) (int, error) { return 0, nil }), logger.NewNoOpLogger())

	output, err := handler.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.Zero(t, output.ExpiredCount)
}

func TestHandler_Execute_StoreFailureIsRetryable(t *testing.T) {
	handler := NewHandler(nil, expirerFunc(func(context.Context) (int, error) {
		return 0, assert.AnError
	}), logger.NewNoOpLogger())

	_, err := handler.Execute(context.Background(), &Input{})

	require.Error(t, err)
	stdErr := errors.FromMatchError(err)
	assert.Equal(t, errors.ErrCodeMatchStoreFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, 60*time.Second, LoadConfig().Timeout)
}

// ==========================
// Handle
// ==========================

func TestHandler_Handle_CompletesWithEmptyVariables(t *testing.T) {
	gw := &camundatest.Gateway{}
	handler := NewHandler(nil, expirerFunc(func(context.Context) (int, error) { return 2, nil }), logger.NewTestLogger(t))

	handler.Handle(gw.JobClient(), camundatest.Job(21, TaskType, nil))

	completed := gw.Completed()
	require.Len(t, completed, 1)
	assert.Contains(t, completed[0].Variables, `"expiredCount":2`)
}

func TestHandler_Handle_TimedOutSweepIsFailedForRetry(t *testing.T) {
	cfg := LoadConfig()
	cfg.Timeout = 20 * time.Millisecond
	gw := &camundatest.Gateway{}
	handler := NewHandler(cfg, expirerFunc(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}), logger.NewTestLogger(t))

	handler.Handle(gw.JobClient(), camundatest.Job(22, TaskType, nil))

	failed := gw.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, int64(22), failed[0].JobKey)
	assert.Positive(t, failed[0].Retries)
	for _, err := range gw.ContextErrors() {
		assert.NoError(t, err)
	}
}
