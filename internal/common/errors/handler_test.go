package errors

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"venture-match/internal/common/camunda/camundatest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Error(msg string, _ map[string]interface{}) {
	l.messages = append(l.messages, msg)
}

// ==========================
// HandleJobError
// ==========================

func TestHandleJobError_ExpiredContextStillFailsJob(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	gw := &camundatest.Gateway{}
	h := NewErrorHandler(&recordingLogger{})

	h.HandleJobError(ctx, gw.JobClient(), camundatest.Job(7, "compute-match", nil), NewQueryTimeoutError("find live"))

	failed := gw.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, int64(7), failed[0].JobKey)
	assert.Equal(t, int32(2), failed[0].Retries)
	assert.Equal(t, []error{nil}, gw.ContextErrors())
}

func TestHandleJobError_BusinessErrorThrows(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gw := &camundatest.Gateway{}
	h := NewErrorHandler(&recordingLogger{})

	h.HandleJobError(ctx, gw.JobClient(), camundatest.Job(8, "submit-match-feedback", nil), NewInputValidationError("rating out of range"))

	thrown := gw.Thrown()
	require.Len(t, thrown, 1)
	assert.Equal(t, "INPUT_VALIDATION_FAILED", thrown[0].ErrorCode)
	assert.Empty(t, gw.Failed())
	assert.Equal(t, []error{nil}, gw.ContextErrors())
}

func TestCommandContext_DetachesDeadline(t *testing.T) {
	type key struct{}
	parent, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "v"))
	cancel()

	ctx, done := CommandContext(parent)
	defer done()

	assert.NoError(t, ctx.Err())
	assert.Equal(t, "v", ctx.Value(key{}))
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(CommandTimeout), deadline, time.Second)
	assert.False(t, stderrors.Is(ctx.Err(), context.Canceled))
}
