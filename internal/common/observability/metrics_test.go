package observability

import (
	"context"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan_RecordsParentChild(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs := New("test-service",
		WithRegisterer(promclient.NewRegistry()),
		WithSpanProcessor(recorder),
	)
	defer obs.Shutdown()

	ctx, parent := obs.StartSpan(context.Background(), "match.getOrCompute",
		attribute.String("startupId", "s-1"))
	_, child := obs.StartSpan(ctx, "match.score")
	child.End()
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "match.score", spans[0].Name())
	assert.Equal(t, "match.getOrCompute", spans[1].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Contains(t, spans[1].Attributes(), attribute.String("startupId", "s-1"))
}

func TestRecordJob_DoesNotPanic(t *testing.T) {
	obs := New("test-service", WithRegisterer(promclient.NewRegistry()))
	defer obs.Shutdown()

	obs.RecordJobProcessed(context.Background(), "compute-match", "completed")
	obs.RecordJobDuration(context.Background(), "compute-match", 150*time.Millisecond, "completed")

	var empty *Observability
	assert.NotNil(t, empty.Tracer())
}

func TestInstrumentJob_WrapsHandler(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs := New("test-service",
		WithRegisterer(promclient.NewRegistry()),
		WithSpanProcessor(recorder),
	)
	defer obs.Shutdown()

	var handled int64
	h := obs.InstrumentJob("compute-match", func(_ worker.JobClient, job entities.Job) {
		handled = job.Key
	})
	h(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, ProcessInstanceKey: 7}})

	assert.Equal(t, int64(42), handled)
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "job.compute-match", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int64("jobKey", 42))
}
