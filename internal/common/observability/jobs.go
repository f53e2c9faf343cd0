package observability

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

// InstrumentJob wraps a job handler with a span and the jobs.processed / jobs.duration instruments.
func (o *Observability) InstrumentJob(taskType string, next worker.JobHandler) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		ctx, span := o.StartSpan(context.Background(), "job."+taskType,
			attribute.Int64("jobKey", job.Key),
			attribute.Int64("processInstanceKey", job.ProcessInstanceKey),
			attribute.Int("retries", int(job.Retries)),
		)
		defer span.End()

		start := time.Now()
		next(client, job)

		o.RecordJobProcessed(ctx, taskType, "handled")
		o.RecordJobDuration(ctx, taskType, time.Since(start), "handled")
	}
}
