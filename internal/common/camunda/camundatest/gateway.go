// Package camundatest provides an in-memory Zeebe gateway for driving job handlers in tests.
package camundatest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"google.golang.org/grpc"
)

// Gateway records the job result commands it receives. Calls made on a context that is
// already done are recorded and rejected with the context's error, as a real gateway would.
type Gateway struct {
	pb.GatewayClient

	mu        sync.Mutex
	completed []*pb.CompleteJobRequest
	failed    []*pb.FailJobRequest
	thrown    []*pb.ThrowErrorRequest
	ctxErrs   []error
}

func (g *Gateway) CompleteJob(ctx context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.completed = append(g.completed, in)
	if err := g.seen(ctx); err != nil {
		return nil, err
	}
	return &pb.CompleteJobResponse{}, nil
}

func (g *Gateway) FailJob(ctx context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failed = append(g.failed, in)
	if err := g.seen(ctx); err != nil {
		return nil, err
	}
	return &pb.FailJobResponse{}, nil
}

func (g *Gateway) ThrowError(ctx context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.thrown = append(g.thrown, in)
	if err := g.seen(ctx); err != nil {
		return nil, err
	}
	return &pb.ThrowErrorResponse{}, nil
}

func (g *Gateway) seen(ctx context.Context) error {
	err := ctx.Err()
	g.ctxErrs = append(g.ctxErrs, err)
	return err
}

// Completed returns the CompleteJob requests received so far.
func (g *Gateway) Completed() []*pb.CompleteJobRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*pb.CompleteJobRequest(nil), g.completed...)
}

// Failed returns the FailJob requests received so far.
func (g *Gateway) Failed() []*pb.FailJobRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*pb.FailJobRequest(nil), g.failed...)
}

// Thrown returns the ThrowError requests received so far.
func (g *Gateway) Thrown() []*pb.ThrowErrorRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*pb.ThrowErrorRequest(nil), g.thrown...)
}

// ContextErrors returns ctx.Err() as observed at each command, in arrival order.
func (g *Gateway) ContextErrors() []error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]error(nil), g.ctxErrs...)
}

// JobClient returns a worker.JobClient whose commands are sent to g without retries.
func (g *Gateway) JobClient() worker.JobClient {
	return jobClient{gateway: g}
}

type jobClient struct {
	gateway pb.GatewayClient
}

func noRetry(context.Context, error) bool { return false }

func (c jobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gateway, noRetry)
}

func (c jobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gateway, noRetry)
}

func (c jobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gateway, noRetry)
}

// Job builds an activated job carrying variables encoded as JSON.
func Job(key int64, jobType string, variables interface{}) entities.Job {
	vars := "{}"
	if variables != nil {
		raw, _ := json.Marshal(variables)
		vars = string(raw)
	}
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               jobType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "match-process",
		ElementId:          "Activity_" + jobType,
		Worker:             "test-worker",
		Retries:            3,
		Variables:          vars,
	}}
}
