package computematch

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"venture-match/internal/common/errors"
	"venture-match/internal/common/logger"
	"venture-match/internal/common/metrics"
	"venture-match/internal/matching"
	"venture-match/internal/matching/service"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "compute-match"
)

// MatchService is the slice of the match service this worker drives.
type MatchService interface {
	GetOrCompute(ctx context.Context, startupID, investorID, matchType string, opts service.Options) (*service.Lookup, error)
}

type Handler struct {
	config       *Config
	service      MatchService
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler creates the compute-match job handler.
func NewHandler(config *Config, svc MatchService, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		service:      svc,
		errorHandler: errors.NewErrorHandler(l),
		logger:       l,
	}
}

// Handle runs one compute-match job and completes, fails or throws it.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, errors.NewInputValidationError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := inputSchema.Validate(input)
	if err != nil {
		return nil, errors.NewInputValidationError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewInputValidationError(strings.Join(result.GetErrorMessages(), "; "))
	}

	matchType := input.MatchType
	if matchType == "" {
		matchType = h.config.DefaultMatchType
	}

	lookup, err := h.service.GetOrCompute(ctx, input.StartupID, input.InvestorID, matchType, service.Options{
		ForceRecalculate: input.ForceRecalculate,
		ReadOnly:         input.ReadOnly,
	})
	if input.ReadOnly && stderrors.Is(err, matching.ErrRecordNotFound) {
		h.logger.Info("no live match for read-only lookup", map[string]interface{}{
			"startupId":  input.StartupID,
			"investorId": input.InvestorID,
			"matchType":  matchType,
		})
		return &Output{
			Found:          false,
			ScoreBreakdown: map[string]int{},
			Strengths:      []string{},
			Concerns:       []string{},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	rec := lookup.Record
	expiresAt := rec.ExpiresAt
	h.logger.Info("match resolved", map[string]interface{}{
		"matchId":      rec.ID,
		"startupId":    rec.StartupID,
		"investorId":   rec.InvestorID,
		"overallScore": rec.OverallScore,
		"source":       string(lookup.Source),
	})

	return &Output{
		Found:              true,
		MatchID:            rec.ID,
		OverallScore:       rec.OverallScore,
		Confidence:         rec.Confidence,
		ScoreBreakdown:     rec.ScoreBreakdown,
		SuccessProbability: rec.SuccessProbability,
		ExpectedOutcome:    string(rec.ExpectedOutcome),
		RecommendedAction:  string(rec.RecommendedAction),
		Strengths:          nonNil(rec.Strengths),
		Concerns:           nonNil(rec.Concerns),
		Status:             string(rec.Status),
		Source:             string(lookup.Source),
		ArchivedRecords:    lookup.Archived,
		ExpiresAt:          &expiresAt,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	sendCtx, cancel := errors.CommandContext(context.Background())
	defer cancel()
	_, err = cmd.Send(sendCtx)
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := errors.FromMatchError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
