package submitmatchfeedback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"venture-match/internal/common/errors"
	"venture-match/internal/common/logger"
	"venture-match/internal/common/metrics"
	"venture-match/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "submit-match-feedback"
)

type FeedbackService interface {
	SubmitFeedback(ctx context.Context, recordID string, side models.FeedbackSide, fb models.Feedback, outcome *models.ActualOutcome) (*models.MatchRecord, error)
}

type Handler struct {
	config       *Config
	service      FeedbackService
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler creates the submit-match-feedback job handler.
func NewHandler(config *Config, svc FeedbackService, log logger.Logger) *Handler {
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

	var outcome *models.ActualOutcome
	if input.ActualOutcome != "" {
		o := models.ActualOutcome(input.ActualOutcome)
		outcome = &o
	}

	rec, err := h.service.SubmitFeedback(ctx, input.MatchID, models.FeedbackSide(input.Side),
		models.Feedback{Rating: input.Rating, Notes: input.Notes}, outcome)
	if err != nil {
		return nil, err
	}

	out := &Output{
		MatchID:          rec.ID,
		Status:           string(rec.Status),
		FeedbackRecorded: true,
		BothSidesRated:   rated(rec.StartupFeedback) && rated(rec.InvestorFeedback),
	}
	if rec.ActualOutcome != nil {
		out.ActualOutcome = string(*rec.ActualOutcome)
	}
	return out, nil
}

func rated(fb *models.Feedback) bool {
	return fb != nil && fb.Rated()
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
	if _, err = cmd.Send(sendCtx); err != nil {
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
