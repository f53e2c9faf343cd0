package rankmatches

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
	TaskType = "rank-matches"
)

type RankingService interface {
	ListForStartup(ctx context.Context, startupID string, limit int) ([]*models.MatchRecord, error)
	UpdateStatus(ctx context.Context, recordID string, next models.MatchStatus) (*models.MatchRecord, error)
}

type Handler struct {
	config       *Config
	service      RankingService
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler creates the rank-matches job handler.
func NewHandler(config *Config, svc RankingService, log logger.Logger) *Handler {
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

	limit := input.Limit
	if limit == 0 {
		limit = h.config.DefaultLimit
	}

	records, err := h.service.ListForStartup(ctx, input.StartupID, limit)
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedMatch, 0, len(records))
	for _, rec := range records {
		if rec.OverallScore < input.MinScore {
			continue
		}
		if input.MarkPresented && rec.Status == models.MatchStatusActive {
			updated, err := h.service.UpdateStatus(ctx, rec.ID, models.MatchStatusPresented)
			if err != nil {
				h.logger.Warn("could not mark match presented", map[string]interface{}{
					"matchId": rec.ID,
					"error":   err.Error(),
				})
			} else {
				rec = updated
			}
		}
		ranked = append(ranked, RankedMatch{
			Rank:               len(ranked) + 1,
			MatchID:            rec.ID,
			InvestorID:         rec.InvestorID,
			OverallScore:       rec.OverallScore,
			Confidence:         rec.Confidence,
			SuccessProbability: rec.SuccessProbability,
			ExpectedOutcome:    string(rec.ExpectedOutcome),
			RecommendedAction:  string(rec.RecommendedAction),
			Status:             string(rec.Status),
			Strengths:          rec.Strengths,
		})
	}

	h.logger.Info("matches ranked", map[string]interface{}{
		"startupId": input.StartupID,
		"listed":    len(records),
		"returned":  len(ranked),
	})

	return &Output{
		StartupID: input.StartupID,
		Matches:   ranked,
		Total:     len(ranked),
	}, nil
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
