// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"venture-match/internal/common/config"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// StartWorker opens a job worker for taskType when it is enabled. Returns false when skipped.
func (c *Client) StartWorker(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) bool {
	if !wcfg.Enabled {
		c.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.workers[taskType]; exists {
		c.logger.Warn("worker already registered", map[string]interface{}{"taskType": taskType})
		return false
	}

	opts := workerOptions(wcfg)
	jobWorker := c.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(opts.maxJobsActive).
		Timeout(opts.timeout).
		RequestTimeout(c.config.RequestTimeout).
		Open()
	c.workers[taskType] = jobWorker

	c.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": opts.maxJobsActive,
		"timeout_ms":    opts.timeout.Milliseconds(),
	})
	return true
}

// Workers lists the task types with an open job worker.
func (c *Client) Workers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.workers))
	for taskType := range c.workers {
		out = append(out, taskType)
	}
	return out
}

type jobWorkerOptions struct {
	maxJobsActive int
	timeout       time.Duration
}

func workerOptions(wcfg config.WorkerConfig) jobWorkerOptions {
	opts := jobWorkerOptions{maxJobsActive: 5, timeout: 30 * time.Second}
	if wcfg.MaxJobsActive > 0 {
		opts.maxJobsActive = wcfg.MaxJobsActive
	}
	if wcfg.Timeout > 0 {
		opts.timeout = time.Duration(wcfg.Timeout) * time.Millisecond
	}
	return opts
}
