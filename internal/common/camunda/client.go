// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"sync"
	"time"

	"venture-match/internal/common/config"
	"venture-match/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client and the job workers opened on it.
type Client struct {
	client zbc.Client
	config *ClientConfig
	logger logger.Logger

	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

// ClientConfig holds configuration for the Camunda/Zeebe client.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
}

// ConfigFrom converts the application camunda section into client settings.
func ConfigFrom(cfg config.CamundaConfig) *ClientConfig {
	cc := &ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: cfg.Insecure,
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         30 * time.Second,
	}
	if cfg.Timeout > 0 {
		cc.ConnectionTimeout = time.Duration(cfg.Timeout) * time.Millisecond
	}
	if cfg.RequestTimeout > 0 {
		cc.RequestTimeout = time.Duration(cfg.RequestTimeout) * time.Millisecond
	}
	return cc
}

// NewClientWithConfig creates the gRPC client. It does not contact the broker; use Ping for that.
func NewClientWithConfig(cfg *ClientConfig, log logger.Logger) (*Client, error) {
	if cfg.GatewayAddress == "" {
		return nil, fmt.Errorf("zeebe gateway address is required")
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.GatewayAddress,
		UsePlaintextConnection: cfg.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	return &Client{
		client:  zeebeClient,
		config:  cfg,
		logger:  log.WithFields(map[string]interface{}{"component": "zeebe"}),
		workers: make(map[string]worker.JobWorker),
	}, nil
}

// GetClient returns the raw Zeebe client for advanced usage.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

// Ping asks the gateway for its topology.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe broker at %s unreachable: %w", c.config.GatewayAddress, err)
	}
	return nil
}

// Close stops every open job worker, then releases the gRPC connection.
func (c *Client) Close() error {
	c.mu.Lock()
	for taskType, w := range c.workers {
		w.Close()
		w.AwaitClose()
		c.logger.Info("worker stopped", map[string]interface{}{"taskType": taskType})
	}
	c.workers = map[string]worker.JobWorker{}
	c.mu.Unlock()

	return c.client.Close()
}
