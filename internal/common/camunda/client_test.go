package camunda

import (
	"testing"
	"time"

	"venture-match/internal/common/config"
	"venture-match/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFrom(t *testing.T) {
	cc := ConfigFrom(config.CamundaConfig{
		BrokerAddress:  "zeebe:26500",
		Insecure:       true,
		Timeout:        2000,
		RequestTimeout: 15000,
	})

	assert.Equal(t, "zeebe:26500", cc.GatewayAddress)
	assert.True(t, cc.UsePlaintextConnection)
	assert.Equal(t, 2*time.Second, cc.ConnectionTimeout)
	assert.Equal(t, 15*time.Second, cc.RequestTimeout)

	defaults := ConfigFrom(config.CamundaConfig{BrokerAddress: "zeebe:26500"})
	assert.Equal(t, 10*time.Second, defaults.ConnectionTimeout)
	assert.Equal(t, 30*time.Second, defaults.RequestTimeout)
	assert.False(t, defaults.UsePlaintextConnection)
}

func TestNewClientWithConfig_RequiresAddress(t *testing.T) {
	_, err := NewClientWithConfig(&ClientConfig{}, logger.NewNoOpLogger())
	require.Error(t, err)
}

func TestWorkerOptions(t *testing.T) {
	opts := workerOptions(config.WorkerConfig{Enabled: true, MaxJobsActive: 12, Timeout: 45000})
	assert.Equal(t, 12, opts.maxJobsActive)
	assert.Equal(t, 45*time.Second, opts.timeout)

	opts = workerOptions(config.WorkerConfig{Enabled: true})
	assert.Equal(t, 5, opts.maxJobsActive)
	assert.Equal(t, 30*time.Second, opts.timeout)
}

func TestStartWorker_Disabled(t *testing.T) {
	c := &Client{logger: logger.NewNoOpLogger(), workers: map[string]worker.JobWorker{}}

	started := c.StartWorker("compute-match", config.WorkerConfig{Enabled: false}, nil)

	assert.False(t, started)
	assert.Empty(t, c.Workers())
}
