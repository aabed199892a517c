package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate_AcceptsValid(t *testing.T) {
	cfg := testConfig()
	assert.NoError(t, cfg.Validate())
	cfg = randomConfig()
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"no cores", func(c *Config) { c.NumCPU = 0 }, "n_cpu"},
		{"negative users", func(c *Config) { c.NumUsers = -1 }, "n_users"},
		{"zero max iters", func(c *Config) { c.MaxIters = 0 }, "max_iters"},
		{"negative buffer", func(c *Config) { c.BufferCap = -1 }, "buffer_capacity"},
		{"empty thread pool", func(c *Config) { c.ThreadPool = 0 }, "threadpool_size"},
		{"zero quantum", func(c *Config) { c.Quantum = 0 }, "quantum"},
		{"NaN quantum", func(c *Config) { c.Quantum = math.NaN() }, "quantum"},
		{"zero service mean", func(c *Config) { c.ServiceTimeMean = 0 }, "service_time_mean"},
		{"negative ctx switch", func(c *Config) { c.ContextSwitch = -0.1 }, "context_switch_time"},
		{"negative ease in", func(c *Config) { c.EaseInTime = -1 }, "ease_in_time"},
		{"inverted timeouts", func(c *Config) { c.TimeoutMin, c.TimeoutMax = 5, 2 }, "req_timeout_max"},
		{"negative std dev", func(c *Config) { c.ThinkTimeStdDev = -1 }, "think_time_std_dev"},
		{"infinite think mean", func(c *Config) { c.ThinkTimeMean = math.Inf(1) }, "think_time_mean"},
		{"NaN retry mean", func(c *Config) { c.RetryThinkTimeMean = math.NaN() }, "retry_think_time_mean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.errSub)
			}
		})
	}
}

func TestConfig_Validate_NegativeThinkMeanAllowed(t *testing.T) {
	// negative means are legal: samples are truncated at zero
	cfg := testConfig()
	cfg.ThinkTimeMean = -1
	assert.NoError(t, cfg.Validate())
}
