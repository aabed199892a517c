package sim

import (
	"fmt"
	"math"
)

// Config is the validated parameter record consumed once at simulator construction.
// Field names mirror the input record; the core applies no defaults.
type Config struct {
	NumCPU        int     `yaml:"n_cpu"`         // number of cores
	NumUsers      int     `yaml:"n_users"`       // closed-loop client population
	EaseInTime    float64 `yaml:"ease_in_time"`  // initial arrivals spread over [0, ease_in_time)
	MaxIters      int64   `yaml:"max_iters"`     // runaway guard: max events processed
	BufferCap     int     `yaml:"buffer_capacity"`
	ThreadPool    int     `yaml:"threadpool_size"`
	Quantum       float64 `yaml:"quantum"`
	ContextSwitch float64 `yaml:"context_switch_time"`

	ServiceTimeMean float64 `yaml:"service_time_mean"`
	TimeoutMin      float64 `yaml:"req_timeout_min"`
	TimeoutMax      float64 `yaml:"req_timeout_max"`

	ThinkTimeMean        float64 `yaml:"think_time_mean"`
	ThinkTimeStdDev      float64 `yaml:"think_time_std_dev"`
	RetryThinkTimeMean   float64 `yaml:"retry_think_time_mean"`
	RetryThinkTimeStdDev float64 `yaml:"retry_think_time_std_dev"`
}

// Validate checks ranges. It does not fill in missing values.
func (c *Config) Validate() error {
	if c.NumCPU < 1 {
		return fmt.Errorf("n_cpu must be at least 1, got %d", c.NumCPU)
	}
	if c.NumUsers < 0 {
		return fmt.Errorf("n_users must be non-negative, got %d", c.NumUsers)
	}
	if c.MaxIters < 1 {
		return fmt.Errorf("max_iters must be at least 1, got %d", c.MaxIters)
	}
	if c.BufferCap < 0 {
		return fmt.Errorf("buffer_capacity must be non-negative, got %d", c.BufferCap)
	}
	if c.ThreadPool < 1 {
		return fmt.Errorf("threadpool_size must be at least 1, got %d", c.ThreadPool)
	}
	if err := validateFinitePositive("quantum", c.Quantum); err != nil {
		return err
	}
	if err := validateFinitePositive("service_time_mean", c.ServiceTimeMean); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"ease_in_time", c.EaseInTime},
		{"context_switch_time", c.ContextSwitch},
		{"req_timeout_min", c.TimeoutMin},
		{"req_timeout_max", c.TimeoutMax},
		{"think_time_std_dev", c.ThinkTimeStdDev},
		{"retry_think_time_std_dev", c.RetryThinkTimeStdDev},
	} {
		if err := validateFiniteNonNegative(f.name, f.val); err != nil {
			return err
		}
	}
	if c.TimeoutMax < c.TimeoutMin {
		return fmt.Errorf("req_timeout_max (%f) must not be below req_timeout_min (%f)", c.TimeoutMax, c.TimeoutMin)
	}
	if math.IsNaN(c.ThinkTimeMean) || math.IsInf(c.ThinkTimeMean, 0) {
		return fmt.Errorf("think_time_mean must be a finite number, got %f", c.ThinkTimeMean)
	}
	if math.IsNaN(c.RetryThinkTimeMean) || math.IsInf(c.RetryThinkTimeMean, 0) {
		return fmt.Errorf("retry_think_time_mean must be a finite number, got %f", c.RetryThinkTimeMean)
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}

func validateFiniteNonNegative(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val < 0 {
		return fmt.Errorf("%s must be non-negative, got %f", name, val)
	}
	return nil
}
