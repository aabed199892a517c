package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testConfig returns a valid single-core configuration with generous capacities.
// Tests override the fields they exercise.
func testConfig() Config {
	return Config{
		NumCPU:               1,
		NumUsers:             1,
		EaseInTime:           0,
		MaxIters:             100_000,
		BufferCap:            0,
		ThreadPool:           16,
		Quantum:              0.5,
		ContextSwitch:        0,
		ServiceTimeMean:      1.0,
		TimeoutMin:           1e9,
		TimeoutMax:           1e9,
		ThinkTimeMean:        1e6,
		ThinkTimeStdDev:      0,
		RetryThinkTimeMean:   1e6,
		RetryThinkTimeStdDev: 0,
	}
}

// randomConfig returns a contended multi-core configuration exercising every
// admission path, context switches and timeouts.
func randomConfig() Config {
	return Config{
		NumCPU:               3,
		NumUsers:             40,
		EaseInTime:           5,
		MaxIters:             60_000,
		BufferCap:            6,
		ThreadPool:           8,
		Quantum:              0.2,
		ContextSwitch:        0.01,
		ServiceTimeMean:      0.6,
		TimeoutMin:           2,
		TimeoutMax:           6,
		ThinkTimeMean:        3,
		ThinkTimeStdDev:      2,
		RetryThinkTimeMean:   1,
		RetryThinkTimeStdDev: 1,
	}
}

// constantWorkload builds a generator whose samples never vary.
func constantWorkload(service, timeout, think, retryThink float64) *WorkloadGenerator {
	return &WorkloadGenerator{
		EaseIn:     ConstantSampler(0),
		Service:    ConstantSampler(service),
		Timeout:    ConstantSampler(timeout),
		Think:      ConstantSampler(think),
		RetryThink: ConstantSampler(retryThink),
	}
}

// sequenceSampler returns vals in order, cycling when exhausted.
type sequenceSampler struct {
	vals []float64
	i    int
}

func (s *sequenceSampler) Sample() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

// stepUntil processes events with timestamp <= until and returns them in order.
// Conservation invariants are checked after every event.
func stepUntil(t *testing.T, s *Simulator, until float64) []Event {
	t.Helper()
	var processed []Event
	for {
		next := s.EventQueue.Peek()
		if next == nil || next.Timestamp() > until {
			return processed
		}
		ev, err := s.Step()
		require.NoError(t, err)
		require.NoError(t, s.CheckInvariants(), "after %s at %g", ev.Kind(), ev.Timestamp())
		processed = append(processed, ev)
	}
}

// countKind counts processed events of the given kind.
func countKind(events []Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind() == kind {
			n++
		}
	}
	return n
}
