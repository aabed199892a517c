// Tracks simulation-wide counters, sums and time-weighted integrals, and derives
// the steady-state statistics reported at the end of a run.

package sim

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// ReqsInSystem tracks the number of requests in the node for the time-weighted
// queue-length integral. Every mutation first accrues the integral up to now.
type ReqsInSystem struct {
	LastModified float64
	Count        int64
	TimedOut     int64   // requests still in the node whose client already gave up
	Integral     float64 // ∫ Count dt
}

// Update accrues the integral up to now, then applies delta to Count.
func (r *ReqsInSystem) Update(now float64, delta int64) {
	r.Integral += (now - r.LastModified) * float64(r.Count)
	r.LastModified = now
	r.Count += delta
}

// Termination says why the event loop stopped.
type Termination string

const (
	// TerminationExhausted means the event queue ran empty.
	TerminationExhausted Termination = "exhausted"
	// TerminationIterationCap means max_iters events were processed first.
	TerminationIterationCap Termination = "iteration_cap"
)

// Metrics aggregates statistics about the simulation for final reporting.
type Metrics struct {
	NArrivals          int64 // Arrival events processed
	NProcessed         int64 // Departures
	NTimedOut          int64 // Timeouts that found their request still in the node
	NDropped           int64 // Arrivals rejected by admission control
	NTimedOutInService int64 // Timed-out requests that have not departed yet

	SumResponseTime float64 // Σ (departure − arrival)
	InSystem        ReqsInSystem
}

// NewMetrics returns zeroed metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// MetricsOutput is the result record of a run.
type MetricsOutput struct {
	ArrivalRate      float64 `json:"arrival_rate"`
	Throughput       float64 `json:"throughput"`
	Goodput          float64 `json:"goodput"`
	RespTime         float64 `json:"resp_time"`
	CPUUtil          float64 `json:"cpu_util"`
	CtxxBusyTimeFrac float64 `json:"ctxx_busytime_frac"`
	ReqsInSys        float64 `json:"reqs_in_sys"`
	DroppedFrac      float64 `json:"dropped_frac"`
	DropRate         float64 `json:"drop_rate"`
	TimedOutFrac     float64 `json:"timedout_frac"`

	SimTime     float64     `json:"sim_time"`
	Iterations  int64       `json:"iterations"`
	Termination Termination `json:"termination"`
	NArrivals   int64       `json:"n_arrivals"`
	NProcessed  int64       `json:"n_processed"`
	NDropped    int64       `json:"n_dropped"`
	NTimedOut   int64       `json:"n_timedout"`
}

// Finalize folds per-core totals and derives the output statistics at time now.
// reqs_in_sys is the time average of the number of requests in the node
// (integral divided by elapsed time). Zero denominators yield 0.
func (m *Metrics) Finalize(now float64, cores []*Core, iterations int64, term Termination) *MetricsOutput {
	m.InSystem.Update(now, 0)

	var procTime, ctxTime float64
	for _, c := range cores {
		procTime += c.TotalProcessingTime
		ctxTime += c.TotalContextSwitchTime
	}
	completedOrDropped := float64(m.NDropped + m.NProcessed)
	abandonedDone := m.NTimedOut - m.NTimedOutInService

	return &MetricsOutput{
		ArrivalRate:      ratio(float64(m.NArrivals), now),
		Throughput:       ratio(float64(m.NProcessed), now),
		Goodput:          ratio(float64(m.NProcessed-abandonedDone), now),
		RespTime:         ratio(m.SumResponseTime, float64(m.NProcessed)),
		CPUUtil:          ratio(procTime+ctxTime, now*float64(len(cores))),
		CtxxBusyTimeFrac: ratio(ctxTime, procTime+ctxTime),
		ReqsInSys:        ratio(m.InSystem.Integral, now),
		DroppedFrac:      ratio(float64(m.NDropped), completedOrDropped),
		DropRate:         ratio(float64(m.NDropped), now),
		TimedOutFrac:     ratio(float64(m.NTimedOut), completedOrDropped),

		SimTime:     now,
		Iterations:  iterations,
		Termination: term,
		NArrivals:   m.NArrivals,
		NProcessed:  m.NProcessed,
		NDropped:    m.NDropped,
		NTimedOut:   m.NTimedOut,
	}
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// SaveResults writes the output record as indented JSON to outputFilePath, or to
// stdout when the path is empty.
func (o *MetricsOutput) SaveResults(outputFilePath string) error {
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling metrics: %w", err)
	}
	if outputFilePath == "" {
		fmt.Println("=== Simulation Metrics ===")
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(outputFilePath, data, 0644); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", outputFilePath, err)
	}
	logrus.Infof("Metrics written to: %s", outputFilePath)
	return nil
}
