// Package testutil provides shared test infrastructure for the simulator: the
// golden dataset of hand-derived scenarios and float assertion helpers.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one fully deterministic scenario: fixed parameters and a
// constant workload (every sample returns the given value).
type GoldenTestCase struct {
	Name string `json:"name"`

	NumCPU        int     `json:"n_cpu"`
	NumUsers      int     `json:"n_users"`
	MaxIters      int64   `json:"max_iters"`
	BufferCap     int     `json:"buffer_capacity"`
	ThreadPool    int     `json:"threadpool_size"`
	Quantum       float64 `json:"quantum"`
	ContextSwitch float64 `json:"context_switch_time"`

	Workload GoldenWorkload `json:"workload"`
	Metrics  GoldenMetrics  `json:"metrics"`
}

// GoldenWorkload holds the constant sample values.
type GoldenWorkload struct {
	Service    float64 `json:"service"`
	Timeout    float64 `json:"timeout"`
	Think      float64 `json:"think"`
	RetryThink float64 `json:"retry_think"`
}

// GoldenMetrics represents the expected output of a golden test case.
type GoldenMetrics struct {
	// Exact match counters
	NArrivals   int64  `json:"n_arrivals"`
	NProcessed  int64  `json:"n_processed"`
	NDropped    int64  `json:"n_dropped"`
	NTimedOut   int64  `json:"n_timedout"`
	Iterations  int64  `json:"iterations"`
	Termination string `json:"termination"`

	// Derived statistics
	SimTime          float64 `json:"sim_time"`
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
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
