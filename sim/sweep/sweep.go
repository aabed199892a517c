// Package sweep runs a simulator configuration across a range of one parameter,
// with independent replications per point, and reports each output statistic as a
// mean with a Student-t confidence interval.
package sweep

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inference-sim/coresim/sim"
)

// Spec describes one sweep. Param names a numeric config field by its yaml key;
// it takes the values From, From+Step, ... while below To.
type Spec struct {
	Param        string  `yaml:"param"`
	From         float64 `yaml:"from"`
	To           float64 `yaml:"to"`
	Step         float64 `yaml:"step"`
	Replications int     `yaml:"replications"`
	Confidence   float64 `yaml:"confidence"`  // e.g. 0.95
	Parallelism  int     `yaml:"parallelism"` // 0 means GOMAXPROCS
	BaseSeed     int64   `yaml:"base_seed"`
}

// Validate checks the sweep ranges. The parameter name is checked against the
// config when the sweep runs.
func (s *Spec) Validate() error {
	if s.Param == "" {
		return fmt.Errorf("param must be set")
	}
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"from", s.From},
		{"to", s.To},
		{"step", s.Step},
	} {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) {
			return fmt.Errorf("%s must be a finite number, got %f", f.name, f.val)
		}
	}
	if s.Step <= 0 {
		return fmt.Errorf("step must be positive, got %f", s.Step)
	}
	if s.To <= s.From {
		return fmt.Errorf("to (%f) must be above from (%f)", s.To, s.From)
	}
	if s.Replications < 1 {
		return fmt.Errorf("replications must be at least 1, got %d", s.Replications)
	}
	if !(s.Confidence > 0 && s.Confidence < 1) {
		return fmt.Errorf("confidence must be in (0, 1), got %f", s.Confidence)
	}
	if s.Parallelism < 0 {
		return fmt.Errorf("parallelism must be non-negative, got %d", s.Parallelism)
	}
	return nil
}

// Values lists the swept parameter values.
func (s *Spec) Values() []float64 {
	var vals []float64
	for i := 0; ; i++ {
		v := s.From + float64(i)*s.Step
		if v >= s.To {
			return vals
		}
		vals = append(vals, v)
	}
}

// SetParam assigns v to the config field whose yaml key is name. Integer fields
// only accept integral values.
func SetParam(cfg *sim.Config, name string, v float64) error {
	setInt := func(dst *int) error {
		if v != math.Trunc(v) {
			return fmt.Errorf("%s takes integer values, got %g", name, v)
		}
		*dst = int(v)
		return nil
	}
	switch name {
	case "n_cpu":
		return setInt(&cfg.NumCPU)
	case "n_users":
		return setInt(&cfg.NumUsers)
	case "buffer_capacity":
		return setInt(&cfg.BufferCap)
	case "threadpool_size":
		return setInt(&cfg.ThreadPool)
	case "max_iters":
		if v != math.Trunc(v) {
			return fmt.Errorf("%s takes integer values, got %g", name, v)
		}
		cfg.MaxIters = int64(v)
	case "ease_in_time":
		cfg.EaseInTime = v
	case "quantum":
		cfg.Quantum = v
	case "context_switch_time":
		cfg.ContextSwitch = v
	case "service_time_mean":
		cfg.ServiceTimeMean = v
	case "req_timeout_min":
		cfg.TimeoutMin = v
	case "req_timeout_max":
		cfg.TimeoutMax = v
	case "think_time_mean":
		cfg.ThinkTimeMean = v
	case "think_time_std_dev":
		cfg.ThinkTimeStdDev = v
	case "retry_think_time_mean":
		cfg.RetryThinkTimeMean = v
	case "retry_think_time_std_dev":
		cfg.RetryThinkTimeStdDev = v
	default:
		return fmt.Errorf("unknown sweep parameter %q", name)
	}
	return nil
}

// Estimate is a point estimate with its confidence interval.
type Estimate struct {
	Mean  float64 `json:"mean"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Point holds the replications run at one parameter value.
type Point struct {
	Value   float64              `json:"value"`
	Metrics map[string]Estimate  `json:"metrics"`
	Runs    []*sim.MetricsOutput `json:"-"`
}

// Result is the outcome of a sweep, one Point per swept value in ascending order.
type Result struct {
	Param      string  `json:"param"`
	Confidence float64 `json:"confidence"`
	Points     []Point `json:"points"`
}

// Run executes the sweep. Replication r of every point uses seed BaseSeed+r, so
// points are compared under common random numbers. Results do not depend on
// Parallelism. Cancelling ctx stops new runs from starting and returns ctx's error.
func Run(ctx context.Context, base sim.Config, spec Spec) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sweep: %w", err)
	}
	values := spec.Values()
	cfgs := make([]sim.Config, len(values))
	for i, v := range values {
		cfgs[i] = base
		if err := SetParam(&cfgs[i], spec.Param, v); err != nil {
			return nil, err
		}
		if err := cfgs[i].Validate(); err != nil {
			return nil, fmt.Errorf("config at %s=%g: %w", spec.Param, v, err)
		}
	}

	limit := spec.Parallelism
	if limit == 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	logrus.Infof("Sweeping %s over %d values x %d replications (parallelism %d)",
		spec.Param, len(values), spec.Replications, limit)

	runs := make([][]*sim.MetricsOutput, len(values))
	for i := range runs {
		runs[i] = make([]*sim.MetricsOutput, spec.Replications)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
schedule:
	for i := range values {
		for r := 0; r < spec.Replications; r++ {
			if gctx.Err() != nil {
				break schedule
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				s, err := sim.NewSimulator(cfgs[i], spec.BaseSeed+int64(r))
				if err != nil {
					return err
				}
				out, err := s.Run()
				if err != nil {
					return fmt.Errorf("%s=%g replication %d: %w", spec.Param, values[i], r, err)
				}
				runs[i][r] = out
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Param: spec.Param, Confidence: spec.Confidence, Points: make([]Point, len(values))}
	for i, v := range values {
		res.Points[i] = Point{Value: v, Metrics: summarize(runs[i], spec.Confidence), Runs: runs[i]}
	}
	return res, nil
}

// MetricNames lists the statistics a sweep reports, in output order. badput is
// throughput minus goodput: responses delivered to clients that had given up.
var MetricNames = []string{
	"arrival_rate", "throughput", "goodput", "badput", "resp_time", "cpu_util",
	"ctxx_busytime_frac", "reqs_in_sys", "dropped_frac", "drop_rate", "timedout_frac",
}

func metricValue(o *sim.MetricsOutput, name string) float64 {
	switch name {
	case "arrival_rate":
		return o.ArrivalRate
	case "throughput":
		return o.Throughput
	case "goodput":
		return o.Goodput
	case "badput":
		return o.Throughput - o.Goodput
	case "resp_time":
		return o.RespTime
	case "cpu_util":
		return o.CPUUtil
	case "ctxx_busytime_frac":
		return o.CtxxBusyTimeFrac
	case "reqs_in_sys":
		return o.ReqsInSys
	case "dropped_frac":
		return o.DroppedFrac
	case "drop_rate":
		return o.DropRate
	case "timedout_frac":
		return o.TimedOutFrac
	}
	panic(fmt.Sprintf("unknown metric %q", name))
}

func summarize(runs []*sim.MetricsOutput, confidence float64) map[string]Estimate {
	out := make(map[string]Estimate, len(MetricNames))
	xs := make([]float64, len(runs))
	for _, name := range MetricNames {
		for i, o := range runs {
			xs[i] = metricValue(o, name)
		}
		out[name] = ConfidenceInterval(xs, confidence)
	}
	return out
}

// ConfidenceInterval returns the sample mean of xs with a two-sided Student-t
// interval at the given confidence. A single sample yields a zero-width interval.
func ConfidenceInterval(xs []float64, confidence float64) Estimate {
	if len(xs) < 2 {
		m := 0.0
		if len(xs) == 1 {
			m = xs[0]
		}
		return Estimate{Mean: m, Lower: m, Upper: m}
	}
	mean, std := stat.MeanStdDev(xs, nil)
	n := float64(len(xs))
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 1}.Quantile(1 - (1-confidence)/2)
	half := t * std / math.Sqrt(n)
	return Estimate{Mean: mean, Lower: mean - half, Upper: mean + half}
}

// SaveResults writes the result as indented JSON to path, or to stdout when path
// is empty.
func (r *Result) SaveResults(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling sweep result: %w", err)
	}
	if path == "" {
		fmt.Println("=== Sweep Results ===")
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing sweep result to %s: %w", path, err)
	}
	logrus.Infof("Sweep results written to: %s", path)
	return nil
}
