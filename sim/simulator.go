// sim/simulator.go
package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/coresim/sim/trace"
)

// ErrInvariantViolation marks a defect in the scheduler itself (e.g. a core in the
// wrong state for the event that fired). The run is aborted; statistics computed
// past this point would be meaningless.
var ErrInvariantViolation = errors.New("scheduler invariant violated")

// Simulator is the core object that holds simulation time, system state, and the event loop.
type Simulator struct {
	Clock  float64
	Config Config
	// EventQueue has all pending events; it is the only driver of simulated time
	EventQueue *EventQueue

	Cores     []*Core
	IdleCores []*Core // stack; the most recently idled core is reused first
	// ThreadPoolQ holds requests that own a thread slot but are waiting for a core
	ThreadPoolQ *RequestQueue
	// Buffer holds requests that could not get a thread slot (bounded by BufferCap)
	Buffer *RequestQueue
	// NThreads counts requests holding a thread slot, with or without a core
	NThreads int

	Metrics  *Metrics
	Workload *WorkloadGenerator
	Trace    *trace.SimulationTrace // nil unless tracing is enabled

	Iterations int64

	// live holds every request that has been created and has neither departed
	// nor been dropped. Timeout events resolve their request ID here.
	live map[int64]*Request
}

// NewSimulator validates cfg and builds a simulator whose workload is sampled from
// the configured distributions, seeded by seed.
func NewSimulator(cfg Config, seed int64) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	gen := NewWorkloadGenerator(&cfg, NewPartitionedRNG(NewSimulationKey(seed)))
	return NewSimulatorWithWorkload(cfg, gen)
}

// NewSimulatorWithWorkload builds a simulator around an injected workload generator
// and seeds the initial user population: one request per user, spread over the
// ease-in window.
func NewSimulatorWithWorkload(cfg Config, gen *WorkloadGenerator) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if gen == nil {
		return nil, errors.New("workload generator must not be nil")
	}
	s := &Simulator{
		Clock:       0,
		Config:      cfg,
		EventQueue:  NewEventQueue(),
		Cores:       make([]*Core, cfg.NumCPU),
		IdleCores:   make([]*Core, 0, cfg.NumCPU),
		ThreadPoolQ: &RequestQueue{},
		Buffer:      &RequestQueue{},
		Metrics:     NewMetrics(),
		Workload:    gen,
		live:        make(map[int64]*Request),
	}
	for i := range s.Cores {
		s.Cores[i] = NewCore(i)
	}
	// push in reverse so core 0 is handed out first
	for i := len(s.Cores) - 1; i >= 0; i-- {
		s.IdleCores = append(s.IdleCores, s.Cores[i])
	}
	for u := 0; u < cfg.NumUsers; u++ {
		s.newSession(gen.EaseInOffset())
	}
	return s, nil
}

// EnableTrace starts recording decisions. A TraceLevelNone config leaves tracing off.
func (sim *Simulator) EnableTrace(cfg trace.TraceConfig) {
	if cfg.Level == trace.TraceLevelDecisions {
		sim.Trace = trace.NewSimulationTrace(cfg)
	}
}

// Pushes an event into the simulator's EventQueue.
func (sim *Simulator) Schedule(ev Event) {
	sim.EventQueue.Schedule(ev)
}

// newSession creates a request arriving at time at, together with its Timeout.
// The pair is always created as one unit so every request has exactly one Timeout.
func (sim *Simulator) newSession(at float64) *Request {
	req := NewRequest(sim.Workload.NextID(), at, sim.Workload.ServiceTime())
	sim.live[req.ID] = req
	sim.Schedule(&ArrivalEvent{time: at, Request: req})
	sim.Schedule(&TimeoutEvent{time: at + sim.Workload.TimeoutOffset(), RequestID: req.ID})
	return req
}

// followUp schedules the client's next request after the outcome of req.
func (sim *Simulator) followUp(req *Request, now float64, cause trace.FollowUpCause, at float64) {
	next := sim.newSession(at)
	logrus.Debugf("   follow-up (%s) for req %d: req %d at %g", cause, req.ID, next.ID, at)
	if sim.Trace != nil {
		sim.Trace.RecordFollowUp(trace.FollowUpRecord{
			RequestID:   req.ID,
			Clock:       now,
			Cause:       cause,
			NextArrival: at,
		})
	}
}

// timeout reconciles a client deadline with the request's progress. A request
// that is no longer live already departed or was dropped: nothing to do.
func (sim *Simulator) timeout(id int64, now float64) {
	req, ok := sim.live[id]
	if !ok {
		return
	}
	logrus.Debugf("<< Timeout: req %d at %g (still in system)", id, now)
	sim.Metrics.NTimedOut++
	sim.Metrics.NTimedOutInService++
	sim.Metrics.InSystem.TimedOut++
	req.Outcome = TimedOut
	sim.followUp(req, now, trace.FollowUpTimeoutRetry, now+sim.Workload.RetryThinkTime())
}

// depart retires a served request. The think-time follow-up is only scheduled if
// the client did not already give up (its retry was scheduled by the Timeout).
func (sim *Simulator) depart(req *Request, now float64) error {
	if _, ok := sim.live[req.ID]; !ok {
		return fmt.Errorf("%w: departure of %s which is not in the system", ErrInvariantViolation, req)
	}
	delete(sim.live, req.ID)

	if req.Outcome == AwaitingOutcome {
		sim.followUp(req, now, trace.FollowUpThink, now+sim.Workload.ThinkTime())
	} else {
		sim.Metrics.NTimedOutInService--
		sim.Metrics.InSystem.TimedOut--
	}
	sim.Metrics.SumResponseTime += now - req.ArrivalTime
	sim.Metrics.InSystem.Update(now, -1)
	sim.Metrics.NProcessed++
	return nil
}

// Step processes the next event. It returns the processed event, or nil when the
// queue is exhausted.
func (sim *Simulator) Step() (Event, error) {
	ev := sim.EventQueue.PopNext()
	if ev == nil {
		return nil, nil
	}
	// advance the clock
	sim.Clock = ev.Timestamp()
	sim.Iterations++
	if err := ev.Execute(sim); err != nil {
		return ev, fmt.Errorf("executing %s at %g: %w", ev.Kind(), sim.Clock, err)
	}
	return ev, nil
}

// Run processes events until the queue is exhausted or max_iters events have been
// processed, then derives the output statistics over the elapsed simulated time.
// Reaching the iteration cap is not an error; it is reported in the output.
func (sim *Simulator) Run() (*MetricsOutput, error) {
	logrus.Infof("Starting simulation: %d cores, %d users, threadpool=%d, buffer=%d, quantum=%g, ctx switch=%g",
		sim.Config.NumCPU, sim.Config.NumUsers, sim.Config.ThreadPool, sim.Config.BufferCap,
		sim.Config.Quantum, sim.Config.ContextSwitch)

	term := TerminationExhausted
	for {
		if sim.Iterations >= sim.Config.MaxIters && sim.EventQueue.Len() > 0 {
			term = TerminationIterationCap
			next := sim.EventQueue.Peek()
			logrus.Warnf("[t=%g] Iteration cap (%d) reached with %d pending events (next %s at %g); stopping early",
				sim.Clock, sim.Config.MaxIters, sim.EventQueue.Len(), next.Kind(), next.Timestamp())
			logrus.Warnf("   thread pool queue %s, buffer %s", sim.ThreadPoolQ, sim.Buffer)
			break
		}
		ev, err := sim.Step()
		if err != nil {
			return nil, err
		}
		if ev == nil {
			break
		}
	}
	logrus.Infof("[t=%g] Simulation ended (%s) after %d events", sim.Clock, term, sim.Iterations)
	return sim.Metrics.Finalize(sim.Clock, sim.Cores, sim.Iterations, term), nil
}

// CheckInvariants verifies thread-slot conservation, capacity bounds and core/idle
// set consistency.
func (sim *Simulator) CheckInvariants() error {
	holders := sim.ThreadPoolQ.Len()
	idle := 0
	for _, c := range sim.Cores {
		switch c.State {
		case CoreBusy:
			holders++
		case CoreContextSwitching:
			holders++
			if !c.Outgoing.Done() {
				holders++
			}
		case CoreIdle:
			idle++
			if c.Running != nil || c.Outgoing != nil {
				return fmt.Errorf("%w: idle core %d still references a request", ErrInvariantViolation, c.ID)
			}
		}
	}
	if holders != sim.NThreads {
		return fmt.Errorf("%w: n_threads=%d but %d requests hold a thread slot", ErrInvariantViolation, sim.NThreads, holders)
	}
	if sim.NThreads > sim.Config.ThreadPool {
		return fmt.Errorf("%w: n_threads=%d exceeds threadpool_size=%d", ErrInvariantViolation, sim.NThreads, sim.Config.ThreadPool)
	}
	if sim.Buffer.Len() > sim.Config.BufferCap {
		return fmt.Errorf("%w: buffer length %d exceeds capacity %d", ErrInvariantViolation, sim.Buffer.Len(), sim.Config.BufferCap)
	}
	if idle != len(sim.IdleCores) {
		return fmt.Errorf("%w: %d idle cores but idle set has %d", ErrInvariantViolation, idle, len(sim.IdleCores))
	}
	return nil
}
