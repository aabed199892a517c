package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// beginRun gives core to req for one quantum, or less if the request needs less.
func (sim *Simulator) beginRun(req *Request, core *Core, now float64) {
	core.State = CoreBusy
	core.Running = req
	core.Outgoing = nil
	core.Since = now
	q := math.Min(req.RemainingService, sim.Config.Quantum)
	core.Slice = q
	sim.Schedule(&QuantumOverEvent{time: now + q, Core: core})
}

// startContextSwitch swaps outgoing for incoming on core. The core does no useful
// work until the matching ContextSwitchComplete.
func (sim *Simulator) startContextSwitch(core *Core, incoming, outgoing *Request, now float64) {
	logrus.Debugf("   core %d: switch req %d -> req %d at %g", core.ID, outgoing.ID, incoming.ID, now)
	core.State = CoreContextSwitching
	core.Running = incoming
	core.Outgoing = outgoing
	core.Since = now
	sim.Schedule(&ContextSwitchCompleteEvent{time: now + sim.Config.ContextSwitch, Core: core})
}

// quantumOver charges the finished slice and picks what the core does next, in order:
//  1. a request waiting in the thread-pool queue takes the core (context switch);
//  2. an unfinished request keeps running (no switch charged);
//  3. the head of the overflow buffer takes the core (context switch);
//  4. the core goes idle.
//
// A finished request gives up its thread slot here; a buffered request pulled in by
// (3) inherits it.
func (sim *Simulator) quantumOver(core *Core, now float64) error {
	if core.State != CoreBusy {
		return fmt.Errorf("%w: QuantumOver on %s", ErrInvariantViolation, core)
	}
	// Charge the slice that was scheduled, not now-Since: far from t=0 the clock
	// cannot resolve a tiny leftover and the slice would never end.
	req := core.Running
	req.consume(core.Slice)
	core.TotalProcessingTime += core.Slice
	core.Slice = 0
	done := req.Done()

	switch {
	case sim.ThreadPoolQ.Len() > 0:
		incoming := sim.ThreadPoolQ.Dequeue()
		if done {
			sim.releaseThread(now)
		}
		sim.startContextSwitch(core, incoming, req, now)
	case !done:
		sim.beginRun(req, core, now)
	case sim.Buffer.Len() > 0:
		sim.startContextSwitch(core, sim.Buffer.Dequeue(), req, now)
	default:
		core.State = CoreIdle
		core.Running = nil
		sim.IdleCores = append(sim.IdleCores, core)
		sim.releaseThread(now)
		sim.Schedule(&DepartureEvent{time: now, Request: req})
	}
	return nil
}

// contextSwitchComplete charges the switch overhead, retires or requeues the
// outgoing request and starts the incoming one.
func (sim *Simulator) contextSwitchComplete(core *Core, now float64) error {
	if core.State != CoreContextSwitching {
		return fmt.Errorf("%w: ContextSwitchComplete on %s", ErrInvariantViolation, core)
	}
	core.TotalContextSwitchTime += now - core.Since
	incoming, outgoing := core.Running, core.Outgoing
	core.Outgoing = nil

	if outgoing.Done() {
		sim.Schedule(&DepartureEvent{time: now, Request: outgoing})
	} else {
		// round-robin: back of the thread-pool queue
		sim.ThreadPoolQ.Enqueue(outgoing)
	}
	sim.beginRun(incoming, core, now)
	return nil
}
