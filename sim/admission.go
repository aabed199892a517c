package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/coresim/sim/trace"
)

// admit places an arriving request: on an idle core, in the thread-pool queue
// (thread slot, no core), in the overflow buffer (no thread slot), or drops it.
func (sim *Simulator) admit(req *Request, now float64) {
	sim.Metrics.NArrivals++
	sim.Metrics.InSystem.Update(now, 1)

	switch {
	case sim.NThreads < sim.Config.ThreadPool:
		sim.NThreads++
		sim.recordAdmission(req, now, sim.runOrQueue(req, now))
	case sim.Buffer.Len() < sim.Config.BufferCap:
		sim.Buffer.Enqueue(req)
		sim.recordAdmission(req, now, trace.DecisionBuffer)
	default:
		sim.drop(req, now)
	}
}

// runOrQueue starts a request that holds a thread slot on an idle core, or parks it
// at the back of the thread-pool queue when every core is taken.
func (sim *Simulator) runOrQueue(req *Request, now float64) trace.AdmissionDecision {
	if core := sim.popIdleCore(); core != nil {
		sim.beginRun(req, core, now)
		return trace.DecisionCore
	}
	sim.ThreadPoolQ.Enqueue(req)
	return trace.DecisionThreadPool
}

// drop rejects a request. The client cannot tell right away: it waits out its own
// timeout, thinks, and then retries.
func (sim *Simulator) drop(req *Request, now float64) {
	logrus.Debugf("   drop req %d at %g (threads=%d, buffer=%d)", req.ID, now, sim.NThreads, sim.Buffer.Len())
	sim.Metrics.NDropped++
	sim.Metrics.InSystem.Update(now, -1)
	delete(sim.live, req.ID)
	sim.recordAdmission(req, now, trace.DecisionDrop)

	at := now + sim.Workload.TimeoutOffset() + sim.Workload.RetryThinkTime()
	sim.followUp(req, now, trace.FollowUpDropRetry, at)
}

// releaseThread frees one thread slot. If the overflow buffer is waiting, its head
// takes the slot immediately.
func (sim *Simulator) releaseThread(now float64) {
	sim.NThreads--
	if sim.Buffer.Len() > 0 && sim.NThreads < sim.Config.ThreadPool {
		next := sim.Buffer.Dequeue()
		sim.NThreads++
		sim.runOrQueue(next, now)
	}
}

func (sim *Simulator) popIdleCore() *Core {
	n := len(sim.IdleCores)
	if n == 0 {
		return nil
	}
	core := sim.IdleCores[n-1]
	sim.IdleCores[n-1] = nil
	sim.IdleCores = sim.IdleCores[:n-1]
	return core
}

func (sim *Simulator) recordAdmission(req *Request, now float64, decision trace.AdmissionDecision) {
	if sim.Trace == nil {
		return
	}
	sim.Trace.RecordAdmission(trace.AdmissionRecord{
		RequestID: req.ID,
		Clock:     now,
		Decision:  decision,
	})
}
