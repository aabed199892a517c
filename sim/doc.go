// Package sim provides the discrete-event simulation engine for a multi-core
// compute-serving node.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - request.go: Request service accounting and the timeout reconciliation tag
//   - core.go: Core state machine (Idle / Busy / ContextSwitching)
//   - event.go: Event types that drive the simulation (Arrival, QuantumOver, ...)
//   - simulator.go: The event loop, the live request set and run termination
//
// Admission control lives in admission.go and quantum-based round-robin dispatch
// (with context-switch accounting) in dispatch.go. Workload sampling is in
// workload.go; statistics are accumulated in metrics.go.
//
// # Timeouts
//
// Timeout events are never removed from the event queue. A Timeout carries only
// the request ID and resolves it against the simulator's live set when it fires;
// a request that already departed (or was dropped) is gone from the set and the
// Timeout is a no-op. A request still in the system is tagged TimedOut, which its
// Departure later reads to decide whether the client is still waiting.
//
// # Sub-packages
//   - sim/trace/: optional decision trace (admission and follow-up scheduling)
//   - sim/sweep/: parameter sweeps with replicated runs and confidence intervals
package sim
