package sim

import (
	"github.com/sirupsen/logrus"
)

// EventKind identifies the type of a simulation event.
type EventKind string

const (
	EventArrival               EventKind = "Arrival"
	EventDeparture             EventKind = "Departure"
	EventQuantumOver           EventKind = "QuantumOver"
	EventContextSwitchComplete EventKind = "ContextSwitchComplete"
	EventTimeout               EventKind = "Timeout"
)

// Event defines the interface for all simulation events.
// Each event has a Timestamp (simulated time) and an Execute method that
// advances simulation state when invoked. Execute returns an error only for
// invariant violations, which abort the run.
type Event interface {
	Timestamp() float64
	Kind() EventKind
	Execute(*Simulator) error
}

// ArrivalEvent represents a request reaching the node.
type ArrivalEvent struct {
	time    float64
	Request *Request
}

func (e *ArrivalEvent) Timestamp() float64 { return e.time }
func (e *ArrivalEvent) Kind() EventKind    { return EventArrival }

// Execute hands the request to admission control.
func (e *ArrivalEvent) Execute(sim *Simulator) error {
	logrus.Debugf("<< Arrival: req %d at %g", e.Request.ID, e.time)
	sim.admit(e.Request, e.time)
	return nil
}

// DepartureEvent represents a fully served request leaving the node.
type DepartureEvent struct {
	time    float64
	Request *Request
}

func (e *DepartureEvent) Timestamp() float64 { return e.time }
func (e *DepartureEvent) Kind() EventKind    { return EventDeparture }

// Execute reconciles the departure with the request's timeout and records its response time.
func (e *DepartureEvent) Execute(sim *Simulator) error {
	logrus.Debugf("<< Departure: req %d at %g", e.Request.ID, e.time)
	return sim.depart(e.Request, e.time)
}

// QuantumOverEvent marks the end of a core's current run slice.
type QuantumOverEvent struct {
	time float64
	Core *Core
}

func (e *QuantumOverEvent) Timestamp() float64 { return e.time }
func (e *QuantumOverEvent) Kind() EventKind    { return EventQuantumOver }

func (e *QuantumOverEvent) Execute(sim *Simulator) error {
	logrus.Debugf("<< QuantumOver: core %d at %g", e.Core.ID, e.time)
	return sim.quantumOver(e.Core, e.time)
}

// ContextSwitchCompleteEvent marks the end of a core's swap between two requests.
type ContextSwitchCompleteEvent struct {
	time float64
	Core *Core
}

func (e *ContextSwitchCompleteEvent) Timestamp() float64 { return e.time }
func (e *ContextSwitchCompleteEvent) Kind() EventKind    { return EventContextSwitchComplete }

func (e *ContextSwitchCompleteEvent) Execute(sim *Simulator) error {
	logrus.Debugf("<< ContextSwitchComplete: core %d at %g", e.Core.ID, e.time)
	return sim.contextSwitchComplete(e.Core, e.time)
}

// TimeoutEvent fires when the client behind a request gives up. It holds only the
// request ID; the request itself is resolved through the simulator's live set.
type TimeoutEvent struct {
	time      float64
	RequestID int64
}

func (e *TimeoutEvent) Timestamp() float64 { return e.time }
func (e *TimeoutEvent) Kind() EventKind    { return EventTimeout }

func (e *TimeoutEvent) Execute(sim *Simulator) error {
	sim.timeout(e.RequestID, e.time)
	return nil
}
