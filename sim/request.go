// Defines the Request struct that models one unit of work in the simulation.
// Tracks arrival time, service demand, remaining service and the timeout outcome tag.

package sim

import (
	"fmt"
)

// ServiceEpsilon is the remaining-service threshold below which a request counts as
// complete. Quantum arithmetic accumulates floating-point error, so exact zero is not
// a reliable test.
const ServiceEpsilon = 1e-12

// Outcome records whether the client behind a request is still waiting for it.
// Written only when the request's Timeout fires; read only at its Departure.
type Outcome int

const (
	AwaitingOutcome Outcome = iota
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case AwaitingOutcome:
		return "awaiting"
	case TimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Request models a single request's lifecycle in the simulation.
type Request struct {
	ID               int64   // Unique, monotonically increasing per workload generator
	ArrivalTime      float64 // Simulated time of arrival
	TotalService     float64 // Core time needed to complete
	RemainingService float64 // Core time still needed; only decreases
	Outcome          Outcome
}

// NewRequest creates a request with its full service demand outstanding.
func NewRequest(id int64, arrivalTime, service float64) *Request {
	return &Request{
		ID:               id,
		ArrivalTime:      arrivalTime,
		TotalService:     service,
		RemainingService: service,
		Outcome:          AwaitingOutcome,
	}
}

// Done reports whether the remaining service is indistinguishable from zero.
func (req *Request) Done() bool {
	return req.RemainingService < ServiceEpsilon
}

// consume charges processed core time to the request, clamping at zero.
func (req *Request) consume(processed float64) {
	req.RemainingService -= processed
	if req.RemainingService < 0 {
		req.RemainingService = 0
	}
}

// This method returns a human-readable string representation of a Request.
func (req Request) String() string {
	return fmt.Sprintf("Request: (ID: %d, ArrivalTime: %g, Remaining: %g/%g, Outcome: %s)",
		req.ID, req.ArrivalTime, req.RemainingService, req.TotalService, req.Outcome)
}
