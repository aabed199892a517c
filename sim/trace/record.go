// Package trace provides decision-trace recording for admission and client follow-up analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// AdmissionDecision is where admission control placed an arriving request.
type AdmissionDecision string

const (
	DecisionCore       AdmissionDecision = "core"        // idle core, served immediately
	DecisionThreadPool AdmissionDecision = "thread_pool" // thread slot, waiting for a core
	DecisionBuffer     AdmissionDecision = "buffer"      // overflow buffer, no thread slot
	DecisionDrop       AdmissionDecision = "drop"
)

// AdmissionRecord captures a single admission decision.
type AdmissionRecord struct {
	RequestID int64
	Clock     float64
	Decision  AdmissionDecision
}

// FollowUpCause says why a client scheduled its next request.
type FollowUpCause string

const (
	FollowUpThink        FollowUpCause = "think"         // response received in time
	FollowUpTimeoutRetry FollowUpCause = "timeout_retry" // client gave up waiting
	FollowUpDropRetry    FollowUpCause = "drop_retry"    // request was dropped
)

// FollowUpRecord captures the scheduling of a client's next request after the
// outcome of request RequestID became known.
type FollowUpRecord struct {
	RequestID   int64
	Clock       float64
	Cause       FollowUpCause
	NextArrival float64
}
