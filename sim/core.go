package sim

import "fmt"

// CoreState is the lifecycle state of a processing core.
type CoreState string

const (
	CoreIdle             CoreState = "idle"
	CoreBusy             CoreState = "busy"
	CoreContextSwitching CoreState = "context_switching"
)

// Core is a processing resource. Its state fields are only changed by the
// dispatcher (dispatch.go).
//
//   - Idle: Running and Outgoing are nil.
//   - Busy: Running is served for Slice time units since Since.
//   - ContextSwitching: Running is the incoming request, Outgoing the one being
//     swapped out; the switch started at Since.
type Core struct {
	ID       int
	State    CoreState
	Running  *Request
	Outgoing *Request
	Since    float64
	Slice    float64 // service granted by the current run; charged in full at QuantumOver

	TotalProcessingTime    float64
	TotalContextSwitchTime float64
}

// NewCore returns an idle core.
func NewCore(id int) *Core {
	return &Core{ID: id, State: CoreIdle}
}

func (c *Core) String() string {
	switch c.State {
	case CoreBusy:
		return fmt.Sprintf("core %d busy(req %d since %g for %g)", c.ID, c.Running.ID, c.Since, c.Slice)
	case CoreContextSwitching:
		return fmt.Sprintf("core %d switching(in %d, out %d since %g)", c.ID, c.Running.ID, c.Outgoing.ID, c.Since)
	default:
		return fmt.Sprintf("core %d idle", c.ID)
	}
}
