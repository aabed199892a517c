package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures all admission decisions and client follow-ups.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects decision records during a simulation.
type SimulationTrace struct {
	Config     TraceConfig
	Admissions []AdmissionRecord
	FollowUps  []FollowUpRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:     config,
		Admissions: make([]AdmissionRecord, 0),
		FollowUps:  make([]FollowUpRecord, 0),
	}
}

// RecordAdmission appends an admission decision record.
func (st *SimulationTrace) RecordAdmission(record AdmissionRecord) {
	st.Admissions = append(st.Admissions, record)
}

// RecordFollowUp appends a follow-up record.
func (st *SimulationTrace) RecordFollowUp(record FollowUpRecord) {
	st.FollowUps = append(st.FollowUps, record)
}
