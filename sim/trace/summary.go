package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions int
	Decisions      map[AdmissionDecision]int // decision → count
	DropFraction   float64
	FollowUps      map[FollowUpCause]int // cause → count
	MeanThinkGap   float64               // mean (NextArrival − Clock) over think follow-ups
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		Decisions: make(map[AdmissionDecision]int),
		FollowUps: make(map[FollowUpCause]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Admissions)
	for _, a := range st.Admissions {
		summary.Decisions[a.Decision]++
	}
	if summary.TotalDecisions > 0 {
		summary.DropFraction = float64(summary.Decisions[DecisionDrop]) / float64(summary.TotalDecisions)
	}

	totalGap := 0.0
	for _, f := range st.FollowUps {
		summary.FollowUps[f.Cause]++
		if f.Cause == FollowUpThink {
			totalGap += f.NextArrival - f.Clock
		}
	}
	if n := summary.FollowUps[FollowUpThink]; n > 0 {
		summary.MeanThinkGap = totalGap / float64(n)
	}

	return summary
}
