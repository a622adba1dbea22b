package rate

// ReportingPolicy decides how a measurement round gets its totals printed:
// either a background goroutine runs Reporter.Run and rounds leave the
// counters alone, or each round resets on entry and reports once on exit.
type ReportingPolicy interface {
	BeginRound()
	EndRound()
}

type periodicBackground struct{}

func (periodicBackground) BeginRound() {}
func (periodicBackground) EndRound()   {}

// PeriodicBackground is the policy for when Reporter.Run is live on its own
// goroutine. Resetting mid-stream would corrupt the periodic output, so
// round boundaries are no-ops.
func PeriodicBackground() ReportingPolicy { return periodicBackground{} }

type onDemandPerRound struct {
	r *Reporter
}

// OnDemandPerRound is the policy for when no background goroutine drives the
// reporter: totals start from zero each round and a single summary sample is
// forced at round end.
func OnDemandPerRound(r *Reporter) ReportingPolicy { return onDemandPerRound{r: r} }

func (p onDemandPerRound) BeginRound() { p.r.Reset() }
func (p onDemandPerRound) EndRound()   { p.r.Report() }
