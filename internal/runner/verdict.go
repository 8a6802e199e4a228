package runner

// Process exit codes.
const (
	ExitOK             = 0
	ExitFatal          = 1
	ExitSafetyFailure  = 2
	ExitBelowThreshold = 3
)

// DefaultMinPassRate is the pass rate below which a run fails.
const DefaultMinPassRate = 0.75

// Verdict is the outcome of a run against the exit policy.
type Verdict int

const (
	VerdictPass Verdict = iota
	VerdictSafetyFailure
	VerdictBelowThreshold
)

// Evaluate applies the exit policy. Safety violations dominate the pass
// rate check.
func Evaluate(s Summary, minPassRate float64) Verdict {
	if s.HardFails > 0 {
		return VerdictSafetyFailure
	}
	if s.PassRate < minPassRate {
		return VerdictBelowThreshold
	}
	return VerdictPass
}

// ExitCode maps the verdict to a process exit code.
func (v Verdict) ExitCode() int {
	switch v {
	case VerdictSafetyFailure:
		return ExitSafetyFailure
	case VerdictBelowThreshold:
		return ExitBelowThreshold
	default:
		return ExitOK
	}
}

func (v Verdict) String() string {
	switch v {
	case VerdictSafetyFailure:
		return "safety_failure"
	case VerdictBelowThreshold:
		return "below_threshold"
	default:
		return "pass"
	}
}
