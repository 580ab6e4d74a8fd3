package bench

// Phase is the driver's position within one case.
type Phase int

const (
	PhaseResetBaseline Phase = iota
	PhaseReplaceInto
	PhaseUpdate
	PhaseUpdateTransactional
	PhaseReplaceIntoSplit
	PhaseDiffThenApply
	PhaseDone
)

var phaseNames = [...]string{
	PhaseResetBaseline:       "reset_baseline",
	PhaseReplaceInto:         "replace_into",
	PhaseUpdate:              "update",
	PhaseUpdateTransactional: "update_transactional",
	PhaseReplaceIntoSplit:    "replace_into_split",
	PhaseDiffThenApply:       "diff_then_apply",
	PhaseDone:                "done",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Next returns the following phase. PhaseDone is terminal.
func (p Phase) Next() Phase {
	if p >= PhaseDone {
		return PhaseDone
	}
	return p + 1
}

// Strategy returns the strategy measured in p, or nil for the reset and
// done phases.
func (p Phase) Strategy() Strategy {
	switch p {
	case PhaseReplaceInto:
		return ReplaceInto{}
	case PhaseUpdate:
		return Update{}
	case PhaseUpdateTransactional:
		return UpdateTransactional{}
	case PhaseReplaceIntoSplit:
		return ReplaceIntoSplit{}
	case PhaseDiffThenApply:
		return DiffThenApply{}
	default:
		return nil
	}
}
