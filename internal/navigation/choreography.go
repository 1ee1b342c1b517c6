package navigation

// Phase is a step of the animate-to-event sequence.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAnimatingPage
	PhaseAnimatingOffset
	PhaseDone
	PhaseAborted // a stage failed or was superseded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAnimatingPage:
		return "animating_page"
	case PhaseAnimatingOffset:
		return "animating_offset"
	case PhaseDone:
		return "done"
	case PhaseAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the sequence has finished.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseAborted
}

// nextPhase advances the sequence after the current stage finished with err.
// The offset stage only runs for granularities with a time axis, and only
// after the page stage settled.
func nextPhase(p Phase, hasTimeAxis bool, err error) Phase {
	switch p {
	case PhaseIdle:
		return PhaseAnimatingPage
	case PhaseAnimatingPage:
		switch {
		case err != nil:
			return PhaseAborted
		case hasTimeAxis:
			return PhaseAnimatingOffset
		default:
			return PhaseDone
		}
	case PhaseAnimatingOffset:
		if err != nil {
			return PhaseAborted
		}
		return PhaseDone
	default:
		return p
	}
}
