package checkout

// State is the phase of the most recent checkout attempt.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateCommitting
	StateDone
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateCommitting:
		return "committing"
	case StateDone:
		return "done"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// next lists the legal transitions. Done and Rejected may start a new attempt.
var next = map[State][]State{
	StateIdle:       {StateValidating},
	StateValidating: {StateCommitting, StateRejected},
	StateCommitting: {StateDone, StateRejected},
	StateDone:       {StateValidating},
	StateRejected:   {StateValidating},
}

func (s State) canMoveTo(to State) bool {
	for _, st := range next[s] {
		if st == to {
			return true
		}
	}
	return false
}
