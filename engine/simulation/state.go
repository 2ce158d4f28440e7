package simulation

// State is the run state of a simulation. There is no terminal state; a reset
// recreates the population instead.
type State uint8

const (
	// StateRunning advances the population every tick.
	StateRunning State = iota
	// StatePaused skips simulation updates while the scheduler keeps rendering.
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
