package audio

// Outcome reports what a controller operation did. Rejected requests are
// outcomes, not errors.
type Outcome int

const (
	// OutcomeNoop means there was nothing to do.
	OutcomeNoop Outcome = iota
	// OutcomeOK means the operation ran to completion.
	OutcomeOK
	// OutcomeStaged means the track became current without starting playback.
	OutcomeStaged
	// OutcomeBusy means another transition was in progress.
	OutcomeBusy
	// OutcomeUnavailable means the floor is unknown or failed to load.
	OutcomeUnavailable
	// OutcomeSameTrack means the floor is already current.
	OutcomeSameTrack
	// OutcomeFailed means a handle operation failed; the error was logged.
	OutcomeFailed
	// OutcomeCancelled means Cleanup interrupted the operation.
	OutcomeCancelled
)

// Accepted returns true if the request changed playback state.
func (o Outcome) Accepted() bool {
	return o == OutcomeOK || o == OutcomeStaged
}

func (o Outcome) String() string {
	switch o {
	case OutcomeNoop:
		return "noop"
	case OutcomeOK:
		return "ok"
	case OutcomeStaged:
		return "staged"
	case OutcomeBusy:
		return "busy"
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeSameTrack:
		return "same_track"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
