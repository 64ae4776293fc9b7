package engine

// EventKind identifies an engine-emitted state change.
type EventKind uint8

const (
	EventRoundStarted      EventKind = iota // PlayerID = dealer, Cards = [trump card]
	EventTrickEnded                         // PlayerID = winner, Final, Cards = trick
	EventPhaseChanged                       // Phase
	EventMeldDeclared                       // PlayerID, Meld, Points, Cards
	EventTrumpSevenSwapped                  // PlayerID, Cards = [new trump card]
	EventRoundEnded                         // PlayerID = round winner, Scores = totals
	EventGameEnded                          // PlayerID = game winner, Scores = totals
)

func (k EventKind) String() string {
	switch k {
	case EventRoundStarted:
		return "round_started"
	case EventTrickEnded:
		return "trick_ended"
	case EventPhaseChanged:
		return "phase_changed"
	case EventMeldDeclared:
		return "meld_declared"
	case EventTrumpSevenSwapped:
		return "trump_seven_swapped"
	case EventRoundEnded:
		return "round_ended"
	case EventGameEnded:
		return "game_ended"
	default:
		return "unknown"
	}
}

// Event is one entry of the engine's outbox. Fields not listed for a kind
// are zero.
type Event struct {
	Kind     EventKind
	PlayerID int
	Final    bool
	Phase    Phase
	Meld     MeldType
	Points   int
	Cards    []Card
	Scores   []int
}

func (e *GameEngine) emit(ev Event) {
	e.events = append(e.events, ev)
}

// DrainEvents returns the events emitted since the last drain and clears the
// outbox. Callers dispatch them after the mutating call returns.
func (e *GameEngine) DrainEvents() []Event {
	out := e.events
	e.events = nil
	return out
}

// PendingEvents returns the outbox without clearing it.
func (e *GameEngine) PendingEvents() []Event {
	return append([]Event(nil), e.events...)
}
