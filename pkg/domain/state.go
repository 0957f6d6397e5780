package domain

// State is the step of the intake dialog a sender is on.
type State string

const (
	StateNew                  State = "new"
	StateAwaitingName         State = "awaiting_name"
	StateAwaitingLastName     State = "awaiting_lastname" // Reached when the name arrives as a single token
	StateAwaitingHonoree      State = "awaiting_honoree"
	StateAwaitingRelationship State = "awaiting_relationship"
	StateAwaitingTShirt       State = "awaiting_tshirt"
	StateCompleted            State = "completed" // Terminal, never persisted
)

// AllStates returns every state in dialog order.
func AllStates() []State {
	return []State{
		StateNew,
		StateAwaitingName,
		StateAwaitingLastName,
		StateAwaitingHonoree,
		StateAwaitingRelationship,
		StateAwaitingTShirt,
		StateCompleted,
	}
}

// IsValid reports whether s is one of the defined states.
func (s State) IsValid() bool {
	for _, known := range AllStates() {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s ends the dialog.
func (s State) IsTerminal() bool {
	return s == StateCompleted
}

func (s State) String() string {
	return string(s)
}
