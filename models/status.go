package models

// transitions lists, per status, the statuses a professional action can move
// an appointment to. Completed and cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Next returns the statuses reachable from s in one step, in the order
// they are offered to the professional.
func (s Status) Next() []Status {
	return append([]Status(nil), transitions[s]...)
}

// Terminal reports whether no further transition exists.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Known reports whether s is one of the lifecycle statuses.
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
