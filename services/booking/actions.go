package booking

import "salonai/models"

// Action is a professional action offered on an appointment card.
type Action string

const (
	ActionConfirm    Action = "confirm"
	ActionCancel     Action = "cancel"
	ActionStart      Action = "start"
	ActionFinish     Action = "finish"
	ActionViewRecord Action = "view_record"
)

// Target is the status an action asks the backend for. ActionViewRecord has
// none.
func (a Action) Target() (models.Status, bool) {
	switch a {
	case ActionConfirm:
		return models.StatusConfirmed, true
	case ActionCancel:
		return models.StatusCancelled, true
	case ActionStart:
		return models.StatusInProgress, true
	case ActionFinish:
		return models.StatusCompleted, true
	}
	return "", false
}

// actionTo names the action that moves an appointment to a status.
var actionTo = map[models.Status]Action{
	models.StatusConfirmed:  ActionConfirm,
	models.StatusCancelled:  ActionCancel,
	models.StatusInProgress: ActionStart,
	models.StatusCompleted:  ActionFinish,
}

// ActionsFor lists the actions offered for an appointment in status s. A
// completed appointment only offers its record; a cancelled one offers
// nothing.
func ActionsFor(s models.Status) []Action {
	if !s.Known() {
		return nil
	}
	if s.Terminal() {
		if s == models.StatusCompleted {
			return []Action{ActionViewRecord}
		}
		return nil
	}
	var actions []Action
	for _, next := range s.Next() {
		actions = append(actions, actionTo[next])
	}
	return actions
}

// Offers reports whether a is among ActionsFor(s).
func Offers(s models.Status, a Action) bool {
	for _, offered := range ActionsFor(s) {
		if offered == a {
			return true
		}
	}
	return false
}
