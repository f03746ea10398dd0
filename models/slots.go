package models

import (
	"bytes"
	"encoding/json"
)

// TimeSlot is one bookable start time for a professional on a given day.
type TimeSlot struct {
	Time             string `json:"horario"`
	Available        bool   `json:"disponivel"`
	ProfessionalID   string `json:"profissional_id,omitempty"`
	AvailableMinutes int    `json:"duracao_disponivel,omitempty"`
}

// Availability is the response of GET /appointments/available.
type Availability struct {
	Date           string     `json:"data"`
	ProfessionalID string     `json:"profissional_id"`
	Slots          []TimeSlot `json:"horarios"`
}

// UnmarshalJSON accepts both the object form and a bare slot array, which
// older backend revisions returned.
func (a *Availability) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &a.Slots)
	}
	type plain Availability
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*a = Availability(p)
	return nil
}

// Find returns the slot starting at t, if listed.
func (a Availability) Find(t string) (TimeSlot, bool) {
	for _, s := range a.Slots {
		if s.Time == t {
			return s, true
		}
	}
	return TimeSlot{}, false
}

// ProfessionalSchedule is a professional's day: bookings plus free start times.
type ProfessionalSchedule struct {
	ProfessionalID string        `json:"profissional_id"`
	Date           string        `json:"data"`
	Appointments   []Appointment `json:"agendamentos"`
	FreeSlots      []string      `json:"horarios_disponiveis"`
	Total          int           `json:"total_agendamentos"`
}
