package models

import "time"

// Status is the lifecycle state of an appointment as stored by the backend.
type Status string

const (
	StatusPending    Status = "pendente"
	StatusConfirmed  Status = "confirmado"
	StatusInProgress Status = "em_atendimento"
	StatusCompleted  Status = "concluido"
	StatusCancelled  Status = "cancelado"
)

// Label is the human text shown on a status badge.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Awaiting confirmation"
	case StatusConfirmed:
		return "Confirmed"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// Appointment is the client's read copy of a booking; the backend owns it.
type Appointment struct {
	ID                   string                `json:"id"`
	ClientID             string                `json:"cliente_id"`
	ProfessionalID       string                `json:"profissional_id"`
	ServiceType          string                `json:"tipo_servico,omitempty"`
	Service              string                `json:"servico,omitempty"`
	ChosenServices       []string              `json:"servicos_escolhidos,omitempty"`
	Services             []ServiceItem         `json:"servicos,omitempty"`
	DateTime             string                `json:"data_hora"`
	Status               Status                `json:"status"`
	UsesAI               bool                  `json:"usar_ia"`
	AIPreferences        *string               `json:"preferencias_ia,omitempty"`
	Notes                *string               `json:"observacoes,omitempty"`
	RequiresConsultation bool                  `json:"requer_consulta"`
	RequiresStrandTest   bool                  `json:"requer_teste_mecha"`
	StrandTest           *StrandTestResult     `json:"teste_mecha,omitempty"`
	Medical              *MedicalQuestionnaire `json:"questionario_medico,omitempty"`
	MedicalAlt           *MedicalQuestionnaire `json:"medical_questionnaire,omitempty"`
	CalendarEventID      string                `json:"google_calendar_event_id,omitempty"`
	CreatedAt            string                `json:"created_at,omitempty"`
}

// Time parses DateTime. Backend revisions emit RFC 3339 with or without zone.
func (a Appointment) Time() (time.Time, error) {
	return ParseWireTime(a.DateTime)
}

// Questionnaire returns the medical questionnaire under either wire name.
func (a Appointment) Questionnaire() *MedicalQuestionnaire {
	if a.Medical != nil {
		return a.Medical
	}
	return a.MedicalAlt
}

// HasChemicalService reports whether any listed service is chemical.
func (a Appointment) HasChemicalService() bool {
	for _, s := range a.Services {
		if s.Type.IsChemical() {
			return true
		}
	}
	if ServiceType(a.ServiceType).IsChemical() {
		return true
	}
	for _, s := range a.ChosenServices {
		if ServiceType(s).IsChemical() {
			return true
		}
	}
	return false
}

// TotalDuration sums the estimated minutes of every listed service.
func (a Appointment) TotalDuration() int {
	total := 0
	for _, s := range a.Services {
		total += s.EstimatedDuration
	}
	return total
}

// CreateAppointmentRequest is the body of POST /appointments/.
type CreateAppointmentRequest struct {
	ProfessionalID       string        `json:"profissional_id" validate:"required"`
	DateTime             string        `json:"data_hora" validate:"required"`
	Services             []ServiceItem `json:"servicos" validate:"required,min=1,dive"`
	UsesAI               bool          `json:"usar_ia"`
	AIPreferences        *string       `json:"preferencias_ia"`
	Notes                *string       `json:"observacoes"`
	RequiresConsultation bool          `json:"requer_consulta"`
	RequiresStrandTest   bool          `json:"requer_teste_mecha"`
}

// StatusUpdate is the body of PATCH /appointments/{id}/status.
type StatusUpdate struct {
	NewStatus Status `json:"new_status"`
}

// CancelRequest is the body of PATCH /appointments/{id}/cancel.
type CancelRequest struct {
	Reason string `json:"motivo"`
}

// ParseWireTime accepts the timestamp shapes the backend has been seen to emit.
func ParseWireTime(s string) (time.Time, error) {
	layouts := []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
