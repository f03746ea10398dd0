package models

// ProcedureRecord captures what was done during the service.
type ProcedureRecord struct {
	ProductsUsed      []string `json:"produtos_utilizados"`
	TechniquesApplied []string `json:"tecnicas_aplicadas"`
	ProcessingMinutes *int     `json:"tempo_processamento,omitempty"`
	TechnicalNotes    string   `json:"observacoes_tecnicas,omitempty"`
	PhotosBefore      []string `json:"fotos_antes"`
	PhotosAfter       []string `json:"fotos_depois"`
	CanPublishPhotos  bool     `json:"pode_publicar_fotos"`
}

// AttendanceRecord is the professional's post-service note. Submitting it
// completes the appointment.
type AttendanceRecord struct {
	ID                 string          `json:"id,omitempty"`
	AppointmentID      string          `json:"appointment_id" validate:"required"`
	ClientID           string          `json:"cliente_id"`
	ProfessionalID     string          `json:"profissional_id,omitempty"`
	Procedure          ProcedureRecord `json:"procedimento"`
	NextRecommendation string          `json:"proxima_recomendacao,omitempty"`
	TreatmentPlan      []string        `json:"cronograma_tratamento,omitempty"`
	CreatedAt          string          `json:"created_at,omitempty"`
}
