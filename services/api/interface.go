package api

import (
	"context"
	"io"

	"salonai/models"
)

// Client is one call per backend endpoint. Calls are fire-and-forget: no
// queueing, no retry, no idempotency key.
type Client interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Me(ctx context.Context) (*models.User, error)
	Professionals(ctx context.Context, serviceType string) ([]models.Professional, error)
	Availability(ctx context.Context, professionalID, date string) (*models.Availability, error)
	CreateAppointment(ctx context.Context, req models.CreateAppointmentRequest, opts CreateOptions) (*models.Appointment, error)
	MyAppointments(ctx context.Context) ([]models.Appointment, error)
	UploadPhoto(ctx context.Context, filename, contentType string, r io.Reader) (*models.UploadResult, error)
	AnalyzePhoto(ctx context.Context) (*models.AISuggestions, error)
	StylePreview(ctx context.Context, style string) (*models.StylePreview, error)
	Settings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, form SettingsForm) error
	ProfessionalSchedule(ctx context.Context, date string) (*models.ProfessionalSchedule, error)
	UpdateStatus(ctx context.Context, appointmentID string, status models.Status) error
	SaveAttendance(ctx context.Context, rec models.AttendanceRecord) error
	ClientRecords(ctx context.Context, clientID string) ([]models.AttendanceRecord, error)
	SaveStrandTest(ctx context.Context, appointmentID string, rec models.StrandTestResult) error
	CancelAppointment(ctx context.Context, appointmentID, reason string) error
	Translations(ctx context.Context, language string) (map[string]string, error)
	Health(ctx context.Context) error
}

// CreateOptions carries the request decorations of appointment creation.
type CreateOptions struct {
	SyncCalendar bool
	Language     string
}

// SettingsForm is the admin branding form; Logo is optional.
type SettingsForm struct {
	PrimaryColor   string
	SecondaryColor string
	LogoName       string
	Logo           io.Reader
}
