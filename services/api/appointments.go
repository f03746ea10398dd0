package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"salonai/models"
)

func (c *DefaultClient) Professionals(ctx context.Context, serviceType string) ([]models.Professional, error) {
	q := url.Values{}
	if serviceType != "" {
		q.Set("tipo_servico", serviceType)
	}
	var out []models.Professional
	if err := c.getJSON(ctx, "/professionals", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DefaultClient) Availability(ctx context.Context, professionalID, date string) (*models.Availability, error) {
	q := url.Values{}
	q.Set("profissional_id", professionalID)
	q.Set("data", date)
	var out models.Availability
	if err := c.getJSON(ctx, "/appointments/available", q, &out); err != nil {
		return nil, err
	}
	if out.ProfessionalID == "" {
		out.ProfessionalID = professionalID
	}
	if out.Date == "" {
		out.Date = date
	}
	return &out, nil
}

func (c *DefaultClient) CreateAppointment(ctx context.Context, req models.CreateAppointmentRequest, opts CreateOptions) (*models.Appointment, error) {
	q := url.Values{}
	q.Set("sync_calendar", strconv.FormatBool(opts.SyncCalendar))

	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	r := request{
		method:      http.MethodPost,
		path:        "/appointments/",
		query:       q,
		body:        body,
		contentType: "application/json",
	}
	if opts.Language != "" {
		r.header = http.Header{"Accept-Language": []string{opts.Language}}
	}
	var out models.Appointment
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *DefaultClient) MyAppointments(ctx context.Context) ([]models.Appointment, error) {
	var out []models.Appointment
	if err := c.getJSON(ctx, "/appointments/my", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DefaultClient) ProfessionalSchedule(ctx context.Context, date string) (*models.ProfessionalSchedule, error) {
	q := url.Values{}
	q.Set("data", date)
	var out models.ProfessionalSchedule
	if err := c.getJSON(ctx, "/appointments/professional/schedule", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus sends the new status both as JSON body and as query parameter;
// backend revisions read one or the other.
func (c *DefaultClient) UpdateStatus(ctx context.Context, appointmentID string, status models.Status) error {
	q := url.Values{}
	q.Set("new_status", string(status))
	return c.sendJSON(ctx, http.MethodPatch, "/appointments/"+url.PathEscape(appointmentID)+"/status", q,
		models.StatusUpdate{NewStatus: status}, nil)
}

func (c *DefaultClient) SaveAttendance(ctx context.Context, rec models.AttendanceRecord) error {
	return c.sendJSON(ctx, http.MethodPost, "/attendance/records", nil, rec, nil)
}

// ClientRecords lists the attendance records of one client.
func (c *DefaultClient) ClientRecords(ctx context.Context, clientID string) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	if err := c.getJSON(ctx, "/attendance/records/client/"+url.PathEscape(clientID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DefaultClient) SaveStrandTest(ctx context.Context, appointmentID string, rec models.StrandTestResult) error {
	return c.sendJSON(ctx, http.MethodPatch, "/appointments/"+url.PathEscape(appointmentID)+"/strand-test", nil, rec, nil)
}

func (c *DefaultClient) CancelAppointment(ctx context.Context, appointmentID, reason string) error {
	return c.sendJSON(ctx, http.MethodPatch, "/appointments/"+url.PathEscape(appointmentID)+"/cancel", nil,
		models.CancelRequest{Reason: reason}, nil)
}
