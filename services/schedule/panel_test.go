package schedule

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"salonai/models"
	"salonai/services/api"
	"salonai/services/api/apitest"
	"salonai/services/booking"
	"salonai/services/notify"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessions struct {
	mu          sync.Mutex
	user        *models.User
	invalidated []string
}

func (s *sessions) User() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *sessions) Invalidate(_ context.Context, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	s.user = nil
	s.invalidated = append(s.invalidated, reason)
}

const day = "2026-03-02"

type panelFixture struct {
	backend  *apitest.Backend
	sessions *sessions
	notes    *notify.Recorder
	panel    *Panel
}

func newPanelFixture(t *testing.T, interval time.Duration) *panelFixture {
	t.Helper()
	b := apitest.New(t)
	pro := b.AddUser(models.User{Email: "pro@salon.test", Role: models.RoleProfessional}, "pw")
	token := b.TokenFor("pro@salon.test")
	b.FreeSlots = []string{day + "T11:00:00"}

	f := &panelFixture{backend: b, sessions: &sessions{user: &pro}, notes: &notify.Recorder{}}
	f.panel = NewPanel(Options{
		Client:         api.NewClient(api.Options{BaseURL: b.URL(), Tokens: func() string { return token }}),
		Sessions:       f.sessions,
		Notifier:       f.notes,
		Now:            func() time.Time { return time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC) },
		ActionInterval: interval,
	})
	return f
}

func (f *panelFixture) add(id string, status models.Status, mutate ...func(*models.Appointment)) {
	pro, _ := f.sessions.User()
	a := models.Appointment{
		ID:             id,
		ClientID:       "c1",
		ProfessionalID: pro.ID,
		DateTime:       day + "T09:00:00",
		Status:         status,
		Services:       []models.ServiceItem{{Type: models.ServiceHaircut, EstimatedDuration: 60}},
	}
	for _, m := range mutate {
		m(&a)
	}
	f.backend.AddAppointment(a)
}

func TestLoadDefaultsToToday(t *testing.T) {
	f := newPanelFixture(t, 0)
	f.add("a1", models.StatusPending)
	f.add("other-day", models.StatusPending, func(a *models.Appointment) { a.DateTime = "2026-03-05T09:00:00" })

	sched, err := f.panel.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, day, sched.Date)
	assert.Equal(t, day, f.panel.Date())
	assert.Equal(t, "data="+day, f.backend.CallsTo(http.MethodGet, "/appointments/professional/schedule")[0].Query)

	cards := f.panel.Cards()
	require.Len(t, cards, 1)
	assert.Equal(t, "Awaiting confirmation", cards[0].StatusLabel)
	assert.Equal(t, []booking.Action{booking.ActionConfirm, booking.ActionCancel}, cards[0].Actions)
	assert.Equal(t, []string{day + "T11:00:00"}, f.panel.FreeSlots())
}

func TestConfirmRefetchesAndShowsConfirmedActions(t *testing.T) {
	f := newPanelFixture(t, 0)
	f.add("a1", models.StatusPending)
	ctx := context.Background()
	_, err := f.panel.Load(ctx, day)
	require.NoError(t, err)
	f.backend.Reset()

	require.NoError(t, f.panel.Confirm(ctx, "a1"))

	calls := f.backend.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodPatch, calls[0].Method)
	assert.Equal(t, apitest.APIPrefix+"/appointments/a1/status", calls[0].Path)
	assert.Equal(t, "new_status=confirmado", calls[0].Query)
	assert.JSONEq(t, `{"new_status":"confirmado"}`, string(calls[0].Body))
	assert.Equal(t, apitest.APIPrefix+"/appointments/professional/schedule", calls[1].Path)

	card, ok := f.panel.Card("a1")
	require.True(t, ok)
	assert.Equal(t, models.StatusConfirmed, card.Appointment.Status)
	assert.Equal(t, []booking.Action{booking.ActionStart, booking.ActionCancel}, card.Actions)
	last, _ := f.notes.Last()
	assert.Equal(t, notify.Message{Kind: notify.Success, Text: "Appointment confirmed!"}, last)
}

func TestFullLifecycle(t *testing.T) {
	f := newPanelFixture(t, 0)
	f.add("a1", models.StatusPending)
	ctx := context.Background()
	_, err := f.panel.Load(ctx, day)
	require.NoError(t, err)

	require.NoError(t, f.panel.Confirm(ctx, "a1"))
	require.NoError(t, f.panel.Start(ctx, "a1"))
	card, _ := f.panel.Card("a1")
	assert.Equal(t, []booking.Action{booking.ActionFinish}, card.Actions)

	minutes := 35
	require.NoError(t, f.panel.Finish(ctx, "a1", models.AttendanceRecord{
		Procedure:          models.ProcedureRecord{ProductsUsed: []string{"shampoo"}, ProcessingMinutes: &minutes},
		NextRecommendation: "trim in 6 weeks",
	}))
	card, _ = f.panel.Card("a1")
	assert.Equal(t, models.StatusCompleted, card.Appointment.Status)
	assert.Equal(t, []booking.Action{booking.ActionViewRecord}, card.Actions)

	records := f.backend.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "a1", records[0].AppointmentID)
	assert.Equal(t, "c1", records[0].ClientID)
	assert.Equal(t, "u1", records[0].ProfessionalID)

	rec, err := f.panel.ViewRecord(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"shampoo"}, rec.Procedure.ProductsUsed)
	assert.Equal(t, "trim in 6 weeks", rec.NextRecommendation)
	assert.NotEmpty(t, rec.ID)
	assert.Len(t, f.backend.CallsTo(http.MethodGet, "/attendance/records/client/c1"), 1)
}

func TestViewRecord(t *testing.T) {
	f := newPanelFixture(t, 0)
	f.add("done", models.StatusCompleted)
	f.add("open", models.StatusPending, func(a *models.Appointment) { a.DateTime = day + "T10:00:00" })
	ctx := context.Background()
	_, err := f.panel.Load(ctx, day)
	require.NoError(t, err)

	_, err = f.panel.ViewRecord(ctx, "open")
	assert.ErrorIs(t, err, ErrActionNotOffered)
	assert.Empty(t, f.backend.CallsTo(http.MethodGet, "/attendance/records/client/c1"))

	_, err = f.panel.ViewRecord(ctx, "done")
	assert.ErrorIs(t, err, ErrNoRecord)
	last, _ := f.notes.Last()
	assert.Equal(t, notify.Message{Kind: notify.Error, Text: "No attendance record for this appointment."}, last)
}

func TestActionNotOfferedSendsNothing(t *testing.T) {
	f := newPanelFixture(t, 0)
	f.add("a1", models.StatusPending)
	ctx := context.Background()
	_, err := f.panel.Load(ctx, day)
	require.NoError(t, err)
	f.backend.Reset()

	assert.ErrorIs(t, f.panel.Start(ctx, "a1"), ErrActionNotOffered)
	assert.ErrorIs(t, f.panel.Confirm(ctx, "missing"), ErrUnknownAppointment)
	assert.Empty(t, f.backend.Calls())
}

func TestStartBlockedForUnsafeChemical(t *testing.T) {
	f := newPanelFixture(t, 0)
	rejected := models.NewStrandTestResult(true, models.StrandRejected, "", "u1", time.Now())
	f.add("a1", models.StatusConfirmed, func(a *models.Appointment) {
		a.Services = []models.ServiceItem{{Type: models.ServiceColoring, EstimatedDuration: 90}}
		a.StrandTest = &rejected
	})
	f.add("a2", models.StatusConfirmed, func(a *models.Appointment) {
		a.Services = []models.ServiceItem{{Type: models.ServiceColoring, EstimatedDuration: 90}}
		a.DateTime = day + "T14:00:00"
	})
	ctx := context.Background()
	_, err := f.panel.Load(ctx, day)
	require.NoError(t, err)

	card, _ := f.panel.Card("a1")
	assert.True(t, card.Chemical)
	assert.False(t, card.CanProceedChemical)
	f.backend.Reset()
	assert.ErrorIs(t, f.panel.Start(ctx, "a1"), ErrChemicalBlocked)
	assert.Empty(t, f.backend.Calls())

	// chemical with no test on record and no requirement is allowed
	require.NoError(t, f.panel.Start(ctx, "a2"))
}

func TestUnauthorizedLoadInvalidatesSession(t *testing.T) {
	f := newPanelFixture(t, 0)
	f.backend.Fail(http.MethodGet, "/appointments/professional/schedule", http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})

	_, err := f.panel.Load(context.Background(), day)
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, []string{"Not authorized. Please log in again."}, f.sessions.invalidated)

	_, err = f.panel.Load(context.Background(), day)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestBackendRejectsTransition(t *testing.T) {
	f := newPanelFixture(t, 0)
	f.add("a1", models.StatusPending)
	ctx := context.Background()
	_, err := f.panel.Load(ctx, day)
	require.NoError(t, err)

	// someone else cancelled it meanwhile
	f.add("a1", models.StatusCancelled)
	err = f.panel.Confirm(ctx, "a1")
	require.Error(t, err)
	last, _ := f.notes.Last()
	assert.Equal(t, "Invalid transition cancelado -> confirmado", last.Text)

	card, _ := f.panel.Card("a1")
	assert.Equal(t, models.StatusPending, card.Appointment.Status, "failed action leaves the snapshot alone")
}

func TestActionsAreThrottled(t *testing.T) {
	f := newPanelFixture(t, time.Hour)
	f.add("a1", models.StatusPending)
	f.add("a2", models.StatusPending, func(a *models.Appointment) { a.DateTime = day + "T10:00:00" })
	ctx := context.Background()
	_, err := f.panel.Load(ctx, day)
	require.NoError(t, err)

	require.NoError(t, f.panel.Confirm(ctx, "a1"))
	assert.ErrorIs(t, f.panel.Confirm(ctx, "a2"), ErrThrottled)
	apt, _ := f.backend.Appointment("a2")
	assert.Equal(t, models.StatusPending, apt.Status)
}

func TestInvalidDate(t *testing.T) {
	f := newPanelFixture(t, 0)
	_, err := f.panel.Load(context.Background(), "03/02/2026")
	require.Error(t, err)
	assert.Empty(t, f.backend.Calls())
}

func TestCardForApprovedStrandTest(t *testing.T) {
	approved := models.NewStrandTestResult(true, models.StrandApproved, "", "u1", time.Now())
	c := newCard(models.Appointment{ID: "a1", Status: models.StatusConfirmed, RequiresStrandTest: true, StrandTest: &approved})

	assert.True(t, c.Chemical)
	assert.True(t, c.CanProceedChemical)
	assert.Equal(t, "approved", string(c.StrandBadge))
	assert.True(t, c.Offers(booking.ActionStart))
}
