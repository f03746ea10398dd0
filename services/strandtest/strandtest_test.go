package strandtest

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"salonai/models"
	"salonai/services/api"
	"salonai/services/api/apitest"
	"salonai/services/notify"
	"salonai/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yes() *bool { b := true; return &b }
func no() *bool  { b := false; return &b }

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		sub  Submission
		want error
	}{
		{"unanswered", Submission{}, ErrPerformedUnanswered},
		{"performed without result", Submission{Performed: yes()}, ErrResultRequired},
		{"not performed with result", Submission{Performed: no(), Result: models.StrandApproved}, ErrResultWithoutTest},
		{"unknown result", Submission{Performed: yes(), Result: "maybe"}, ErrUnknownResult},
		{"not performed", Submission{Performed: no()}, nil},
		{"approved", Submission{Performed: yes(), Result: models.StrandApproved}, nil},
		{"rejected", Submission{Performed: yes(), Result: models.StrandRejected}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.sub.Validate()
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, utils.ErrValidation)
		})
	}
}

func TestCanProceedWithChemical(t *testing.T) {
	approved := models.NewStrandTestResult(true, models.StrandApproved, "", "p1", time.Now())
	rejected := models.NewStrandTestResult(true, models.StrandRejected, "", "p1", time.Now())
	skipped := models.NewStrandTestResult(false, models.StrandAbsent, "", "p1", time.Now())

	cases := []struct {
		name string
		apt  models.Appointment
		want bool
	}{
		{"nothing recorded", models.Appointment{}, true},
		{"approved", models.Appointment{StrandTest: &approved}, true},
		{"performed and rejected", models.Appointment{StrandTest: &rejected}, false},
		{"rejected even without requirement or risk", models.Appointment{StrandTest: &rejected, RequiresStrandTest: false}, false},
		{"required but missing", models.Appointment{RequiresStrandTest: true}, false},
		{"required but skipped", models.Appointment{RequiresStrandTest: true, StrandTest: &skipped}, false},
		{"required and approved", models.Appointment{RequiresStrandTest: true, StrandTest: &approved}, true},
		{"q2 risk despite approval", models.Appointment{StrandTest: &approved, Medical: &models.MedicalQuestionnaire{Q2: "sim"}}, false},
		{"q4 risk under alternate key", models.Appointment{StrandTest: &approved, MedicalAlt: &models.MedicalQuestionnaire{Q4: "sim"}}, false},
		{"other answers are not risks", models.Appointment{Medical: &models.MedicalQuestionnaire{Q1: "sim", Q2: "nao", Q4: "nao"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanProceedWithChemical(tc.apt))
		})
	}
}

func TestBadge(t *testing.T) {
	approved := models.NewStrandTestResult(true, models.StrandApproved, "", "p1", time.Now())
	rejected := models.NewStrandTestResult(true, models.StrandRejected, "", "p1", time.Now())
	assert.Equal(t, BadgePending, Badge(nil))
	assert.Equal(t, BadgePending, Badge(&models.StrandTestResult{}))
	assert.Equal(t, BadgeRejected, Badge(&rejected))
	assert.Equal(t, BadgeApproved, Badge(&approved))
	assert.Equal(t, "Test pending", BadgePending.Label())
}

type operator struct{ user *models.User }

func (o operator) User() (models.User, bool) {
	if o.user == nil {
		return models.User{}, false
	}
	return *o.user, true
}

type gateFixture struct {
	backend   *apitest.Backend
	prompter  *notify.ScriptedPrompter
	notes     *notify.Recorder
	gate      *Gate
	refreshes int
}

func newGateFixture(t *testing.T, answers ...bool) *gateFixture {
	t.Helper()
	b := apitest.New(t)
	pro := b.AddUser(models.User{Email: "pro@salon.test", Role: models.RoleProfessional}, "pw")
	token := b.TokenFor("pro@salon.test")
	b.AddAppointment(models.Appointment{ID: "a1", ProfessionalID: pro.ID, Status: models.StatusConfirmed})

	f := &gateFixture{
		backend:  b,
		prompter: &notify.ScriptedPrompter{Answers: answers},
		notes:    &notify.Recorder{},
	}
	client := api.NewClient(api.Options{BaseURL: b.URL(), Tokens: func() string { return token }})
	f.gate = NewGate(client, operator{&pro}, f.prompter, f.notes, nil)
	f.gate.now = func() time.Time { return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC) }
	f.gate.OnSaved(func(context.Context) { f.refreshes++ })
	return f
}

func TestSubmitApproved(t *testing.T) {
	f := newGateFixture(t)

	out, err := f.gate.Submit(context.Background(), "a1", Submission{Performed: yes(), Result: models.StrandApproved, Observations: "ok"})
	require.NoError(t, err)
	assert.Equal(t, Saved, out)
	assert.Empty(t, f.prompter.Questions())
	assert.Equal(t, 1, f.refreshes)

	calls := f.backend.CallsTo(http.MethodPatch, "/appointments/a1/strand-test")
	require.Len(t, calls, 1)
	var body map[string]any
	require.NoError(t, json.Unmarshal(calls[0].Body, &body))
	assert.Equal(t, true, body["test_done"])
	assert.Equal(t, "aprovado", body["test_result"])
	assert.Equal(t, true, body["test_approved"])
	assert.Equal(t, "2026-03-02T09:30:00Z", body["tested_at"])
	assert.Equal(t, "u1", body["tested_by"])
}

func TestSubmitNotPerformedSendsNullResult(t *testing.T) {
	f := newGateFixture(t)

	_, err := f.gate.Submit(context.Background(), "a1", Submission{Performed: no()})
	require.NoError(t, err)

	calls := f.backend.CallsTo(http.MethodPatch, "/appointments/a1/strand-test")
	require.Len(t, calls, 1)
	var body map[string]any
	require.NoError(t, json.Unmarshal(calls[0].Body, &body))
	assert.Nil(t, body["test_result"])
	assert.Equal(t, false, body["test_approved"])
}

func TestSubmitRejectedAccepted(t *testing.T) {
	f := newGateFixture(t, true)

	out, err := f.gate.Submit(context.Background(), "a1", Submission{Performed: yes(), Result: models.StrandRejected})
	require.NoError(t, err)
	assert.Equal(t, Cancelled, out)
	assert.Equal(t, []string{RejectedPrompt}, f.prompter.Questions())

	require.Len(t, f.backend.CallsTo(http.MethodPatch, "/appointments/a1/cancel"), 1)
	assert.Equal(t, CancelReason, f.backend.CancelReason("a1"))
	assert.Empty(t, f.backend.CallsTo(http.MethodPatch, "/appointments/a1/strand-test"))
	apt, _ := f.backend.Appointment("a1")
	assert.Equal(t, models.StatusCancelled, apt.Status)
	assert.Equal(t, 1, f.refreshes)
}

func TestSubmitRejectedDeclined(t *testing.T) {
	f := newGateFixture(t, false)

	out, err := f.gate.Submit(context.Background(), "a1", Submission{Performed: yes(), Result: models.StrandRejected})
	require.NoError(t, err)
	assert.Equal(t, Saved, out)
	assert.Len(t, f.prompter.Questions(), 1)
	assert.Empty(t, f.backend.CallsTo(http.MethodPatch, "/appointments/a1/cancel"))

	calls := f.backend.CallsTo(http.MethodPatch, "/appointments/a1/strand-test")
	require.Len(t, calls, 1)
	var rec models.StrandTestResult
	require.NoError(t, json.Unmarshal(calls[0].Body, &rec))
	assert.False(t, rec.Approved)
}

func TestSubmitInvalidSendsNothing(t *testing.T) {
	f := newGateFixture(t)

	_, err := f.gate.Submit(context.Background(), "a1", Submission{Performed: yes()})
	assert.ErrorIs(t, err, ErrResultRequired)
	assert.Empty(t, f.backend.Calls())
	assert.Len(t, f.notes.Errors(), 1)
}

func TestSubmitRequiresOperator(t *testing.T) {
	f := newGateFixture(t)
	f.gate.users = operator{}

	_, err := f.gate.Submit(context.Background(), "a1", Submission{Performed: no()})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Empty(t, f.backend.Calls())
}
