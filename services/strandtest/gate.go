package strandtest

import (
	"context"
	"time"

	"salonai/models"
	"salonai/services/api"
	"salonai/services/notify"
	"salonai/utils"

	"go.uber.org/zap"
)

// Users yields the logged-in operator.
type Users interface {
	User() (models.User, bool)
}

// Outcome says what Submit ended up doing.
type Outcome int

const (
	Saved Outcome = iota + 1
	Cancelled
)

// Gate submits strand tests for the professional panel.
type Gate struct {
	client   api.Client
	users    Users
	prompter notify.Prompter
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
	refresh  func(ctx context.Context)
}

func NewGate(client api.Client, users Users, prompter notify.Prompter, notifier notify.Notifier, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		client:   client,
		users:    users,
		prompter: prompter,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// OnSaved sets the hook run after a record is saved or an appointment
// cancelled; the panel uses it to refetch.
func (g *Gate) OnSaved(fn func(ctx context.Context)) {
	g.refresh = fn
}

// Submit validates sub and records it. A rejected result first offers to
// cancel the appointment; accepting cancels without saving the record,
// declining saves it.
func (g *Gate) Submit(ctx context.Context, appointmentID string, sub Submission) (Outcome, error) {
	if err := sub.Validate(); err != nil {
		g.notifier.Show(notify.Error, utils.Reason(err))
		return 0, err
	}
	user, ok := g.users.User()
	if !ok {
		g.notifier.Show(notify.Error, ErrNotLoggedIn.Error())
		return 0, ErrNotLoggedIn
	}

	if sub.Result == models.StrandRejected && g.prompter.Confirm(ctx, RejectedPrompt) {
		if err := g.client.CancelAppointment(ctx, appointmentID, CancelReason); err != nil {
			g.logger.Error("Failed to cancel after rejected strand test", zap.String("appointmentID", appointmentID), zap.Error(err))
			g.notifier.Show(notify.Error, api.Message(err, "Could not cancel the appointment."))
			return 0, err
		}
		g.logger.Info("appointment cancelled after rejected strand test", zap.String("appointmentID", appointmentID))
		g.notifier.Show(notify.Success, "Appointment cancelled for the client's safety.")
		g.afterSave(ctx)
		return Cancelled, nil
	}

	rec := models.NewStrandTestResult(*sub.Performed, sub.Result, sub.Observations, user.ID, g.now())
	if err := g.client.SaveStrandTest(ctx, appointmentID, rec); err != nil {
		g.logger.Error("Failed to save strand test", zap.String("appointmentID", appointmentID), zap.Error(err))
		g.notifier.Show(notify.Error, api.Message(err, "Could not save the strand test. Try again."))
		return 0, err
	}
	g.notifier.Show(notify.Success, "Strand test recorded.")
	g.afterSave(ctx)
	return Saved, nil
}

func (g *Gate) afterSave(ctx context.Context) {
	if g.refresh != nil {
		g.refresh(ctx)
	}
}
