// Package schedule is the professional's day view: one card per appointment
// with the actions its status allows. Every action is followed by a full
// refetch; local state is never patched.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"salonai/models"
	"salonai/services/api"
	"salonai/services/booking"
	"salonai/services/notify"
	"salonai/services/strandtest"
	"salonai/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrNotLoggedIn        = errors.New("session expired, please log in")
	ErrUnknownAppointment = errors.New("appointment is not on the loaded schedule")
	ErrActionNotOffered   = errors.New("action not available for this appointment")
	ErrChemicalBlocked    = errors.New("chemical procedure blocked: strand test or medical questionnaire does not allow it")
	ErrThrottled          = errors.New("please wait before the next action")
	ErrStale              = errors.New("superseded by a newer schedule load")
	ErrNoRecord           = errors.New("no attendance record for this appointment")
)

// Sessions is what the panel needs from the session manager.
type Sessions interface {
	User() (models.User, bool)
	Invalidate(ctx context.Context, reason string)
}

// Card is one appointment as the panel shows it.
type Card struct {
	Appointment        models.Appointment
	StatusLabel        string
	Actions            []booking.Action
	Chemical           bool
	StrandBadge        strandtest.BadgeKind
	CanProceedChemical bool
}

func newCard(a models.Appointment) Card {
	return Card{
		Appointment:        a,
		StatusLabel:        a.Status.Label(),
		Actions:            booking.ActionsFor(a.Status),
		Chemical:           a.HasChemicalService() || a.RequiresStrandTest,
		StrandBadge:        strandtest.Badge(a.StrandTest),
		CanProceedChemical: strandtest.CanProceedWithChemical(a),
	}
}

// Offers reports whether the card shows action a.
func (c Card) Offers(a booking.Action) bool {
	for _, offered := range c.Actions {
		if offered == a {
			return true
		}
	}
	return false
}

// Options wires a Panel.
type Options struct {
	Client   api.Client
	Sessions Sessions
	Notifier notify.Notifier
	Logger   *zap.Logger
	Now      func() time.Time
	// ActionInterval is the minimum spacing between two actions. Zero
	// disables throttling.
	ActionInterval time.Duration
}

// Panel holds the loaded day.
type Panel struct {
	client   api.Client
	sessions Sessions
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
	limiter  *rate.Limiter

	mu       sync.Mutex
	date     string
	schedule *models.ProfessionalSchedule
	cards    []Card
	seq      uint64
}

func NewPanel(opts Options) *Panel {
	p := &Panel{
		client:   opts.Client,
		sessions: opts.Sessions,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.notifier == nil {
		p.notifier = &notify.Recorder{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	if opts.ActionInterval > 0 {
		p.limiter = rate.NewLimiter(rate.Every(opts.ActionInterval), 1)
	}
	return p
}

// Load fetches the schedule for date (2006-01-02); empty means today.
func (p *Panel) Load(ctx context.Context, date string) (*models.ProfessionalSchedule, error) {
	if date == "" {
		date = p.now().Format(utils.DateLayout)
	}
	if err := utils.ValidateVar("date", date, "date"); err != nil {
		p.notifier.Show(notify.Error, utils.Reason(err))
		return nil, err
	}
	if _, ok := p.sessions.User(); !ok {
		p.notifier.Show(notify.Error, "Session expired. Please log in.")
		p.sessions.Invalidate(ctx, "Session expired. Please log in.")
		return nil, ErrNotLoggedIn
	}

	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.date = date
	p.mu.Unlock()

	sched, err := p.client.ProfessionalSchedule(ctx, date)

	p.mu.Lock()
	if seq != p.seq {
		p.mu.Unlock()
		p.logger.Debug("dropping stale schedule", zap.String("date", date))
		return nil, ErrStale
	}
	if err != nil {
		p.mu.Unlock()
		if api.IsUnauthorized(err) {
			p.sessions.Invalidate(ctx, "Not authorized. Please log in again.")
			return nil, err
		}
		p.logger.Warn("Failed to load schedule", zap.String("date", date), zap.Error(err))
		p.notifier.Show(notify.Error, api.Message(err, "Could not load the schedule."))
		return nil, err
	}
	if sched.Date == "" {
		sched.Date = date
	}
	cards := make([]Card, 0, len(sched.Appointments))
	for _, a := range sched.Appointments {
		cards = append(cards, newCard(a))
	}
	p.schedule = sched
	p.cards = cards
	p.mu.Unlock()
	return sched, nil
}

// Refresh reloads the day last loaded.
func (p *Panel) Refresh(ctx context.Context) {
	p.mu.Lock()
	date := p.date
	p.mu.Unlock()
	if _, err := p.Load(ctx, date); err != nil && !errors.Is(err, ErrStale) {
		p.logger.Debug("schedule refresh failed", zap.Error(err))
	}
}

// Date is the day on display.
func (p *Panel) Date() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.date
}

// Cards returns the current cards.
func (p *Panel) Cards() []Card {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Card(nil), p.cards...)
}

// FreeSlots returns the free start times of the loaded day.
func (p *Panel) FreeSlots() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.schedule == nil {
		return nil
	}
	return append([]string(nil), p.schedule.FreeSlots...)
}

// Card returns the card for an appointment id.
func (p *Panel) Card(id string) (Card, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.cards {
		if c.Appointment.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

func (p *Panel) Confirm(ctx context.Context, id string) error {
	return p.transition(ctx, id, booking.ActionConfirm, notify.Success, "Appointment confirmed!")
}

func (p *Panel) Cancel(ctx context.Context, id string) error {
	return p.transition(ctx, id, booking.ActionCancel, notify.Info, "Appointment cancelled.")
}

// Start moves a confirmed appointment in progress. Chemical appointments are
// refused when the strand test or questionnaire rules them out.
func (p *Panel) Start(ctx context.Context, id string) error {
	return p.transition(ctx, id, booking.ActionStart, notify.Success, "Service started!")
}

// Finish saves the attendance record, which completes the appointment.
func (p *Panel) Finish(ctx context.Context, id string, rec models.AttendanceRecord) error {
	card, err := p.prepare(ctx, id, booking.ActionFinish)
	if err != nil {
		return err
	}
	rec.AppointmentID = id
	if rec.ClientID == "" {
		rec.ClientID = card.Appointment.ClientID
	}
	if rec.ProfessionalID == "" {
		if u, ok := p.sessions.User(); ok {
			rec.ProfessionalID = u.ID
		}
	}
	if err := utils.ValidateStruct(rec); err != nil {
		p.notifier.Show(notify.Error, utils.Reason(err))
		return err
	}
	if err := p.client.SaveAttendance(ctx, rec); err != nil {
		return p.actionFailed(ctx, id, booking.ActionFinish, err, "Could not save the attendance record.")
	}
	p.logger.Info("attendance recorded", zap.String("appointmentID", id))
	p.notifier.Show(notify.Success, "Attendance record saved!")
	p.Refresh(ctx)
	return nil
}

// ViewRecord returns the attendance record of a completed appointment.
func (p *Panel) ViewRecord(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	card, err := p.prepare(ctx, id, booking.ActionViewRecord)
	if err != nil {
		return nil, err
	}
	records, err := p.client.ClientRecords(ctx, card.Appointment.ClientID)
	if err != nil {
		return nil, p.actionFailed(ctx, id, booking.ActionViewRecord, err, "Could not load the attendance record.")
	}
	for i := range records {
		if records[i].AppointmentID == id {
			rec := records[i]
			return &rec, nil
		}
	}
	p.notifier.Show(notify.Error, "No attendance record for this appointment.")
	return nil, ErrNoRecord
}

func (p *Panel) transition(ctx context.Context, id string, action booking.Action, kind notify.Kind, done string) error {
	card, err := p.prepare(ctx, id, action)
	if err != nil {
		return err
	}
	if action == booking.ActionStart && card.Chemical && !card.CanProceedChemical {
		p.notifier.Show(notify.Error, "Chemical procedure blocked: check the strand test and medical questionnaire.")
		return ErrChemicalBlocked
	}
	target, _ := action.Target()
	if err := p.client.UpdateStatus(ctx, id, target); err != nil {
		return p.actionFailed(ctx, id, action, err, fmt.Sprintf("Could not %s the appointment.", action))
	}
	p.logger.Info("appointment status changed", zap.String("appointmentID", id), zap.String("status", string(target)))
	p.notifier.Show(kind, done)
	p.Refresh(ctx)
	return nil
}

func (p *Panel) prepare(ctx context.Context, id string, action booking.Action) (Card, error) {
	if p.limiter != nil && !p.limiter.Allow() {
		p.notifier.Show(notify.Info, "Please wait a moment before the next action.")
		return Card{}, ErrThrottled
	}
	if _, ok := p.sessions.User(); !ok {
		p.notifier.Show(notify.Error, "Not authorized.")
		return Card{}, ErrNotLoggedIn
	}
	card, ok := p.Card(id)
	if !ok {
		p.notifier.Show(notify.Error, "Appointment not found on this schedule.")
		return Card{}, ErrUnknownAppointment
	}
	if !card.Offers(action) {
		p.notifier.Show(notify.Error, fmt.Sprintf("Cannot %s an appointment that is %s.", action, card.StatusLabel))
		return Card{}, ErrActionNotOffered
	}
	return card, nil
}

func (p *Panel) actionFailed(ctx context.Context, id string, action booking.Action, err error, fallback string) error {
	p.logger.Warn("appointment action failed",
		zap.String("appointmentID", id),
		zap.String("action", string(action)),
		zap.Error(err),
	)
	if api.IsUnauthorized(err) {
		p.sessions.Invalidate(ctx, "Not authorized. Please log in again.")
		return err
	}
	p.notifier.Show(notify.Error, api.Message(err, fallback))
	return err
}
