// Package booking holds the client's appointment form and the appointment
// action rules shared with the professional panel.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"salonai/models"
	"salonai/services/api"
	"salonai/services/navigator"
	"salonai/services/notify"
	"salonai/utils"

	"go.uber.org/zap"
)

// Warnings asked before a chemical service is booked without an approved
// strand test. Accepting cancels the booking.
const (
	ChemicalWarning = "This booking includes a chemical service and your last strand test was rejected.\n" +
		"Cancel this booking instead of proceeding?"

	ChemicalNoTestWarning = "This booking includes a chemical service and no approved strand test is on record.\n" +
		"A strand test will be required before the procedure. Cancel this booking instead of proceeding?"
)

// Users yields the logged-in client.
type Users interface {
	User() (models.User, bool)
}

// Preferences supplies saved user choices.
type Preferences interface {
	CalendarSync(ctx context.Context) bool
	Language(ctx context.Context, def string) string
}

// Screens is the part of the navigator the form switches.
type Screens interface {
	Show(screen navigator.Screen)
}

// Options wires a Form.
type Options struct {
	Client          api.Client
	Users           Users
	Notifier        notify.Notifier
	Prompter        notify.Prompter
	Screens         Screens
	Prefs           Preferences
	Logger          *zap.Logger
	DefaultLanguage string
	Now             func() time.Time
}

// Form is the booking view model. Every fetch takes a sequence number and a
// response older than the latest request of its kind is dropped.
type Form struct {
	client   api.Client
	users    Users
	notifier notify.Notifier
	prompter notify.Prompter
	screens  Screens
	prefs    Preferences
	logger   *zap.Logger
	language string
	now      func() time.Time

	mu            sync.Mutex
	services      []models.ServiceItem
	professionals []models.Professional
	professional  string
	date          string
	slots         []models.TimeSlot
	selected      string
	usesAI        bool
	aiPrefs       string
	notes         string
	consultation  bool
	strandTest    bool
	calendarSync  *bool
	mine          []models.Appointment
	knownStrand   *models.StrandTestResult
	historyLoaded bool

	profSeq  uint64
	availSeq uint64
	mineSeq  uint64
}

func NewForm(opts Options) *Form {
	f := &Form{
		client:   opts.Client,
		users:    opts.Users,
		notifier: opts.Notifier,
		prompter: opts.Prompter,
		screens:  opts.Screens,
		prefs:    opts.Prefs,
		logger:   opts.Logger,
		language: opts.DefaultLanguage,
		now:      opts.Now,
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	if f.notifier == nil {
		f.notifier = &notify.Recorder{}
	}
	if f.now == nil {
		f.now = time.Now
	}
	if f.language == "" {
		f.language = "pt"
	}
	return f
}

func (f *Form) fail(err error) error {
	f.notifier.Show(notify.Error, utils.Reason(err))
	return err
}

// AddService appends a service. A zero duration becomes the default.
func (f *Form) AddService(item models.ServiceItem) error {
	if item.EstimatedDuration == 0 {
		item.EstimatedDuration = models.DefaultServiceDuration
	}
	if err := utils.ValidateStruct(item); err != nil {
		return f.fail(err)
	}
	f.mu.Lock()
	f.services = append(f.services, item)
	f.mu.Unlock()
	return nil
}

// RemoveService drops the i-th selected service.
func (f *Form) RemoveService(i int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i < 0 || i >= len(f.services) {
		return ErrServiceIndex
	}
	f.services = append(f.services[:i], f.services[i+1:]...)
	return nil
}

// Services returns the current selection.
func (f *Form) Services() []models.ServiceItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ServiceItem(nil), f.services...)
}

// TotalDuration sums the selected services in minutes.
func (f *Form) TotalDuration() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, s := range f.services {
		total += s.EstimatedDuration
	}
	return total
}

// TotalLabel renders TotalDuration as "<n> min".
func (f *Form) TotalLabel() string {
	return fmt.Sprintf("%d min", f.TotalDuration())
}

// HasChemicalService reports whether the selection includes a chemical
// procedure.
func (f *Form) HasChemicalService() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return hasChemical(f.services)
}

func hasChemical(items []models.ServiceItem) bool {
	for _, s := range items {
		if s.Type.IsChemical() {
			return true
		}
	}
	return false
}

// LoadProfessionals fetches professionals offering serviceType. An empty type
// clears the list without a request.
func (f *Form) LoadProfessionals(ctx context.Context, serviceType string) ([]models.Professional, error) {
	f.mu.Lock()
	f.profSeq++
	seq := f.profSeq
	if serviceType == "" {
		f.professionals = nil
		f.mu.Unlock()
		return nil, nil
	}
	f.mu.Unlock()

	pros, err := f.client.Professionals(ctx, serviceType)

	f.mu.Lock()
	if seq != f.profSeq {
		f.mu.Unlock()
		f.logger.Debug("dropping stale professionals response", zap.String("serviceType", serviceType))
		return nil, ErrStale
	}
	if err != nil {
		f.mu.Unlock()
		f.logger.Warn("Failed to load professionals", zap.Error(err))
		f.notifier.Show(notify.Error, api.Message(err, "Could not load professionals."))
		return nil, err
	}
	f.professionals = pros
	f.mu.Unlock()
	return append([]models.Professional(nil), pros...), nil
}

// Professionals returns the last loaded list.
func (f *Form) Professionals() []models.Professional {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Professional(nil), f.professionals...)
}

// SelectProfessional changes the professional; slots of the previous choice
// are discarded.
func (f *Form) SelectProfessional(id string) {
	f.mu.Lock()
	f.professional = id
	f.resetSlotsLocked()
	f.mu.Unlock()
}

// SetDate sets the booking day (2006-01-02). Past days are rejected.
func (f *Form) SetDate(date string) error {
	if err := utils.ValidateVar("date", date, "required,date"); err != nil {
		return f.fail(err)
	}
	if date < f.now().Format(utils.DateLayout) {
		return f.fail(fmt.Errorf("%w: date cannot be in the past", utils.ErrValidation))
	}
	f.mu.Lock()
	f.date = date
	f.resetSlotsLocked()
	f.mu.Unlock()
	return nil
}

func (f *Form) resetSlotsLocked() {
	f.availSeq++
	f.slots = nil
	f.selected = ""
}

// CheckAvailability fetches the slots for the chosen professional and date.
// A selected time that is no longer available is cleared.
func (f *Form) CheckAvailability(ctx context.Context) ([]models.TimeSlot, error) {
	f.mu.Lock()
	pro, date := f.professional, f.date
	if pro == "" || date == "" {
		f.mu.Unlock()
		return nil, f.fail(ErrNeedProAndDate)
	}
	f.availSeq++
	seq := f.availSeq
	f.mu.Unlock()

	av, err := f.client.Availability(ctx, pro, date)

	f.mu.Lock()
	if seq != f.availSeq {
		f.mu.Unlock()
		f.logger.Debug("dropping stale availability response", zap.String("professionalID", pro), zap.String("date", date))
		return nil, ErrStale
	}
	if err != nil {
		f.mu.Unlock()
		f.logger.Warn("Failed to check availability", zap.Error(err))
		f.notifier.Show(notify.Error, api.Message(err, "Could not check availability."))
		return nil, err
	}
	f.slots = av.Slots
	if f.selected != "" {
		if s, ok := av.Find(f.selected); !ok || !s.Available {
			f.selected = ""
		}
	}
	out := append([]models.TimeSlot(nil), f.slots...)
	f.mu.Unlock()
	return out, nil
}

// Slots returns the current availability snapshot.
func (f *Form) Slots() []models.TimeSlot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.TimeSlot(nil), f.slots...)
}

// SelectTime picks a slot from the current snapshot. Only listed, available
// slots are accepted.
func (f *Form) SelectTime(t string) error {
	f.mu.Lock()
	ok := false
	for _, s := range f.slots {
		if s.Time == t && s.Available {
			ok = true
			break
		}
	}
	if ok {
		f.selected = t
	}
	f.mu.Unlock()
	if !ok {
		return f.fail(ErrSlotUnavailable)
	}
	return nil
}

// SelectedTime returns the chosen slot or "".
func (f *Form) SelectedTime() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected
}

// SetAI toggles AI styling and records free-text preferences.
func (f *Form) SetAI(enabled bool, preferences string) {
	f.mu.Lock()
	f.usesAI = enabled
	f.aiPrefs = preferences
	f.mu.Unlock()
}

func (f *Form) SetNotes(notes string) {
	f.mu.Lock()
	f.notes = notes
	f.mu.Unlock()
}

func (f *Form) SetRequiresConsultation(v bool) {
	f.mu.Lock()
	f.consultation = v
	f.mu.Unlock()
}

func (f *Form) SetRequiresStrandTest(v bool) {
	f.mu.Lock()
	f.strandTest = v
	f.mu.Unlock()
}

// SetCalendarSync overrides the saved calendar preference for this booking.
func (f *Form) SetCalendarSync(v bool) {
	f.mu.Lock()
	f.calendarSync = &v
	f.mu.Unlock()
}

// SetLanguage sets the Accept-Language sent with the booking.
func (f *Form) SetLanguage(lang string) {
	f.mu.Lock()
	f.language = lang
	f.mu.Unlock()
}

// Reset clears the selection. Loaded professionals and own appointments stay.
func (f *Form) Reset() {
	f.mu.Lock()
	f.services = nil
	f.professional = ""
	f.date = ""
	f.resetSlotsLocked()
	f.usesAI = false
	f.aiPrefs = ""
	f.notes = ""
	f.consultation = false
	f.strandTest = false
	f.calendarSync = nil
	f.mu.Unlock()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Submit books the appointment. Nothing is sent unless the user is logged in
// and at least one service, a time slot and a professional are chosen.
func (f *Form) Submit(ctx context.Context) (*models.Appointment, error) {
	if _, ok := f.users.User(); !ok {
		return nil, f.fail(ErrNotLoggedIn)
	}

	f.mu.Lock()
	req := models.CreateAppointmentRequest{
		ProfessionalID:       f.professional,
		DateTime:             f.selected,
		Services:             append([]models.ServiceItem(nil), f.services...),
		UsesAI:               f.usesAI,
		Notes:                optional(f.notes),
		RequiresConsultation: f.consultation,
		RequiresStrandTest:   f.strandTest,
	}
	if f.usesAI {
		req.AIPreferences = optional(f.aiPrefs)
	}
	syncOverride := f.calendarSync
	lang := f.language
	f.mu.Unlock()

	switch {
	case len(req.Services) == 0:
		return nil, f.fail(ErrNoServices)
	case req.DateTime == "":
		return nil, f.fail(ErrNoTimeSlot)
	case req.ProfessionalID == "":
		return nil, f.fail(ErrNoProfessional)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, f.fail(err)
	}

	if hasChemical(req.Services) {
		known := f.strandHistory(ctx)
		if known == nil || !known.Approved {
			warning := ChemicalNoTestWarning
			if known != nil && known.Performed {
				warning = ChemicalWarning
			}
			if f.prompter != nil && f.prompter.Confirm(ctx, warning) {
				f.Reset()
				f.notifier.Show(notify.Info, "Booking cancelled.")
				return nil, ErrCancelledOnSafety
			}
			req.RequiresStrandTest = true
		}
	}

	opts := api.CreateOptions{Language: lang}
	if syncOverride != nil {
		opts.SyncCalendar = *syncOverride
	} else if f.prefs != nil {
		opts.SyncCalendar = f.prefs.CalendarSync(ctx)
	}

	f.notifier.Show(notify.Info, "Creating appointment...")
	apt, err := f.client.CreateAppointment(ctx, req, opts)
	if err != nil {
		f.logger.Warn("Failed to create appointment", zap.String("professionalID", req.ProfessionalID), zap.Error(err))
		f.notifier.Show(notify.Error, api.Message(err, "Unexpected error creating the appointment."))
		return nil, err
	}

	f.logger.Info("appointment created", zap.String("appointmentID", apt.ID), zap.Bool("calendarSync", opts.SyncCalendar))
	f.notifier.Show(notify.Success, "Appointment booked!")
	f.Reset()
	if _, err := f.LoadMine(ctx); err != nil && !errors.Is(err, ErrStale) {
		f.logger.Warn("Failed to reload appointments after booking", zap.Error(err))
	}
	return apt, nil
}

// strandHistory returns the latest known strand test, fetching the client's
// appointments first when they were never loaded. A failed fetch counts as no
// test on record.
func (f *Form) strandHistory(ctx context.Context) *models.StrandTestResult {
	f.mu.Lock()
	if f.historyLoaded {
		known := f.knownStrand
		f.mu.Unlock()
		return known
	}
	f.mu.Unlock()

	list, err := f.client.MyAppointments(ctx)
	if err != nil {
		f.logger.Warn("Failed to load strand test history", zap.Error(err))
		return nil
	}
	known := latestStrandTest(list)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyLoaded {
		return f.knownStrand
	}
	f.knownStrand = known
	f.historyLoaded = true
	return known
}

// ForgetHistory drops what is known about the client's past appointments.
func (f *Form) ForgetHistory() {
	f.mu.Lock()
	f.mine = nil
	f.knownStrand = nil
	f.historyLoaded = false
	f.mu.Unlock()
}

// LoadMine fetches the client's appointments, remembers the latest recorded
// strand test and switches to the appointments screen.
func (f *Form) LoadMine(ctx context.Context) ([]models.Appointment, error) {
	f.mu.Lock()
	f.mineSeq++
	seq := f.mineSeq
	f.mu.Unlock()

	if f.screens != nil {
		f.screens.Show(navigator.MyAppointments)
	}
	list, err := f.client.MyAppointments(ctx)

	f.mu.Lock()
	if seq != f.mineSeq {
		f.mu.Unlock()
		return nil, ErrStale
	}
	if err != nil {
		f.mu.Unlock()
		f.notifier.Show(notify.Error, api.Message(err, "Could not load your appointments."))
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].DateTime < list[j].DateTime })
	f.mine = list
	f.knownStrand = latestStrandTest(list)
	f.historyLoaded = true
	out := append([]models.Appointment(nil), list...)
	f.mu.Unlock()
	return out, nil
}

// Mine returns the last loaded own appointments.
func (f *Form) Mine() []models.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Appointment(nil), f.mine...)
}

// KnownStrandTest is the most recent performed strand test among the
// client's appointments.
func (f *Form) KnownStrandTest() *models.StrandTestResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.knownStrand == nil {
		return nil
	}
	st := *f.knownStrand
	return &st
}

func latestStrandTest(list []models.Appointment) *models.StrandTestResult {
	var latest *models.StrandTestResult
	for i := range list {
		st := list[i].StrandTest
		if st == nil || !st.Performed {
			continue
		}
		if latest == nil || st.TestedAt.After(latest.TestedAt) {
			latest = st
		}
	}
	return latest
}
