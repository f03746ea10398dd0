package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"salonai/app"
	"salonai/models"
	"salonai/services/i18n"
	"salonai/services/schedule"
	"salonai/services/strandtest"
	"salonai/services/theme"

	"github.com/spf13/pflag"
)

// parse defines and parses the flags of one command.
func parse(name string, args []string, define func(fs *pflag.FlagSet)) (*pflag.FlagSet, error) {
	fs := newFlags(name)
	if define != nil {
		define(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fs, nil
}

// oneID returns the single positional appointment id.
func oneID(name string, rest []string) (string, error) {
	if len(rest) != 1 || strings.TrimSpace(rest[0]) == "" {
		fmt.Fprintf(os.Stderr, "usage: salonctl %s ID\n", name)
		return "", errUsage
	}
	return rest[0], nil
}

func runLogin(ctx context.Context, a *app.App, args []string) error {
	var email, password string
	if _, err := parse("login", args, func(fs *pflag.FlagSet) {
		fs.StringVar(&email, "email", "", "account email")
		fs.StringVar(&password, "password", "", "account password")
	}); err != nil {
		return err
	}
	_, err := a.Session.Login(ctx, email, password)
	return err
}

func runLogout(ctx context.Context, a *app.App, _ []string) error {
	return a.Session.Logout(ctx)
}

func runWhoami(_ context.Context, a *app.App, _ []string) error {
	u, ok := a.Session.User()
	if !ok {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s <%s> (%s)\n", u.DisplayName(), u.Email, u.Role)
	return nil
}

func runRegister(ctx context.Context, a *app.App, args []string) error {
	var req models.RegisterRequest
	if _, err := parse("register", args, func(fs *pflag.FlagSet) {
		fs.StringVar(&req.Name, "name", "", "full name")
		fs.StringVar(&req.Email, "email", "", "email")
		fs.StringVar(&req.Password, "password", "", "password, at least 6 characters")
		fs.StringVar(&req.Phone, "phone", "", "phone number")
		fs.StringVar(&req.Address, "address", "", "address")
	}); err != nil {
		return err
	}
	_, err := a.Session.Register(ctx, req)
	return err
}

func runProfessionals(ctx context.Context, a *app.App, args []string) error {
	var service string
	if _, err := parse("professionals", args, func(fs *pflag.FlagSet) {
		fs.StringVar(&service, "service", "", "service type, e.g. corte or coloracao")
	}); err != nil {
		return err
	}
	list, err := a.Booking.LoadProfessionals(ctx, service)
	if err != nil {
		return err
	}
	for _, p := range list {
		fmt.Printf("%s\t%s\t%s\n", p.ID, p.Name, strings.Join(p.Specialties, ", "))
	}
	return nil
}

func runSlots(ctx context.Context, a *app.App, args []string) error {
	var pro, date string
	if _, err := parse("slots", args, func(fs *pflag.FlagSet) {
		fs.StringVar(&pro, "professional", "", "professional id")
		fs.StringVar(&date, "date", "", "day as 2006-01-02")
	}); err != nil {
		return err
	}
	a.Booking.SelectProfessional(pro)
	if err := a.Booking.SetDate(date); err != nil {
		return err
	}
	slots, err := a.Booking.CheckAvailability(ctx)
	if err != nil {
		return err
	}
	for _, s := range slots {
		state := "taken"
		if s.Available {
			state = "free"
		}
		fmt.Printf("%s\t%s\n", s.Time, state)
	}
	return nil
}

// parseService reads "type" or "type=minutes".
func parseService(raw string) (models.ServiceItem, error) {
	kind, minutes, found := strings.Cut(raw, "=")
	item := models.ServiceItem{Type: models.ServiceType(strings.TrimSpace(kind))}
	if found {
		n, err := strconv.Atoi(strings.TrimSpace(minutes))
		if err != nil {
			return item, fmt.Errorf("service %q: duration must be a number of minutes", raw)
		}
		item.EstimatedDuration = n
	}
	return item, nil
}

func runBook(ctx context.Context, a *app.App, args []string) error {
	var (
		services             []string
		pro, date, slot      string
		useAI                bool
		aiPrefs, notes, lang string
		consultation, strand bool
		sync                 bool
	)
	fs, err := parse("book", args, func(fs *pflag.FlagSet) {
		fs.StringArrayVar(&services, "service", nil, "service as type or type=minutes, repeatable")
		fs.StringVar(&pro, "professional", "", "professional id")
		fs.StringVar(&date, "date", "", "day as 2006-01-02")
		fs.StringVar(&slot, "time", "", "slot as listed by salonctl slots")
		fs.BoolVar(&useAI, "ai", false, "ask for AI suggestions")
		fs.StringVar(&aiPrefs, "ai-preferences", "", "what the AI should consider")
		fs.StringVar(&notes, "notes", "", "notes for the professional")
		fs.BoolVar(&consultation, "consultation", false, "request a consultation first")
		fs.BoolVar(&strand, "strand-test", false, "request a strand test")
		fs.BoolVar(&sync, "calendar-sync", false, "add the booking to Google Calendar")
		fs.StringVar(&lang, "lang", "", "language of the confirmation")
	})
	if err != nil {
		return err
	}

	form := a.Booking
	for _, raw := range services {
		item, err := parseService(raw)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return errUsage
		}
		if err := form.AddService(item); err != nil {
			return err
		}
	}
	form.SelectProfessional(pro)
	if err := form.SetDate(date); err != nil {
		return err
	}
	if pro != "" && date != "" {
		if _, err := form.CheckAvailability(ctx); err != nil {
			return err
		}
	}
	if slot != "" {
		if err := form.SelectTime(slot); err != nil {
			return err
		}
	}
	form.SetAI(useAI, aiPrefs)
	form.SetNotes(notes)
	form.SetRequiresConsultation(consultation)
	form.SetRequiresStrandTest(strand)
	if fs.Changed("calendar-sync") {
		form.SetCalendarSync(sync)
	}
	if lang != "" {
		form.SetLanguage(lang)
	}
	fmt.Printf("Total: %s\n", form.TotalLabel())

	appt, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s\t%s\t%s\n", appt.ID, appt.DateTime, appt.Status.Label())
	return nil
}

func runMy(ctx context.Context, a *app.App, _ []string) error {
	list, err := a.Booking.LoadMine(ctx)
	if err != nil {
		return err
	}
	for _, ap := range list {
		fmt.Printf("%s\t%s\t%s\t%s\n", ap.ID, ap.DateTime, ap.Status.Label(), serviceNames(a, ap))
	}
	return nil
}

func serviceNames(a *app.App, ap models.Appointment) string {
	names := make([]string, 0, len(ap.Services))
	for _, s := range ap.Services {
		names = append(names, a.Translator.ServiceLabel(s.Type))
	}
	if len(names) == 0 {
		return strings.Join(ap.ChosenServices, ", ")
	}
	return strings.Join(names, ", ")
}

func dateFlag(date *string) func(fs *pflag.FlagSet) {
	return func(fs *pflag.FlagSet) {
		fs.StringVar(date, "date", "", "day as 2006-01-02, today when empty")
	}
}

func runSchedule(ctx context.Context, a *app.App, args []string) error {
	var date string
	if _, err := parse("schedule", args, dateFlag(&date)); err != nil {
		return err
	}
	if _, err := a.Schedule.Load(ctx, date); err != nil {
		return err
	}
	printSchedule(a)
	return nil
}

func printSchedule(a *app.App) {
	fmt.Printf("Schedule for %s\n", a.Schedule.Date())
	for _, c := range a.Schedule.Cards() {
		actions := make([]string, 0, len(c.Actions))
		for _, act := range c.Actions {
			actions = append(actions, string(act))
		}
		line := fmt.Sprintf("%s\t%s\t%s\t%s", c.Appointment.ID, c.Appointment.DateTime, c.StatusLabel, serviceNames(a, c.Appointment))
		if c.Chemical {
			line += "\tstrand test: " + c.StrandBadge.Label()
		}
		fmt.Printf("%s\t[%s]\n", line, strings.Join(actions, " "))
	}
	if free := a.Schedule.FreeSlots(); len(free) > 0 {
		fmt.Printf("Free: %s\n", strings.Join(free, " "))
	}
}

func transitionCommand(do func(*schedule.Panel, context.Context, string) error) func(context.Context, *app.App, []string) error {
	return func(ctx context.Context, a *app.App, args []string) error {
		var date string
		fs, err := parse("transition", args, dateFlag(&date))
		if err != nil {
			return err
		}
		id, err := oneID("<confirm|cancel|start>", fs.Args())
		if err != nil {
			return err
		}
		if _, err := a.Schedule.Load(ctx, date); err != nil {
			return err
		}
		if err := do(a.Schedule, ctx, id); err != nil {
			return err
		}
		printSchedule(a)
		return nil
	}
}

func runFinish(ctx context.Context, a *app.App, args []string) error {
	var (
		date string
		rec  models.AttendanceRecord
	)
	fs, err := parse("finish", args, func(fs *pflag.FlagSet) {
		dateFlag(&date)(fs)
		fs.StringSliceVar(&rec.Procedure.ProductsUsed, "products", nil, "products used")
		fs.StringSliceVar(&rec.Procedure.TechniquesApplied, "techniques", nil, "techniques applied")
		fs.StringVar(&rec.Procedure.TechnicalNotes, "notes", "", "technical notes")
		fs.BoolVar(&rec.Procedure.CanPublishPhotos, "publish-photos", false, "the client agreed to publish photos")
		fs.StringVar(&rec.NextRecommendation, "next", "", "recommendation for the next visit")
		fs.StringSliceVar(&rec.TreatmentPlan, "plan", nil, "treatment plan steps")
	})
	if err != nil {
		return err
	}
	id, err := oneID("finish", fs.Args())
	if err != nil {
		return err
	}
	if _, err := a.Schedule.Load(ctx, date); err != nil {
		return err
	}
	return a.Schedule.Finish(ctx, id, rec)
}

func runRecord(ctx context.Context, a *app.App, args []string) error {
	var date string
	fs, err := parse("record", args, dateFlag(&date))
	if err != nil {
		return err
	}
	id, err := oneID("record", fs.Args())
	if err != nil {
		return err
	}
	if _, err := a.Schedule.Load(ctx, date); err != nil {
		return err
	}
	rec, err := a.Schedule.ViewRecord(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Record %s for appointment %s\n", rec.ID, rec.AppointmentID)
	fmt.Printf("Products: %s\n", strings.Join(rec.Procedure.ProductsUsed, ", "))
	fmt.Printf("Techniques: %s\n", strings.Join(rec.Procedure.TechniquesApplied, ", "))
	if rec.Procedure.TechnicalNotes != "" {
		fmt.Printf("Notes: %s\n", rec.Procedure.TechnicalNotes)
	}
	if rec.NextRecommendation != "" {
		fmt.Printf("Next visit: %s\n", rec.NextRecommendation)
	}
	for i, step := range rec.TreatmentPlan {
		fmt.Printf("  %d. %s\n", i+1, step)
	}
	return nil
}

func runStrandTest(ctx context.Context, a *app.App, args []string) error {
	var performed, result, observations, date string
	fs, err := parse("strand-test", args, func(fs *pflag.FlagSet) {
		dateFlag(&date)(fs)
		fs.StringVar(&performed, "performed", "", "yes or no")
		fs.StringVar(&result, "result", "", "aprovado or reprovado")
		fs.StringVar(&observations, "observations", "", "observations")
	})
	if err != nil {
		return err
	}
	id, err := oneID("strand-test", fs.Args())
	if err != nil {
		return err
	}
	sub := strandtest.Submission{Result: models.StrandResult(result), Observations: observations}
	switch strings.ToLower(performed) {
	case "yes", "y", "sim", "true":
		v := true
		sub.Performed = &v
	case "no", "n", "nao", "não", "false":
		v := false
		sub.Performed = &v
	}
	// Loading the day lets the saved hook refresh the right schedule.
	if date != "" {
		if _, err := a.Schedule.Load(ctx, date); err != nil {
			return err
		}
	}
	outcome, err := a.StrandTest.Submit(ctx, id, sub)
	if err != nil {
		return err
	}
	if outcome == strandtest.Cancelled {
		fmt.Println("appointment cancelled")
	}
	return nil
}

func runTheme(ctx context.Context, a *app.App, args []string) error {
	var primary, secondary, logo string
	if _, err := parse("theme", args, func(fs *pflag.FlagSet) {
		fs.StringVar(&primary, "primary", "", "primary colour, e.g. #6366f1")
		fs.StringVar(&secondary, "secondary", "", "secondary colour")
		fs.StringVar(&logo, "logo", "", "path to a new logo")
	}); err != nil {
		return err
	}
	if primary == "" && secondary == "" && logo == "" {
		s := a.Theme.Current()
		fmt.Printf("%s\nlogo: %s\n", s.SalonName, a.ThemeSink.Logo())
		_, err := a.ThemeSink.WriteTo(os.Stdout)
		return err
	}

	current := a.Theme.Current().Colors
	req := theme.SaveRequest{PrimaryColor: primary, SecondaryColor: secondary}
	if req.PrimaryColor == "" {
		req.PrimaryColor = current.Primary
	}
	if req.SecondaryColor == "" {
		req.SecondaryColor = current.Secondary
	}
	if logo != "" {
		f, err := os.Open(logo)
		if err != nil {
			return fmt.Errorf("open logo: %w", err)
		}
		defer f.Close()
		req.LogoName = filepath.Base(logo)
		req.Logo = f
	}
	return a.Theme.Save(ctx, req)
}

func runLang(ctx context.Context, a *app.App, args []string) error {
	fs, err := parse("lang", args, nil)
	if err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		for _, l := range i18n.Languages() {
			mark := " "
			if l == a.Translator.Language() {
				mark = "*"
			}
			fmt.Printf("%s %s\n", mark, l)
		}
		return nil
	}
	return a.ChangeLanguage(ctx, rest[0])
}

func runUpload(ctx context.Context, a *app.App, args []string) error {
	fs, err := parse("upload", args, nil)
	if err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: salonctl upload PATH")
		return errUsage
	}
	f, err := os.Open(rest[0])
	if err != nil {
		return fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat photo: %w", err)
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(rest[0])))
	res, err := a.Photo.Upload(ctx, filepath.Base(rest[0]), contentType, f, info.Size())
	if err != nil {
		return err
	}
	if res.PhotoURL != "" {
		fmt.Println(res.PhotoURL)
	}
	return nil
}

func runAnalyze(ctx context.Context, a *app.App, _ []string) error {
	s, err := a.Photo.Analyze(ctx)
	if err != nil {
		return err
	}
	if s.Empty() {
		fmt.Println("no suggestions")
		return nil
	}
	for _, group := range []struct {
		title string
		items []string
	}{
		{"Cuts", s.Cuts},
		{"Colours", s.Colors},
		{"Styles", s.Styles},
		{"Nail colours", s.NailColors},
	} {
		if len(group.items) > 0 {
			fmt.Printf("%s: %s\n", group.title, strings.Join(group.items, ", "))
		}
	}
	return nil
}

func runPreview(ctx context.Context, a *app.App, args []string) error {
	var style string
	if _, err := parse("preview", args, func(fs *pflag.FlagSet) {
		fs.StringVar(&style, "style", "", "suggested style to render")
	}); err != nil {
		return err
	}
	p, err := a.Photo.Preview(ctx, style)
	if err != nil {
		return err
	}
	fmt.Println(a.Theme.ResolveLogo(p.PhotoURL))
	return nil
}

func runHealth(ctx context.Context, a *app.App, _ []string) error {
	status := a.Health(ctx)
	fmt.Printf("api: %t\n", status.API)
	if status.Redis != nil {
		fmt.Printf("redis: %t\n", *status.Redis)
	}
	if status.Detail != "" {
		fmt.Printf("detail: %s\n", status.Detail)
	}
	if !status.Healthy() {
		return errors.New("unhealthy")
	}
	return nil
}
