package apitest

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"salonai/models"

	"github.com/gin-gonic/gin"
)

func (b *Backend) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(b.record)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group(APIPrefix)
	v1.POST("/auth/register", b.register)
	v1.POST("/auth/login", b.login)
	v1.GET("/settings/", b.getSettings)
	v1.GET("/appointments/translations", b.translations)

	authed := v1.Group("", b.requireUser)
	authed.GET("/users/me", func(c *gin.Context) { c.JSON(http.StatusOK, currentUser(c)) })
	authed.GET("/professionals", b.professionals)
	authed.GET("/appointments/available", b.available)
	authed.POST("/appointments/", b.createAppointment)
	authed.GET("/appointments/my", b.myAppointments)
	authed.GET("/appointments/professional/schedule", b.schedule)
	authed.PATCH("/appointments/:id/status", b.updateStatus)
	authed.PATCH("/appointments/:id/strand-test", b.strandTest)
	authed.PATCH("/appointments/:id/cancel", b.cancel)
	authed.POST("/attendance/records", b.attendance)
	authed.GET("/attendance/records/client/:id", b.clientRecords)
	authed.POST("/upload-photo", b.upload)
	authed.POST("/ai/analyze", b.analyze)
	authed.POST("/ai/suggestions", b.preview)
	authed.POST("/settings/complete", b.saveSettings)
	return r
}

func validationDetail(loc []any, msg string) gin.H {
	return gin.H{"detail": []gin.H{{"loc": loc, "msg": msg, "type": "value_error"}}}
}

func (b *Backend) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusUnprocessableEntity, validationDetail([]any{"body", "email"}, "field required"))
		return
	}
	b.mu.Lock()
	_, exists := b.accounts[req.Email]
	b.mu.Unlock()
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email already registered"})
		return
	}
	u := b.AddUser(models.User{Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address}, req.Password)
	c.JSON(http.StatusCreated, u)
}

func (b *Backend) login(c *gin.Context) {
	var email, password string
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body struct {
			Email string `json:"email"`
			Senha string `json:"senha"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusUnprocessableEntity, validationDetail([]any{"body"}, "invalid json"))
			return
		}
		email, password = body.Email, body.Senha
	} else {
		email, password = c.PostForm("username"), c.PostForm("password")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[email]
	if !ok || acc.password != password {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid credentials. Check your email and password."})
		return
	}
	resp := models.LoginResponse{AccessToken: b.issueLocked(email), TokenType: "bearer"}
	if b.EmbedUserInLogin {
		u := acc.user
		resp.User = &u
	}
	c.JSON(http.StatusOK, resp)
}

func (b *Backend) professionals(c *gin.Context) {
	kind := c.Query("tipo_servico")
	out := []models.Professional{}
	for _, p := range b.Professionals {
		if kind == "" || p.ServiceType == kind {
			out = append(out, p)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) available(c *gin.Context) {
	b.mu.Lock()
	slots := append([]models.TimeSlot{}, b.Slots...)
	asArray := b.SlotsAsArray
	b.mu.Unlock()
	if asArray {
		c.JSON(http.StatusOK, slots)
		return
	}
	c.JSON(http.StatusOK, models.Availability{
		Date:           c.Query("data"),
		ProfessionalID: c.Query("profissional_id"),
		Slots:          slots,
	})
}

func (b *Backend) createAppointment(c *gin.Context) {
	var req models.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, validationDetail([]any{"body"}, err.Error()))
		return
	}
	if len(req.Services) == 0 {
		c.JSON(http.StatusUnprocessableEntity, validationDetail([]any{"body", "servicos"}, "ensure this value has at least 1 items"))
		return
	}
	user := currentUser(c)
	b.mu.Lock()
	b.nextID++
	apt := models.Appointment{
		ID:                   fmt.Sprintf("a%d", b.nextID),
		ClientID:             user.ID,
		ProfessionalID:       req.ProfessionalID,
		Services:             req.Services,
		DateTime:             req.DateTime,
		Status:               models.StatusPending,
		UsesAI:               req.UsesAI,
		AIPreferences:        req.AIPreferences,
		Notes:                req.Notes,
		RequiresConsultation: req.RequiresConsultation,
		RequiresStrandTest:   req.RequiresStrandTest,
		CreatedAt:            time.Now().UTC().Format(time.RFC3339),
	}
	if c.Query("sync_calendar") == "true" {
		apt.CalendarEventID = "gcal-" + apt.ID
	}
	b.mu.Unlock()
	b.AddAppointment(apt)
	c.JSON(http.StatusCreated, apt)
}

func (b *Backend) filter(keep func(models.Appointment) bool) []models.Appointment {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.Appointment{}
	for _, id := range b.order {
		if a := b.appointments[id]; keep(*a) {
			out = append(out, *a)
		}
	}
	return out
}

func (b *Backend) myAppointments(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, b.filter(func(a models.Appointment) bool { return a.ClientID == user.ID }))
}

func (b *Backend) schedule(c *gin.Context) {
	user := currentUser(c)
	date := c.Query("data")
	day := b.filter(func(a models.Appointment) bool {
		return a.ProfessionalID == user.ID && strings.HasPrefix(a.DateTime, date)
	})
	b.mu.Lock()
	free := append([]string{}, b.FreeSlots...)
	b.mu.Unlock()
	c.JSON(http.StatusOK, models.ProfessionalSchedule{
		ProfessionalID: user.ID,
		Date:           date,
		Appointments:   day,
		FreeSlots:      free,
		Total:          len(day),
	})
}

func (b *Backend) transition(c *gin.Context, id string, next models.Status) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	apt, ok := b.appointments[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Appointment not found"})
		return false
	}
	if !apt.Status.CanTransitionTo(next) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Invalid transition %s -> %s", apt.Status, next)})
		return false
	}
	apt.Status = next
	return true
}

func (b *Backend) updateStatus(c *gin.Context) {
	var body models.StatusUpdate
	_ = c.ShouldBindJSON(&body)
	next := body.NewStatus
	if next == "" {
		next = models.Status(c.Query("new_status"))
	}
	if !next.Known() {
		c.JSON(http.StatusUnprocessableEntity, validationDetail([]any{"query", "new_status"}, "value is not a valid enumeration member"))
		return
	}
	if b.transition(c, c.Param("id"), next) {
		apt, _ := b.Appointment(c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"message": "Status updated", "appointment": apt})
	}
}

func (b *Backend) strandTest(c *gin.Context) {
	var rec models.StrandTestResult
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusUnprocessableEntity, validationDetail([]any{"body"}, err.Error()))
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	apt, ok := b.appointments[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Appointment not found"})
		return
	}
	apt.StrandTest = &rec
	c.JSON(http.StatusOK, apt)
}

func (b *Backend) cancel(c *gin.Context) {
	var req models.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, validationDetail([]any{"body", "motivo"}, err.Error()))
		return
	}
	id := c.Param("id")
	if !b.transition(c, id, models.StatusCancelled) {
		return
	}
	b.mu.Lock()
	b.cancelReason[id] = req.Reason
	b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "Appointment cancelled"})
}

func (b *Backend) attendance(c *gin.Context) {
	var rec models.AttendanceRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusUnprocessableEntity, validationDetail([]any{"body"}, err.Error()))
		return
	}
	if !b.transition(c, rec.AppointmentID, models.StatusCompleted) {
		return
	}
	b.mu.Lock()
	rec.ID = fmt.Sprintf("r%d", len(b.records)+1)
	rec.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	b.records = append(b.records, rec)
	b.mu.Unlock()
	c.JSON(http.StatusOK, rec)
}

func (b *Backend) clientRecords(c *gin.Context) {
	user := currentUser(c)
	clientID := c.Param("id")
	if user.Role == models.RoleClient && user.ID != clientID {
		c.JSON(http.StatusForbidden, gin.H{"detail": "No permission to view other clients' records"})
		return
	}
	out := []models.AttendanceRecord{}
	for _, rec := range b.Records() {
		if rec.ClientID == clientID {
			out = append(out, rec)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No file sent"})
		return
	}
	b.mu.Lock()
	b.photo = file.Filename
	b.mu.Unlock()
	c.JSON(http.StatusOK, models.UploadResult{Message: "Photo uploaded", PhotoURL: "/uploads/" + file.Filename})
}

func (b *Backend) analyze(c *gin.Context) {
	b.mu.Lock()
	photo := b.photo
	b.mu.Unlock()
	if photo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Upload a photo first"})
		return
	}
	c.JSON(http.StatusOK, b.Suggestions)
}

func (b *Backend) preview(c *gin.Context) {
	c.JSON(http.StatusOK, models.StylePreview{PhotoURL: "/static/ai/" + c.Query("style") + ".png"})
}

func (b *Backend) getSettings(c *gin.Context) {
	b.mu.Lock()
	s := b.Settings
	b.mu.Unlock()
	if s == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "settings unavailable"})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (b *Backend) saveSettings(c *gin.Context) {
	if currentUser(c).Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Admins only"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := models.DefaultSettings()
	if b.Settings != nil {
		s = *b.Settings
	}
	s.Colors.Primary = c.PostForm("primary_color")
	s.Colors.Secondary = c.PostForm("secondary_color")
	if file, err := c.FormFile("logo_file"); err == nil {
		s.LogoURL = "/static/images/" + file.Filename
	}
	b.Settings = &s
	c.JSON(http.StatusOK, s)
}

func (b *Backend) translations(c *gin.Context) {
	lang := c.Query("language")
	b.mu.Lock()
	table, ok := b.Translations[lang]
	b.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Language not supported"})
		return
	}
	c.JSON(http.StatusOK, models.TranslationsResponse{Language: lang, Translations: table})
}
