// Package apitest runs an in-process fake of the salon backend for tests.
package apitest

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"salonai/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// APIPrefix is where the fake mounts the API, mirroring the real backend.
const APIPrefix = "/api/v1"

// Call is one request the fake received.
type Call struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

type failure struct {
	status int
	body   any
}

type account struct {
	user     models.User
	password string
}

// Backend is an in-memory salon API.
type Backend struct {
	Server *httptest.Server

	mu           sync.Mutex
	accounts     map[string]*account // by email
	tokens       map[string]string   // token -> email
	appointments map[string]*models.Appointment
	order        []string
	records      []models.AttendanceRecord
	cancelReason map[string]string
	failures     map[string][]failure
	calls        []Call
	nextID       int
	photo        string

	// Knobs tests set before driving the client.
	EmbedUserInLogin bool
	Professionals    []models.Professional
	Slots            []models.TimeSlot
	SlotsAsArray     bool
	FreeSlots        []string
	Settings         *models.Settings
	Translations     map[string]map[string]string
	Suggestions      models.AISuggestions
	TokenTTL         time.Duration
}

// New starts a fake backend that is shut down with the test.
func New(t testing.TB) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &Backend{
		accounts:     map[string]*account{},
		tokens:       map[string]string{},
		appointments: map[string]*models.Appointment{},
		cancelReason: map[string]string{},
		failures:     map[string][]failure{},
		Translations: map[string]map[string]string{},
		TokenTTL:     time.Hour,
	}
	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the API root to configure the client with.
func (b *Backend) URL() string {
	return b.Server.URL + APIPrefix
}

// HealthURL is the root-level health endpoint.
func (b *Backend) HealthURL() string {
	return b.Server.URL + "/health"
}

// AddUser registers an account directly.
func (b *Backend) AddUser(u models.User, password string) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u.ID == "" {
		b.nextID++
		u.ID = fmt.Sprintf("u%d", b.nextID)
	}
	if u.Role == "" {
		u.Role = models.RoleClient
	}
	b.accounts[u.Email] = &account{user: u, password: password}
	return u
}

// TokenFor issues a token for an existing account without a login call.
func (b *Backend) TokenFor(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueLocked(email)
}

func (b *Backend) issueLocked(email string) string {
	acc := b.accounts[email]
	claims := jwt.MapClaims{
		"sub":   acc.user.ID,
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(b.TokenTTL).Unix(),
		"jti":   fmt.Sprintf("t%d", len(b.tokens)+1),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("apitest"))
	if err != nil {
		panic(err)
	}
	b.tokens[token] = email
	return token
}

// AddAppointment stores an appointment as if it had been booked.
func (b *Backend) AddAppointment(a models.Appointment) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if a.Status == "" {
		a.Status = models.StatusPending
	}
	if _, ok := b.appointments[a.ID]; !ok {
		b.order = append(b.order, a.ID)
	}
	cp := a
	b.appointments[a.ID] = &cp
}

// Appointment returns a copy of the stored appointment.
func (b *Backend) Appointment(id string) (models.Appointment, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.appointments[id]
	if !ok {
		return models.Appointment{}, false
	}
	return *a, true
}

// CancelReason returns the reason sent with a cancellation.
func (b *Backend) CancelReason(id string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancelReason[id]
}

// Records returns the attendance records received.
func (b *Backend) Records() []models.AttendanceRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.AttendanceRecord(nil), b.records...)
}

// Fail makes the next request to method+path (relative to the API root)
// answer status with body. Repeated calls queue further failures.
func (b *Backend) Fail(method, path string, status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + APIPrefix + path
	b.failures[key] = append(b.failures[key], failure{status: status, body: body})
}

// Calls returns every request received so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallsTo filters Calls by method and path relative to the API root.
func (b *Backend) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if c.Method == method && c.Path == APIPrefix+path {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

func (b *Backend) record(c *gin.Context) {
	raw, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	b.mu.Lock()
	b.calls = append(b.calls, Call{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.RawQuery,
		Header: c.Request.Header.Clone(),
		Body:   raw,
	})
	key := c.Request.Method + " " + c.Request.URL.Path
	var f *failure
	if queue := b.failures[key]; len(queue) > 0 {
		f = &queue[0]
		b.failures[key] = queue[1:]
	}
	b.mu.Unlock()

	if f != nil {
		c.AbortWithStatusJSON(f.status, f.body)
		return
	}
	c.Next()
}

func (b *Backend) requireUser(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	b.mu.Lock()
	email, ok := b.tokens[token]
	var user models.User
	if ok {
		user = b.accounts[email].user
	}
	b.mu.Unlock()
	if header == "" || !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	c.Set("user", user)
	c.Next()
}

func currentUser(c *gin.Context) models.User {
	return c.MustGet("user").(models.User)
}
