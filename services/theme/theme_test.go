package theme

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"salonai/models"
	"salonai/services/api"
	"salonai/services/api/apitest"
	"salonai/services/notify"
	"salonai/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type users struct{ user *models.User }

func (u users) User() (models.User, bool) {
	if u.user == nil {
		return models.User{}, false
	}
	return *u.user, true
}

func newTheme(t *testing.T, role models.Role) (*Theme, *apitest.Backend, *MemorySink, *notify.Recorder) {
	t.Helper()
	b := apitest.New(t)
	u := b.AddUser(models.User{Email: "x@salon.test", Role: role}, "pw")
	token := b.TokenFor("x@salon.test")
	client := api.NewClient(api.Options{BaseURL: b.URL(), Tokens: func() string { return token }})
	sink := NewMemorySink()
	notes := &notify.Recorder{}
	th := New(Options{Client: client, Users: users{&u}, Sink: sink, Notifier: notes, Origin: client.Origin()})
	return th, b, sink, notes
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	th, b, sink, _ := newTheme(t, models.RoleClient)

	s, err := th.Load(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.DefaultSettings(), s)
	assert.Equal(t, "#6366f1", sink.Var("--color-primary"))
	assert.Equal(t, b.Server.URL+"/static/images/default_logo.png", sink.Logo())
	assert.Equal(t, "Salão IA - Booking", sink.Title())
}

func TestLoadMergesMissingColours(t *testing.T) {
	th, b, sink, _ := newTheme(t, models.RoleClient)
	b.Settings = &models.Settings{SalonName: "Studio", LogoURL: "https://cdn.test/logo.png", Colors: models.ColorPalette{Primary: "#000000"}}

	s, err := th.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Studio", s.SalonName)
	assert.Equal(t, "#000000", sink.Var("--color-primary"))
	assert.Equal(t, "#8b5cf6", sink.Var("--color-secondary"))
	assert.Equal(t, "https://cdn.test/logo.png", sink.Logo())
	assert.Equal(t, s, th.Current())
}

func TestSaveRequiresAdmin(t *testing.T) {
	th, b, _, notes := newTheme(t, models.RoleProfessional)

	err := th.Save(context.Background(), SaveRequest{PrimaryColor: "#111111", SecondaryColor: "#222222"})
	assert.ErrorIs(t, err, ErrAdminOnly)
	assert.Empty(t, b.Calls())
	last, _ := notes.Last()
	assert.Equal(t, "Access denied. Administrators only.", last.Text)
}

func TestSaveValidatesColours(t *testing.T) {
	th, b, _, _ := newTheme(t, models.RoleAdmin)

	err := th.Save(context.Background(), SaveRequest{PrimaryColor: "red", SecondaryColor: "#222222"})
	assert.ErrorIs(t, err, utils.ErrValidation)
	err = th.Save(context.Background(), SaveRequest{PrimaryColor: "#111111", SecondaryColor: "#222222", LogoName: "logo.gif"})
	assert.ErrorIs(t, err, utils.ErrValidation)
	assert.Empty(t, b.Calls())
}

func TestSaveUploadsAndReapplies(t *testing.T) {
	th, b, sink, notes := newTheme(t, models.RoleAdmin)

	err := th.Save(context.Background(), SaveRequest{
		PrimaryColor:   "#111111",
		SecondaryColor: "#222222",
		LogoName:       "Logo.PNG",
		Logo:           strings.NewReader("png"),
	})
	require.NoError(t, err)

	calls := b.CallsTo(http.MethodPost, "/settings/complete")
	require.Len(t, calls, 1)
	assert.True(t, strings.HasPrefix(calls[0].Header.Get("Content-Type"), "multipart/form-data"))
	assert.Equal(t, "#111111", sink.Var("--color-primary"))
	assert.Equal(t, b.Server.URL+"/static/images/logo.png", sink.Logo())
	assert.Equal(t, notify.Success, notes.Messages()[0].Kind)
}

func TestMemorySinkWriteTo(t *testing.T) {
	sink := NewMemorySink()
	sink.SetTitle("Studio - Booking")
	sink.SetLogo("http://x/logo.png")
	sink.SetVar("--color-text", "#000")
	sink.SetVar("--color-accent", "#fff")

	var buf bytes.Buffer
	_, err := sink.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "/* Studio - Booking */\n/* logo: http://x/logo.png */\n:root {\n  --color-accent: #fff;\n  --color-text: #000;\n}\n", buf.String())
}
