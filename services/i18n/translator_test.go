package i18n

import (
	"context"
	"testing"
	"time"

	"salonai/models"
	"salonai/services/api"
	"salonai/services/api/apitest"
	"salonai/services/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct{ lang string }

func (m *memStore) Language(_ context.Context, def string) string {
	if m.lang == "" {
		return def
	}
	return m.lang
}

func (m *memStore) SetLanguage(_ context.Context, lang string) error {
	m.lang = lang
	return nil
}

func newTranslator(t *testing.T) (*Translator, *apitest.Backend, *memStore, *notify.Recorder) {
	t.Helper()
	b := apitest.New(t)
	b.Translations["en"] = map[string]string{"loading": "Loading...", "language_changed": "Language changed!", "service_coloracao": "Hair colour"}
	b.Translations["it"] = map[string]string{"loading": "Caricamento..."}
	store := &memStore{}
	notes := &notify.Recorder{}
	tr := New(Options{Client: api.NewClient(api.Options{BaseURL: b.URL()}), Store: store, Notifier: notes})
	return tr, b, store, notes
}

func TestLoadAndTranslate(t *testing.T) {
	tr, _, store, _ := newTranslator(t)
	assert.Equal(t, "pt", tr.Saved(context.Background()))

	require.NoError(t, tr.Load(context.Background(), "en"))
	assert.Equal(t, "en", tr.Language())
	assert.Equal(t, "en", store.lang)
	assert.Equal(t, "Loading...", tr.T("loading", "x"))
	assert.Equal(t, "fallback", tr.T("missing", "fallback"))
	assert.Equal(t, "missing", tr.T("missing", ""))
	assert.Equal(t, "Hair colour", tr.ServiceLabel(models.ServiceColoring))
	assert.Equal(t, "Manicure", tr.ServiceLabel(models.ServiceManicure))
}

func TestLoadFailureKeepsTable(t *testing.T) {
	tr, _, store, _ := newTranslator(t)
	require.NoError(t, tr.Load(context.Background(), "en"))

	assert.Error(t, tr.Load(context.Background(), "es")) // backend has no es table
	assert.ErrorIs(t, tr.Load(context.Background(), "fr"), ErrUnsupported)
	assert.Equal(t, "en", tr.Language())
	assert.Equal(t, "en", store.lang)
	assert.Equal(t, "Loading...", tr.T("loading", ""))
}

func TestChangeNotifies(t *testing.T) {
	tr, _, _, notes := newTranslator(t)
	require.NoError(t, tr.Load(context.Background(), "en"))

	require.NoError(t, tr.Change(context.Background(), "en"))
	assert.Empty(t, notes.Messages())

	require.NoError(t, tr.Change(context.Background(), "it"))
	assert.Equal(t, []notify.Message{
		{Kind: notify.Info, Text: "Loading..."},
		{Kind: notify.Success, Text: "Language changed."},
	}, notes.Messages())

	require.Error(t, tr.Change(context.Background(), "es"))
	last, _ := notes.Last()
	assert.Equal(t, notify.Error, last.Kind)
}

func TestFormatting(t *testing.T) {
	tr, _, _, _ := newTranslator(t)
	d := time.Date(2026, 3, 2, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "02/03/2026", tr.FormatDate(d))
	assert.Equal(t, "14:05", tr.FormatTime(d))

	require.NoError(t, tr.Load(context.Background(), "en"))
	assert.Equal(t, "03/02/2026", tr.FormatDate(d))
	assert.Equal(t, "02:05 PM", tr.FormatTime(d))
}

func TestLanguages(t *testing.T) {
	assert.Equal(t, []string{"en", "es", "it", "pt"}, Languages())
}
