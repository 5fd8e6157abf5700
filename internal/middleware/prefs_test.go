package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, req *http.Request) (lang, theme, section string, rec *httptest.ResponseRecorder) {
	t.Helper()
	rec = httptest.NewRecorder()
	Prefs(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang, theme, section = LangFrom(r), ThemeFrom(r), SectionFrom(r)
	})).ServeHTTP(rec, req)
	return
}

func TestPrefsDefaults(t *testing.T) {
	lang, theme, section, _ := capture(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "es", lang)
	assert.Equal(t, "system", theme)
	assert.Equal(t, "dashboard", section)
}

func TestPrefsQueryOverridesAndPersists(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/assets?lang=en&theme=dark&section=assets", nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "es"})
	lang, theme, section, rec := capture(t, req)
	assert.Equal(t, "en", lang)
	assert.Equal(t, "dark", theme)
	assert.Equal(t, "assets", section)

	names := map[string]string{}
	for _, c := range rec.Result().Cookies() {
		names[c.Name] = c.Value
	}
	assert.Equal(t, "en", names["lang"])
	assert.Equal(t, "dark", names["theme"])
	assert.Equal(t, "assets", names["nav_section"])
}

func TestPrefsHeaderAndCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")
	req.AddCookie(&http.Cookie{Name: "nav_section", Value: "documents"})
	lang, _, section, rec := capture(t, req)
	assert.Equal(t, "en", lang)
	assert.Equal(t, "documents", section)
	assert.Empty(t, rec.Result().Cookies(), "nothing selected, nothing saved")
}

func TestFlashRoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	Prefs(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Flash(w, r, "saved")
	})).ServeHTTP(rec, req)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	w := httptest.NewRecorder()
	assert.Equal(t, "Guardado correctamente", TakeFlash(w, next))
	assert.Equal(t, -1, w.Result().Cookies()[0].MaxAge)
}
