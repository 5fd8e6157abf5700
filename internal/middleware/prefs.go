package middleware

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/diewo77/go-rentals/i18n"
	"github.com/diewo77/go-rentals/internal/nav"
)

type ctxKey string

const (
	ctxLang  ctxKey = "pref_lang"
	ctxTheme ctxKey = "pref_theme"
)

const prefMaxAge = 30 * 24 * 60 * 60

var themes = map[string]bool{"system": true, "light": true, "dark": true}

// pick resolves one preference from the query, persisted in a cookie, or
// from the cookie alone. Values failing valid are ignored.
func pick(w http.ResponseWriter, r *http.Request, name string, valid func(string) bool) string {
	if q := r.URL.Query().Get(name); valid(q) {
		http.SetCookie(w, &http.Cookie{Name: name, Value: q, Path: "/", MaxAge: prefMaxAge, SameSite: http.SameSiteLaxMode})
		return q
	}
	if c, err := r.Cookie(name); err == nil && valid(c.Value) {
		return c.Value
	}
	return ""
}

// Prefs puts language, theme and navigation state in the request context.
// The query wins over the cookie, which wins over Accept-Language.
func Prefs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := pick(w, r, "lang", i18n.Supported)
		if lang == "" {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}
		theme := pick(w, r, "theme", func(v string) bool { return themes[v] })
		if theme == "" {
			theme = "system"
		}

		state := nav.Load(r)
		if qs := r.URL.Query().Get("section"); nav.Valid(qs) && qs != state.Section {
			state = nav.State{Section: qs}
			nav.Save(w, state)
		}

		ctx := context.WithValue(r.Context(), ctxLang, lang)
		ctx = context.WithValue(ctx, ctxTheme, theme)
		ctx = i18n.WithLang(ctx, lang)
		ctx = nav.WithState(ctx, state)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LangFrom returns language preference from context or fallback.
func LangFrom(r *http.Request) string {
	if v, ok := r.Context().Value(ctxLang).(string); ok && v != "" {
		return v
	}
	return i18n.Default
}

// ThemeFrom returns theme preference from context or fallback.
func ThemeFrom(r *http.Request) string {
	if v, ok := r.Context().Value(ctxTheme).(string); ok && v != "" {
		return v
	}
	return "system"
}

// SectionFrom returns the active sidebar section.
func SectionFrom(r *http.Request) string { return nav.FromContext(r.Context()).Section }

// Flash stores the translated message for code until the next page view.
func Flash(w http.ResponseWriter, r *http.Request, code string) {
	msg := i18n.T(LangFrom(r), code)
	http.SetCookie(w, &http.Cookie{Name: "flash", Value: url.QueryEscape(msg), Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// TakeFlash reads and clears the flash cookie.
func TakeFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie("flash")
	if err != nil || c.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: "flash", Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1})
	if dec, err := url.QueryUnescape(c.Value); err == nil {
		return dec
	}
	return c.Value
}
