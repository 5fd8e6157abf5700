// Package nav carries the active sidebar section of a request.
//
// The section is an explicit value: middleware loads it from a cookie,
// stores it in the request context, templates read it, and a request that
// selects a section (?section=) saves it back.
package nav

import (
	"context"
	"net/http"
	"slices"
)

const cookieName = "nav_section"

// Sections in sidebar order.
var Sections = []string{
	"dashboard",
	"companies",
	"categories",
	"assets",
	"kits",
	"maintenance",
	"installations",
	"requests",
	"documents",
	"issuer",
}

// State is the navigation state of a request.
type State struct {
	Section string
}

// Default is the state used when nothing was selected yet.
var Default = State{Section: "dashboard"}

func Valid(section string) bool { return slices.Contains(Sections, section) }

// Load reads the state from the cookie, falling back to Default.
func Load(r *http.Request) State {
	if c, err := r.Cookie(cookieName); err == nil && Valid(c.Value) {
		return State{Section: c.Value}
	}
	return Default
}

// Save persists the state for ~30 days.
func Save(w http.ResponseWriter, s State) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    s.Section,
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type ctxKey struct{}

func WithState(ctx context.Context, s State) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the state stored by the middleware or Default.
func FromContext(ctx context.Context) State {
	if s, ok := ctx.Value(ctxKey{}).(State); ok {
		return s
	}
	return Default
}

// Active reports whether section is the current one.
func (s State) Active(section string) bool { return s.Section == section }
