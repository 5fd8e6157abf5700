package nav

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoadSaveRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	Save(w, State{Section: "assets"})
	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	if got := Load(r); got.Section != "assets" {
		t.Fatalf("expected assets, got %q", got.Section)
	}
}

func TestLoadIgnoresUnknownSection(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: cookieName, Value: "payroll"})
	if got := Load(r); got != Default {
		t.Fatalf("expected default state, got %+v", got)
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != Default {
		t.Fatalf("expected default without state")
	}
	ctx := WithState(context.Background(), State{Section: "documents"})
	s := FromContext(ctx)
	if !s.Active("documents") || s.Active("assets") {
		t.Fatalf("unexpected active section: %+v", s)
	}
}
