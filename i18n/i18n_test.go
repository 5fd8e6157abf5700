package i18n

import (
	"context"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	if DetectLanguage("en-US,en;q=0.9") != "en" {
		t.Fatalf("expected en")
	}
	if DetectLanguage("EN-gb") != "en" {
		t.Fatalf("expected en for EN-gb")
	}
	if DetectLanguage("fr-FR,es;q=0.8") != "es" {
		t.Fatalf("expected es as second choice")
	}
	if DetectLanguage("") != "es" {
		t.Fatalf("expected default es")
	}
}

func TestTranslations(t *testing.T) {
	if T("en", "required") != "Required" {
		t.Fatalf("expected Required")
	}
	if T("es", "required") != "Requerido" {
		t.Fatalf("expected Requerido")
	}
	// unknown code -> fallback to code
	if T("en", "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// unknown language -> fallback to es translation
	if T("fr", "required") != "Requerido" {
		t.Fatalf("expected es fallback for fr lang")
	}
}

func TestCataloguesHaveSameKeys(t *testing.T) {
	for code := range messages[ES] {
		if _, ok := messages[EN][code]; !ok {
			t.Errorf("missing en translation for %q", code)
		}
	}
	for code := range messages[EN] {
		if _, ok := messages[ES][code]; !ok {
			t.Errorf("missing es translation for %q", code)
		}
	}
}

func TestLangContext(t *testing.T) {
	ctx := WithLang(context.Background(), "EN")
	if LangFromContext(ctx) != "en" {
		t.Fatalf("expected en from context")
	}
	if LangFromContext(context.Background()) != "es" {
		t.Fatalf("expected default es")
	}
}
