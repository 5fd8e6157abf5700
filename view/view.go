package view

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/go-rentals/auth"
	"github.com/diewo77/go-rentals/i18n"
	"github.com/diewo77/go-rentals/internal/nav"
	"github.com/diewo77/go-rentals/internal/table"
	"github.com/google/uuid"
)

var (
	baseDir  string
	once     sync.Once
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
	assetManifest     map[string]string
	assetManifestOnce sync.Once

	langResolver    = func(r *http.Request) string { return i18n.LangFromContext(r.Context()) }
	themeResolver   = func(_ *http.Request) string { return "system" }
	sectionResolver = func(r *http.Request) string { return nav.FromContext(r.Context()).Section }
)

// SetLangResolver allows the host app to provide a custom language resolver (e.g., reading from context).
func SetLangResolver(f func(*http.Request) string) {
	if f != nil {
		langResolver = f
	}
}

// SetThemeResolver allows the host app to provide a custom theme resolver.
func SetThemeResolver(f func(*http.Request) string) {
	if f != nil {
		themeResolver = f
	}
}

// SetSectionResolver allows the host app to provide the active sidebar section.
func SetSectionResolver(f func(*http.Request) string) {
	if f != nil {
		sectionResolver = f
	}
}

// layoutBase walks upward from a template path to find the directory that contains layout.html.
// If none is found, it returns the template's own directory.
func layoutBase(mainPath string) string {
	d := filepath.Dir(mainPath)
	for {
		lp := filepath.Join(d, "layout.html")
		if fi, err := os.Stat(lp); err == nil && !fi.IsDir() {
			return d
		}
		p := filepath.Dir(d)
		if p == d {
			return filepath.Dir(mainPath)
		}
		d = p
	}
}

func detectBase() {
	candidates := []string{"templates", "../templates", "../../templates"}
	for _, c := range candidates {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// Funcs returns the standard func map including i18n, navigation and formatting helpers.
func Funcs(r *http.Request) template.FuncMap {
	lang := "es"
	theme := "system"
	section := nav.Default.Section
	if r != nil {
		lang, theme, section = langResolver(r), themeResolver(r), sectionResolver(r)
	}
	return template.FuncMap{
		"t":        func(code string) string { return i18n.T(lang, code) },
		"lang":     func() string { return lang },
		"theme":    func() string { return theme },
		"section":  func() string { return section },
		"sections": func() []string { return nav.Sections },
		"year":     func() int { return time.Now().Year() },
		"asset":    func(path string) string { return resolveAsset(path) },
		"money":    table.Money,
		"date":     dateOf,
		"idstr":    idString,
		"list":     func(v ...string) []string { return v },
		"mul": func(a, b any) float64 {
			fa, oka := toFloat64(a)
			fb, okb := toFloat64(b)
			if !oka || !okb {
				return 0
			}
			return fa * fb
		},
		"add": func(a, b any) float64 {
			fa, oka := toFloat64(a)
			fb, okb := toFloat64(b)
			if !oka || !okb {
				return 0
			}
			return fa + fb
		},
		"badge": func(code string) template.HTML {
			return badge(code, i18n.T(lang, code))
		},
		"cell": func(c table.Cell) template.HTML {
			switch c.Kind {
			case table.Badge:
				return badge(c.Text, i18n.T(lang, c.Text))
			case table.Custom:
				return c.HTML
			default:
				return template.HTML(template.HTMLEscapeString(c.Text))
			}
		},
		// dict creates a map from key-value pairs for passing to sub-templates.
		// Usage: {{ template "partial" (dict "Key1" val1 "Key2" val2) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

func badge(code, label string) template.HTML {
	return template.HTML(fmt.Sprintf(`<span class="badge badge-%s">%s</span>`,
		table.Tone(code), template.HTMLEscapeString(label)))
}

func dateOf(v any) string {
	switch t := v.(type) {
	case time.Time:
		return table.Date(t)
	case *time.Time:
		return table.DatePtr(t)
	default:
		return ""
	}
}

// idString renders a uuid.UUID or *uuid.UUID; nil is empty.
func idString(v any) string {
	switch id := v.(type) {
	case uuid.UUID:
		return id.String()
	case *uuid.UUID:
		if id == nil {
			return ""
		}
		return id.String()
	default:
		return ""
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// versionedAsset returns /static/<name>?v=<hash> for cache busting.
func versionedAsset(rel string) string {
	if strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") || strings.HasPrefix(rel, "//") {
		return rel
	}
	b, err := os.ReadFile(filepath.Join("static", rel))
	if err != nil {
		return "/static/" + rel
	}
	h := sha1.Sum(b)
	return "/static/" + rel + "?v=" + fmt.Sprintf("%x", h[:8])
}

// resolveAsset prefers a hashed filename from manifest.json then falls back to query param versioning.
func resolveAsset(rel string) string {
	if os.Getenv("DEV") == "1" {
		parseManifest() // reload each request in dev
	} else {
		assetManifestOnce.Do(parseManifest)
	}
	if assetManifest != nil {
		if h, ok := assetManifest[rel]; ok {
			return "/static/" + h
		}
	}
	return versionedAsset(rel)
}

func parseManifest() {
	b, err := os.ReadFile(filepath.Join("static", "manifest.json"))
	if err != nil {
		return
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return
	}
	assetManifest = m
}

// SetBaseDir overrides the template base directory (useful for tests or custom setups).
func SetBaseDir(path string) {
	if path == "" {
		return
	}
	baseDir = filepath.Clean(path)
	once = sync.Once{}
}

// ResetForTests clears caches and forces base dir detection to rerun.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
	baseDir = ""
	once = sync.Once{}
}

func parse(name string) (*template.Template, error) {
	mainPath := filepath.Join(baseDir, name)
	if _, err := os.Stat(mainPath); err != nil {
		found := false
		for _, c := range []string{"templates", "../templates", "../../templates", "../../../templates"} {
			p := filepath.Join(c, name)
			if fi, e2 := os.Stat(p); e2 == nil && !fi.IsDir() {
				mainPath, found = p, true
				break
			}
		}
		if !found {
			return nil, err
		}
	}
	// Align baseDir to the directory that owns layout.html (typically the templates root)
	root := layoutBase(mainPath)
	layoutPath := filepath.Join(root, "layout.html")
	contentBytes, err := os.ReadFile(mainPath)
	if err != nil {
		return nil, err
	}
	funcs := Funcs(nil)
	if bytes.Contains(bytes.ToLower(contentBytes), []byte("<!doctype")) {
		// Full document provided; skip layout wrapping.
		return template.New(filepath.Base(name)).Funcs(funcs).ParseFiles(mainPath)
	}
	if fi, err := os.Stat(layoutPath); err != nil || fi.IsDir() {
		return template.New(filepath.Base(name)).Funcs(funcs).ParseFiles(mainPath)
	}
	files := []string{layoutPath, mainPath}
	partials, _ := filepath.Glob(filepath.Join(root, "partials", "*.html"))
	files = append(files, partials...)
	return template.New("layout.html").Funcs(funcs).ParseFiles(files...)
}

// Render executes a template file with the shared layout, partials and funcs.
// name is relative to the templates root (e.g., "documents/totals.html").
//
// Parsed templates are cached unexecuted; each request renders a clone bound to
// its own language, theme and section.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	if baseDir == "" {
		once.Do(detectBase)
	}
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	if _, exists := data["IsLoggedIn"]; !exists {
		_, loggedIn := auth.UserIDFromContext(r.Context())
		data["IsLoggedIn"] = loggedIn
	}

	devMode := os.Getenv("DEV") == "1"
	tplCache.RLock()
	master, ok := tplCache.m[name]
	tplCache.RUnlock()
	if !ok || devMode {
		parsed, err := parse(name)
		if err != nil {
			return err
		}
		master = parsed
		if !devMode {
			tplCache.Lock()
			tplCache.m[name] = master
			tplCache.Unlock()
		}
	}
	t, err := master.Clone()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.Funcs(Funcs(r)).Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}
