package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/diewo77/go-rentals/internal/attachments"
	"github.com/diewo77/go-rentals/internal/middleware"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testApp struct {
	deps Deps
	h    http.Handler
}

func setupHandlersTest(t *testing.T) *testApp {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true, Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	st, err := attachments.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)
	d := NewDeps(db, services.NewFiles(st, 1<<20), nil)
	mux := http.NewServeMux()
	Register(mux, d, func(h http.HandlerFunc) http.Handler { return h })
	return &testApp{deps: d, h: middleware.Prefs(mux)}
}

func (a *testApp) do(t *testing.T, method, target string, body io.Reader, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.h.ServeHTTP(w, req)
	return w
}

var jsonHeaders = map[string]string{"Content-Type": "application/json", "Accept": "application/json"}

func (a *testApp) json(t *testing.T, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return a.do(t, method, target, body, jsonHeaders)
}

func (a *testApp) form(t *testing.T, target string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(t, http.MethodPost, target, strings.NewReader(values.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (a *testApp) seedCompany(t *testing.T) *models.Company {
	t.Helper()
	c := &models.Company{TaxID: "900123456", LegalName: "Andamios del Valle SAS", City: "Cali", Status: models.CompanyActive}
	require.NoError(t, a.deps.DB.Create(c).Error)
	return c
}
