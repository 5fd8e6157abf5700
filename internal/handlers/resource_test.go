package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyJSONLifecycle(t *testing.T) {
	app := setupHandlersTest(t)

	w := app.json(t, http.MethodPost, "/companies", map[string]any{"tax_id": "900123456", "legal_name": "Grúas SAS", "status": "active"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Company](t, w)
	id := created.ID.String()

	w = app.do(t, http.MethodGet, "/companies?q=gr", nil, jsonHeaders)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Items []models.Company `json:"items"`
		Total int64            `json:"total"`
	}](t, w)
	assert.Equal(t, int64(1), list.Total)

	w = app.json(t, http.MethodPut, "/companies/"+id, map[string]any{"tax_id": "900123456", "legal_name": "Grúas del Sur SAS", "status": "inactive"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Grúas del Sur SAS", decode[models.Company](t, w).LegalName)

	w = app.do(t, http.MethodGet, "/companies/"+id, nil, jsonHeaders)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Company](t, w)
	assert.Equal(t, models.CompanyInactive, got.Status)
	assert.Equal(t, created.ID, got.ID)

	w = app.do(t, http.MethodDelete, "/companies/"+id, nil, jsonHeaders)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = app.do(t, http.MethodGet, "/companies/"+id, nil, jsonHeaders)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompanyValidationErrors(t *testing.T) {
	app := setupHandlersTest(t)

	w := app.json(t, http.MethodPost, "/companies", map[string]any{"tax_id": "12", "email": "nope"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}](t, w)
	assert.Equal(t, "validation_failed", body.Error)
	assert.Equal(t, "invalid_nit", body.Details["tax_id"])
	assert.Equal(t, "required", body.Details["legal_name"])
	assert.Equal(t, "invalid_email", body.Details["email"])

	w = app.do(t, http.MethodGet, "/companies/not-a-uuid", nil, jsonHeaders)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompanyFormRoundTrip(t *testing.T) {
	app := setupHandlersTest(t)

	w := app.form(t, "/companies", url.Values{"tax_id": {"900123456"}, "legal_name": {"Montajes SAS"}})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	loc := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/companies/"), loc)

	var c models.Company
	require.NoError(t, app.deps.DB.First(&c).Error)
	assert.Equal(t, models.CompanyActive, c.Status)

	w = app.do(t, http.MethodGet, "/companies/"+c.ID.String()+"/edit", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `value="Montajes SAS"`)

	// invalid input re-renders the form with the value kept
	w = app.form(t, "/companies/"+c.ID.String(), url.Values{"tax_id": {"abc"}, "legal_name": {"Montajes SAS"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `value="abc"`)

	w = app.form(t, "/companies/"+c.ID.String()+"/delete", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/companies", w.Header().Get("Location"))
}

func TestListPageRenders(t *testing.T) {
	app := setupHandlersTest(t)
	app.seedCompany(t)

	w := app.do(t, http.MethodGet, "/companies?lang=en", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Andamios del Valle SAS")
	assert.Contains(t, w.Body.String(), "/companies/export.csv")
}

func TestAssetInlineCategory(t *testing.T) {
	app := setupHandlersTest(t)

	w := app.form(t, "/assets", url.Values{
		"name":         {"Andamio tubular"},
		"kind":         {models.AssetEquipment},
		"stock":        {"12"},
		"new_category": {"Andamios"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	var a models.Asset
	require.NoError(t, app.deps.DB.Preload("Category").First(&a).Error)
	require.NotNil(t, a.Category)
	assert.Equal(t, "Andamios", a.Category.Name)
	assert.Equal(t, 12, a.Stock)
	assert.Equal(t, models.Available, a.Availability)

	w = app.do(t, http.MethodGet, "/assets/"+a.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Andamio tubular")
}

func TestMaintenanceFormParsesActivities(t *testing.T) {
	app := setupHandlersTest(t)

	w := app.form(t, "/maintenance", url.Values{
		"title":      {"Revisión"},
		"kind":       {models.MaintenancePreventive},
		"cost":       {"120,50"},
		"activities": {"[x] Limpieza\nLubricación\n"},
		"parts":      {"Filtro | 2 | original\nAceite"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	var j models.MaintenanceJob
	require.NoError(t, app.deps.DB.First(&j).Error)
	assert.Equal(t, 120.5, j.Cost)
	require.Len(t, j.ScheduledActivities, 2)
	assert.True(t, j.ScheduledActivities[0].Done)
	assert.Equal(t, "Limpieza", j.ScheduledActivities[0].Activity)
	require.Len(t, j.RequiredParts, 2)
	assert.Equal(t, models.Part{Name: "Filtro", Quantity: 2, Notes: "original"}, j.RequiredParts[0])
	assert.Equal(t, 1, j.RequiredParts[1].Quantity)
	assert.Equal(t, 50.0, j.Progress())
}
