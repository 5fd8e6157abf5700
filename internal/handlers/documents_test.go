package handlers

import (
	"mime"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (a *testApp) createQuote(t *testing.T) models.Document {
	t.Helper()
	c := a.seedCompany(t)
	w := a.json(t, http.MethodPost, "/documents", map[string]any{"document_type": models.DocQuote, "company_id": c.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	doc := decode[models.Document](t, w)
	require.True(t, strings.HasPrefix(doc.Number, "COT-"), doc.Number)
	return doc
}

func TestDocumentPipelineJSON(t *testing.T) {
	app := setupHandlersTest(t)
	doc := app.createQuote(t)
	base := "/documents/" + doc.ID.String()

	asset := &models.Asset{Equipment: models.Equipment{Name: "Andamio tubular", Stock: 10}, Kind: models.AssetEquipment}
	require.NoError(t, app.deps.DB.Create(asset).Error)

	w := app.json(t, http.MethodPost, base+"/details", map[string]any{
		"start_date": "2025-01-14T00:00:00Z",
		"end_date":   "2025-01-21T00:00:00Z",
		"city":       "Bogotá",
		"assets":     []map[string]any{{"asset_id": asset.ID, "name": asset.Name, "kind": asset.Kind, "quantity": 2, "unit_price": 75}},
		"maintenance": []map[string]any{
			{"title": "Revisión", "kind": models.MaintenancePreventive, "priority": models.PriorityLow, "cost": 60, "is_new": true},
		},
		"installations": []map[string]any{
			{"title": "Montaje", "kind": models.InstallationInstall, "priority": models.PriorityMedium, "cost": 40, "is_new": true},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	detail := decode[models.DocumentDetail](t, w)
	assert.Equal(t, 7, detail.Days)
	require.Len(t, detail.Assets, 1)
	assert.Equal(t, 150.0, detail.Assets[0].LineTotal)
	require.Len(t, detail.Maintenance, 1)
	assert.NotEmpty(t, detail.Maintenance[0].MaintenanceID)

	var jobs int64
	require.NoError(t, app.deps.DB.Model(&models.MaintenanceJob{}).Count(&jobs).Error)
	assert.Equal(t, int64(1), jobs)

	w = app.do(t, http.MethodGet, base+"/totals", nil, jsonHeaders)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode[services.TotalsView](t, w)
	assert.Equal(t, 250.0, view.Totals.Subtotal)
	assert.Equal(t, 47.5, view.Totals.TaxAmount)
	assert.Equal(t, 297.5, view.Totals.Total)
	assert.Nil(t, view.Stored)

	// preview does not persist
	w = app.do(t, http.MethodGet, base+"/totals?discount=50", nil, jsonHeaders)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 238.0, decode[services.TotalsView](t, w).Totals.Total)
	var stored int64
	require.NoError(t, app.deps.DB.Model(&models.DocumentTotals{}).Count(&stored).Error)
	assert.Zero(t, stored)

	w = app.json(t, http.MethodPost, base+"/totals", map[string]any{"discount": 50, "tax_rate_percent": 19})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rec := decode[models.DocumentTotals](t, w)
	assert.Equal(t, 38.0, rec.TaxAmount)
	assert.Equal(t, 238.0, rec.Total)

	// saving twice keeps one row
	w = app.json(t, http.MethodPost, base+"/totals", map[string]any{"discount": 50, "tax_rate_percent": 19})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, app.deps.DB.Model(&models.DocumentTotals{}).Count(&stored).Error)
	assert.Equal(t, int64(1), stored)

	w = app.json(t, http.MethodPost, base+"/totals", map[string]any{"discount": -1, "tax_rate_percent": 19})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodGet, base+"/pdf", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), doc.Number)
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestDocumentDetailsRejectsInvertedDates(t *testing.T) {
	app := setupHandlersTest(t)
	doc := app.createQuote(t)

	w := app.json(t, http.MethodPost, "/documents/"+doc.ID.String()+"/details", map[string]any{
		"start_date": "2025-01-21T00:00:00Z",
		"end_date":   "2025-01-14T00:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_failed")
}

func TestDocumentDetailsRejectsInvalidLinesJSON(t *testing.T) {
	app := setupHandlersTest(t)
	doc := app.createQuote(t)
	target := "/documents/" + doc.ID.String() + "/details"
	asset := uuid.New()
	line := func(qty int, price float64) map[string]any {
		return map[string]any{"asset_id": asset, "name": "Andamio", "kind": models.AssetEquipment, "quantity": qty, "unit_price": price}
	}

	w := app.json(t, http.MethodPost, target, map[string]any{"assets": []map[string]any{line(2, 100)}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cases := []struct {
		name   string
		assets []map[string]any
		status int
	}{
		{"duplicate asset", []map[string]any{line(2, 100), line(1, 100)}, http.StatusConflict},
		{"zero quantity", []map[string]any{line(0, 100)}, http.StatusBadRequest},
		{"negative quantity", []map[string]any{line(-3, 100)}, http.StatusBadRequest},
		{"negative price", []map[string]any{line(1, -1)}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := app.json(t, http.MethodPost, target, map[string]any{
				"assets": tc.assets,
				"maintenance": []map[string]any{
					{"title": "Revisión", "kind": models.MaintenancePreventive, "cost": 60, "is_new": true},
				},
			})
			assert.Equal(t, tc.status, w.Code, w.Body.String())

			var detail models.DocumentDetail
			require.NoError(t, app.deps.DB.Where("document_id = ?", doc.ID).First(&detail).Error)
			require.Len(t, detail.Assets, 1)
			assert.Equal(t, 200.0, detail.Assets[0].LineTotal)
			var jobs int64
			require.NoError(t, app.deps.DB.Model(&models.MaintenanceJob{}).Count(&jobs).Error)
			assert.Zero(t, jobs)
		})
	}
}

func TestDocumentPDFFilenameIsQuoted(t *testing.T) {
	app := setupHandlersTest(t)
	c := app.seedCompany(t)
	number := `COT "7"; final`
	w := app.json(t, http.MethodPost, "/documents", map[string]any{"document_type": models.DocQuote, "company_id": c.ID, "document_number": number})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	doc := decode[models.Document](t, w)

	w = app.do(t, http.MethodGet, "/documents/"+doc.ID.String()+"/pdf", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	disposition, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	assert.Equal(t, number+".pdf", params["filename"])
}

func TestNextNumber(t *testing.T) {
	app := setupHandlersTest(t)
	app.createQuote(t)

	w := app.do(t, http.MethodGet, "/documents/next-number?type=quote", nil, jsonHeaders)
	require.Equal(t, http.StatusOK, w.Code)
	n := decode[map[string]string](t, w)["document_number"]
	assert.True(t, strings.HasSuffix(n, "-0002"), n)

	w = app.do(t, http.MethodGet, "/documents/next-number?type=receipt", nil, jsonHeaders)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetailsFormSteps(t *testing.T) {
	app := setupHandlersTest(t)
	doc := app.createQuote(t)
	base := "/documents/" + doc.ID.String() + "/details"

	asset := &models.Asset{Equipment: models.Equipment{Name: "Pluma grúa", Stock: 1}, Kind: models.AssetEquipment}
	require.NoError(t, app.deps.DB.Create(asset).Error)

	w := app.form(t, base, url.Values{"start_date": {"2025-02-01"}, "end_date": {"2025-02-03"}, "add_asset": {asset.ID.String()}})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, base, w.Header().Get("Location"))

	key := asset.ID.String()
	w = app.form(t, base, url.Values{
		"start_date":            {"2025-02-01"},
		"end_date":              {"2025-02-03"},
		"quantity_" + key:       {"3"},
		"price_" + key:          {"20,5"},
		"new_maintenance_title": {"Ajuste"},
		"new_maintenance_kind":  {models.MaintenanceCorrective},
		"new_maintenance_cost":  {"10"},
		"action":                {"totals"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/documents/"+doc.ID.String()+"/totals", w.Header().Get("Location"))

	d, err := app.deps.Documents.DetailFor(t.Context(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Days)
	require.Len(t, d.Assets, 1)
	assert.Equal(t, 61.5, d.Assets[0].LineTotal)
	require.Len(t, d.Maintenance, 1)
	assert.False(t, d.Maintenance[0].IsNew)

	// adding the same asset again is a conflict and nothing is saved
	w = app.form(t, base, url.Values{"add_asset": {key}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Pluma grúa")

	w = app.form(t, base, url.Values{"start_date": {"2025-02-01"}, "end_date": {"2025-02-03"}, "remove_asset": {key}, "remove_maintenance": {"0"}})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	d, err = app.deps.Documents.DetailFor(t.Context(), doc.ID)
	require.NoError(t, err)
	assert.Empty(t, d.Assets)
	assert.Empty(t, d.Maintenance)

	w = app.do(t, http.MethodGet, base, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = app.do(t, http.MethodGet, "/documents/"+doc.ID.String()+"/totals", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), doc.Number)
}

func TestExportCSV(t *testing.T) {
	app := setupHandlersTest(t)
	app.seedCompany(t)

	w := app.do(t, http.MethodGet, "/companies/export.csv", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "Andamios del Valle SAS")

	w = app.do(t, http.MethodGet, "/companies/export.xlsx?q=nothing-matches", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"))
}
