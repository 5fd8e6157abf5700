package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/middleware"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"go.uber.org/zap"
)

// PageHandler serves the dashboard and the issuer profile.
type PageHandler struct {
	dashboard *services.DashboardService
	issuer    *services.IssuerService
	log       *zap.Logger
}

func NewPageHandler(d Deps) *PageHandler {
	return &PageHandler{dashboard: d.Dashboard, issuer: d.Issuer, log: d.Log}
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.Load(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	if wantsJSON(r) || strings.HasPrefix(r.URL.Path, "/api/") {
		httpx.JSON(w, http.StatusOK, data)
		return
	}
	configured, err := h.issuer.IsConfigured(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	render(w, r, "dashboard.html", map[string]any{
		"Stats":            data,
		"IssuerConfigured": configured,
		"RequestStatuses":  models.RequestStatuses,
		"DocumentTypes":    services.DocumentTypes,
		"Flash":            middleware.TakeFlash(w, r),
	})
}

func issuerForm(r *http.Request, p *models.IssuerProfile) {
	p.LegalName = strings.TrimSpace(r.FormValue("legal_name"))
	p.TaxID = strings.TrimSpace(r.FormValue("tax_id"))
	p.Address = r.FormValue("address")
	p.City = r.FormValue("city")
	p.Phone = r.FormValue("phone")
	p.Email = strings.TrimSpace(r.FormValue("email"))
	p.Website = r.FormValue("website")
	p.LogoURL = r.FormValue("logo_url")
	p.BankDetails = r.FormValue("bank_details")
	p.FooterNote = r.FormValue("footer_note")
}

// Issuer handles GET /issuer.
func (h *PageHandler) Issuer(w http.ResponseWriter, r *http.Request) {
	p, err := h.issuer.Get(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		if p == nil {
			notFound(w, r)
			return
		}
		httpx.JSON(w, http.StatusOK, p)
		return
	}
	if p == nil {
		p = &models.IssuerProfile{}
	}
	render(w, r, "issuer/form.html", map[string]any{"Record": p, "Flash": middleware.TakeFlash(w, r)})
}

// SaveIssuer handles POST|PUT /issuer.
func (h *PageHandler) SaveIssuer(w http.ResponseWriter, r *http.Request) {
	var p models.IssuerProfile
	if isJSONBody(r) {
		if err := decodeJSON(r, &p); err != nil {
			badRequest(w, r, "invalid_body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			badRequest(w, r, "invalid_body")
			return
		}
		issuerForm(r, &p)
	}
	if v := services.ValidateIssuer(&p); !v.Empty() {
		if wantsJSON(r) || isJSONBody(r) {
			fail(w, r, v)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		render(w, r, "issuer/form.html", map[string]any{"Record": &p, "Errors": v})
		return
	}
	saved, err := h.issuer.Save(r.Context(), p)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.log.Info("issuer profile saved", zap.String("id", saved.ID.String()))
	if wantsJSON(r) || isJSONBody(r) {
		httpx.JSON(w, http.StatusOK, saved)
		return
	}
	redirect(w, r, "/issuer", "saved")
}

func (h *PageHandler) Routes(mux *http.ServeMux, wrap func(http.HandlerFunc) http.Handler) {
	mux.Handle("GET /dashboard", wrap(h.Dashboard))
	mux.Handle("GET /api/dashboard", wrap(h.Dashboard))
	mux.Handle("GET /issuer", wrap(h.Issuer))
	mux.Handle("POST /issuer", wrap(h.SaveIssuer))
	mux.Handle("PUT /issuer", wrap(h.SaveIssuer))
}
