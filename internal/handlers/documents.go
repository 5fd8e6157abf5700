package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/middleware"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/pdf"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentHandler serves the document pipeline: numbering, detail assembly,
// totals and the PDF.
type DocumentHandler struct {
	svc       *services.DocumentService
	equipment *services.EquipmentService
	opts      selectOptions
	log       *zap.Logger
}

func NewDocumentHandler(d Deps) *DocumentHandler {
	return &DocumentHandler{svc: d.Documents, equipment: d.Equipment, opts: selectOptions{db: d.DB}, log: d.Log}
}

// NextNumber handles GET /documents/next-number?type=quote.
func (h *DocumentHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.NextNumber(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"document_number": n})
}

// Detail renders the document summary page.
func (h *DocumentHandler) Detail(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	doc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	render(w, r, "documents/show.html", map[string]any{"Record": doc, "Flash": middleware.TakeFlash(w, r)})
}

// Details handles GET /documents/{id}/details.
func (h *DocumentHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	doc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	detail, err := h.svc.DetailFor(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, detail)
		return
	}
	h.detailsPage(w, r, http.StatusOK, doc, detail, "")
}

func (h *DocumentHandler) detailsPage(w http.ResponseWriter, r *http.Request, status int, doc *models.Document, detail *models.DocumentDetail, msg string) {
	data := map[string]any{
		"Document":          doc,
		"Detail":            detail,
		"Subtotal":          services.Subtotal(detail.Lines()),
		"MaintenanceKinds":  services.MaintenanceKinds,
		"InstallationKinds": services.InstallationKinds,
		"Priorities":        services.Priorities,
		"Error":             msg,
		"Flash":             middleware.TakeFlash(w, r),
	}
	if err := h.opts.load(r.Context(), data, "Assets", "Kits"); err != nil {
		fail(w, r, err)
		return
	}
	var err error
	if data["Maintenance"], err = services.Options(r.Context(), h.opts.db, &models.MaintenanceJob{}, "title"); err != nil {
		fail(w, r, err)
		return
	}
	if data["Installations"], err = services.Options(r.Context(), h.opts.db, &models.InstallationJob{}, "title"); err != nil {
		fail(w, r, err)
		return
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	render(w, r, "documents/details.html", data)
}

// SubmitDetails handles POST /documents/{id}/details. JSON bodies carry the
// whole detail; the HTML form edits the stored selection one step at a time
// and saves after every step.
func (h *DocumentHandler) SubmitDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in services.DetailInput
	if isJSONBody(r) {
		if err := decodeJSON(r, &in); err != nil {
			badRequest(w, r, "invalid_body")
			return
		}
		detail, err := h.svc.SubmitDetail(r.Context(), id, in)
		if err != nil {
			fail(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, detail)
		return
	}

	if err := parseForm(r, 1<<20); err != nil {
		badRequest(w, r, "invalid_body")
		return
	}
	stored, err := h.svc.DetailFor(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	in = services.DetailInput{
		StartDate:      formDate(r, "start_date"),
		EndDate:        formDate(r, "end_date"),
		WorkLocation:   r.FormValue("work_location"),
		City:           r.FormValue("city"),
		Address:        r.FormValue("address"),
		TechnicalNotes: r.FormValue("technical_notes"),
		Selection:      services.SelectionFrom(stored),
	}
	if err := h.applySelectionForm(r.Context(), r, &in.Selection); err != nil {
		h.rejectDetails(w, r, id, in, err)
		return
	}
	if _, err := h.svc.SubmitDetail(r.Context(), id, in); err != nil {
		h.rejectDetails(w, r, id, in, err)
		return
	}
	next := "/documents/" + id.String() + "/details"
	if r.FormValue("action") == "totals" {
		next = "/documents/" + id.String() + "/totals"
	}
	redirect(w, r, next, "saved")
}

// rejectDetails re-renders the details page with the unsaved selection.
func (h *DocumentHandler) rejectDetails(w http.ResponseWriter, r *http.Request, id uuid.UUID, in services.DetailInput, err error) {
	doc, gerr := h.svc.Get(r.Context(), id)
	if gerr != nil {
		fail(w, r, gerr)
		return
	}
	status, _ := errorStatus(err)
	in.Normalize()
	detail := &models.DocumentDetail{
		DocumentID:     id,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		Days:           services.DayCountPtr(in.StartDate, in.EndDate),
		WorkLocation:   in.WorkLocation,
		City:           in.City,
		Address:        in.Address,
		TechnicalNotes: in.TechnicalNotes,
		Assets:         in.Assets,
		Maintenance:    in.Maintenance,
		Installations:  in.Installations,
	}
	h.detailsPage(w, r, status, doc, detail, errorMessage(r, err))
}

// applySelectionForm applies the line edits of the details form:
// quantity_{id} and price_{id} per asset line, add_asset, remove_asset,
// add_maintenance / add_installation (existing job id), new_* fields for a job
// authored inline, and remove_maintenance / remove_installation (line index).
func (h *DocumentHandler) applySelectionForm(ctx context.Context, r *http.Request, sel *services.Selection) error {
	for _, a := range sel.Assets {
		key := a.AssetID.String()
		if v := strings.TrimSpace(r.FormValue("quantity_" + key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return services.ErrInvalidQuantity
			}
			if err := sel.SetQuantity(a.AssetID, n); err != nil {
				return err
			}
		}
		if v := strings.TrimSpace(r.FormValue("price_" + key)); v != "" {
			p, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
			if err != nil {
				return services.ErrInvalidPrice
			}
			if err := sel.SetUnitPrice(a.AssetID, p); err != nil {
				return err
			}
		}
	}
	if id := formUUID(r, "remove_asset"); id != nil && !sel.RemoveAsset(*id) {
		return services.ErrLineNotFound
	}
	if id := formUUID(r, "add_asset"); id != nil {
		if err := h.addEquipment(ctx, sel, *id); err != nil {
			return err
		}
	}
	if v := r.FormValue("remove_maintenance"); v != "" {
		if i, err := strconv.Atoi(v); err != nil || !sel.RemoveMaintenance(i) {
			return services.ErrLineNotFound
		}
	}
	if v := r.FormValue("remove_installation"); v != "" {
		if i, err := strconv.Atoi(v); err != nil || !sel.RemoveInstallation(i) {
			return services.ErrLineNotFound
		}
	}
	if id := formUUID(r, "add_maintenance"); id != nil {
		job, err := h.svc.Maintenance.Get(ctx, *id)
		if err != nil {
			return err
		}
		if err := sel.AddMaintenance(models.MaintenanceLine{MaintenanceID: job.ID, JobLine: models.JobLineFrom(job.Job)}); err != nil {
			return err
		}
	}
	if id := formUUID(r, "add_installation"); id != nil {
		job, err := h.svc.Installations.Get(ctx, *id)
		if err != nil {
			return err
		}
		if err := sel.AddInstallation(models.InstallationLine{InstallationID: job.ID, JobLine: models.JobLineFrom(job.Job)}); err != nil {
			return err
		}
	}
	if line, ok := newJobLine(r, "new_maintenance_"); ok {
		if v := services.ValidateJob(&models.Job{Title: line.Title, Kind: line.JobKind, Priority: line.Priority, Cost: line.Amount}, services.MaintenanceKinds); !v.Empty() {
			return v
		}
		if err := sel.AddMaintenance(models.MaintenanceLine{JobLine: line}); err != nil {
			return err
		}
	}
	if line, ok := newJobLine(r, "new_installation_"); ok {
		if v := services.ValidateJob(&models.Job{Title: line.Title, Kind: line.JobKind, Priority: line.Priority, Cost: line.Amount}, services.InstallationKinds); !v.Empty() {
			return v
		}
		if err := sel.AddInstallation(models.InstallationLine{JobLine: line}); err != nil {
			return err
		}
	}
	return nil
}

// addEquipment adds an asset, or a kit when no asset has the id.
func (h *DocumentHandler) addEquipment(ctx context.Context, sel *services.Selection, id uuid.UUID) error {
	if a, err := h.equipment.Assets.Get(ctx, id); err == nil {
		return sel.AddAsset(a.ID, a.Name, a.Kind)
	}
	k, err := h.equipment.Kits.Get(ctx, id)
	if err != nil {
		return err
	}
	return sel.AddAsset(k.ID, k.Name, k.Kind)
}

func newJobLine(r *http.Request, prefix string) (models.JobLine, bool) {
	title := strings.TrimSpace(r.FormValue(prefix + "title"))
	if title == "" {
		return models.JobLine{}, false
	}
	return models.JobLine{
		Title:       title,
		JobKind:     r.FormValue(prefix + "kind"),
		Priority:    orDefault(r.FormValue(prefix+"priority"), models.PriorityMedium),
		StartDate:   formDate(r, prefix+"start_date"),
		EndDate:     formDate(r, prefix+"end_date"),
		Amount:      formFloat(r, prefix+"cost"),
		Description: r.FormValue(prefix + "description"),
		IsNew:       true,
	}, true
}

// adjustments reads discount, tax rate and other taxes from the query or
// form. It returns nil when none is given so stored values are reused.
func adjustments(r *http.Request) (*services.Adjustments, error) {
	keys := []string{"discount", "tax_rate_percent", "other_taxes"}
	vals := make([]float64, len(keys))
	given := false
	for i, k := range keys {
		v := strings.TrimSpace(r.FormValue(k))
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
		if err != nil {
			return nil, services.ErrInvalidPrice
		}
		vals[i], given = f, true
	}
	if !given {
		return nil, nil
	}
	a := services.Adjustments{Discount: vals[0], TaxRatePercent: vals[1], OtherTaxes: vals[2]}
	if strings.TrimSpace(r.FormValue("tax_rate_percent")) == "" {
		a.TaxRatePercent = models.DefaultTaxRate
	}
	return &a, nil
}

// Totals handles GET /documents/{id}/totals. Query adjustments preview without saving.
func (h *DocumentHandler) Totals(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	adj, err := adjustments(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	v, err := h.svc.LoadTotals(r.Context(), id, adj)
	if err != nil {
		fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, v)
		return
	}
	render(w, r, "documents/totals.html", map[string]any{"View": v, "Flash": middleware.TakeFlash(w, r)})
}

// SaveTotals handles POST /documents/{id}/totals.
func (h *DocumentHandler) SaveTotals(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var adj services.Adjustments
	if isJSONBody(r) {
		adj = services.DefaultAdjustments()
		if err := decodeJSON(r, &adj); err != nil {
			badRequest(w, r, "invalid_body")
			return
		}
	} else {
		if err := parseForm(r, 1<<20); err != nil {
			badRequest(w, r, "invalid_body")
			return
		}
		a, err := adjustments(r)
		if err != nil {
			fail(w, r, err)
			return
		}
		adj = services.DefaultAdjustments()
		if a != nil {
			adj = *a
		}
	}
	rec, err := h.svc.SaveTotals(r.Context(), id, adj)
	if err != nil {
		fail(w, r, err)
		return
	}
	if wantsJSON(r) || isJSONBody(r) {
		httpx.JSON(w, http.StatusOK, rec)
		return
	}
	redirect(w, r, "/documents/"+id.String()+"/totals", "saved")
}

// PDF handles GET /documents/{id}/pdf.
func (h *DocumentHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	v, err := h.svc.LoadTotals(r.Context(), id, nil)
	if err != nil {
		fail(w, r, err)
		return
	}
	b, err := pdf.Render(v, middleware.LangFrom(r))
	if err != nil {
		h.log.Error("pdf render failed", zap.String("document_id", id.String()), zap.Error(err))
		http.Error(w, "pdf error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	attachment(w, pdf.Filename(v.Document))
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	_, _ = w.Write(b)
}

func (h *DocumentHandler) Routes(mux *http.ServeMux, wrap func(http.HandlerFunc) http.Handler) {
	mux.Handle("GET /documents/next-number", wrap(h.NextNumber))
	mux.Handle("GET /documents/{id}/details", wrap(h.Details))
	mux.Handle("POST /documents/{id}/details", wrap(h.SubmitDetails))
	mux.Handle("GET /documents/{id}/totals", wrap(h.Totals))
	mux.Handle("POST /documents/{id}/totals", wrap(h.SaveTotals))
	mux.Handle("GET /documents/{id}/pdf", wrap(h.PDF))
}
