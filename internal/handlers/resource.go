package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/middleware"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/diewo77/go-rentals/internal/store"
	"github.com/diewo77/go-rentals/internal/table"
	"github.com/diewo77/go-rentals/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// record is a pointer to a model embedding models.Base.
type record[T any] interface {
	*T
	GetID() uuid.UUID
	SetID(uuid.UUID)
	EnsureID() uuid.UUID
}

// Resource serves the list, detail, form and write routes of one entity.
// Hooks left nil fall back to plain table operations.
type Resource[T any, P record[T]] struct {
	Name    string // URL segment and template directory
	Table   *store.Table[T]
	Columns []table.Column[T]
	Search  []string
	Filters []string // query parameters applied as equality filters
	Joins   []string
	Order   string

	// Form copies form fields onto rec.
	Form func(r *http.Request, rec *T)
	// Validate reports required and format violations.
	Validate func(rec *T) validation.Violations
	// Prepare runs after validation and before the write: uploads, inline
	// categories, name snapshots. Returned paths are removed after a successful
	// write; written blobs are returned so a failed write can remove them.
	Prepare func(ctx context.Context, r *http.Request, rec *T, isNew bool) (stale, written []string, err error)
	Insert  func(ctx context.Context, rec *T) error
	Remove  func(ctx context.Context, id uuid.UUID) error
	// Options adds select choices to the form page.
	Options func(ctx context.Context) (map[string]any, error)
	// Detail renders GET /{name}/{id}; nil redirects HTML clients to the edit form.
	Detail func(w http.ResponseWriter, r *http.Request, id uuid.UUID)

	Files *services.Files
	Log   *zap.Logger
}

func (h *Resource[T, P]) base() string { return "/" + h.Name }

func (h *Resource[T, P]) filter(r *http.Request) store.Filter {
	q := r.URL.Query()
	f := store.Filter{
		Search:        strings.TrimSpace(q.Get("q")),
		SearchColumns: h.Search,
		Order:         h.Order,
	}
	if f.Order == "" {
		f.Order = "created_at desc"
	}
	for _, k := range h.Filters {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			if f.Where == nil {
				f.Where = map[string]any{}
			}
			f.Where[k] = v
		}
	}
	return f
}

// List answers JSON {items,total,limit,offset} or the shared list page.
func (h *Resource[T, P]) List(w http.ResponseWriter, r *http.Request) {
	f := h.filter(r)
	f.Limit, f.Offset = pagination(r)
	items, total, err := h.Table.Page(r.Context(), f, h.Joins...)
	if err != nil {
		fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total, "limit": f.Limit, "offset": f.Offset})
		return
	}
	view := table.Build(h.Columns, items, func(it T) string { return P(&it).GetID().String() })
	filters := map[string]string{}
	for _, k := range h.Filters {
		filters[k] = r.URL.Query().Get(k)
	}
	render(w, r, "list.html", map[string]any{
		"Entity":  h.Name,
		"Table":   view,
		"Query":   f.Search,
		"Filters": filters,
		"Total":   total,
		"Limit":   f.Limit,
		"Page":    page(f.Limit, f.Offset),
		"HasNext": int64(f.Offset+f.Limit) < total,
		"Flash":   middleware.TakeFlash(w, r),
	})
}

// Show answers the record as JSON or delegates to the detail page.
func (h *Resource[T, P]) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if !wantsJSON(r) {
		if h.Detail != nil {
			h.Detail(w, r, id)
			return
		}
		http.Redirect(w, r, h.base()+"/"+id.String()+"/edit", http.StatusSeeOther)
		return
	}
	rec, err := h.Table.Get(r.Context(), id, h.Joins...)
	if err != nil {
		fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Resource[T, P]) form(w http.ResponseWriter, r *http.Request, status int, rec *T, isNew bool, errs validation.Violations, msg string) {
	data := map[string]any{
		"Entity": h.Name,
		"Record": rec,
		"IsNew":  isNew,
		"Errors": errs,
		"Error":  msg,
	}
	if !isNew {
		data["Action"] = h.base() + "/" + P(rec).GetID().String()
	} else {
		data["Action"] = h.base()
	}
	if h.Options != nil {
		opts, err := h.Options(r.Context())
		if err != nil {
			fail(w, r, err)
			return
		}
		for k, v := range opts {
			data[k] = v
		}
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	render(w, r, h.Name+"/form.html", data)
}

// New shows the empty form.
func (h *Resource[T, P]) New(w http.ResponseWriter, r *http.Request) {
	h.form(w, r, http.StatusOK, new(T), true, nil, "")
}

// Edit shows the form pre-populated with the record.
func (h *Resource[T, P]) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rec, err := h.Table.Get(r.Context(), id, h.Joins...)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.form(w, r, http.StatusOK, rec, false, nil, "")
}

// bind fills rec from a JSON or form body.
func (h *Resource[T, P]) bind(r *http.Request, rec *T) error {
	id := P(rec).GetID()
	if isJSONBody(r) {
		if err := decodeJSON(r, rec); err != nil {
			return err
		}
	} else {
		if err := parseForm(r, 32<<20); err != nil {
			return err
		}
		if h.Form != nil {
			h.Form(r, rec)
		}
	}
	if id != uuid.Nil {
		// ids in the body never retarget an update
		P(rec).SetID(id)
	}
	return nil
}

// save validates, runs Prepare and writes rec. It reports failures itself.
func (h *Resource[T, P]) save(w http.ResponseWriter, r *http.Request, rec *T, isNew bool) bool {
	ctx := r.Context()
	if h.Validate != nil {
		if v := h.Validate(rec); !v.Empty() {
			h.reject(w, r, rec, isNew, v)
			return false
		}
	}
	if isNew {
		P(rec).EnsureID()
	}
	var stale, written []string
	if h.Prepare != nil {
		var err error
		if stale, written, err = h.Prepare(ctx, r, rec, isNew); err != nil {
			h.reject(w, r, rec, isNew, err)
			return false
		}
	}
	var err error
	switch {
	case isNew && h.Insert != nil:
		err = h.Insert(ctx, rec)
	case isNew:
		err = h.Table.Insert(ctx, rec)
	default:
		err = h.Table.Update(ctx, P(rec).GetID(), rec)
	}
	if err != nil {
		if len(written) > 0 {
			_ = h.Files.Remove(context.WithoutCancel(ctx), written...)
		}
		h.reject(w, r, rec, isNew, err)
		return false
	}
	if len(stale) > 0 {
		if rmErr := h.Files.Remove(ctx, stale...); rmErr != nil {
			h.Log.Warn("stale files not removed", zap.String("entity", h.Name), zap.Strings("paths", stale), zap.Error(rmErr))
		}
	}
	return true
}

// reject answers a failed write: JSON error or the form re-rendered with input kept.
func (h *Resource[T, P]) reject(w http.ResponseWriter, r *http.Request, rec *T, isNew bool, err error) {
	if wantsJSON(r) || isJSONBody(r) {
		fail(w, r, err)
		return
	}
	status, _ := errorStatus(err)
	v, _ := errorDetails(err).(validation.Violations)
	h.form(w, r, status, rec, isNew, v, errorMessage(r, err))
}

// Create handles POST /{name}.
func (h *Resource[T, P]) Create(w http.ResponseWriter, r *http.Request) {
	rec := new(T)
	if err := h.bind(r, rec); err != nil {
		badRequest(w, r, "invalid_body")
		return
	}
	P(rec).EnsureID()
	if !h.save(w, r, rec, true) {
		return
	}
	h.Log.Info("record created", zap.String("entity", h.Name), zap.String("id", P(rec).GetID().String()))
	if wantsJSON(r) || isJSONBody(r) {
		httpx.JSON(w, http.StatusCreated, rec)
		return
	}
	redirect(w, r, h.base()+"/"+P(rec).GetID().String(), "saved")
}

// Update handles PUT or POST /{name}/{id}. Last write wins.
func (h *Resource[T, P]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rec, err := h.Table.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.bind(r, rec); err != nil {
		badRequest(w, r, "invalid_body")
		return
	}
	if !h.save(w, r, rec, false) {
		return
	}
	if wantsJSON(r) || isJSONBody(r) {
		httpx.JSON(w, http.StatusOK, rec)
		return
	}
	redirect(w, r, h.base()+"/"+id.String(), "saved")
}

// Delete handles DELETE /{name}/{id} and POST /{name}/{id}/delete.
func (h *Resource[T, P]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var err error
	if h.Remove != nil {
		err = h.Remove(r.Context(), id)
	} else {
		err = h.Table.Delete(r.Context(), id)
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	h.Log.Info("record deleted", zap.String("entity", h.Name), zap.String("id", id.String()))
	if wantsJSON(r) || r.Method == http.MethodDelete {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	redirect(w, r, h.base(), "deleted")
}

// Routes registers the standard routes on mux.
func (h *Resource[T, P]) Routes(mux *http.ServeMux, wrap func(http.HandlerFunc) http.Handler) {
	b := h.base()
	mux.Handle("GET "+b, wrap(h.List))
	mux.Handle("GET "+b+"/new", wrap(h.New))
	mux.Handle("POST "+b, wrap(h.Create))
	mux.Handle("GET "+b+"/{id}", wrap(h.Show))
	mux.Handle("GET "+b+"/{id}/edit", wrap(h.Edit))
	mux.Handle("PUT "+b+"/{id}", wrap(h.Update))
	mux.Handle("POST "+b+"/{id}", wrap(h.Update))
	mux.Handle("DELETE "+b+"/{id}", wrap(h.Delete))
	mux.Handle("POST "+b+"/{id}/delete", wrap(h.Delete))
}
