package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/middleware"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EquipmentHandler serves asset and kit detail pages, their attachments and kit components.
type EquipmentHandler struct {
	svc *services.EquipmentService
	log *zap.Logger
}

func NewEquipmentHandler(d Deps) *EquipmentHandler {
	return &EquipmentHandler{svc: d.Equipment, log: d.Log}
}

func (h *EquipmentHandler) back(w http.ResponseWriter, r *http.Request, base string, status int, payload any, code string) {
	if wantsJSON(r) || isJSONBody(r) {
		if payload == nil {
			w.WriteHeader(status)
			return
		}
		httpx.JSON(w, status, payload)
		return
	}
	redirect(w, r, base+"/"+r.PathValue("id"), code)
}

func (h *EquipmentHandler) AssetDetail(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	a, err := h.svc.Assets.Get(r.Context(), id, "Category")
	if err != nil {
		fail(w, r, err)
		return
	}
	render(w, r, "assets/show.html", map[string]any{"Record": a, "Flash": middleware.TakeFlash(w, r)})
}

func (h *EquipmentHandler) KitDetail(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	k, err := h.svc.Kits.Get(r.Context(), id, "Category")
	if err != nil {
		fail(w, r, err)
		return
	}
	render(w, r, "kits/show.html", map[string]any{"Record": k, "Flash": middleware.TakeFlash(w, r)})
}

type attachFunc func(ctx context.Context, id uuid.UUID, up services.Upload) (*models.Attachment, error)
type detachFunc func(ctx context.Context, id uuid.UUID, attID string) error

func (h *EquipmentHandler) addAttachment(base string, add attachFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if err := parseForm(r, 32<<20); err != nil {
			badRequest(w, r, "invalid_body")
			return
		}
		var att *models.Attachment
		found, err := singleUpload(r, "file", func(up services.Upload) error {
			var err error
			att, err = add(r.Context(), id, up)
			return err
		})
		if !found {
			badRequest(w, r, "file_required")
			return
		}
		if err != nil {
			fail(w, r, err)
			return
		}
		h.back(w, r, base, http.StatusCreated, att, "saved")
	}
}

func (h *EquipmentHandler) removeAttachment(base string, remove detachFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if err := remove(r.Context(), id, r.PathValue("attID")); err != nil {
			fail(w, r, err)
			return
		}
		h.back(w, r, base, http.StatusNoContent, nil, "deleted")
	}
}

// componentInput reads a component from JSON or a multipart form. The
// returned closer releases the opened upload files.
func componentInput(r *http.Request) (services.ComponentInput, func(), error) {
	var in services.ComponentInput
	noop := func() {}
	if isJSONBody(r) {
		return in, noop, decodeJSON(r, &in)
	}
	if err := parseForm(r, 32<<20); err != nil {
		return in, noop, err
	}
	in.Name = strings.TrimSpace(r.FormValue("name"))
	in.Quantity, _ = strconv.Atoi(strings.TrimSpace(r.FormValue("quantity")))
	in.Serial = r.FormValue("serial")
	in.Model = r.FormValue("model")
	in.Manufacturer = r.FormValue("manufacturer")
	in.Description = r.FormValue("description")

	var closers []func() error
	open := func(field string) (*services.Upload, error) {
		fhs := fileHeaders(r, field)
		if len(fhs) == 0 {
			return nil, nil
		}
		f, err := fhs[0].Open()
		if err != nil {
			return nil, err
		}
		closers = append(closers, f.Close)
		return &services.Upload{Name: fhs[0].Filename, ContentType: fhs[0].Header.Get("Content-Type"), Size: fhs[0].Size, Body: f}, nil
	}
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}
	var err error
	if in.Image, err = open("image"); err != nil {
		closeAll()
		return in, noop, err
	}
	if in.Document, err = open("document"); err != nil {
		closeAll()
		return in, noop, err
	}
	return in, closeAll, nil
}

// AddComponent handles POST /kits/{id}/components.
func (h *EquipmentHandler) AddComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	in, done, err := componentInput(r)
	defer done()
	if err != nil {
		badRequest(w, r, "invalid_body")
		return
	}
	if v := in.Validate(); !v.Empty() {
		fail(w, r, v)
		return
	}
	c, err := h.svc.AddComponent(r.Context(), id, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.log.Info("kit component added", zap.String("kit_id", id.String()), zap.String("component_id", c.ID))
	h.back(w, r, "/kits", http.StatusCreated, c, "saved")
}

// UpdateComponent handles PUT /kits/{id}/components/{cid}.
func (h *EquipmentHandler) UpdateComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	in, done, err := componentInput(r)
	defer done()
	if err != nil {
		badRequest(w, r, "invalid_body")
		return
	}
	if v := in.Validate(); !v.Empty() {
		fail(w, r, v)
		return
	}
	c, err := h.svc.UpdateComponent(r.Context(), id, r.PathValue("cid"), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.back(w, r, "/kits", http.StatusOK, c, "saved")
}

// RemoveComponent handles DELETE /kits/{id}/components/{cid}.
func (h *EquipmentHandler) RemoveComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveComponent(r.Context(), id, r.PathValue("cid")); err != nil {
		fail(w, r, err)
		return
	}
	h.back(w, r, "/kits", http.StatusNoContent, nil, "deleted")
}

func (h *EquipmentHandler) Routes(mux *http.ServeMux, wrap func(http.HandlerFunc) http.Handler) {
	mux.Handle("POST /assets/{id}/attachments", wrap(h.addAttachment("/assets", h.svc.AddAssetAttachment)))
	mux.Handle("DELETE /assets/{id}/attachments/{attID}", wrap(h.removeAttachment("/assets", h.svc.RemoveAssetAttachment)))
	mux.Handle("POST /assets/{id}/attachments/{attID}/delete", wrap(h.removeAttachment("/assets", h.svc.RemoveAssetAttachment)))
	mux.Handle("POST /kits/{id}/attachments", wrap(h.addAttachment("/kits", h.svc.AddKitAttachment)))
	mux.Handle("DELETE /kits/{id}/attachments/{attID}", wrap(h.removeAttachment("/kits", h.svc.RemoveKitAttachment)))
	mux.Handle("POST /kits/{id}/attachments/{attID}/delete", wrap(h.removeAttachment("/kits", h.svc.RemoveKitAttachment)))
	mux.Handle("POST /kits/{id}/components", wrap(h.AddComponent))
	mux.Handle("PUT /kits/{id}/components/{cid}", wrap(h.UpdateComponent))
	mux.Handle("POST /kits/{id}/components/{cid}", wrap(h.UpdateComponent))
	mux.Handle("DELETE /kits/{id}/components/{cid}", wrap(h.RemoveComponent))
	mux.Handle("POST /kits/{id}/components/{cid}/delete", wrap(h.RemoveComponent))
}
