package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/middleware"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompanyHandler serves the company detail page and its embedded collections.
type CompanyHandler struct {
	svc *services.CompanyService
	log *zap.Logger
}

func NewCompanyHandler(d Deps) *CompanyHandler {
	return &CompanyHandler{svc: d.Companies, log: d.Log}
}

func (h *CompanyHandler) back(w http.ResponseWriter, r *http.Request, status int, payload any, code string) {
	if wantsJSON(r) || isJSONBody(r) {
		if payload == nil {
			w.WriteHeader(status)
			return
		}
		httpx.JSON(w, status, payload)
		return
	}
	redirect(w, r, "/companies/"+r.PathValue("id"), code)
}

// Detail renders the company with contacts, users, attachments, documents and jobs.
func (h *CompanyHandler) Detail(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ov, err := h.svc.Overview(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	render(w, r, "companies/show.html", map[string]any{
		"Overview": ov,
		"Roles":    services.CompanyUserRoles,
		"Flash":    middleware.TakeFlash(w, r),
	})
}

// Overview handles GET /companies/{id}/overview for API clients.
func (h *CompanyHandler) Overview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ov, err := h.svc.Overview(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ov)
}

// AddAttachment handles POST /companies/{id}/attachments.
func (h *CompanyHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
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
		att, err = h.svc.AddAttachment(r.Context(), id, up)
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
	h.back(w, r, http.StatusCreated, att, "saved")
}

// RemoveAttachment handles DELETE /companies/{id}/attachments/{attID}.
func (h *CompanyHandler) RemoveAttachment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveAttachment(r.Context(), id, r.PathValue("attID")); err != nil {
		fail(w, r, err)
		return
	}
	h.back(w, r, http.StatusNoContent, nil, "deleted")
}

// AddUser handles POST /companies/{id}/users.
func (h *CompanyHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in services.CompanyUserInput
	if isJSONBody(r) {
		if err := decodeJSON(r, &in); err != nil {
			badRequest(w, r, "invalid_body")
			return
		}
	} else {
		if err := parseForm(r, 1<<20); err != nil {
			badRequest(w, r, "invalid_body")
			return
		}
		in = services.CompanyUserInput{
			Email:    strings.TrimSpace(r.FormValue("email")),
			Password: r.FormValue("password"),
			Role:     r.FormValue("role"),
		}
	}
	if v := in.Validate(); !v.Empty() {
		fail(w, r, v)
		return
	}
	u, err := h.svc.AddUser(r.Context(), id, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	out := *u
	out.Password = ""
	h.back(w, r, http.StatusCreated, out, "saved")
}

// RemoveUser handles DELETE /companies/{id}/users/{userID}.
func (h *CompanyHandler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveUser(r.Context(), id, r.PathValue("userID")); err != nil {
		fail(w, r, err)
		return
	}
	h.back(w, r, http.StatusNoContent, nil, "deleted")
}

// AddContact handles POST /companies/{id}/contacts.
func (h *CompanyHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var c models.Contact
	if isJSONBody(r) {
		if err := decodeJSON(r, &c); err != nil {
			badRequest(w, r, "invalid_body")
			return
		}
	} else {
		if err := parseForm(r, 1<<20); err != nil {
			badRequest(w, r, "invalid_body")
			return
		}
		contactForm(r, &c)
	}
	c.ID = uuid.Nil
	if v := services.ValidateContact(&c); !v.Empty() {
		fail(w, r, v)
		return
	}
	if err := h.svc.AddContact(r.Context(), id, &c); err != nil {
		fail(w, r, err)
		return
	}
	h.back(w, r, http.StatusCreated, c, "saved")
}

func (h *CompanyHandler) Routes(mux *http.ServeMux, wrap func(http.HandlerFunc) http.Handler) {
	mux.Handle("GET /companies/{id}/overview", wrap(h.Overview))
	mux.Handle("POST /companies/{id}/attachments", wrap(h.AddAttachment))
	mux.Handle("DELETE /companies/{id}/attachments/{attID}", wrap(h.RemoveAttachment))
	mux.Handle("POST /companies/{id}/attachments/{attID}/delete", wrap(h.RemoveAttachment))
	mux.Handle("POST /companies/{id}/users", wrap(h.AddUser))
	mux.Handle("DELETE /companies/{id}/users/{userID}", wrap(h.RemoveUser))
	mux.Handle("POST /companies/{id}/users/{userID}/delete", wrap(h.RemoveUser))
	mux.Handle("POST /companies/{id}/contacts", wrap(h.AddContact))
}
