package handlers

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/i18n"
	"github.com/diewo77/go-rentals/internal/middleware"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/diewo77/go-rentals/internal/store"
	"github.com/diewo77/go-rentals/validation"
	"github.com/diewo77/go-rentals/view"
	"github.com/google/uuid"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

var (
	wantsJSON  = httpx.WantsJSON
	isJSONBody = httpx.IsJSONBody
	decodeJSON = httpx.Decode
)

// pathID parses the {name} wildcard as a UUID and answers 404 when it is not one.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		notFound(w, r)
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads limit (default 50, max 200) and page into limit/offset.
func pagination(r *http.Request) (limit, offset int) {
	limit = defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxLimit {
			limit = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	return limit, offset
}

func page(limit, offset int) int { return offset/limit + 1 }

// errorStatus maps an error onto an HTTP status and a JSON error code.
func errorStatus(err error) (int, string) {
	var v validation.Violations
	switch {
	case errors.As(err, &v):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, services.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "attachment_failed"
	case services.IsAttachmentError(err):
		return http.StatusBadGateway, "attachment_failed"
	case errors.Is(err, services.ErrDuplicateAsset), errors.Is(err, services.ErrDuplicateMaintenance),
		errors.Is(err, services.ErrDuplicateInstallation), errors.Is(err, services.ErrDuplicateUser):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, services.ErrUnknownDocumentType), errors.Is(err, services.ErrInvalidDateRange),
		errors.Is(err, services.ErrInvalidPrice), errors.Is(err, services.ErrInvalidQuantity):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, services.ErrAttachmentNotFound), errors.Is(err, services.ErrComponentNotFound),
		errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrLineNotFound):
		return http.StatusNotFound, "not_found"
	}
	code := store.ErrorCode(err)
	switch code {
	case "not_found":
		return http.StatusNotFound, code
	case "duplicate":
		return http.StatusConflict, code
	case "invalid_reference":
		return http.StatusBadRequest, code
	}
	return http.StatusInternalServerError, code
}

// errorDetails is the JSON details payload for err.
func errorDetails(err error) any {
	var v validation.Violations
	if errors.As(err, &v) {
		return v
	}
	return nil
}

// fail writes err as JSON or as the error page.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	if wantsJSON(r) || isJSONBody(r) {
		httpx.JSONError(w, status, code, errorDetails(err))
		return
	}
	w.WriteHeader(status)
	render(w, r, "error.html", map[string]any{"Status": status, "Message": i18n.T(middleware.LangFrom(r), code)})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	fail(w, r, &store.Error{Code: store.CodeNotFound})
}

func badRequest(w http.ResponseWriter, r *http.Request, code string) {
	if wantsJSON(r) || isJSONBody(r) {
		httpx.JSONError(w, http.StatusBadRequest, code, nil)
		return
	}
	http.Error(w, i18n.T(middleware.LangFrom(r), code), http.StatusBadRequest)
}

// errorMessage is the translated text shown on a re-rendered form.
func errorMessage(r *http.Request, err error) string {
	_, code := errorStatus(err)
	return i18n.T(middleware.LangFrom(r), code)
}

func render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if err := view.Render(w, r, name, data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
	}
}

// redirect flashes code and sends the browser to url.
func redirect(w http.ResponseWriter, r *http.Request, url, code string) {
	if code != "" {
		middleware.Flash(w, r, code)
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func formDate(r *http.Request, key string) *time.Time {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil
	}
	return &t
}

func formFloat(r *http.Request, key string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(r.FormValue(key)), ",", "."), 64)
	return f
}

func formInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.FormValue(key)))
	return n
}

func formUUID(r *http.Request, key string) *uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(r.FormValue(key)))
	if err != nil {
		return nil
	}
	return &id
}

func formBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.FormValue(key))
	return b || r.FormValue(key) == "on"
}

// parseForm handles urlencoded and multipart bodies alike.
func parseForm(r *http.Request, maxMemory int64) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxMemory)
	}
	return r.ParseForm()
}

// attachment marks the response as a download named filename. The name is
// quoted or RFC 2231 encoded as needed.
func attachment(w http.ResponseWriter, filename string) {
	v := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if v == "" {
		v = "attachment"
	}
	w.Header().Set("Content-Disposition", v)
}
