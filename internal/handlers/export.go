package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-rentals/i18n"
	"github.com/diewo77/go-rentals/internal/export"
	"github.com/diewo77/go-rentals/internal/middleware"
	"github.com/diewo77/go-rentals/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExportHandler downloads list views as CSV or XLSX.
type ExportHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewExportHandler(d Deps) *ExportHandler {
	return &ExportHandler{db: d.DB, log: d.Log}
}

func (h *ExportHandler) serve(entity, format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		src := export.Entities[entity]
		f := store.Filter{Search: strings.TrimSpace(r.URL.Query().Get("q")), SearchColumns: src.Search}
		if v := r.URL.Query().Get("status"); v != "" {
			f.Where = map[string]any{"status": v}
		}
		view, err := export.Load(r.Context(), h.db, entity, f)
		if err != nil {
			fail(w, r, err)
			return
		}
		lang := middleware.LangFrom(r)
		var buf bytes.Buffer
		if err := export.Write(&buf, format, view, lang, i18n.T(lang, entity)); err != nil {
			h.log.Error("export failed", zap.String("entity", entity), zap.String("format", format), zap.Error(err))
			http.Error(w, "export error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", export.ContentType(format))
		attachment(w, export.Filename(entity, format, time.Now()))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		_, _ = buf.WriteTo(w)
	}
}

// Routes registers GET /{entity}/export.csv and .xlsx for every exportable entity.
func (h *ExportHandler) Routes(mux *http.ServeMux, wrap func(http.HandlerFunc) http.Handler) {
	for _, entity := range export.Names() {
		for _, format := range []string{export.CSV, export.XLSX} {
			mux.Handle("GET /"+entity+"/export."+format, wrap(h.serve(entity, format)))
		}
	}
}
