package server

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/go-rentals/auth"
	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/handlers"
	"github.com/diewo77/go-rentals/internal/middleware"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configure the root handler.
type Options struct {
	// UploadDir is served under UploadPrefix when the local attachment backend is used.
	UploadDir    string
	UploadPrefix string
	StaticDir    string
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(d handlers.Deps, opts Options) http.Handler {
	mux := http.NewServeMux()
	log := d.Log

	auth.SetUserVerifier(func(ctx context.Context, uid uuid.UUID) bool {
		return d.Users.Exists(ctx, uid)
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := d.DB.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
			log.Warn("health check failed", zap.Error(err))
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	static := opts.StaticDir
	if static == "" {
		static = "static"
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(static))))
	if opts.UploadDir != "" {
		prefix := opts.UploadPrefix
		if prefix == "" {
			prefix = "/uploads"
		}
		mux.Handle("GET "+prefix+"/", http.StripPrefix(prefix+"/", http.FileServer(http.Dir(opts.UploadDir))))
	}

	protected := func(h http.HandlerFunc) http.Handler { return auth.RequireAuth(h) }
	handlers.Register(mux, d, protected)

	mux.Handle("GET /{$}", protected(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}))

	var h http.Handler = mux
	h = auth.Middleware(h)
	h = middleware.Prefs(h)
	h = withRecover(log, h)
	h = withLogging(log, h)
	h = chimw.RealIP(h)
	h = chimw.RequestID(h)
	return h
}

// statusRecorder captures the status written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

func withLogging(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())))
	})
}

func withRecover(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.String("request_id", chimw.GetReqID(r.Context())),
					zap.Stack("stack"))
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
