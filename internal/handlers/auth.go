package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/go-rentals/auth"
	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/i18n"
	"github.com/diewo77/go-rentals/internal/middleware"
	"github.com/diewo77/go-rentals/internal/services"
	"go.uber.org/zap"
)

type AuthHandler struct {
	users *services.UserService
	log   *zap.Logger
}

func NewAuthHandler(d Deps) *AuthHandler {
	return &AuthHandler{users: d.Users, log: d.Log}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, "login.html", map[string]any{"Next": r.URL.Query().Get("next")})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if isJSONBody(r) {
		if err := decodeJSON(r, &in); err != nil {
			badRequest(w, r, "invalid_body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			badRequest(w, r, "invalid_body")
			return
		}
		in.Email, in.Password = r.FormValue("email"), r.FormValue("password")
	}
	u, err := h.users.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			fail(w, r, err)
			return
		}
		h.log.Info("login rejected", zap.String("email", strings.ToLower(strings.TrimSpace(in.Email))))
		if wantsJSON(r) || isJSONBody(r) {
			httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		render(w, r, "login.html", map[string]any{
			"Error": i18n.T(middleware.LangFrom(r), "invalid_credentials"),
			"Email": in.Email,
		})
		return
	}
	auth.CreateSession(w, u.ID)
	if wantsJSON(r) || isJSONBody(r) {
		httpx.JSON(w, http.StatusOK, u)
		return
	}
	next := r.FormValue("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/dashboard"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("GET /logout", h.Logout)
}
