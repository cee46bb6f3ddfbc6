package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/madhava-poojari/educonnect-api/internal/config"
	"github.com/madhava-poojari/educonnect-api/internal/models"
	"github.com/madhava-poojari/educonnect-api/internal/service"
	"github.com/madhava-poojari/educonnect-api/internal/session"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
	"github.com/sirupsen/logrus"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	cfg  *config.Config
	auth *service.AuthService
	log  logrus.FieldLogger
}

func NewAuthHandler(cfg *config.Config, auth *service.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{cfg: cfg, auth: auth, log: log}
}

type authResp struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
	Redirect    string       `json:"redirect"`
}

func cookieDomain(r *http.Request) string {
	host := r.Host
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, r *http.Request, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Domain:   cookieDomain(r),
		Expires:  expires,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Domain:   cookieDomain(r),
	})
}

func (h *AuthHandler) respond(w http.ResponseWriter, r *http.Request, status int, msg string, res *service.AuthResult) {
	h.setRefreshCookie(w, r, res.RefreshToken, res.RefreshExpires)
	utils.WriteJSONResponse(w, status, true, msg, authResp{
		User:        res.Session.User,
		AccessToken: res.AccessToken,
		ExpiresIn:   res.ExpiresIn,
		Redirect:    res.Redirect,
	}, nil)
}

// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if err := utils.DecodeJSON(r, &req); err != nil {
		badBody(w, err)
		return
	}
	res, err := h.auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Welcome back, "+res.Session.User.Name+"!", res)
}

// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := utils.DecodeJSON(r, &req); err != nil {
		badBody(w, err)
		return
	}
	res, err := h.auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.respond(w, r, http.StatusCreated, "Registration successful! Welcome to EduConnect.", res)
}

// POST /api/auth/google expects {"code": "..."}
func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		badBody(w, err)
		return
	}
	res, err := h.auth.Google(r.Context(), req.Code)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.respond(w, r, http.StatusOK, "login successful", res)
}

// POST /api/auth/refresh rotates the refresh token cookie.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil || cookie.Value == "" {
		utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "missing refresh token cookie", nil, nil)
		return
	}
	res, err := h.auth.Refresh(r.Context(), cookie.Value)
	if err != nil {
		h.clearRefreshCookie(w, r)
		writeError(w, r, h.log, err)
		return
	}
	h.respond(w, r, http.StatusOK, "refresh successful", res)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(refreshCookie); err == nil {
		token = cookie.Value
	}
	if _, err := h.auth.Logout(r.Context(), session.FromContext(r.Context()), token); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.clearRefreshCookie(w, r)
	utils.WriteJSONResponse(w, http.StatusOK, true, "You have been successfully logged out.", map[string]string{"redirect": session.HomeRoute}, nil)
}

// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.auth.Me(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", map[string]interface{}{
		"user":     u,
		"redirect": session.DashboardRoute(u.Role),
	}, nil)
}
