package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/festivo/festivo-api/internal/config"
	"github.com/festivo/festivo-api/internal/domain"
	"github.com/festivo/festivo-api/internal/http/middleware"
	"github.com/festivo/festivo-api/internal/http/response"
	"github.com/festivo/festivo-api/internal/service"
	"github.com/festivo/festivo-api/pkg/logger"
)

type AuthHandler struct {
	Auth    service.AuthService
	Limiter middleware.Limiter
	Cfg     *config.Config
}

func NewAuthHandler(auth service.AuthService, limiter middleware.Limiter, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Auth: auth, Limiter: limiter, Cfg: cfg}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(middleware.RateLimit(h.Limiter, middleware.IPKeyFunc("otp"))).
		Post("/request-otp", h.requestOTP)
	r.Post("/verify-otp", h.verifyOTP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.Cfg.Auth.JWTSecret))
		r.Get("/me", h.me)
		r.Put("/me/profile", h.updateProfile)
	})
	return r
}

func (h *AuthHandler) requestOTP(w http.ResponseWriter, r *http.Request) {
	var in domain.RequestOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		response.DomainError(w, err)
		return
	}

	// Per-number limit on top of the per-IP one applied at the router. A
	// limiter outage never blocks login.
	ok, err := h.Limiter.Allow(r.Context(), "otp:mobile:"+in.Mobile)
	if err != nil {
		logger.WarnContext(r.Context(), "rate limiter unavailable", "error", err)
	} else if !ok {
		response.RateLimit(w, "too many codes requested for this number")
		return
	}

	issued, err := h.Auth.RequestCode(r.Context(), in.Mobile)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	out := map[string]any{
		"message":    "code sent",
		"expires_at": issued.ExpiresAt,
	}
	if h.Cfg.OTP.DevMode {
		// Development shortcut. Production delivery happens over SMS only.
		out["otp"] = issued.Code
	}
	response.OK(w, out)
}

func (h *AuthHandler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var in domain.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		response.DomainError(w, err)
		return
	}

	user, token, err := h.Auth.VerifyCode(r.Context(), in.Mobile, in.OTP)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	user, profile, err := h.Auth.GetMe(r.Context(), claims.Sub)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.OK(w, map[string]any{
		"user":    user,
		"profile": profile,
	})
}

func (h *AuthHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	var in domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	profile, err := h.Auth.UpdateProfile(r.Context(), claims.Sub, &in)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.OK(w, profile)
}
