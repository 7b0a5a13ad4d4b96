package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/go-custom-goods/internal/apperr"
	"github.com/ariefcatur/go-custom-goods/internal/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AdminHandler struct {
	Auth *auth.Service
	Log  *zap.Logger
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AdminHandler) Register(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Post("/admin/login", h.login)
	r.With(admin).Post("/admin/logout", h.logout)
}

func (h *AdminHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	admin, tok, err := h.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.Log, err, "Server error during login")
		return
	}
	writeOK(w, http.StatusOK, envelope{"user": admin, "token": tok.Value, "expires_at": tok.ExpiresAt})
}

func (h *AdminHandler) logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, r, h.Log, apperr.Auth("Authorization is required"), "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Auth.Logout(ctx, claims); err != nil {
		writeError(w, r, h.Log, err, "Error logging out")
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Logged out"})
}
