package httpx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ariefcatur/go-custom-goods/internal/apperr"
	"github.com/ariefcatur/go-custom-goods/internal/auth"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request, at warn for 4xx and error for 5xx.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx := context.WithValue(r.Context(), claimsKey{}, &claimsHolder{})
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.Int("status", status),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("ip", r.RemoteAddr),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(ctx)),
			}
			if c, ok := ClaimsFrom(ctx); ok {
				fields = append(fields, zap.String("admin", c.Name))
			}

			switch {
			case status >= 500:
				log.Error("server error", fields...)
			case status >= 400:
				log.Warn("client error", fields...)
			default:
				log.Info("request", fields...)
			}
		})
	}
}

// CORS lets the browser admin UI call the API from another origin.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type claimsKey struct{}

// claimsHolder lets RequestLogger see claims set further down the chain.
type claimsHolder struct{ c *auth.Claims }

func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	h, ok := ctx.Value(claimsKey{}).(*claimsHolder)
	if !ok || h.c == nil {
		return nil, false
	}
	return h.c, true
}

// Verifier is satisfied by *auth.Service.
type Verifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// RequireAdmin rejects requests without a valid admin bearer token.
func RequireAdmin(v Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearer(r)
			if token == "" {
				writeError(w, r, log, apperr.Auth("Authorization is required"), "")
				return
			}
			claims, err := v.Verify(r.Context(), token)
			if err != nil {
				writeError(w, r, log, err, "Error checking session")
				return
			}
			if h, ok := r.Context().Value(claimsKey{}).(*claimsHolder); ok {
				h.c = claims
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey{}, &claimsHolder{c: claims})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearer(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
