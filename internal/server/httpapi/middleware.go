package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const identityKey ctxKey = "identity"

const loginWindow = time.Minute

// identityMiddleware authenticates the bearer token and stores the caller's
// Identity in the request context. Every failure is a plain 401.
func (s *HTTPServer) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		reqID := middleware.GetReqID(ctx)

		h := r.Header.Get(common.AuthorizationHeaderName)
		if !strings.HasPrefix(h, common.BearerPrefix) {
			s.logger.Warn(ctx, "missing bearer token", "request_id", reqID)
			writeFail(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(h, common.BearerPrefix))
		if token == "" {
			s.logger.Warn(ctx, "empty bearer token", "request_id", reqID)
			writeFail(w, http.StatusUnauthorized, "unauthenticated")
			return
		}

		userID, err := s.tokens.VerifyAccess(token)
		if err != nil {
			s.logger.Warn(ctx, "token rejected", "error", err.Error(), "request_id", reqID)
			writeFail(w, http.StatusUnauthorized, "unauthenticated")
			return
		}

		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			s.logger.Warn(ctx, "token subject not resolved", "error", err.Error(), "request_id", reqID)
			writeFail(w, http.StatusUnauthorized, "unauthenticated")
			return
		}

		id := models.Identity{UserID: user.ID, Email: user.Email}
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, identityKey, id)))
	})
}

// identityFrom returns the authenticated caller. ok is false outside identityMiddleware.
func identityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}

// rateLimitLogin allows LoginRateLimit attempts per client IP per minute.
// Counter errors let the request through.
func (s *HTTPServer) rateLimitLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil || s.config.LoginRateLimit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ip := clientIP(r)
		n, err := s.limiter.IncrWithTTL(ctx, "rl:login:"+ip, loginWindow)
		if err != nil {
			s.logger.Warn(ctx, "rate limiter unavailable", "error", err.Error())
			next.ServeHTTP(w, r)
			return
		}
		if n > int64(s.config.LoginRateLimit) {
			s.logger.Warn(ctx, "login rate limit exceeded", "ip", ip)
			writeFail(w, http.StatusTooManyRequests, "too many login attempts, try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP relies on middleware.RealIP having rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *HTTPServer) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
