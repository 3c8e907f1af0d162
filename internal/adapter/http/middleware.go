package adapthttp

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type contextKey string

const ownerContextKey contextKey = "owner"

func ownerFrom(ctx context.Context) string {
	id, _ := ctx.Value(ownerContextKey).(string)
	return id
}

// authMiddleware resolves the caller from forward auth headers or a bearer
// ID token.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Fixed identity (for tests)
		if s.staticOwner != "" {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerContextKey, s.staticOwner)))
			return
		}

		// Proxy-authenticated user first
		if s.trustForwardAuth {
			if remoteUser := strings.TrimSpace(r.Header.Get("Remote-User")); remoteUser != "" {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerContextKey, remoteUser)))
				return
			}
		}

		token, ok := bearerToken(r)
		if !ok || s.identity == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
			return
		}
		owner, err := s.identity.Subject(r.Context(), token)
		if err != nil {
			s.log.Debug("rejecting bearer token", zap.Error(err))
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerContextKey, owner)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
