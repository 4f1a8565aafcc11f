// Package middleware provides Chi-compatible middleware for the API server.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/handsapp/backend/internal/infrastructure/config"
	"github.com/handsapp/backend/internal/infrastructure/security"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	userEmailKey contextKey = "user_email"
)

// Logger logs each request with method, path, status and duration.
func Logger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			logger.Info("API Request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Int("status_code", wrapped.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.String("user_agent", r.UserAgent()),
			)
		})
	}
}

// Security adds security headers for API responses.
func Security() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			next.ServeHTTP(w, r)
		})
	}
}

// CORS adds the CORS headers the mobile clients expect and answers
// preflight requests. The allowed header set must stay in sync with what
// the apps send on the streaming endpoint. The origin comes from
// server.allowed_origins and defaults to any.
func CORS(cfg config.ServerConfig) func(next http.Handler) http.Handler {
	origin := "*"
	if len(cfg.AllowedOrigins) > 0 {
		origin = strings.Join(cfg.AllowedOrigins, ", ")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey rejects API requests that do not present the shared client key
// in the apikey header. An empty configured key disables the check.
func ClientKey(anonKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if anonKey != "" && r.Header.Get("apikey") != anonKey {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":"Invalid API key"}`)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit applies a per-client token bucket keyed by remote address.
func RateLimit(cfg config.RateLimitConfig, logger *zap.Logger) func(next http.Handler) http.Handler {
	limiters := &clientLimiters{
		limit:   rate.Limit(float64(cfg.RequestsPerMin) / 60.0),
		burst:   cfg.BurstSize,
		clients: make(map[string]*rate.Limiter),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enable {
				next.ServeHTTP(w, r)
				return
			}

			if !limiters.get(r.RemoteAddr).Allow() {
				logger.Warn("Rate limit exceeded",
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("path", r.URL.Path),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprint(w, `{"error":"Too many requests"}`)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type clientLimiters struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*rate.Limiter
}

func (c *clientLimiters) get(addr string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	limiter, ok := c.clients[addr]
	if !ok {
		limiter = rate.NewLimiter(c.limit, c.burst)
		c.clients[addr] = limiter
	}
	return limiter
}

// OptionalAuth resolves a bearer token into the request context when one is
// present and valid. Requests without a token proceed anonymously.
func OptionalAuth(authService *security.AuthService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := security.ExtractBearerToken(r.Header.Get("Authorization"))
			if token != "" {
				if claims, err := authService.ValidateToken(token); err == nil {
					r = r.WithContext(addUserToContext(r.Context(), claims.UserID, claims.Email))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests that do not carry a valid bearer token.
func RequireAuth(authService *security.AuthService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := security.ExtractBearerToken(r.Header.Get("Authorization"))
			if token == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":"Authorization header required"}`)
				return
			}

			claims, err := authService.ValidateToken(token)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":"Invalid token"}`)
				return
			}

			r = r.WithContext(addUserToContext(r.Context(), claims.UserID, claims.Email))
			next.ServeHTTP(w, r)
		})
	}
}

func addUserToContext(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, userEmailKey, email)
}

// GetUserIDFromContext returns the authenticated user id, if any.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// GetUserEmailFromContext returns the authenticated user email, if any.
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(userEmailKey).(string)
	return email, ok && email != ""
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush forwards to the underlying writer so streaming handlers keep
// working behind the logging wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
