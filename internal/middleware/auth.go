package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ukydev/forklift-safety/internal/auth"
	"github.com/ukydev/forklift-safety/internal/models"
)

// contextKey keeps our context values from colliding with other packages.
type contextKey string

// UserContextKey is where Authenticate stores the validated claims.
const UserContextKey contextKey = "user"

// Paths reachable without a token. Refresh authenticates with the refresh
// token itself, not the (possibly expired) access token.
var openPaths = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/refresh",
	"/health",
}

// AuthMiddleware validates bearer tokens and attaches the caller's
// claims to the request context.
type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate rejects requests without a valid JWT, except on open paths.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isOpenPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		claims, err := m.authService.ValidateToken(header)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a handler behind a role. Admins pass any role gate.
func (m *AuthMiddleware) RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserFromContext(r.Context())
			if !ok {
				http.Error(w, "User context not found", http.StatusUnauthorized)
				return
			}
			if claims.Role != role && claims.Role != models.RoleAdmin {
				http.Error(w, "Insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission gates a handler behind a named action from the
// role permission table.
func (m *AuthMiddleware) RequirePermission(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserFromContext(r.Context())
			if !ok {
				http.Error(w, "User context not found", http.StatusUnauthorized)
				return
			}
			user := &models.User{Role: claims.Role}
			if !user.HasPermission(action) {
				http.Error(w, "Insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext extracts the authenticated claims, if any.
func GetUserFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)
	return claims, ok
}

func isOpenPath(path string) bool {
	for _, p := range openPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// RateLimitMiddleware is a fixed-window per-IP limiter. State lives in
// memory, so limits apply per process.
type RateLimitMiddleware struct {
	mu   sync.Mutex
	hits map[string][]int64
}

func NewRateLimitMiddleware() *RateLimitMiddleware {
	return &RateLimitMiddleware{hits: make(map[string][]int64)}
}

// RateLimit allows maxRequests per client IP within a sliding window of
// windowSeconds, answering 429 beyond that.
func (m *RateLimitMiddleware) RateLimit(maxRequests int, windowSeconds int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			now := time.Now().Unix()
			cutoff := now - int64(windowSeconds)

			m.mu.Lock()
			kept := m.hits[ip][:0]
			for _, ts := range m.hits[ip] {
				if ts >= cutoff {
					kept = append(kept, ts)
				}
			}
			if len(kept) >= maxRequests {
				m.hits[ip] = kept
				m.mu.Unlock()
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
			m.hits[ip] = append(kept, now)
			m.mu.Unlock()

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.Split(ip, ",")[0]
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	ip := r.RemoteAddr
	if i := strings.LastIndex(ip, ":"); i != -1 {
		ip = ip[:i]
	}
	return ip
}
