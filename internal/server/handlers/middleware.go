package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/codementor-ai/codementor/internal/shared/database"
	"github.com/codementor-ai/codementor/internal/shared/models"
	"github.com/codementor-ai/codementor/internal/shared/redis"
)

type contextKey string

const apiKeyContextKey contextKey = "api_key"

// APIKeyFrom returns the authenticated API key placed on the request context.
func APIKeyFrom(ctx context.Context) (*models.APIKey, bool) {
	key, ok := ctx.Value(apiKeyContextKey).(*models.APIKey)
	return key, ok
}

type Middleware struct {
	db           *database.DB
	redis        *redis.Client
	defaultLimit int
}

func NewMiddleware(db *database.DB, redis *redis.Client, defaultLimit int) *Middleware {
	return &Middleware{
		db:           db,
		redis:        redis,
		defaultLimit: defaultLimit,
	}
}

// AuthMiddleware validates API keys
func (m *Middleware) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract API key from Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		// Parse Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		apiKeyValue := parts[1]

		// Validate API key
		apiKey, err := m.db.GetAPIKey(r.Context(), apiKeyValue)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		// Update last used asynchronously to avoid blocking
		go m.db.UpdateAPIKeyLastUsed(context.Background(), apiKey.ID)

		ctx := context.WithValue(r.Context(), apiKeyContextKey, apiKey)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RateLimitMiddleware enforces per-key rate limits
func (m *Middleware) RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey, ok := APIKeyFrom(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		if m.redis == nil {
			next.ServeHTTP(w, r)
			return
		}

		limit := apiKey.RateLimitPerMinute
		if limit <= 0 {
			limit = m.defaultLimit
		}

		exceeded, remaining, err := m.redis.CheckRateLimit(r.Context(), apiKey.ID, limit)
		if err != nil {
			// Rate limiting is advisory; fail open when Redis is down
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if exceeded {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CORSMiddleware handles CORS
func (m *Middleware) CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
