// internal/handlers/middleware/auth.go
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
	"github.com/ammerola/stockpilot-be/internal/pkg/logger"
)

type contextKey string

// profileKey carries the authenticated profile through the request context
const profileKey contextKey = "auth_profile"

// Authenticate resolves the Bearer token against the user service and
// stores the matching profile in the request context. Requests without
// a valid token are rejected with 401.
func Authenticate(users ports.UserService, slogger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "Missing or malformed Authorization header")
				return
			}

			profile, err := users.Authenticate(r.Context(), token)
			if err != nil {
				slogger.WarnContext(r.Context(), "authentication failed",
					slog.String("client_ip", getClientIP(r)),
					slog.Any("error", err),
				)
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), profileKey, profile)
			ctx = context.WithValue(ctx, logger.ContextKeyUserID, profile.ID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows the request through only when the authenticated
// profile has one of the given roles. Must sit after Authenticate.
func RequireRole(roles ...domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile, ok := ProfileFromContext(r.Context())
			if !ok {
				unauthorized(w, "Authentication required")
				return
			}

			for _, role := range roles {
				if profile.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			forbidden(w, "Insufficient permissions")
		})
	}
}

// RequireWriter allows admins and managers through. Viewers get 403.
func RequireWriter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, ok := ProfileFromContext(r.Context())
		if !ok {
			unauthorized(w, "Authentication required")
			return
		}
		if !profile.Role.CanWrite() {
			forbidden(w, "Insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ProfileFromContext returns the authenticated profile stored by
// Authenticate, if any.
func ProfileFromContext(ctx context.Context) (*domain.Profile, bool) {
	profile, ok := ctx.Value(profileKey).(*domain.Profile)
	return profile, ok
}

// WithProfile returns a context carrying the given profile. Used by
// tests to exercise handlers without the full middleware chain.
func WithProfile(ctx context.Context, profile *domain.Profile) context.Context {
	return context.WithValue(ctx, profileKey, profile)
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

func forbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
