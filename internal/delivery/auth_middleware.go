package delivery

import (
	"context"
	"net/http"
	"strings"

	"github.com/Vovarama1992/mediavault/internal/ports"
)

type adminContextKey struct{}

func withAdminID(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, adminContextKey{}, adminID)
}

func AdminIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(adminContextKey{}).(string)
	return id, ok && id != ""
}

func AuthMiddleware(auth ports.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "access token required")
				return
			}

			adminID, err := auth.ValidateToken(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withAdminID(r.Context(), adminID)))
		})
	}
}

func extractBearerToken(value string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
