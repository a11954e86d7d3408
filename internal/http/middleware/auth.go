package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/easyconsult/backend/internal/auth"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated caller extracted from the bearer token.
type Principal struct {
	ID   string
	Role auth.Role
}

// Verifier checks a bearer token and returns the subject and role.
type Verifier interface {
	Verify(token string) (string, auth.Role, error)
}

// RequireRole enforces a bearer JWT carrying the given role.
func RequireRole(verifier Verifier, role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			subject, tokenRole, err := verifier.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil || tokenRole != role {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), principalKey, Principal{ID: subject, Role: tokenRole})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
