package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/easyconsult/backend/internal/auth"
)

func newIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("middleware-test-secret", time.Hour)
}

func TestRequireRolePassesThrough(t *testing.T) {
	issuer := newIssuer()
	token, err := issuer.Issue("user-42", auth.RoleUser)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok || p.ID != "user-42" || p.Role != auth.RoleUser {
			t.Fatalf("expected principal propagated, got %+v / %v", p, ok)
		}
		w.WriteHeader(http.StatusTeapot)
	})

	handler := RequireRole(issuer, auth.RoleUser)(next)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected downstream status, got %d", rr.Code)
	}
}

func TestRequireRoleMissingHeader(t *testing.T) {
	handler := RequireRole(newIssuer(), auth.RoleUser)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing header, got %d", rr.Code)
	}
}

func TestRequireRoleRejectsWrongRole(t *testing.T) {
	issuer := newIssuer()
	token, err := issuer.Issue("doc-7", auth.RoleDoctor)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	handler := RequireRole(issuer, auth.RoleAdmin)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run for wrong role")
	}))
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong role, got %d", rr.Code)
	}
}
