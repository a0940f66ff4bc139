package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(t *testing.T, h http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUserTokenRoundTrip(t *testing.T) {
	auth := NewAuthMiddleware("test-secret")

	token, err := auth.IssueUserToken("user-1", "a@b.c", []string{"admin"})
	if err != nil {
		t.Fatalf("IssueUserToken: %v", err)
	}

	var got *Claims
	h := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetClaimsFromContext(r.Context())
	}))

	rec := doRequest(t, h, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil {
		t.Fatalf("claims missing from context")
	}
	if got.UserID != "user-1" || got.Email != "a@b.c" {
		t.Fatalf("claims = %+v", got)
	}
	if len(got.Roles) != 1 || got.Roles[0] != "admin" {
		t.Fatalf("roles = %v", got.Roles)
	}
}

func TestMiddleware_MissingToken(t *testing.T) {
	auth := NewAuthMiddleware("test-secret")

	rec := doRequest(t, auth.Middleware(okHandler()), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_TokenSignedWithOtherKey(t *testing.T) {
	auth := NewAuthMiddleware("test-secret")
	other := NewAuthMiddleware("another-secret")

	token, err := other.IssueUserToken("user-1", "a@b.c", nil)
	if err != nil {
		t.Fatalf("IssueUserToken: %v", err)
	}

	rec := doRequest(t, auth.Middleware(okHandler()), token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_GarbageToken(t *testing.T) {
	auth := NewAuthMiddleware("test-secret")

	rec := doRequest(t, auth.Middleware(okHandler()), "not.a.jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireOperator(t *testing.T) {
	auth := NewAuthMiddleware("test-secret")
	h := auth.RequireOperator(okHandler())

	userToken, _ := auth.IssueUserToken("user-1", "a@b.c", nil)
	sellerToken, _ := auth.IssueUserToken("user-2", "s@b.c", []string{RoleSeller})
	adminToken, _ := auth.IssueUserToken("user-3", "ad@b.c", []string{RoleAdmin})
	grantToken, _ := auth.IssueGrantToken("master")

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"plain user forbidden", userToken, http.StatusForbidden},
		{"seller allowed", sellerToken, http.StatusOK},
		{"admin allowed", adminToken, http.StatusOK},
		{"grant allowed", grantToken, http.StatusOK},
		{"no token", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, tt.token)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequireAdmin_GrantNotEnough(t *testing.T) {
	auth := NewAuthMiddleware("test-secret")
	h := auth.RequireAdmin(okHandler())

	grantToken, _ := auth.IssueGrantToken("master")

	rec := doRequest(t, h, grantToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireUser_RejectsGrantToken(t *testing.T) {
	auth := NewAuthMiddleware("test-secret")
	h := auth.RequireUser(okHandler())

	grantToken, _ := auth.IssueGrantToken("code")

	rec := doRequest(t, h, grantToken)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestEmptySecretGetsRandomKey(t *testing.T) {
	a := NewAuthMiddleware("")
	b := NewAuthMiddleware("")

	token, err := a.IssueUserToken("user-1", "a@b.c", nil)
	if err != nil {
		t.Fatalf("IssueUserToken: %v", err)
	}

	if _, ok := b.parseToken(token); ok {
		t.Fatalf("token from one random-key instance must not validate on another")
	}
}
