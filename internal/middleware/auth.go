// Package middleware содержит HTTP middleware для сервиса zoyabites.
package middleware

import (
	"context"
	"crypto/rand"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const claimsKey contextKey = "claims"

const (
	userTokenTTL  = 7 * 24 * time.Hour
	grantTokenTTL = 1 * time.Hour
)

// RoleAdmin и RoleSeller — роли, дающие доступ к операциям оператора.
const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
)

// Claims описывает содержимое токена: либо пользователь с ролями,
// либо временный операторский grant, выданный по коду доступа.
type Claims struct {
	UserID string   `json:"userId,omitempty"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	Grant  string   `json:"grant,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware выполняет проверку bearer-токенов и выпуск новых.
type AuthMiddleware struct {
	secretKey []byte
}

// NewAuthMiddleware создаёт новый экземпляр AuthMiddleware с указанным секретным ключом.
func NewAuthMiddleware(secret string) *AuthMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}

	return &AuthMiddleware{
		secretKey: key,
	}
}

// IssueUserToken выпускает токен пользователя сроком на 7 дней.
func (a *AuthMiddleware) IssueUserToken(userID, email string, roles []string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(userTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secretKey)
}

// IssueGrantToken выпускает короткоживущий операторский токен по коду доступа.
// kind — "master" или "code".
func (a *AuthMiddleware) IssueGrantToken(kind string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Grant: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(grantTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secretKey)
}

func (a *AuthMiddleware) parseToken(tokenString string) (*Claims, bool) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return a.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, false
	}
	return claims, true
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// Middleware проверяет bearer-токен и добавляет claims в контекст запроса.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w)
			return
		}

		claims, ok := a.parseToken(token)
		if !ok {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser пропускает только запросы с токеном пользователя.
func (a *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaimsFromContext(r.Context())
		if !ok || claims.UserID == "" {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// RequireOperator пропускает пользователей с ролью admin или seller,
// а также предъявителей действующего grant-токена.
func (a *AuthMiddleware) RequireOperator(next http.Handler) http.Handler {
	return a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaimsFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if claims.Grant == "" && !hasAnyRole(claims.Roles, RoleAdmin, RoleSeller) {
			forbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// RequireAdmin пропускает только пользователей с ролью admin.
func (a *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaimsFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if !hasAnyRole(claims.Roles, RoleAdmin) {
			forbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func hasAnyRole(roles []string, wanted ...string) bool {
	for _, r := range roles {
		for _, w := range wanted {
			if r == w {
				return true
			}
		}
	}
	return false
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"forbidden"}`))
}

// GetClaimsFromContext извлекает claims токена из контекста запроса.
func GetClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// GetUserIDFromContext извлекает идентификатор пользователя из контекста запроса.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	claims, ok := GetClaimsFromContext(ctx)
	if !ok || claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}
