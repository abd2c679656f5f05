package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey int

const (
	ctxKeyUserID ctxKey = iota
	ctxKeyRole
)

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, prefix))
}

// JWTAuth valida el token Bearer (HS256) y deja userId y role en el
// contexto de la petición.
func JWTAuth(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				http.Error(w, "falta el token Bearer", http.StatusUnauthorized)
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(raw, claims,
				func(t *jwt.Token) (any, error) { return key, nil },
				jwt.WithValidMethods([]string{"HS256"}),
			)
			if err != nil || !token.Valid {
				http.Error(w, "token inválido o expirado", http.StatusUnauthorized)
				return
			}

			// sub llega como float64 al decodificar el JSON
			sub, ok := claims["sub"].(float64)
			if !ok {
				http.Error(w, "token sin sujeto", http.StatusUnauthorized)
				return
			}
			role, _ := claims["role"].(string)

			ctx := context.WithValue(r.Context(), ctxKeyUserID, int(sub))
			ctx = context.WithValue(ctx, ctxKeyRole, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly corta las peticiones cuyo token no trae role admin. Va siempre
// detrás de JWTAuth.
func AdminOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != "admin" {
				http.Error(w, "se requiere rol admin", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext devuelve el userId autenticado, o 0 fuera del
// middleware.
func UserIDFromContext(ctx context.Context) int {
	id, _ := ctx.Value(ctxKeyUserID).(int)
	return id
}

// RoleFromContext devuelve el rol del token, o "" fuera del middleware.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(ctxKeyRole).(string)
	return role
}
