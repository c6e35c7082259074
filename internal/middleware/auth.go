package middleware

import (
	"net/http"
	"strings"

	"vet-clinic-api/internal/auth"
	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/httpx"
)

// RequireAuth corta con 401 si no hay identidad válida.
// Pipeline de extracción, en orden: cookie `token`, luego Authorization Bearer.
// La precedencia de la cookie es contrato, no accidente: si vienen ambos,
// gana la cookie.
// Después de verificar la firma se carga el usuario desde storage: un token
// válido de un usuario borrado no sirve, y el rol se toma fresco de ahí.
func RequireAuth(tokens *auth.TokenManager, usersSvc *users.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				httpx.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			claims, err := tokens.ParseAccessToken(token)
			if err != nil {
				httpx.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			u, err := usersSvc.GetByID(r.Context(), claims.UserID)
			if err != nil {
				httpx.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := auth.WithClaims(r.Context(), auth.Claims{
				UserID: u.ID,
				Email:  u.Email,
				Role:   string(u.Role),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin re-consulta el rol en storage en vez de confiar en el
// que pudiera venir cacheado en el token.
func RequireAdmin(usersSvc *users.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				httpx.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			u, err := usersSvc.GetByID(r.Context(), claims.UserID)
			if err != nil {
				httpx.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if u.Role != users.RoleAdmin {
				httpx.Error(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractToken(r *http.Request) string {
	if c, err := r.Cookie(auth.TokenCookieName); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v
		}
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
