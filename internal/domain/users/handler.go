package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"vet-clinic-api/internal/auth"
	"vet-clinic-api/internal/httpx"

	"github.com/go-chi/chi/v5"
)

// CookieOptions controla cómo se emite la cookie de sesión.
// En producción: Secure + SameSite=None (front servido desde otro origen).
// En dev: Lax sin Secure.
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

func RegisterRoutes(r chi.Router, svc *Service, cookies CookieOptions) {
	r.Post("/register", registerHandler(svc, cookies))
	r.Post("/login", loginHandler(svc, cookies))
	r.Get("/logout", logoutHandler(cookies))
	r.Post("/forgot-password", forgotPasswordHandler(svc))
	r.Post("/reset-password", resetPasswordHandler(svc))
}

// RegisterProtectedRoutes requiere auth middleware aplicado por el router.
func RegisterProtectedRoutes(r chi.Router, svc *Service) {
	r.Get("/verify", verifyHandler(svc))
}

// RegisterAdminRoutes requiere auth + guard de admin aplicados por el router.
func RegisterAdminRoutes(r chi.Router, svc *Service) {
	r.Get("/users", listUsersHandler(svc))
	r.Patch("/users/{userID}/role", updateRoleHandler(svc))
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	LastName string `json:"last_name"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// userResponse es el perfil público: nunca incluye hash ni campos de reset.
type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	LastName  string    `json:"last_name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// registerHandler godoc
// @Summary Registrar usuario
// @Description Crea la cuenta, emite el access token y lo deja en la cookie `token`.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Datos de registro"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/register [post]
func registerHandler(svc *Service, cookies CookieOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		u, token, err := svc.Register(r.Context(), RegisterInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
			LastName: req.LastName,
			Phone:    req.Phone,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				httpx.Error(w, http.StatusBadRequest, "username, email and password are required")
			case errors.Is(err, ErrWeakPassword):
				httpx.Error(w, http.StatusBadRequest, "password too short")
			case errors.Is(err, ErrDuplicateEmail):
				httpx.Error(w, http.StatusBadRequest, "email already registered")
			default:
				httpx.Internal(w)
			}
			return
		}

		setAuthCookie(w, token, cookies)
		httpx.OK(w, http.StatusCreated, map[string]any{
			"user":  toUserResponse(u),
			"token": token,
		})
	}
}

// loginHandler godoc
// @Summary Iniciar sesión
// @Description Valida credenciales; la respuesta es idéntica para email desconocido y contraseña incorrecta.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /api/login [post]
func loginHandler(svc *Service, cookies CookieOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		u, token, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				httpx.Error(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			httpx.Internal(w)
			return
		}

		setAuthCookie(w, token, cookies)
		httpx.OK(w, http.StatusOK, map[string]any{
			"user":  toUserResponse(u),
			"token": token,
		})
	}
}

func logoutHandler(cookies CookieOptions) http.HandlerFunc {
	// Solo limpia la cookie; siempre responde ok.
	return func(w http.ResponseWriter, r *http.Request) {
		clearAuthCookie(w, cookies)
		httpx.OK(w, http.StatusOK, map[string]any{"message": "logged out"})
	}
}

func verifyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		u, err := svc.GetByID(r.Context(), claims.UserID)
		if err != nil {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		httpx.OK(w, http.StatusOK, map[string]any{"user": toUserResponse(u)})
	}
}

// forgotPasswordHandler responde siempre lo mismo, exista o no el email.
func forgotPasswordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forgotPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		if _, err := svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
			httpx.Internal(w)
			return
		}

		httpx.OK(w, http.StatusOK, map[string]any{
			"message": "if the email exists, a reset link has been sent",
		})
	}
}

func resetPasswordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		if err := svc.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
			switch {
			case errors.Is(err, ErrInvalidResetToken):
				httpx.Error(w, http.StatusBadRequest, "invalid or expired reset token")
			case errors.Is(err, ErrWeakPassword):
				httpx.Error(w, http.StatusBadRequest, "password too short")
			default:
				httpx.Internal(w)
			}
			return
		}

		httpx.OK(w, http.StatusOK, map[string]any{"message": "password updated"})
	}
}

func listUsersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit := httpx.ParsePagination(r, 20)

		items, total, err := svc.List(r.Context(), page, limit)
		if err != nil {
			httpx.Internal(w)
			return
		}

		out := make([]userResponse, 0, len(items))
		for _, u := range items {
			out = append(out, toUserResponse(u))
		}

		httpx.List(w, out, httpx.NewPagination(page, limit, total))
	}
}

func updateRoleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		u, err := svc.UpdateRole(r.Context(), chi.URLParam(r, "userID"), Role(req.Role))
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidRole):
				httpx.Error(w, http.StatusBadRequest, "invalid role")
			case errors.Is(err, ErrNotFound):
				httpx.Error(w, http.StatusNotFound, "user not found")
			default:
				httpx.Internal(w)
			}
			return
		}

		httpx.OK(w, http.StatusOK, map[string]any{"user": toUserResponse(u)})
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func setAuthCookie(w http.ResponseWriter, token string, opts CookieOptions) {
	maxAge := int(opts.MaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((24 * time.Hour).Seconds())
	}

	cookie := &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	}
	if opts.Secure {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	} else {
		cookie.SameSite = http.SameSiteLaxMode
	}

	http.SetCookie(w, cookie)
}

func clearAuthCookie(w http.ResponseWriter, opts CookieOptions) {
	cookie := &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}
	if opts.Secure {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	} else {
		cookie.SameSite = http.SameSiteLaxMode
	}

	http.SetCookie(w, cookie)
}
