package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vet-clinic-api/internal/auth"
	"vet-clinic-api/internal/platform/mail"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("user not found")

	ErrDuplicateEmail = errors.New("email already registered")

	// Mensaje único para email desconocido y contraseña incorrecta,
	// para no permitir enumerar cuentas.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	ErrWeakPassword      = errors.New("password too short")
	ErrInvalidRole       = errors.New("invalid role")
)

type Service struct {
	repo   Repository
	tokens *auth.TokenManager
	mailer mail.Mailer
	log    *zap.Logger

	baseURL        string
	minPasswordLen int

	now func() time.Time
}

func NewService(repo Repository, tokens *auth.TokenManager, mailer mail.Mailer, log *zap.Logger, baseURL string, minPasswordLen int) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if minPasswordLen <= 0 {
		minPasswordLen = 6
	}
	return &Service{
		repo:           repo,
		tokens:         tokens,
		mailer:         mailer,
		log:            log,
		baseURL:        strings.TrimRight(baseURL, "/"),
		minPasswordLen: minPasswordLen,
		now:            time.Now,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	LastName string
	Phone    string
}

// Register crea la cuenta, hashea la contraseña y emite el access token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, string, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)

	if username == "" || email == "" || in.Password == "" {
		return User{}, "", ErrInvalidInput
	}
	if len(in.Password) < s.minPasswordLen {
		return User{}, "", ErrWeakPassword
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, "", ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return User{}, "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Role:         RoleClient,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.GenerateAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return User{}, "", fmt.Errorf("issue token: %w", err)
	}

	return u, token, nil
}

// Login valida credenciales y emite un access token.
// Falla con el mismo error tanto si el email no existe como si la
// contraseña no coincide.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, "", ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return User{}, "", fmt.Errorf("issue token: %w", err)
	}

	return u, token, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrNotFound
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return u, nil
}

// RequestPasswordReset genera y guarda un reset token si el email existe.
// Para el caller el resultado es siempre el mismo (anti-enumeración);
// el token se devuelve solo para que los tests y el flujo interno lo usen.
// Un fallo del correo no hace fallar la operación: se loguea y sigue.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", nil
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		// Email desconocido: no se crea token ni se envía nada.
		return "", nil
	}

	token, expiresAt, err := s.tokens.GenerateResetToken(u.ID)
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}

	// Guardar token+expiración juntos. Emitir uno nuevo pisa el anterior:
	// solo hay un reset token vigente por usuario.
	u.ResetPasswordToken = &token
	u.ResetPasswordExpires = &expiresAt
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)
	if err := s.mailer.SendPasswordReset(u.Email, u.Username, resetLink); err != nil {
		s.log.Warn("password reset email failed",
			zap.String("user_id", u.ID),
			zap.Error(err),
		)
	}

	return token, nil
}

// ResetPassword consume el token: valida firma, match contra lo guardado
// y expiración; rehashea y limpia ambos campos de reset juntos.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.ParseResetToken(token)
	if err != nil {
		return ErrInvalidResetToken
	}

	u, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return ErrInvalidResetToken
	}

	if u.ResetPasswordToken == nil || u.ResetPasswordExpires == nil {
		return ErrInvalidResetToken
	}
	if *u.ResetPasswordToken != token {
		return ErrInvalidResetToken
	}
	if s.now().After(*u.ResetPasswordExpires) {
		return ErrInvalidResetToken
	}

	if len(newPassword) < s.minPasswordLen {
		return ErrWeakPassword
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u.PasswordHash = hash
	u.ResetPasswordToken = nil
	u.ResetPasswordExpires = nil
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// List es para el panel de administración.
func (s *Service) List(ctx context.Context, page, limit int) ([]User, int, error) {
	return s.repo.List(ctx, page, limit)
}

// UpdateRole cambia el rol de un usuario (solo admin llega acá).
func (s *Service) UpdateRole(ctx context.Context, id string, role Role) (User, error) {
	if !ValidRole(role) {
		return User{}, ErrInvalidRole
	}

	u, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return User{}, ErrNotFound
	}

	u.Role = role
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// SeedAdmin crea la cuenta admin inicial si no existe (config opcional).
func (s *Service) SeedAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Username:     "admin",
		Email:        email,
		PasswordHash: hash,
		Role:         RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.repo.Create(ctx, u)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
