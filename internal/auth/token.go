package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// TokenCookieName es la cookie HTTP-only donde viaja el access token.
// La cookie tiene precedencia sobre el header Authorization.
const TokenCookieName = "token"

// Claims es lo que viaja dentro del access token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	// purpose distingue access de reset; un reset token
	// nunca debe servir para autenticar requests.
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

const (
	purposeAccess = "access"
	purposeReset  = "password_reset"
)

// TokenManager firma y valida tokens HS256.
type TokenManager struct {
	secret    []byte
	accessTTL time.Duration
	resetTTL  time.Duration
	now       func() time.Time
}

func NewTokenManager(secret string, accessTTL, resetTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		resetTTL:  resetTTL,
		now:       time.Now,
	}
}

// GenerateAccessToken emite el token de sesión del usuario.
func (m *TokenManager) GenerateAccessToken(userID, email, role string) (string, error) {
	return m.generate(userID, email, role, purposeAccess, m.accessTTL)
}

// GenerateResetToken emite un token corto para el flujo de reset de contraseña.
// Devuelve también la expiración para guardarla junto al token en el usuario.
func (m *TokenManager) GenerateResetToken(userID string) (string, time.Time, error) {
	expiresAt := m.now().Add(m.resetTTL)
	token, err := m.generate(userID, "", "", purposeReset, m.resetTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (m *TokenManager) generate(userID, email, role, purpose string, ttl time.Duration) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("jwt secret not configured")
	}

	now := m.now()
	claims := Claims{
		UserID:  userID,
		Email:   email,
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseAccessToken valida firma, expiración y propósito.
func (m *TokenManager) ParseAccessToken(tokenString string) (*Claims, error) {
	return m.parse(tokenString, purposeAccess)
}

// ParseResetToken valida un token del flujo de reset.
func (m *TokenManager) ParseResetToken(tokenString string) (*Claims, error) {
	return m.parse(tokenString, purposeReset)
}

func (m *TokenManager) parse(tokenString, purpose string) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
