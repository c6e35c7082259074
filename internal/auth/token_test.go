package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenManager_AccessRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, 15*time.Minute)

	token, err := m.GenerateAccessToken("user-1", "maria@example.com", "client")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	claims, err := m.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("ParseAccessToken error: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "maria@example.com" || claims.Role != "client" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenManager_PurposesDoNotCross(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, 15*time.Minute)

	access, err := m.GenerateAccessToken("user-1", "maria@example.com", "client")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	reset, _, err := m.GenerateResetToken("user-1")
	if err != nil {
		t.Fatalf("GenerateResetToken error: %v", err)
	}

	// un reset token no autentica, y un access token no resetea
	if _, err := m.ParseAccessToken(reset); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("reset token must not pass as access, got %v", err)
	}
	if _, err := m.ParseResetToken(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token must not pass as reset, got %v", err)
	}
}

func TestTokenManager_Expiry(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, 15*time.Minute)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	token, err := m.GenerateAccessToken("user-1", "maria@example.com", "client")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	if _, err := m.ParseAccessToken(token); err != nil {
		t.Fatalf("token must be valid before expiry: %v", err)
	}

	m.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := m.ParseAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	m1 := NewTokenManager("secret-one", time.Hour, 15*time.Minute)
	m2 := NewTokenManager("secret-two", time.Hour, 15*time.Minute)

	token, err := m1.GenerateAccessToken("user-1", "maria@example.com", "client")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	if _, err := m2.ParseAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken with wrong secret, got %v", err)
	}
}

func TestTokenManager_GarbageInput(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, 15*time.Minute)

	for _, tok := range []string{"", "   ", "not.a.jwt", "a.b"} {
		if _, err := m.ParseAccessToken(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", tok, err)
		}
	}
}

func TestTokenManager_ResetExpiryMatchesTTL(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, 15*time.Minute)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	_, expiresAt, err := m.GenerateResetToken("user-1")
	if err != nil {
		t.Fatalf("GenerateResetToken error: %v", err)
	}
	if !expiresAt.Equal(base.Add(15 * time.Minute)) {
		t.Fatalf("expected expiry at base+15m, got %v", expiresAt)
	}
}
