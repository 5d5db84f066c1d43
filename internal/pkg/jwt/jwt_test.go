package jwt

import (
	"errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret", 15*time.Minute)
	userID := uuid.New()

	token, expiresAt, err := svc.GenerateAccessToken(userID, "ann@example.com")
	if err != nil {
		t.Fatalf("expected token, got %v", err)
	}
	if d := time.Until(expiresAt) - 15*time.Minute; d > 5*time.Second || d < -5*time.Second {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if claims.UserID != userID || claims.Email != "ann@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestExpiredToken(t *testing.T) {
	svc := NewService("test-secret", time.Minute)
	token, _, err := svc.GenerateAccessToken(uuid.New(), "ann@example.com")
	if err != nil {
		t.Fatalf("expected token, got %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := svc.ValidateAccessToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestWrongSecretAndWrongType(t *testing.T) {
	issuer := NewService("secret-a", time.Minute)
	token, _, err := issuer.GenerateAccessToken(uuid.New(), "ann@example.com")
	if err != nil {
		t.Fatalf("expected token, got %v", err)
	}

	if _, err := NewService("secret-b", time.Minute).ValidateAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	refresh := gojwt.NewWithClaims(gojwt.SigningMethodHS256, Claims{
		UserID: uuid.New(),
		Type:   "refresh",
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	signed, err := refresh.SignedString([]byte("secret-a"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := issuer.ValidateAccessToken(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for refresh token, got %v", err)
	}
}
