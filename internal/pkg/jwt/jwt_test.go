package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("secret", time.Minute)

	token, expiresAt, err := svc.GenerateAccessToken("admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expiry %s is not in the future", expiresAt)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "admin" {
		t.Fatalf("expected subject admin, got %q", claims.Subject)
	}
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	token, _, err := NewService("one", time.Minute).GenerateAccessToken("admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewService("two", time.Minute).ValidateAccessToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewService("secret", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.GenerateAccessToken("admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	svc.now = time.Now
	if _, err := svc.ValidateAccessToken(token); err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateRequiresExpiry(t *testing.T) {
	unbounded := gojwt.NewWithClaims(gojwt.SigningMethodHS256, Claims{
		Type: TokenTypeAccess,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject: "admin",
			Issuer:  issuer,
		},
	})
	token, err := unbounded.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewService("secret", time.Minute).ValidateAccessToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for token without exp, got %v", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	if _, err := NewService("secret", time.Minute).ValidateAccessToken("not-a-token"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
