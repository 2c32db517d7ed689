package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/goliatone/go-identity-client/core"
)

const testSecret = "shared-identity-secret"

func mintToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestJWTValidatorAcceptsValidToken(t *testing.T) {
	validator, err := NewJWTValidator(testSecret, "")
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	raw := mintToken(t, testSecret, jwt.MapClaims{
		"login": "alice@example.com",
		"name":  "Alice",
		"token": "remote-subject",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	claims, err := validator.Validate(context.Background(), raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Login != "alice@example.com" {
		t.Fatalf("unexpected login %q", claims.Login)
	}
	if claims.Name != "Alice" {
		t.Fatalf("unexpected name %q", claims.Name)
	}
	if claims.Token != "remote-subject" {
		t.Fatalf("unexpected token claim %q", claims.Token)
	}
}

func TestJWTValidatorRejectsExpiredToken(t *testing.T) {
	validator, err := NewJWTValidator(testSecret, "")
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	raw := mintToken(t, testSecret, jwt.MapClaims{
		"login": "alice@example.com",
		"exp":   time.Now().Add(-time.Minute).Unix(),
	})
	_, err = validator.Validate(context.Background(), raw)
	if !core.IsAuthenticationFailed(err) {
		t.Fatalf("expected authentication failure, got %v", err)
	}
}

func TestJWTValidatorRejectsWrongSignature(t *testing.T) {
	validator, err := NewJWTValidator(testSecret, "")
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	raw := mintToken(t, "a-different-secret", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err = validator.Validate(context.Background(), raw)
	if !core.IsAuthenticationFailed(err) {
		t.Fatalf("expected authentication failure, got %v", err)
	}
}

func TestJWTValidatorToleratesFutureIssuedAt(t *testing.T) {
	validator, err := NewJWTValidator(testSecret, "")
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	raw := mintToken(t, testSecret, jwt.MapClaims{
		"iat": time.Now().Add(30 * time.Second).Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if _, err := validator.Validate(context.Background(), raw); err != nil {
		t.Fatalf("future iat must be tolerated, got %v", err)
	}
}

func TestJWTValidatorRejectsMalformedToken(t *testing.T) {
	validator, err := NewJWTValidator(testSecret, "")
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	_, err = validator.Validate(context.Background(), "not-a-jwt")
	if !core.IsAuthenticationFailed(err) {
		t.Fatalf("expected authentication failure, got %v", err)
	}
	_, err = validator.Validate(context.Background(), "   ")
	if !core.IsAuthenticationFailed(err) {
		t.Fatalf("expected authentication failure for blank token, got %v", err)
	}
}

func TestNewJWTValidatorRejectsBadInput(t *testing.T) {
	if _, err := NewJWTValidator("", ""); err == nil {
		t.Fatal("expected an error without a secret")
	}
	if _, err := NewJWTValidator(testSecret, "RS256"); err == nil {
		t.Fatal("expected an error for an asymmetric algorithm")
	}
}
