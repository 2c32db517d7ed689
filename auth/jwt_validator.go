package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/goliatone/go-identity-client/core"
)

// JWTValidator verifies caller bearer tokens against the shared identity
// secret before any remote call happens. Expired and malformed tokens
// are rejected locally. Signature verification uses a symmetric key; the
// identity service signs bearer tokens with the same secret it hands to
// registered clients.
type JWTValidator struct {
	secret    []byte
	algorithm string
}

var _ core.BearerValidator = (*JWTValidator)(nil)

func NewJWTValidator(secret string, algorithm string) (*JWTValidator, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, core.NewBadRequest("auth: jwt secret is required")
	}
	algorithm = strings.TrimSpace(algorithm)
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	switch algorithm {
	case jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg():
	default:
		return nil, core.NewBadRequest("auth: unsupported jwt algorithm " + algorithm)
	}
	return &JWTValidator{
		secret:    []byte(secret),
		algorithm: algorithm,
	}, nil
}

// Validate parses and verifies the raw bearer token and extracts the
// identity claims. Upstream issuers have been observed to emit iat a few
// seconds in the future, so issued-at is not validated.
func (v *JWTValidator) Validate(_ context.Context, raw string) (core.BearerClaims, error) {
	if v == nil {
		return core.BearerClaims{}, core.NewBadRequest("auth: jwt validator is not configured")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return core.BearerClaims{}, core.NewAuthenticationFailed("auth: bearer token is required")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{v.algorithm}),
		jwt.WithoutClaimsValidation(),
	)
	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return core.BearerClaims{}, core.NewAuthenticationFailed("auth: bearer token expired")
		}
		return core.BearerClaims{}, core.NewAuthenticationFailed("auth: bearer token is invalid")
	}
	if !token.Valid {
		return core.BearerClaims{}, core.NewAuthenticationFailed("auth: bearer token is invalid")
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		if exp.Before(nowUTC()) {
			return core.BearerClaims{}, core.NewAuthenticationFailed("auth: bearer token expired")
		}
	}

	return core.BearerClaims{
		Login: claimString(claims, "login"),
		Name:  claimString(claims, "name"),
		Token: claimString(claims, "token"),
	}, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	value, _ := claims[key].(string)
	return strings.TrimSpace(value)
}
