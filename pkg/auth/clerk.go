package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Config holds the Clerk instance settings.
type Config struct {
	// Issuer is the Clerk frontend API origin, e.g. https://example.clerk.accounts.dev.
	Issuer string `env:"CLERK_ISSUER,required"`
}

// TokenValidator resolves a user ID from a bearer token.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (userID string, err error)
}

// ClerkValidator validates Clerk session JWTs against the instance JWKS.
type ClerkValidator struct {
	issuer string
	jwks   keyfunc.Keyfunc
}

// NewClerkValidator fetches the JWKS from the Clerk issuer and keeps it
// refreshed in the background.
func NewClerkValidator(cfg Config) (*ClerkValidator, error) {
	if cfg.Issuer == "" {
		return nil, ErrMissingIssuer
	}

	jwksURL := cfg.Issuer + "/.well-known/jwks.json"
	jwks, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("fetch JWKS from %s: %w", jwksURL, err)
	}

	return &ClerkValidator{issuer: cfg.Issuer, jwks: jwks}, nil
}

// ValidateToken parses a Clerk JWT and returns the subject user ID.
// Any parse or claim failure collapses into ErrUnauthorized; callers never
// learn why a token was rejected.
func (v *ClerkValidator) ValidateToken(ctx context.Context, tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, v.jwks.KeyfuncCtx(ctx),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", errors.Join(ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrUnauthorized
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrUnauthorized
	}

	return sub, nil
}
