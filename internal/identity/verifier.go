// Package identity verifies ID tokens issued by the external identity
// provider. The provider owns registration and credentials; this package
// only proves that a presented token is genuine and extracts its claims.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/simp-lee/showroom/internal/domain"
)

// Claims is the subset of provider token claims the application consumes.
type Claims struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// Verifier checks a provider-issued ID token and extracts its claims.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Claims, error)
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// JWTVerifier validates HS256-signed ID tokens against a shared secret.
// When issuer is non-empty the iss claim must match; when maxAge is
// positive, tokens must carry exp and their iat→exp lifetime may not
// exceed it.
type JWTVerifier struct {
	secret []byte
	issuer string
	maxAge time.Duration
	parser *jwt.Parser
}

// NewJWTVerifier builds a verifier for the given shared secret.
func NewJWTVerifier(secret, issuer string, maxAge time.Duration) *JWTVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &JWTVerifier{
		secret: []byte(secret),
		issuer: issuer,
		maxAge: maxAge,
		parser: jwt.NewParser(opts...),
	}
}

// Verify implements Verifier. Expired tokens map to TOKEN_EXPIRED; every
// other verification failure maps to INVALID_TOKEN.
func (v *JWTVerifier) Verify(ctx context.Context, idToken string) (*Claims, error) {
	if idToken == "" {
		return nil, domain.Unauthorized("INVALID_TOKEN", "token is empty")
	}

	claims := &tokenClaims{}
	parsed, err := v.parser.ParseWithClaims(idToken, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.NewAppError(domain.CodeUnauthorized, "TOKEN_EXPIRED", "token has expired", err)
		}
		return nil, domain.NewAppError(domain.CodeUnauthorized, "INVALID_TOKEN", "token verification failed", err)
	}
	if !parsed.Valid {
		return nil, domain.Unauthorized("INVALID_TOKEN", "token verification failed")
	}
	if claims.Subject == "" {
		return nil, domain.Unauthorized("INVALID_TOKEN", "token has no subject")
	}

	if v.maxAge > 0 {
		if claims.ExpiresAt == nil {
			return nil, domain.Unauthorized("INVALID_TOKEN", "token has no expiry")
		}
		if claims.IssuedAt != nil && claims.ExpiresAt.Sub(claims.IssuedAt.Time) > v.maxAge {
			return nil, domain.Unauthorized("INVALID_TOKEN", "token lifetime exceeds policy")
		}
	}

	return &Claims{
		UID:     claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}
