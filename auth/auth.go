// Package auth mints and checks access tokens in the shape the hosted auth
// service issues, for local development and tests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAuthenticated is the role carried by signed-in users' tokens.
const RoleAuthenticated = "authenticated"

// Claims mirrors the access token payload.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenParams describes the token to mint.
type TokenParams struct {
	Subject  string
	Email    string
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
	// IssuedAt defaults to now.
	IssuedAt time.Time
}

func CreateToken(p TokenParams) (string, error) {
	if p.Secret == "" {
		return "", errors.New("auth: signing secret not set")
	}
	if p.Subject == "" {
		return "", errors.New("auth: subject is required")
	}
	if p.TTL <= 0 {
		p.TTL = 24 * time.Hour
	}

	now := p.IssuedAt
	if now.IsZero() {
		now = time.Now()
	}
	claims := Claims{
		Email: p.Email,
		Role:  RoleAuthenticated,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Subject,
			Issuer:    p.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.TTL)),
		},
	}
	if p.Audience != "" {
		claims.Audience = jwt.ClaimStrings{p.Audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(p.Secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyToken checks signature, expiry, issuer and audience and returns the claims.
func VerifyToken(tokenString, secret, issuer, audience string) (*Claims, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret not set")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
