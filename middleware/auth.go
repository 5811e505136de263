package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/andrewpaige1/mindcanvas-api/config"
	"github.com/andrewpaige1/mindcanvas-api/utils"
	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"go.uber.org/zap"
)

// CustomClaims are the extra claims carried by the auth service's access tokens.
type CustomClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Validate rejects anonymous-key tokens, which carry no user.
func (c CustomClaims) Validate(ctx context.Context) error {
	if c.Role == "anon" {
		return errors.New("anonymous tokens cannot open a canvas")
	}
	return nil
}

// EnsureValidToken rejects requests without a valid bearer token signed with
// the project's JWT secret.
func EnsureValidToken(cfg *config.Config, logger *zap.Logger) (func(next http.Handler) http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	secret := []byte(cfg.JWTSecret)
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return secret, nil
	}

	jwtValidator, err := validator.New(
		keyFunc,
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Debug("rejected request token", zap.String("path", r.URL.Path), zap.Error(err))
		utils.WriteError(w, http.StatusUnauthorized, "Failed to validate JWT.")
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(next http.Handler) http.Handler {
		return middleware.CheckJWT(next)
	}, nil
}
