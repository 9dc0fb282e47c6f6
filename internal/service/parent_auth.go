package service

import (
	"context"
	"fmt"
	"time"

	"github.com/meowbank/meow-bank-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/parentauth")

// ParentAuth guards the parent-only intents (approval, hearts, interest
// configuration) behind a PIN. A correct PIN yields a short-lived HS256
// access token.
type ParentAuth struct {
	pinHash   []byte
	jwtSecret []byte
	accessTTL time.Duration
	logger    *zap.Logger
}

// NewParentAuth creates the parent auth service from a bcrypt PIN hash.
func NewParentAuth(pinHash, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *ParentAuth {
	return &ParentAuth{
		pinHash:   []byte(pinHash),
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		logger:    logger,
	}
}

// HashPin produces a bcrypt hash for a plain PIN. Used at startup when
// only a dev PIN is configured.
func HashPin(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(hash), nil
}

// ParentClaims are the custom claims in parent access tokens.
type ParentClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Login verifies the PIN and issues an access token.
func (a *ParentAuth) Login(ctx context.Context, pin string) (*domain.ParentLoginResponse, error) {
	_, span := authTracer.Start(ctx, "ParentAuth.Login")
	defer span.End()

	if err := bcrypt.CompareHashAndPassword(a.pinHash, []byte(pin)); err != nil {
		a.logger.Warn("parent login rejected")
		return nil, &domain.ErrUnauthorized{Message: "密碼錯誤"}
	}

	now := time.Now()
	claims := ParentClaims{
		Role: "parent",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.accessTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	a.logger.Info("parent logged in")
	return &domain.ParentLoginResponse{
		AccessToken: token,
		ExpiresIn:   int(a.accessTTL.Seconds()),
	}, nil
}

// ValidateAccessToken checks a bearer token; used by the middleware.
func (a *ParentAuth) ValidateAccessToken(tokenString string) (*ParentClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ParentClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "無效或過期的憑證"}
	}

	claims, ok := token.Claims.(*ParentClaims)
	if !ok || !token.Valid || claims.Role != "parent" {
		return nil, &domain.ErrUnauthorized{Message: "無效的憑證"}
	}
	return claims, nil
}
