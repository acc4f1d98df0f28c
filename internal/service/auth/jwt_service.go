// Package auth validates the bearer tokens issued by the platform's identity
// service. Issuance lives outside this service; GenerateToken exists for
// tests and local tooling.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/config"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/clock"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenType is the "type" claim carried by bearer tokens.
const AccessTokenType = "access"

// TokenValidator validates a bearer token and extracts its claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the validated contents of an access token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// TokenType indicates the purpose of the token.
	TokenType string `json:"type,omitempty"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

// jwtCustomClaims defines the structure of JWT claims we use
type jwtCustomClaims struct {
	UserID    uuid.UUID `json:"uid"`
	TokenType string    `json:"type"`
	jwt.RegisteredClaims
}

// JWTService validates HMAC-SHA256 signed tokens.
type JWTService struct {
	signingKey []byte
	clock      clock.Clock
	clockSkew  time.Duration
}

var _ TokenValidator = (*JWTService)(nil)

// NewJWTService creates a JWTService from the auth configuration.
func NewJWTService(cfg config.AuthConfig, clk clock.Clock) (*JWTService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &JWTService{
		signingKey: []byte(cfg.JWTSecret),
		clock:      clk,
		clockSkew:  time.Duration(cfg.ClockSkewSeconds) * time.Second,
	}, nil
}

// GenerateToken creates a signed access token for userID valid for lifetime.
func (s *JWTService) GenerateToken(
	ctx context.Context,
	userID uuid.UUID,
	lifetime time.Duration,
) (string, error) {
	now := s.clock.Now()

	claims := jwtCustomClaims{
		UserID:    userID,
		TokenType: AccessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign JWT access token",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return "", fmt.Errorf("failed to sign access token with HMAC-SHA256: %w", err)
	}
	return signed, nil
}

// ValidateToken validates an access token and returns its claims.
func (s *JWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	now := s.clock.Now()
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token validation failed: token expired")
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("token validation failed: token not yet valid")
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("token validation failed",
				slog.String("error", err.Error()),
				slog.String("error_type", fmt.Sprintf("%T", err)))
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		log.Debug("token validation failed: invalid claims")
		return nil, ErrInvalidToken
	}
	if claims.TokenType != AccessTokenType {
		log.Debug("token validation failed: wrong token type",
			slog.String("actual", claims.TokenType))
		return nil, ErrWrongTokenType
	}
	if claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	out := &Claims{
		UserID:    claims.UserID,
		TokenType: claims.TokenType,
		Subject:   claims.Subject,
		ID:        claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
