// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/hearth/internal/config"
)

// Roles carried in access tokens.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Token audiences. A state token is never accepted as an access token and vice versa.
const (
	audienceAccess       = "hearth-api"
	audienceSpotifyState = "hearth-spotify-link"
)

// StateTokenTTL bounds how long a Spotify authorization round trip may take.
const StateTokenTTL = 10 * time.Minute

// ErrInvalidState is returned when an OAuth state parameter fails validation.
var ErrInvalidState = errors.New("invalid oauth state")

// Claims represents JWT claims
type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims grant the admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// JWTManager handles JWT token creation and validation
type JWTManager struct {
	secret        []byte
	timeout       time.Duration
	adminUsername string
	now           func() time.Time
}

// NewJWTManager creates a new JWT token manager with the configured secret and timeout.
//
// Tokens are signed with HMAC-SHA256. The account named by cfg.AdminUsername is
// issued the admin role; every other account is a plain user.
//
// Example:
//
//	jwtManager, err := auth.NewJWTManager(&cfg.Security)
//	if err != nil {
//	    log.Fatal("Failed to initialize JWT manager:", err)
//	}
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}
	timeout := cfg.SessionTimeout
	if timeout <= 0 {
		timeout = 24 * time.Hour
	}

	return &JWTManager{
		secret:        []byte(cfg.JWTSecret),
		timeout:       timeout,
		adminUsername: cfg.AdminUsername,
		now:           time.Now,
	}, nil
}

// RoleFor returns the role a user with the given username receives.
func (m *JWTManager) RoleFor(username string) string {
	if m.adminUsername != "" && username == m.adminUsername {
		return RoleAdmin
	}
	return RoleUser
}

// GenerateToken creates a signed access token for an authenticated user.
// The token is valid for the configured session timeout.
func (m *JWTManager) GenerateToken(userID, username, role string) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{audienceAccess},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.timeout)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	return m.sign(claims)
}

// ValidateToken validates an access token and extracts the user claims.
// Tokens signed with anything other than HMAC are rejected.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := m.parse(tokenString, claims, audienceAccess); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("invalid token claims: missing user id")
	}
	return claims, nil
}

// GenerateStateToken creates the OAuth state parameter for a Spotify
// authorization round trip started by userID.
func (m *JWTManager) GenerateStateToken(userID string) (string, error) {
	now := m.now()
	claims := &jwt.RegisteredClaims{
		Subject:   userID,
		Audience:  jwt.ClaimStrings{audienceSpotifyState},
		ExpiresAt: jwt.NewNumericDate(now.Add(StateTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	return m.sign(claims)
}

// ValidateStateToken checks an OAuth state parameter and returns the user it was issued to.
func (m *JWTManager) ValidateStateToken(state string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if err := m.parse(state, claims, audienceSpotifyState); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidState
	}
	return claims.Subject, nil
}

func (m *JWTManager) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signedToken, nil
}

func (m *JWTManager) parse(tokenString string, claims jwt.Claims, audience string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithAudience(audience), jwt.WithTimeFunc(m.now))
	if err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("invalid token claims")
	}
	return nil
}
