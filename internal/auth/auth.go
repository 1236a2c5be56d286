// Package auth issues and validates the JWT access tokens and opaque
// refresh tokens used by the HTTP layer, and hashes credentials.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ukydev/forklift-safety/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user is inactive")
)

// Service signs and verifies tokens with a shared HMAC secret.
type Service struct {
	jwtSecret []byte
	tokenExp  time.Duration
}

// NewService reads JWT_SECRET and JWT_EXPIRY from the environment.
// A missing expiry falls back to 24h.
func NewService() (*Service, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default-secret-key-change-in-production"
	}

	exp := 24 * time.Hour
	if v := os.Getenv("JWT_EXPIRY"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			exp = parsed
		}
	}

	return &Service{jwtSecret: []byte(secret), tokenExp: exp}, nil
}

// HashPassword derives a bcrypt hash for storage.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func (s *Service) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken signs an access token carrying the user's identity,
// business and role.
func (s *Service) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":     user.ID.Hex(),
		"business_id": user.BusinessID,
		"username":    user.Username,
		"role":        string(user.Role),
		"exp":         now.Add(s.tokenExp).Unix(),
		"iat":         now.Unix(),
	})
	return token.SignedString(s.jwtSecret)
}

// GenerateRefreshToken returns 32 bytes of randomness, URL-safe encoded.
func (s *Service) GenerateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// ValidateToken verifies the signature and expiry of an access token,
// with or without its "Bearer " prefix, and returns the parsed claims.
// Tokens missing any identity claim are rejected.
func (s *Service) ValidateToken(tokenString string) (*models.Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	raw, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, okID := raw["user_id"].(string)
	businessID, okBiz := raw["business_id"].(string)
	username, okName := raw["username"].(string)
	role, okRole := raw["role"].(string)
	exp, okExp := raw["exp"].(float64)
	if !okID || !okBiz || !okName || !okRole || !okExp {
		return nil, ErrInvalidToken
	}

	return &models.Claims{
		UserID:     userID,
		BusinessID: businessID,
		Username:   username,
		Role:       models.Role(role),
		Exp:        int64(exp),
	}, nil
}

// ExtractTokenFromHeader pulls the bare token out of an
// "Authorization: Bearer <token>" header.
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}

// ValidatePassword enforces the minimum password length.
func (s *Service) ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	return nil
}

// ValidateEmail does a cheap shape check on an email address.
func (s *Service) ValidateEmail(email string) error {
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidateUsername bounds username length.
func (s *Service) ValidateUsername(username string) error {
	if len(username) < 3 {
		return errors.New("username must be at least 3 characters long")
	}
	if len(username) > 50 {
		return errors.New("username must be less than 50 characters")
	}
	return nil
}
