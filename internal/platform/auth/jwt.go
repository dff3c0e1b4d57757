package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"visitr/internal/platform/config"
)

const issuer = "visitr"

type Claims struct {
	OrganizationID string `json:"organizationId"`
	jwt.RegisteredClaims
}

type TokenService struct {
	config config.JWTConfig
	now    func() time.Time
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 7 * 24 * time.Hour
	}
	return &TokenService{config: cfg, now: time.Now}
}

func (s *TokenService) GenerateToken(orgID string) (string, error) {
	now := s.now()
	claims := Claims{
		OrganizationID: orgID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   orgID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.OrganizationID != "" {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// ExpiresIn renders the token lifetime the way clients expect it, e.g. "7d"
// or "12h".
func (s *TokenService) ExpiresIn() string {
	ttl := s.config.AccessTokenTTL
	switch {
	case ttl%(24*time.Hour) == 0:
		return strconv.Itoa(int(ttl/(24*time.Hour))) + "d"
	case ttl%time.Hour == 0:
		return strconv.Itoa(int(ttl/time.Hour)) + "h"
	default:
		return ttl.String()
	}
}
