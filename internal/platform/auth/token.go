package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"phacetnode/internal/platform/config"
)

// Claims identify the calling host service. The runner does not manage
// users; tokens are minted for the workflow engine that embeds it.
type Claims struct {
	Service string   `json:"svc"`
	Scopes  []string `json:"scp,omitempty"`
	jwt.RegisteredClaims
}

type TokenService struct {
	config config.AuthConfig
}

func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{config: cfg}
}

func (s *TokenService) GenerateServiceToken(service string, scopes []string) (string, error) {
	ttl := s.config.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	claims := Claims{
		Service: service,
		Scopes:  scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "phacetnode",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
