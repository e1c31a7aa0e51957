package service

import (
	"errors"
	"fmt"
	"time"

	"gw-transaction-batch/internal/custom_err"
	"gw-transaction-batch/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleOperator = "operator"
	tokenIssuer  = "gw-transaction-batch"
)

type Auth interface {
	ValidateToken(tokenString string) (*models.OperatorClaims, error)
}

// AuthService выпускает и проверяет токены операторов, которым разрешен ручной запуск
type AuthService struct {
	jwtSecret     []byte
	jwtExpiration time.Duration
	now           func() time.Time
}

func NewAuthService(jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		jwtSecret:     []byte(jwtSecret),
		jwtExpiration: jwtExpiration,
		now:           time.Now,
	}
}

func (s *AuthService) GenerateToken(subject string) (string, error) {
	const op = "service.GenerateToken"

	if subject == "" {
		return "", fmt.Errorf("%s: subject is required", op)
	}

	now := s.now()
	claims := models.OperatorClaims{
		Role: RoleOperator,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*models.OperatorClaims, error) {
	claims := &models.OperatorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, custom_err.ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, custom_err.ErrTokenNotActive
		}
		return nil, custom_err.ErrInvalidToken
	}

	if !token.Valid {
		return nil, custom_err.ErrInvalidToken
	}

	if claims.Subject == "" || claims.Role != RoleOperator {
		return nil, custom_err.ErrInvalidToken
	}

	return claims, nil
}
