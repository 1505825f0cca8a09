package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"job_marketplace/internal/config"
	"job_marketplace/internal/domain"
	apperrors "job_marketplace/pkg/errors"
	"job_marketplace/pkg/logger"
)

// Identity - подтвержденная личность вызывающего. Выпуск токенов -
// забота внешнего сервиса аутентификации, здесь только проверка.
type Identity struct {
	AccountID uuid.UUID
	Role      domain.Role
}

type AuthService interface {
	ValidateToken(ctx context.Context, token string) (*Identity, error)
}

type authService struct {
	cfg config.JWTConfig
	log logger.Logger
}

func NewAuthService(cfg config.JWTConfig, log logger.Logger) AuthService {
	return &authService{cfg: cfg, log: log}
}

func (s *authService) ValidateToken(_ context.Context, tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.AccessSecret), nil
	}, jwt.WithIssuer(s.cfg.Issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	accountID, err := uuid.Parse(sub)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	roleClaim, _ := claims["role"].(string)
	role := domain.Role(roleClaim)
	switch role {
	case domain.RoleEmployer, domain.RoleCandidate, domain.RoleRecruiter:
	default:
		return nil, apperrors.ErrInvalidToken
	}

	return &Identity{AccountID: accountID, Role: role}, nil
}
