package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"job_marketplace/internal/config"
	"job_marketplace/internal/domain"
	apperrors "job_marketplace/pkg/errors"
	"job_marketplace/pkg/logger"
)

const testSecret = "test-access-secret"

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{AccessSecret: testSecret, Issuer: "job-marketplace"}
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(accountID uuid.UUID, role domain.Role) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  accountID.String(),
		"role": string(role),
		"iss":  "job-marketplace",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func TestValidateToken(t *testing.T) {
	svc := NewAuthService(testJWTConfig(), logger.NewNop())
	accountID := uuid.New()

	identity, err := svc.ValidateToken(context.Background(), signToken(t, testSecret, validClaims(accountID, domain.RoleEmployer)))
	require.NoError(t, err)
	require.Equal(t, accountID, identity.AccountID)
	require.Equal(t, domain.RoleEmployer, identity.Role)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewAuthService(testJWTConfig(), logger.NewNop())

	claims := validClaims(uuid.New(), domain.RoleCandidate)
	claims["exp"] = time.Now().Add(-time.Hour).Unix()

	_, err := svc.ValidateToken(context.Background(), signToken(t, testSecret, claims))
	require.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := NewAuthService(testJWTConfig(), logger.NewNop())

	_, err := svc.ValidateToken(context.Background(), signToken(t, "other-secret", validClaims(uuid.New(), domain.RoleCandidate)))
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	svc := NewAuthService(testJWTConfig(), logger.NewNop())

	claims := validClaims(uuid.New(), domain.RoleCandidate)
	claims["iss"] = "someone-else"

	_, err := svc.ValidateToken(context.Background(), signToken(t, testSecret, claims))
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestValidateToken_BadRole(t *testing.T) {
	svc := NewAuthService(testJWTConfig(), logger.NewNop())

	claims := validClaims(uuid.New(), domain.Role("admin"))
	_, err := svc.ValidateToken(context.Background(), signToken(t, testSecret, claims))
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestValidateToken_BadSubject(t *testing.T) {
	svc := NewAuthService(testJWTConfig(), logger.NewNop())

	claims := validClaims(uuid.New(), domain.RoleCandidate)
	claims["sub"] = "not-a-uuid"

	_, err := svc.ValidateToken(context.Background(), signToken(t, testSecret, claims))
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewAuthService(testJWTConfig(), logger.NewNop())

	_, err := svc.ValidateToken(context.Background(), "not.a.token")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
