package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rollstock-erp/internal/config"
	"github.com/rollstock-erp/internal/constants"
	"github.com/rollstock-erp/internal/models"
	"github.com/rollstock-erp/internal/repository"
)

func newAuthTestService(t *testing.T, env *serviceTestEnv) *AuthService {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret-key-for-operator-auth-0001"
	cfg.JWT.ExpireHours = 1
	return NewAuthService(cfg, repository.NewOperatorRepository(env.db))
}

func createTestOperator(t *testing.T, env *serviceTestEnv, svc *AuthService, username, password, status string) *models.Operator {
	t.Helper()
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	op := &models.Operator{Username: username, PasswordHash: hash, Status: status}
	if err := env.db.Create(op).Error; err != nil {
		t.Fatalf("create operator failed: %v", err)
	}
	return op
}

func TestLoginAndVerifyToken(t *testing.T) {
	env := setupServiceTestEnv(t, "auth_login")
	svc := newAuthTestService(t, env)
	createTestOperator(t, env, svc, "scanner01", "secret123", constants.OperatorStatusEnabled)

	op, token, expiresAt, err := svc.Login("scanner01", "secret123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if token == "" || expiresAt.IsZero() {
		t.Fatalf("expected token issued")
	}
	if op.LastLoginAt == nil {
		t.Fatalf("expected last login recorded")
	}

	claims, err := svc.VerifyToken(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyToken error: %v", err)
	}
	if claims.OperatorID != op.ID || claims.Username != "scanner01" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsBadCredentialsAndDisabled(t *testing.T) {
	env := setupServiceTestEnv(t, "auth_reject")
	svc := newAuthTestService(t, env)
	createTestOperator(t, env, svc, "scanner02", "secret123", constants.OperatorStatusEnabled)
	createTestOperator(t, env, svc, "scanner03", "secret123", constants.OperatorStatusDisabled)

	if _, _, _, err := svc.Login("scanner02", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
	if _, _, _, err := svc.Login("nobody", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got: %v", err)
	}
	if _, _, _, err := svc.Login("scanner03", "secret123"); !errors.Is(err, ErrOperatorDisabled) {
		t.Fatalf("expected ErrOperatorDisabled, got: %v", err)
	}
}

func TestChangePasswordInvalidatesOldTokens(t *testing.T) {
	env := setupServiceTestEnv(t, "auth_change")
	svc := newAuthTestService(t, env)
	op := createTestOperator(t, env, svc, "scanner04", "secret123", constants.OperatorStatusEnabled)

	_, token, _, err := svc.Login("scanner04", "secret123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	if err := svc.ChangePassword(op.ID, "wrong", "newpass456"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong old password, got: %v", err)
	}
	if err := svc.ChangePassword(op.ID, "secret123", "newpass456"); err != nil {
		t.Fatalf("ChangePassword error: %v", err)
	}

	// 旧令牌携带旧版本号，修改密码后立即失效
	if _, err := svc.VerifyToken(context.Background(), token); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old token rejected, got: %v", err)
	}
	if _, _, _, err := svc.Login("scanner04", "newpass456"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}
