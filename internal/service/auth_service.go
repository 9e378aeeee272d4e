package service

import (
	"context"
	"errors"
	"time"

	"github.com/rollstock-erp/internal/cache"
	"github.com/rollstock-erp/internal/config"
	"github.com/rollstock-erp/internal/constants"
	"github.com/rollstock-erp/internal/models"
	"github.com/rollstock-erp/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 操作员认证服务
type AuthService struct {
	cfg          *config.Config
	operatorRepo repository.OperatorRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, operatorRepo repository.OperatorRepository) *AuthService {
	return &AuthService{
		cfg:          cfg,
		operatorRepo: operatorRepo,
	}
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// JWTClaims JWT 声明
type JWTClaims struct {
	OperatorID   uint   `json:"operator_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(op *models.Operator) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.JWT.ExpireHours) * time.Hour)

	claims := JWTClaims{
		OperatorID:   op.ID,
		Username:     op.Username,
		TokenVersion: op.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("无效的 token")
}

// Login 操作员登录
func (s *AuthService) Login(username, password string) (*models.Operator, string, time.Time, error) {
	op, err := s.operatorRepo.GetByUsername(username)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if op == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if op.Status != constants.OperatorStatusEnabled {
		return nil, "", time.Time{}, ErrOperatorDisabled
	}

	if err := s.VerifyPassword(op.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(op)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	op.LastLoginAt = &now
	if err := s.operatorRepo.UpdateLastLogin(op.ID, now); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetOperatorAuthState(context.Background(), cache.BuildOperatorAuthState(op))

	return op, token, expiresAt, nil
}

// ChangePassword 修改操作员密码，成功后提升令牌版本使旧令牌失效
func (s *AuthService) ChangePassword(operatorID uint, oldPassword, newPassword string) error {
	op, err := s.operatorRepo.GetByID(operatorID)
	if err != nil {
		return err
	}
	if op == nil {
		return ErrOperatorNotFound
	}
	if err := s.VerifyPassword(op.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	op.PasswordHash = hash
	if err := models.DB.Model(&models.Operator{}).
		Where("id = ?", op.ID).Update("password_hash", hash).Error; err != nil {
		return err
	}
	if err := s.operatorRepo.BumpTokenVersion(op.ID); err != nil {
		return err
	}
	_ = cache.DelOperatorAuthState(context.Background(), op.ID)
	return nil
}

// VerifyToken 校验令牌有效性与令牌版本，优先命中缓存
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*JWTClaims, error) {
	claims, err := s.ParseJWT(tokenString)
	if err != nil {
		return nil, err
	}

	state, found, err := cache.GetOperatorAuthState(ctx, claims.OperatorID)
	if err == nil && found {
		if state.Status != constants.OperatorStatusEnabled {
			return nil, ErrOperatorDisabled
		}
		if state.TokenVersion != claims.TokenVersion {
			return nil, ErrInvalidCredentials
		}
		return claims, nil
	}

	op, err := s.operatorRepo.GetByID(claims.OperatorID)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, ErrOperatorNotFound
	}
	if op.Status != constants.OperatorStatusEnabled {
		return nil, ErrOperatorDisabled
	}
	if op.TokenVersion != claims.TokenVersion {
		return nil, ErrInvalidCredentials
	}
	_ = cache.SetOperatorAuthState(ctx, cache.BuildOperatorAuthState(op))
	return claims, nil
}
