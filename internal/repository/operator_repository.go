package repository

import (
	"errors"
	"time"

	"github.com/rollstock-erp/internal/models"

	"gorm.io/gorm"
)

// OperatorRepository 操作员数据访问接口
type OperatorRepository interface {
	GetByID(id uint) (*models.Operator, error)
	GetByUsername(username string) (*models.Operator, error)
	Create(op *models.Operator) error
	UpdateLastLogin(id uint, at time.Time) error
	BumpTokenVersion(id uint) error
	WithTx(tx *gorm.DB) *GormOperatorRepository
}

// GormOperatorRepository GORM 实现
type GormOperatorRepository struct {
	db *gorm.DB
}

// NewOperatorRepository 创建操作员仓库
func NewOperatorRepository(db *gorm.DB) *GormOperatorRepository {
	return &GormOperatorRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOperatorRepository) WithTx(tx *gorm.DB) *GormOperatorRepository {
	if tx == nil {
		return r
	}
	return &GormOperatorRepository{db: tx}
}

// GetByID 根据 ID 获取操作员
func (r *GormOperatorRepository) GetByID(id uint) (*models.Operator, error) {
	var op models.Operator
	if err := r.db.First(&op, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &op, nil
}

// GetByUsername 根据登录名获取操作员
func (r *GormOperatorRepository) GetByUsername(username string) (*models.Operator, error) {
	if username == "" {
		return nil, errors.New("invalid username")
	}
	var op models.Operator
	if err := r.db.Where("username = ?", username).First(&op).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &op, nil
}

// Create 创建操作员
func (r *GormOperatorRepository) Create(op *models.Operator) error {
	return r.db.Create(op).Error
}

// UpdateLastLogin 更新最近登录时间
func (r *GormOperatorRepository) UpdateLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.Operator{}).
		Where("id = ?", id).Update("last_login_at", at).Error
}

// BumpTokenVersion 提升令牌版本，使已签发令牌全部失效
func (r *GormOperatorRepository) BumpTokenVersion(id uint) error {
	return r.db.Model(&models.Operator{}).
		Where("id = ?", id).Update("token_version", gorm.Expr("token_version + 1")).Error
}
