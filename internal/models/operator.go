package models

import (
	"time"

	"gorm.io/gorm"
)

// Operator 仓库操作员（扫描与发货确认的登录主体）
type Operator struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"size:64;uniqueIndex;not null" json:"username"`        // 登录名
	PasswordHash string         `gorm:"size:255;not null" json:"-"`                          // bcrypt 密码哈希
	DisplayName  string         `gorm:"size:64" json:"display_name"`                         // 显示名
	Status       string         `gorm:"size:16;index;not null;default:enabled" json:"status"` // enabled / disabled
	TokenVersion uint64         `gorm:"not null;default:0" json:"-"`                         // 令牌版本，提升后旧令牌全部失效
	LastLoginAt  *time.Time     `json:"last_login_at"`                                       // 最近登录时间
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Operator) TableName() string {
	return "operators"
}
