package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer 客户
type Customer struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Code      string         `gorm:"size:32;uniqueIndex;not null" json:"code"` // 客户编码
	Name      string         `gorm:"size:128;not null" json:"name"`            // 客户名称
	Contact   string         `gorm:"size:64" json:"contact"`                   // 联系人
	Phone     string         `gorm:"size:32" json:"phone"`                     // 联系电话
	Address   string         `gorm:"size:255" json:"address"`                  // 收货地址
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}
