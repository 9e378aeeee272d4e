package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderLineItem 订单行（一种规格 × 需求数量）
// 规格字段为空或为 nil 表示该维度不限，匹配时视为通配
type OrderLineItem struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	OrderID          uint           `gorm:"index;not null" json:"order_id"`                 // 所属订单
	Position         int            `gorm:"not null;default:0" json:"position"`             // 行序号，决定同时命中多行时的归属
	MaterialType     string         `gorm:"size:64" json:"material_type"`                   // 纸种要求，空串不限
	BasisWeight      *Measure       `gorm:"type:decimal(12,3)" json:"basis_weight"`         // 克重要求 g/m²，nil 不限
	Width            *Measure       `gorm:"type:decimal(12,3)" json:"width"`                // 幅宽要求 mm，nil 不限
	RequiredQuantity int            `gorm:"not null;default:0" json:"required_quantity"`    // 需求卷数
	ScannedCount     int            `gorm:"not null;default:0" json:"scanned_count"`        // 已扫描卷数
	UnitLength       *Measure       `gorm:"type:decimal(14,3)" json:"unit_length"`          // 整卷消耗时的单卷扣减长度 m，nil 表示扣完剩余
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (OrderLineItem) TableName() string {
	return "order_line_items"
}

// Full 需求数量是否已扫满
func (li *OrderLineItem) Full() bool {
	return li.ScannedCount >= li.RequiredQuantity
}
