package models

import (
	"time"

	"gorm.io/gorm"
)

// Shipment 出库单（每个订单至多一张，扫描时懒创建，发货确认后不可变）
type Shipment struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	OrderID      uint           `gorm:"uniqueIndex;not null" json:"order_id"`                     // 所属订单，一单一张
	Status       string         `gorm:"size:16;index;not null;default:in_progress" json:"status"` // in_progress / completed
	ShippedBy    *uint          `gorm:"index" json:"shipped_by"`                                  // 确认发货的操作员
	ShipmentDate *time.Time     `json:"shipment_date"`                                            // 发货时间
	Notes        string         `gorm:"size:500" json:"notes"`                                    // 发货备注
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Order   *SalesOrder  `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Records []ScanRecord `gorm:"foreignKey:ShipmentID" json:"records,omitempty"`
}

// TableName 指定表名
func (Shipment) TableName() string {
	return "shipments"
}
