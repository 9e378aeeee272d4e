package models

import (
	"time"

	"gorm.io/gorm"
)

// SalesOrder 销售订单
type SalesOrder struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	OrderNo    string         `gorm:"size:64;uniqueIndex;not null" json:"order_no"`       // 订单号
	CustomerID uint           `gorm:"index;not null" json:"customer_id"`                  // 所属客户
	Status     string         `gorm:"size:16;index;not null;default:open" json:"status"`  // open / shipped / canceled
	Notes      string         `gorm:"size:500" json:"notes"`                              // 备注
	ShippedAt  *time.Time     `json:"shipped_at"`                                         // 整单发货时间
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Customer  *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	LineItems []OrderLineItem `gorm:"foreignKey:OrderID" json:"line_items,omitempty"`
	Shipment  *Shipment       `gorm:"foreignKey:OrderID" json:"shipment,omitempty"`
}

// TableName 指定表名
func (SalesOrder) TableName() string {
	return "sales_orders"
}
