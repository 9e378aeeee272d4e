package models

import (
	"time"

	"gorm.io/gorm"
)

// PrimaryUnit 原纸大卷（入库的完整母卷，可分切出子卷）
type PrimaryUnit struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Barcode         string         `gorm:"size:64;uniqueIndex;not null" json:"barcode"`                    // 条码，全局唯一
	MaterialType    string         `gorm:"size:64;index;not null" json:"material_type"`                    // 纸种
	BasisWeight     Measure        `gorm:"type:decimal(12,3);not null;default:0" json:"basis_weight"`      // 克重 g/m²
	Width           Measure        `gorm:"type:decimal(12,3);not null;default:0" json:"width"`             // 幅宽 mm
	TotalLength     Measure        `gorm:"type:decimal(14,3);not null;default:0" json:"total_length"`      // 入库总长度 m
	RemainingLength Measure        `gorm:"type:decimal(14,3);not null;default:0" json:"remaining_length"`  // 剩余可用长度 m
	BatchNo         string         `gorm:"size:64;index" json:"batch_no"`                                  // 入库批次号
	WarehouseCode   string         `gorm:"size:32;index" json:"warehouse_code"`                            // 所在仓位
	Sold            bool           `gorm:"index;not null;default:false" json:"sold"`                       // 是否已被整卷消耗
	SoldForOrderID  *uint          `gorm:"index" json:"sold_for_order_id"`                                 // 消耗该卷的订单
	SoldAt          *time.Time     `json:"sold_at"`                                                        // 消耗时间
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	DerivedUnits []DerivedUnit `gorm:"foreignKey:ParentUnitID" json:"derived_units,omitempty"`
}

// TableName 指定表名
func (PrimaryUnit) TableName() string {
	return "primary_units"
}

// Available 是否仍可参与出库匹配
func (u *PrimaryUnit) Available() bool {
	return !u.Sold && u.RemainingLength.IsPositive()
}
