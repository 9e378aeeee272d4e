package models

import (
	"time"

	"gorm.io/gorm"
)

// DerivedUnit 分切子卷（由母卷分切产生的独立库存单元）
type DerivedUnit struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	Barcode        string         `gorm:"size:64;uniqueIndex;not null" json:"barcode"`               // 条码，全局唯一
	ParentUnitID   uint           `gorm:"index;not null" json:"parent_unit_id"`                      // 分切来源母卷
	MaterialType   string         `gorm:"size:64;index;not null" json:"material_type"`               // 纸种（分切时从母卷快照）
	BasisWeight    Measure        `gorm:"type:decimal(12,3);not null;default:0" json:"basis_weight"` // 克重 g/m²（快照）
	Width          Measure        `gorm:"type:decimal(12,3);not null;default:0" json:"width"`            // 分切后幅宽 mm
	CutLength      Measure        `gorm:"type:decimal(14,3);not null;default:0" json:"cut_length"`       // 分切时的原始长度 m
	RemainingLength Measure       `gorm:"type:decimal(14,3);not null;default:0" json:"remaining_length"` // 剩余可用长度 m，与母卷独立
	Sold           bool           `gorm:"index;not null;default:false" json:"sold"`                      // 是否已出库
	SoldForOrderID *uint          `gorm:"index" json:"sold_for_order_id"`                            // 出库订单
	SoldAt         *time.Time     `json:"sold_at"`                                                   // 出库时间
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	ParentUnit *PrimaryUnit `gorm:"foreignKey:ParentUnitID" json:"parent_unit,omitempty"`
}

// TableName 指定表名
func (DerivedUnit) TableName() string {
	return "derived_units"
}

// Available 是否仍可参与出库匹配
func (u *DerivedUnit) Available() bool {
	return !u.Sold && u.RemainingLength.IsPositive()
}
