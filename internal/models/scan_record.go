package models

import (
	"time"
)

// ScanRecord 扫描流水（一次条码扫描的不可变凭证）
// (order_line_item_id, barcode) 唯一索引保证同一行对同一条码至多记录一次；
// barcode 为 NULL 的记录表示无条码的计数补录，不参与唯一约束
type ScanRecord struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	ShipmentID      uint      `gorm:"index;not null" json:"shipment_id"`                            // 所属出库单
	OrderLineItemID uint      `gorm:"uniqueIndex:idx_scan_line_barcode;not null" json:"order_line_item_id"` // 归属订单行
	Barcode         *string   `gorm:"size:64;uniqueIndex:idx_scan_line_barcode" json:"barcode"`     // 扫描条码，计数补录时为 NULL
	UnitType        string    `gorm:"size:16;not null" json:"unit_type"`                            // primary / derived / none
	UnitID          *uint     `gorm:"index" json:"unit_id"`                                         // 关联库存单元
	ConsumedLength  Measure   `gorm:"type:decimal(14,3);not null;default:0" json:"consumed_length"` // 本次扣减长度 m
	OperatorID      *uint     `gorm:"index" json:"operator_id"`                                     // 扫描操作员
	ScannedAt       time.Time `gorm:"index;not null" json:"scanned_at"`                             // 扫描时间
	CreatedAt       time.Time `json:"created_at"`
}

// TableName 指定表名
func (ScanRecord) TableName() string {
	return "scan_records"
}
