package repository

import (
	"errors"

	"github.com/rollstock-erp/internal/models"

	"gorm.io/gorm"
)

// ScanRecordRepository 扫描流水数据访问接口
type ScanRecordRepository interface {
	Create(record *models.ScanRecord) error
	GetByID(id uint) (*models.ScanRecord, error)
	GetByLineAndBarcode(lineItemID uint, barcode string) (*models.ScanRecord, error)
	GetByOrderAndBarcode(orderID uint, barcode string) (*models.ScanRecord, error)
	ListByShipment(shipmentID uint) ([]models.ScanRecord, error)
	ListByLineItem(lineItemID uint) ([]models.ScanRecord, error)
	CountByShipment(shipmentID uint) (int64, error)
	CountByUnit(unitType string, unitID uint) (int64, error)
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormScanRecordRepository
}

// GormScanRecordRepository GORM 实现
type GormScanRecordRepository struct {
	db *gorm.DB
}

// NewScanRecordRepository 创建扫描流水仓库
func NewScanRecordRepository(db *gorm.DB) *GormScanRecordRepository {
	return &GormScanRecordRepository{db: db}
}

// WithTx 绑定事务
func (r *GormScanRecordRepository) WithTx(tx *gorm.DB) *GormScanRecordRepository {
	if tx == nil {
		return r
	}
	return &GormScanRecordRepository{db: tx}
}

// Create 写入扫描流水
func (r *GormScanRecordRepository) Create(record *models.ScanRecord) error {
	return r.db.Create(record).Error
}

// GetByID 根据 ID 获取扫描流水
func (r *GormScanRecordRepository) GetByID(id uint) (*models.ScanRecord, error) {
	var record models.ScanRecord
	if err := r.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetByLineAndBarcode 查询订单行下指定条码的扫描流水（幂等判定依据）
func (r *GormScanRecordRepository) GetByLineAndBarcode(lineItemID uint, barcode string) (*models.ScanRecord, error) {
	if barcode == "" {
		return nil, errors.New("invalid barcode")
	}
	var record models.ScanRecord
	if err := r.db.Where("order_line_item_id = ? AND barcode = ?", lineItemID, barcode).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetByOrderAndBarcode 查询订单范围内指定条码的扫描流水
// 同一条码在同一订单内只允许记录一次，跨订单行也不例外
func (r *GormScanRecordRepository) GetByOrderAndBarcode(orderID uint, barcode string) (*models.ScanRecord, error) {
	if barcode == "" {
		return nil, errors.New("invalid barcode")
	}
	var record models.ScanRecord
	if err := r.db.Where("barcode = ? AND order_line_item_id IN (?)", barcode,
		r.db.Model(&models.OrderLineItem{}).Select("id").Where("order_id = ?", orderID)).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ListByShipment 查询出库单下全部扫描流水
func (r *GormScanRecordRepository) ListByShipment(shipmentID uint) ([]models.ScanRecord, error) {
	var records []models.ScanRecord
	if err := r.db.Where("shipment_id = ?", shipmentID).
		Order("id asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListByLineItem 查询订单行下全部扫描流水
func (r *GormScanRecordRepository) ListByLineItem(lineItemID uint) ([]models.ScanRecord, error) {
	var records []models.ScanRecord
	if err := r.db.Where("order_line_item_id = ?", lineItemID).
		Order("id asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// CountByShipment 统计出库单下扫描流水数量
func (r *GormScanRecordRepository) CountByShipment(shipmentID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.ScanRecord{}).
		Where("shipment_id = ?", shipmentID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByUnit 统计引用某库存单元的扫描流水数量
func (r *GormScanRecordRepository) CountByUnit(unitType string, unitID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.ScanRecord{}).
		Where("unit_type = ? AND unit_id = ?", unitType, unitID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete 删除扫描流水（仅进行中出库单的撤销操作使用）
func (r *GormScanRecordRepository) Delete(id uint) error {
	return r.db.Delete(&models.ScanRecord{}, id).Error
}
