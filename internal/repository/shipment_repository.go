package repository

import (
	"errors"
	"time"

	"github.com/rollstock-erp/internal/constants"
	"github.com/rollstock-erp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShipmentRepository 出库单数据访问接口
type ShipmentRepository interface {
	EnsureInProgress(orderID uint) (*models.Shipment, error)
	GetByID(id uint) (*models.Shipment, error)
	GetByOrderID(orderID uint) (*models.Shipment, error)
	List(filter ShipmentListFilter) ([]models.Shipment, int64, error)
	Promote(orderID uint, shippedBy uint, shipmentDate time.Time, notes string) (int64, error)
	WithTx(tx *gorm.DB) *GormShipmentRepository
}

// GormShipmentRepository GORM 实现
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewShipmentRepository 创建出库单仓库
func NewShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormShipmentRepository) WithTx(tx *gorm.DB) *GormShipmentRepository {
	if tx == nil {
		return r
	}
	return &GormShipmentRepository{db: tx}
}

// EnsureInProgress 确保订单存在进行中的出库单，不存在则创建
// order_id 唯一索引 + DoNothing 保证并发下只有一条，冲突后回读取胜者
func (r *GormShipmentRepository) EnsureInProgress(orderID uint) (*models.Shipment, error) {
	shipment := models.Shipment{
		OrderID: orderID,
		Status:  constants.ShipmentStatusInProgress,
	}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoNothing: true,
	}).Create(&shipment).Error; err != nil {
		return nil, err
	}
	return r.GetByOrderID(orderID)
}

// GetByID 根据 ID 获取出库单及扫描流水
func (r *GormShipmentRepository) GetByID(id uint) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.
		Preload("Records", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		First(&shipment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// GetByOrderID 根据订单获取出库单
func (r *GormShipmentRepository) GetByOrderID(orderID uint) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.Where("order_id = ?", orderID).First(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// List 查询出库单列表
func (r *GormShipmentRepository) List(filter ShipmentListFilter) ([]models.Shipment, int64, error) {
	query := r.db.Model(&models.Shipment{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ShippedBy > 0 {
		query = query.Where("shipped_by = ?", filter.ShippedBy)
	}
	if filter.ShippedFrom != nil {
		query = query.Where("shipment_date >= ?", *filter.ShippedFrom)
	}
	if filter.ShippedTo != nil {
		query = query.Where("shipment_date <= ?", *filter.ShippedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var shipments []models.Shipment
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Preload("Order").
		Order("id desc").Find(&shipments).Error; err != nil {
		return nil, 0, err
	}
	return shipments, total, nil
}

// Promote 把进行中的出库单提升为已完成，条件更新保证只成功一次
func (r *GormShipmentRepository) Promote(orderID uint, shippedBy uint, shipmentDate time.Time, notes string) (int64, error) {
	updates := map[string]interface{}{
		"status":        constants.ShipmentStatusCompleted,
		"shipped_by":    shippedBy,
		"shipment_date": shipmentDate,
		"updated_at":    shipmentDate,
	}
	if notes != "" {
		updates["notes"] = notes
	}
	result := r.db.Model(&models.Shipment{}).
		Where("order_id = ? AND status = ?", orderID, constants.ShipmentStatusInProgress).
		Updates(updates)
	return result.RowsAffected, result.Error
}
