package repository

import (
	"errors"
	"time"

	"github.com/rollstock-erp/internal/models"

	"gorm.io/gorm"
)

// PrimaryUnitRepository 母卷库存数据访问接口
type PrimaryUnitRepository interface {
	Create(unit *models.PrimaryUnit) error
	CreateBatch(units []models.PrimaryUnit) error
	GetByID(id uint) (*models.PrimaryUnit, error)
	GetByBarcode(barcode string) (*models.PrimaryUnit, error)
	List(filter UnitListFilter) ([]models.PrimaryUnit, int64, error)
	BarcodeExists(barcode string) (bool, error)
	Consume(id uint, orderID uint, quantity models.Measure, soldAt time.Time) (int64, error)
	Restore(id uint, length models.Measure, clearSold bool) (int64, error)
	DecrementForCut(id uint, length models.Measure) (int64, error)
	Recredit(id uint, length models.Measure) (int64, error)
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormPrimaryUnitRepository
}

// GormPrimaryUnitRepository GORM 实现
type GormPrimaryUnitRepository struct {
	db *gorm.DB
}

// NewPrimaryUnitRepository 创建母卷仓库
func NewPrimaryUnitRepository(db *gorm.DB) *GormPrimaryUnitRepository {
	return &GormPrimaryUnitRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPrimaryUnitRepository) WithTx(tx *gorm.DB) *GormPrimaryUnitRepository {
	if tx == nil {
		return r
	}
	return &GormPrimaryUnitRepository{db: tx}
}

// Create 创建母卷
func (r *GormPrimaryUnitRepository) Create(unit *models.PrimaryUnit) error {
	return r.db.Create(unit).Error
}

// CreateBatch 批量入库
func (r *GormPrimaryUnitRepository) CreateBatch(units []models.PrimaryUnit) error {
	if len(units) == 0 {
		return nil
	}
	return r.db.Create(&units).Error
}

// GetByID 根据 ID 获取母卷
func (r *GormPrimaryUnitRepository) GetByID(id uint) (*models.PrimaryUnit, error) {
	var unit models.PrimaryUnit
	if err := r.db.First(&unit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &unit, nil
}

// GetByBarcode 根据条码获取母卷
func (r *GormPrimaryUnitRepository) GetByBarcode(barcode string) (*models.PrimaryUnit, error) {
	if barcode == "" {
		return nil, errors.New("invalid barcode")
	}
	var unit models.PrimaryUnit
	if err := r.db.Where("barcode = ?", barcode).First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &unit, nil
}

// List 查询母卷列表
func (r *GormPrimaryUnitRepository) List(filter UnitListFilter) ([]models.PrimaryUnit, int64, error) {
	query := r.db.Model(&models.PrimaryUnit{})
	if filter.MaterialType != "" {
		query = query.Where("material_type = ?", filter.MaterialType)
	}
	if filter.BatchNo != "" {
		query = query.Where("batch_no = ?", filter.BatchNo)
	}
	if filter.WarehouseCode != "" {
		query = query.Where("warehouse_code = ?", filter.WarehouseCode)
	}
	if filter.Search != "" {
		query = query.Where("barcode LIKE ?", "%"+filter.Search+"%")
	}
	if filter.OnlyAvailable {
		query = query.Where("sold = ? AND remaining_length > 0", false)
	}
	if filter.SoldForOrder > 0 {
		query = query.Where("sold_for_order_id = ?", filter.SoldForOrder)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var units []models.PrimaryUnit
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("id asc").Find(&units).Error; err != nil {
		return nil, 0, err
	}
	return units, total, nil
}

// BarcodeExists 条码是否已被母卷占用
func (r *GormPrimaryUnitRepository) BarcodeExists(barcode string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.PrimaryUnit{}).
		Where("barcode = ?", barcode).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Consume 扣减母卷长度并标记售出，条件更新防止超卖与跨订单抢占
// 返回受影响行数，0 表示该卷已被其他订单占用或剩余长度不足
func (r *GormPrimaryUnitRepository) Consume(id uint, orderID uint, quantity models.Measure, soldAt time.Time) (int64, error) {
	result := r.db.Model(&models.PrimaryUnit{}).
		Where("id = ? AND (sold = ? OR sold_for_order_id = ?) AND remaining_length >= ?",
			id, false, orderID, quantity).
		Updates(map[string]interface{}{
			"remaining_length":  gorm.Expr("remaining_length - ?", quantity),
			"sold":              true,
			"sold_for_order_id": orderID,
			// 同一订单追加扣减时保留首次售出时间
			"sold_at":    gorm.Expr("COALESCE(sold_at, ?)", soldAt),
			"updated_at": soldAt,
		})
	return result.RowsAffected, result.Error
}

// Restore 撤销扫描时返还扣减的长度，必要时一并清除售出标记
func (r *GormPrimaryUnitRepository) Restore(id uint, length models.Measure, clearSold bool) (int64, error) {
	updates := map[string]interface{}{
		"remaining_length": gorm.Expr("remaining_length + ?", length),
	}
	if clearSold {
		updates["sold"] = false
		updates["sold_for_order_id"] = nil
		updates["sold_at"] = nil
	}
	result := r.db.Model(&models.PrimaryUnit{}).
		Where("id = ? AND remaining_length + ? <= total_length", id, length).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// DecrementForCut 分切扣减母卷长度，剩余不足时不更新
func (r *GormPrimaryUnitRepository) DecrementForCut(id uint, length models.Measure) (int64, error) {
	result := r.db.Model(&models.PrimaryUnit{}).
		Where("id = ? AND sold = ? AND remaining_length >= ?", id, false, length).
		Update("remaining_length", gorm.Expr("remaining_length - ?", length))
	return result.RowsAffected, result.Error
}

// Recredit 删除子卷时把长度返还给母卷
func (r *GormPrimaryUnitRepository) Recredit(id uint, length models.Measure) (int64, error) {
	result := r.db.Model(&models.PrimaryUnit{}).
		Where("id = ? AND remaining_length + ? <= total_length", id, length).
		Update("remaining_length", gorm.Expr("remaining_length + ?", length))
	return result.RowsAffected, result.Error
}

// Delete 删除母卷
func (r *GormPrimaryUnitRepository) Delete(id uint) error {
	return r.db.Delete(&models.PrimaryUnit{}, id).Error
}
