package repository

import (
	"errors"
	"time"

	"github.com/rollstock-erp/internal/models"

	"gorm.io/gorm"
)

// DerivedUnitRepository 分切子卷数据访问接口
type DerivedUnitRepository interface {
	Create(unit *models.DerivedUnit) error
	GetByID(id uint) (*models.DerivedUnit, error)
	GetByBarcode(barcode string) (*models.DerivedUnit, error)
	List(filter UnitListFilter) ([]models.DerivedUnit, int64, error)
	ListByParent(parentID uint) ([]models.DerivedUnit, error)
	CountByParent(parentID uint) (int64, error)
	BarcodeExists(barcode string) (bool, error)
	Consume(id uint, orderID uint, quantity models.Measure, soldAt time.Time) (int64, error)
	Restore(id uint, length models.Measure, clearSold bool) (int64, error)
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormDerivedUnitRepository
}

// GormDerivedUnitRepository GORM 实现
type GormDerivedUnitRepository struct {
	db *gorm.DB
}

// NewDerivedUnitRepository 创建子卷仓库
func NewDerivedUnitRepository(db *gorm.DB) *GormDerivedUnitRepository {
	return &GormDerivedUnitRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDerivedUnitRepository) WithTx(tx *gorm.DB) *GormDerivedUnitRepository {
	if tx == nil {
		return r
	}
	return &GormDerivedUnitRepository{db: tx}
}

// Create 创建子卷
func (r *GormDerivedUnitRepository) Create(unit *models.DerivedUnit) error {
	return r.db.Create(unit).Error
}

// GetByID 根据 ID 获取子卷
func (r *GormDerivedUnitRepository) GetByID(id uint) (*models.DerivedUnit, error) {
	var unit models.DerivedUnit
	if err := r.db.First(&unit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &unit, nil
}

// GetByBarcode 根据条码获取子卷
func (r *GormDerivedUnitRepository) GetByBarcode(barcode string) (*models.DerivedUnit, error) {
	if barcode == "" {
		return nil, errors.New("invalid barcode")
	}
	var unit models.DerivedUnit
	if err := r.db.Where("barcode = ?", barcode).First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &unit, nil
}

// List 查询子卷列表
func (r *GormDerivedUnitRepository) List(filter UnitListFilter) ([]models.DerivedUnit, int64, error) {
	query := r.db.Model(&models.DerivedUnit{})
	if filter.MaterialType != "" {
		query = query.Where("material_type = ?", filter.MaterialType)
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

	var units []models.DerivedUnit
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("id asc").Find(&units).Error; err != nil {
		return nil, 0, err
	}
	return units, total, nil
}

// ListByParent 查询母卷名下全部子卷
func (r *GormDerivedUnitRepository) ListByParent(parentID uint) ([]models.DerivedUnit, error) {
	var units []models.DerivedUnit
	if err := r.db.Where("parent_unit_id = ?", parentID).
		Order("id asc").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// CountByParent 统计母卷名下子卷数量
func (r *GormDerivedUnitRepository) CountByParent(parentID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.DerivedUnit{}).
		Where("parent_unit_id = ?", parentID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// BarcodeExists 条码是否已被子卷占用
func (r *GormDerivedUnitRepository) BarcodeExists(barcode string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.DerivedUnit{}).
		Where("barcode = ?", barcode).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Consume 扣减子卷长度并标记售出，条件更新防止超卖与跨订单抢占
func (r *GormDerivedUnitRepository) Consume(id uint, orderID uint, quantity models.Measure, soldAt time.Time) (int64, error) {
	result := r.db.Model(&models.DerivedUnit{}).
		Where("id = ? AND (sold = ? OR sold_for_order_id = ?) AND remaining_length >= ?",
			id, false, orderID, quantity).
		Updates(map[string]interface{}{
			"remaining_length":  gorm.Expr("remaining_length - ?", quantity),
			"sold":              true,
			"sold_for_order_id": orderID,
			"sold_at":           gorm.Expr("COALESCE(sold_at, ?)", soldAt),
			"updated_at":        soldAt,
		})
	return result.RowsAffected, result.Error
}

// Restore 撤销扫描时返还扣减的长度，必要时一并清除售出标记
func (r *GormDerivedUnitRepository) Restore(id uint, length models.Measure, clearSold bool) (int64, error) {
	updates := map[string]interface{}{
		"remaining_length": gorm.Expr("remaining_length + ?", length),
	}
	if clearSold {
		updates["sold"] = false
		updates["sold_for_order_id"] = nil
		updates["sold_at"] = nil
	}
	result := r.db.Model(&models.DerivedUnit{}).
		Where("id = ? AND remaining_length + ? <= cut_length", id, length).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// Delete 删除子卷
func (r *GormDerivedUnitRepository) Delete(id uint) error {
	return r.db.Delete(&models.DerivedUnit{}, id).Error
}
