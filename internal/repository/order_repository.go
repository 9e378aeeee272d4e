package repository

import (
	"errors"
	"time"

	"github.com/rollstock-erp/internal/constants"
	"github.com/rollstock-erp/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 销售订单数据访问接口
type OrderRepository interface {
	Create(order *models.SalesOrder) error
	GetByID(id uint) (*models.SalesOrder, error)
	GetByIDWithDetail(id uint) (*models.SalesOrder, error)
	GetByOrderNo(orderNo string) (*models.SalesOrder, error)
	List(filter OrderListFilter) ([]models.SalesOrder, int64, error)
	ListOutstanding(filter OrderListFilter) ([]models.SalesOrder, int64, error)
	MarkShipped(orderID uint, shippedAt time.Time) (int64, error)
	GetLineItem(id uint) (*models.OrderLineItem, error)
	ListOpenLineItems(orderID uint) ([]models.OrderLineItem, error)
	ListLineItems(orderID uint) ([]models.OrderLineItem, error)
	IncrementScanned(lineItemID uint) (int64, error)
	DecrementScanned(lineItemID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单（含订单行）
func (r *GormOrderRepository) Create(order *models.SalesOrder) error {
	return r.db.Create(order).Error
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.SalesOrder, error) {
	var order models.SalesOrder
	if err := r.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDWithDetail 获取订单及订单行、客户、出库单
func (r *GormOrderRepository) GetByIDWithDetail(id uint) (*models.SalesOrder, error) {
	var order models.SalesOrder
	if err := r.db.
		Preload("Customer").
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc, id asc")
		}).
		Preload("Shipment").
		First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo 根据订单号获取订单
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.SalesOrder, error) {
	if orderNo == "" {
		return nil, errors.New("invalid order no")
	}
	var order models.SalesOrder
	if err := r.db.Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List 查询订单列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.SalesOrder, int64, error) {
	query := r.buildListQuery(filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.SalesOrder
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Preload("Customer").
		Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListOutstanding 查询未发货订单列表（扫描工作台的待办清单）
func (r *GormOrderRepository) ListOutstanding(filter OrderListFilter) ([]models.SalesOrder, int64, error) {
	filter.Status = constants.OrderStatusOpen
	query := r.buildListQuery(filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.SalesOrder
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Preload("Customer").
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc, id asc")
		}).
		Order("id asc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *GormOrderRepository) buildListQuery(filter OrderListFilter) *gorm.DB {
	query := r.db.Model(&models.SalesOrder{})
	if filter.CustomerID > 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no LIKE ?", "%"+filter.OrderNo+"%")
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	return query
}

// MarkShipped 把处于 open 状态的订单置为已发货，条件更新保证幂等
func (r *GormOrderRepository) MarkShipped(orderID uint, shippedAt time.Time) (int64, error) {
	result := r.db.Model(&models.SalesOrder{}).
		Where("id = ? AND status = ?", orderID, constants.OrderStatusOpen).
		Updates(map[string]interface{}{
			"status":     constants.OrderStatusShipped,
			"shipped_at": shippedAt,
			"updated_at": shippedAt,
		})
	return result.RowsAffected, result.Error
}

// GetLineItem 根据 ID 获取订单行
func (r *GormOrderRepository) GetLineItem(id uint) (*models.OrderLineItem, error) {
	var item models.OrderLineItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListOpenLineItems 查询订单中尚未扫满的订单行，按声明顺序返回
func (r *GormOrderRepository) ListOpenLineItems(orderID uint) ([]models.OrderLineItem, error) {
	var items []models.OrderLineItem
	if err := r.db.Where("order_id = ? AND scanned_count < required_quantity", orderID).
		Order("position asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListLineItems 查询订单全部订单行，按声明顺序返回
func (r *GormOrderRepository) ListLineItems(orderID uint) ([]models.OrderLineItem, error) {
	var items []models.OrderLineItem
	if err := r.db.Where("order_id = ?", orderID).
		Order("position asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// IncrementScanned 订单行扫描计数 +1，条件更新防止超扫
func (r *GormOrderRepository) IncrementScanned(lineItemID uint) (int64, error) {
	result := r.db.Model(&models.OrderLineItem{}).
		Where("id = ? AND scanned_count < required_quantity", lineItemID).
		Update("scanned_count", gorm.Expr("scanned_count + 1"))
	return result.RowsAffected, result.Error
}

// DecrementScanned 撤销一条扫描时计数 -1，不允许减到负数
func (r *GormOrderRepository) DecrementScanned(lineItemID uint) (int64, error) {
	result := r.db.Model(&models.OrderLineItem{}).
		Where("id = ? AND scanned_count > 0", lineItemID).
		Update("scanned_count", gorm.Expr("scanned_count - 1"))
	return result.RowsAffected, result.Error
}
