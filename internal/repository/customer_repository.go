package repository

import (
	"errors"

	"github.com/rollstock-erp/internal/models"

	"gorm.io/gorm"
)

// CustomerRepository 客户数据访问接口
type CustomerRepository interface {
	Create(customer *models.Customer) error
	GetByID(id uint) (*models.Customer, error)
	GetByCode(code string) (*models.Customer, error)
	List(filter CustomerListFilter) ([]models.Customer, int64, error)
	Update(customer *models.Customer) error
	WithTx(tx *gorm.DB) *GormCustomerRepository
}

// GormCustomerRepository GORM 实现
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建客户仓库
func NewCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCustomerRepository) WithTx(tx *gorm.DB) *GormCustomerRepository {
	if tx == nil {
		return r
	}
	return &GormCustomerRepository{db: tx}
}

// Create 创建客户
func (r *GormCustomerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

// GetByID 根据 ID 获取客户
func (r *GormCustomerRepository) GetByID(id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// GetByCode 根据客户编码获取客户
func (r *GormCustomerRepository) GetByCode(code string) (*models.Customer, error) {
	if code == "" {
		return nil, errors.New("invalid customer code")
	}
	var customer models.Customer
	if err := r.db.Where("code = ?", code).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// List 查询客户列表
func (r *GormCustomerRepository) List(filter CustomerListFilter) ([]models.Customer, int64, error) {
	query := r.db.Model(&models.Customer{})
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []models.Customer
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("id asc").Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// Update 更新客户
func (r *GormCustomerRepository) Update(customer *models.Customer) error {
	return r.db.Save(customer).Error
}
