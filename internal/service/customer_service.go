package service

import (
	"strings"

	"github.com/rollstock-erp/internal/models"
	"github.com/rollstock-erp/internal/repository"
)

// CustomerService 客户服务
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService 创建客户服务
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomerInput 创建客户输入
type CreateCustomerInput struct {
	Code    string
	Name    string
	Contact string
	Phone   string
	Address string
}

// Create 创建客户
func (s *CustomerService) Create(input CreateCustomerInput) (*models.Customer, error) {
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" {
		return nil, ErrCustomerInvalid
	}
	existing, err := s.customerRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCustomerCodeExists
	}
	customer := &models.Customer{
		Code:    code,
		Name:    name,
		Contact: input.Contact,
		Phone:   input.Phone,
		Address: input.Address,
	}
	if err := s.customerRepo.Create(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Get 查询客户
func (s *CustomerService) Get(id uint) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// List 查询客户列表
func (s *CustomerService) List(filter repository.CustomerListFilter) ([]models.Customer, int64, error) {
	return s.customerRepo.List(filter)
}
