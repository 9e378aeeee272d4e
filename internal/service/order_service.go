package service

import (
	"strings"

	"github.com/rollstock-erp/internal/logger"
	"github.com/rollstock-erp/internal/models"
	"github.com/rollstock-erp/internal/repository"
)

// OrderService 销售订单服务
type OrderService struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, customerRepo repository.CustomerRepository) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
	}
}

// LineItemInput 订单行输入，空字段表示该维度不限
type LineItemInput struct {
	MaterialType     string
	BasisWeight      *models.Measure
	Width            *models.Measure
	RequiredQuantity int
	UnitLength       *models.Measure
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	OrderNo    string
	CustomerID uint
	Notes      string
	LineItems  []LineItemInput
}

// Create 创建订单及订单行
func (s *OrderService) Create(input CreateOrderInput) (*models.SalesOrder, error) {
	orderNo := strings.TrimSpace(input.OrderNo)
	if orderNo == "" || input.CustomerID == 0 || len(input.LineItems) == 0 {
		return nil, ErrOrderInvalid
	}
	for _, item := range input.LineItems {
		if item.RequiredQuantity <= 0 {
			return nil, ErrOrderInvalid
		}
	}

	customer, err := s.customerRepo.GetByID(input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	existing, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrOrderNoExists
	}

	order := &models.SalesOrder{
		OrderNo:    orderNo,
		CustomerID: input.CustomerID,
		Notes:      input.Notes,
		LineItems:  make([]models.OrderLineItem, 0, len(input.LineItems)),
	}
	for i, item := range input.LineItems {
		order.LineItems = append(order.LineItems, models.OrderLineItem{
			Position:         i,
			MaterialType:     item.MaterialType,
			BasisWeight:      item.BasisWeight,
			Width:            item.Width,
			RequiredQuantity: item.RequiredQuantity,
			UnitLength:       item.UnitLength,
		})
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}
	logger.Infow("sales_order_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"customer_id", order.CustomerID,
		"line_items", len(order.LineItems),
	)
	return order, nil
}

// Get 查询订单详情（含订单行、客户与出库单）
func (s *OrderService) Get(id uint) (*models.SalesOrder, error) {
	order, err := s.orderRepo.GetByIDWithDetail(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List 查询订单列表
func (s *OrderService) List(filter repository.OrderListFilter) ([]models.SalesOrder, int64, error) {
	return s.orderRepo.List(filter)
}

// ListOutstanding 查询待发货订单（没有已完成出库单的订单）
func (s *OrderService) ListOutstanding(filter repository.OrderListFilter) ([]models.SalesOrder, int64, error) {
	return s.orderRepo.ListOutstanding(filter)
}
