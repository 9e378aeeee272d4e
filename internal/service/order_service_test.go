package service

import (
	"errors"
	"testing"

	"github.com/rollstock-erp/internal/repository"
)

func TestCreateOrderAssignsLinePositions(t *testing.T) {
	env := setupServiceTestEnv(t, "order_create")
	customer := env.createCustomer(t, "CUST-A")

	order, err := env.order.Create(CreateOrderInput{
		OrderNo:    "SO-400",
		CustomerID: customer.ID,
		LineItems: []LineItemInput{
			{MaterialType: "双胶纸", BasisWeight: mvp(t, "80"), Width: mvp(t, "787"), RequiredQuantity: 2},
			{MaterialType: "铜版纸", RequiredQuantity: 1, UnitLength: mvp(t, "1500")},
		},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if len(order.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(order.LineItems))
	}
	if order.LineItems[0].Position != 0 || order.LineItems[1].Position != 1 {
		t.Fatalf("expected positions to follow input order, got %d and %d",
			order.LineItems[0].Position, order.LineItems[1].Position)
	}
}

func TestCreateOrderValidations(t *testing.T) {
	env := setupServiceTestEnv(t, "order_validate")
	customer := env.createCustomer(t, "CUST-B")

	if _, err := env.order.Create(CreateOrderInput{
		OrderNo:    "SO-401",
		CustomerID: customer.ID,
	}); !errors.Is(err, ErrOrderInvalid) {
		t.Fatalf("expected ErrOrderInvalid for empty line items, got: %v", err)
	}

	if _, err := env.order.Create(CreateOrderInput{
		OrderNo:    "SO-402",
		CustomerID: 9999,
		LineItems:  []LineItemInput{{RequiredQuantity: 1}},
	}); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got: %v", err)
	}

	if _, err := env.order.Create(CreateOrderInput{
		OrderNo:    "SO-403",
		CustomerID: customer.ID,
		LineItems:  []LineItemInput{{RequiredQuantity: 1}},
	}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := env.order.Create(CreateOrderInput{
		OrderNo:    "SO-403",
		CustomerID: customer.ID,
		LineItems:  []LineItemInput{{RequiredQuantity: 1}},
	}); !errors.Is(err, ErrOrderNoExists) {
		t.Fatalf("expected ErrOrderNoExists, got: %v", err)
	}
}

func TestListOutstandingExcludesShippedOrders(t *testing.T) {
	env := setupServiceTestEnv(t, "order_outstanding")
	customer := env.createCustomer(t, "CUST-C")

	open, err := env.order.Create(CreateOrderInput{
		OrderNo:    "SO-404",
		CustomerID: customer.ID,
		LineItems:  []LineItemInput{{RequiredQuantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	shipped, err := env.order.Create(CreateOrderInput{
		OrderNo:    "SO-405",
		CustomerID: customer.ID,
		LineItems:  []LineItemInput{{RequiredQuantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := env.db.Table("sales_orders").Where("id = ?", shipped.ID).
		Update("status", "shipped").Error; err != nil {
		t.Fatalf("mark shipped failed: %v", err)
	}

	orders, total, err := env.order.ListOutstanding(repository.OrderListFilter{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("ListOutstanding error: %v", err)
	}
	if total != 1 || len(orders) != 1 || orders[0].ID != open.ID {
		t.Fatalf("expected only open order listed, got total=%d orders=%v", total, orders)
	}
}

func TestCustomerCreateAndDuplicateCode(t *testing.T) {
	env := setupServiceTestEnv(t, "customer_create")
	svc := NewCustomerService(repository.NewCustomerRepository(env.db))

	if _, err := svc.Create(CreateCustomerInput{Code: "", Name: "某客户"}); !errors.Is(err, ErrCustomerInvalid) {
		t.Fatalf("expected ErrCustomerInvalid, got: %v", err)
	}
	if _, err := svc.Create(CreateCustomerInput{Code: "CUST-D", Name: "某客户"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Create(CreateCustomerInput{Code: "CUST-D", Name: "另一客户"}); !errors.Is(err, ErrCustomerCodeExists) {
		t.Fatalf("expected ErrCustomerCodeExists, got: %v", err)
	}
}
