package repository

import "time"

// UnitListFilter 查询库存单元列表的过滤条件
type UnitListFilter struct {
	Page          int
	PageSize      int
	MaterialType  string
	BatchNo       string
	WarehouseCode string
	Search        string // 模糊匹配条码
	OnlyAvailable bool
	SoldForOrder  uint
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	CustomerID  uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ShipmentListFilter 查询出库单列表的过滤条件
type ShipmentListFilter struct {
	Page        int
	PageSize    int
	Status      string
	ShippedBy   uint
	ShippedFrom *time.Time
	ShippedTo   *time.Time
}

// CustomerListFilter 查询客户列表的过滤条件
type CustomerListFilter struct {
	Page     int
	PageSize int
	Keyword  string
}
