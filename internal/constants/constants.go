package constants

// 订单状态常量
const (
	OrderStatusOpen     = "open"
	OrderStatusShipped  = "shipped"
	OrderStatusCanceled = "canceled"
)

// 出库单状态常量
const (
	ShipmentStatusInProgress = "in_progress"
	ShipmentStatusCompleted  = "completed"
)

// 库存单元类型常量
const (
	UnitTypePrimary = "primary"
	UnitTypeDerived = "derived"
	UnitTypeNone    = "none"
)

// 操作员状态常量
const (
	OperatorStatusEnabled  = "enabled"
	OperatorStatusDisabled = "disabled"
)

// 缓存键前缀常量
const (
	CacheKeyOrderProgress = "order:progress:"
	CacheKeyOperatorAuth  = "operator:auth:"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 队列任务类型常量
const (
	TaskShipmentStatusNotify = "shipment:status_notify"
)
