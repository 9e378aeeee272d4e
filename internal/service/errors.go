package service

import "errors"

// 认证相关错误
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOperatorDisabled   = errors.New("operator disabled")
	ErrOperatorNotFound   = errors.New("operator not found")
)

// 订单与客户相关错误
var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrCustomerCodeExists = errors.New("customer code already exists")
	ErrCustomerInvalid    = errors.New("invalid customer input")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNoExists     = errors.New("order no already exists")
	ErrOrderNotOpen      = errors.New("order not open")
	ErrLineItemNotFound  = errors.New("order line item not found")
	ErrOrderInvalid      = errors.New("invalid order input")
)

// 库存单元相关错误
var (
	ErrUnitNotFound               = errors.New("inventory unit not found")
	ErrBarcodeExists              = errors.New("barcode already exists")
	ErrBarcodeNotFound            = errors.New("barcode not found")
	ErrUnitReferenced             = errors.New("inventory unit still referenced")
	ErrUnitInvalid                = errors.New("invalid inventory unit input")
	ErrInsufficientRemainingLength = errors.New("insufficient remaining length")
)

// 扫描与发货相关错误
var (
	ErrScanNoMatch         = errors.New("barcode matches no open line item")
	ErrLineItemFull        = errors.New("line item already fully scanned")
	ErrUnitSoldConflict    = errors.New("unit already sold for another order")
	ErrOrderAlreadyShipped = errors.New("order already shipped")
	ErrShipmentNotFound    = errors.New("shipment not found")
	ErrShipmentIncomplete  = errors.New("scanning incomplete")
	ErrScanRecordNotFound  = errors.New("scan record not found")
	ErrScanRecordLocked    = errors.New("scan records immutable after completion")
	ErrScanInvalid         = errors.New("invalid scan input")
)
