package ops

import (
	"errors"

	"github.com/rollstock-erp/internal/http/response"
	"github.com/rollstock-erp/internal/models"
	"github.com/rollstock-erp/internal/service"

	"github.com/gin-gonic/gin"
)

// RecordScanRequest 扫描记录请求
type RecordScanRequest struct {
	OrderID  uint            `json:"order_id" binding:"required"`
	Barcode  string          `json:"barcode" binding:"required"`
	Quantity *models.Measure `json:"quantity"` // 为空时取订单行默认长度，再退整卷剩余
}

// RecordScan 记录一次条码扫描，同一订单重复扫描同一条码幂等返回
func (h *Handler) RecordScan(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}

	var req RecordScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.ScanService.RecordScan(c.Request.Context(), service.RecordScanInput{
		OrderID:    req.OrderID,
		Barcode:    req.Barcode,
		Quantity:   req.Quantity,
		OperatorID: &operatorID,
	})
	if err != nil {
		respondScanError(c, err)
		return
	}

	response.Success(c, result)
}

// RecordUncodedRequest 无条码补录请求
type RecordUncodedRequest struct {
	OrderID    uint `json:"order_id" binding:"required"`
	LineItemID uint `json:"line_item_id" binding:"required"`
	Count      int  `json:"count" binding:"required,min=1"`
}

// RecordUncoded 无条码计数补录，只推进计数不扣减库存
func (h *Handler) RecordUncoded(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}

	var req RecordUncodedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	progress, err := h.ScanService.RecordUncoded(c.Request.Context(), service.RecordUncodedInput{
		OrderID:    req.OrderID,
		LineItemID: req.LineItemID,
		Count:      req.Count,
		OperatorID: &operatorID,
	})
	if err != nil {
		respondScanError(c, err)
		return
	}

	response.Success(c, progress)
}

// UndoScan 撤销一条扫描流水并恢复库存单元状态
func (h *Handler) UndoScan(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	progress, err := h.ScanService.UndoScan(c.Request.Context(), id)
	if err != nil {
		respondScanError(c, err)
		return
	}

	response.Success(c, progress)
}

func respondScanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScanInvalid):
		respondError(c, response.CodeBadRequest, "error.scan_quantity_invalid", nil)
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "error.order_not_found", nil)
	case errors.Is(err, service.ErrOrderNotOpen):
		respondError(c, response.CodeConflict, "error.order_not_open", nil)
	case errors.Is(err, service.ErrOrderAlreadyShipped):
		respondError(c, response.CodeConflict, "error.order_already_shipped", nil)
	case errors.Is(err, service.ErrLineItemNotFound):
		respondError(c, response.CodeNotFound, "error.line_item_not_found", nil)
	case errors.Is(err, service.ErrBarcodeNotFound):
		respondError(c, response.CodeNotFound, "error.barcode_not_found", nil)
	case errors.Is(err, service.ErrScanNoMatch):
		respondError(c, response.CodeUnprocessable, "error.scan_no_match", nil)
	case errors.Is(err, service.ErrLineItemFull):
		respondError(c, response.CodeUnprocessable, "error.line_item_full", nil)
	case errors.Is(err, service.ErrUnitSoldConflict):
		respondError(c, response.CodeConflict, "error.unit_sold_conflict", nil)
	case errors.Is(err, service.ErrInsufficientRemainingLength):
		respondError(c, response.CodeUnprocessable, "error.insufficient_remaining_length", nil)
	case errors.Is(err, service.ErrScanRecordNotFound):
		respondError(c, response.CodeNotFound, "error.scan_record_not_found", nil)
	case errors.Is(err, service.ErrScanRecordLocked):
		respondError(c, response.CodeConflict, "error.scan_record_locked", nil)
	default:
		respondError(c, response.CodeInternal, "error.internal", err)
	}
}
