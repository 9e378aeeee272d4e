package ops

import (
	"errors"
	"strconv"
	"strings"

	"github.com/rollstock-erp/internal/http/response"
	"github.com/rollstock-erp/internal/models"
	"github.com/rollstock-erp/internal/repository"
	"github.com/rollstock-erp/internal/service"

	"github.com/gin-gonic/gin"
)

// ExplicitScanRequest 发货时随单补录的扫描项
type ExplicitScanRequest struct {
	Barcode  string          `json:"barcode" binding:"required"`
	Quantity *models.Measure `json:"quantity"`
}

// FinalizeShipmentRequest 发货确认请求
type FinalizeShipmentRequest struct {
	OrderID       uint                  `json:"order_id" binding:"required"`
	Notes         string                `json:"notes"`
	ExplicitScans []ExplicitScanRequest `json:"explicit_scans" binding:"dive"`
}

// FinalizeShipment 确认发货：逐行数量校验通过后订单关单，重复确认幂等报错
func (h *Handler) FinalizeShipment(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}

	var req FinalizeShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	explicitScans := make([]service.ExplicitScan, 0, len(req.ExplicitScans))
	for _, scan := range req.ExplicitScans {
		explicitScans = append(explicitScans, service.ExplicitScan{
			Barcode:  scan.Barcode,
			Quantity: scan.Quantity,
		})
	}

	shipment, err := h.ShipmentService.Finalize(c.Request.Context(), service.FinalizeInput{
		OrderID:       req.OrderID,
		ShippedBy:     operatorID,
		Notes:         req.Notes,
		ExplicitScans: explicitScans,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShipmentIncomplete):
			respondError(c, response.CodeUnprocessable, "error.shipment_incomplete", nil)
		case errors.Is(err, service.ErrShipmentNotFound):
			respondError(c, response.CodeUnprocessable, "error.shipment_incomplete", nil)
		case errors.Is(err, service.ErrOrderAlreadyShipped):
			respondError(c, response.CodeConflict, "error.order_already_shipped", nil)
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		case errors.Is(err, service.ErrOrderNotOpen):
			respondError(c, response.CodeConflict, "error.order_not_open", nil)
		default:
			respondScanError(c, err)
		}
		return
	}

	requestLog(c).Infow("shipment_confirmed", "order_id", req.OrderID, "shipment_id", shipment.ID)
	response.Success(c, shipment)
}

// GetShipment 查询出库单详情（含扫描流水）
func (h *Handler) GetShipment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	shipment, err := h.ShipmentService.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShipmentNotFound):
			respondError(c, response.CodeNotFound, "error.shipment_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, shipment)
}

// GetOrderShipment 按订单查询出库单
func (h *Handler) GetOrderShipment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	shipment, err := h.ShipmentService.GetByOrder(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShipmentNotFound):
			respondError(c, response.CodeNotFound, "error.shipment_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, shipment)
}

// ListShipments 查询出库单列表
func (h *Handler) ListShipments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ShipmentListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
	}
	if raw := strings.TrimSpace(c.Query("shipped_by")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		filter.ShippedBy = uint(parsed)
	}

	shippedFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("shipped_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	shippedTo, err := parseTimeNullable(strings.TrimSpace(c.Query("shipped_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	filter.ShippedFrom = shippedFrom
	filter.ShippedTo = shippedTo

	shipments, total, err := h.ShipmentService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, shipments, buildPagination(page, pageSize, total))
}
