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

// OrderLineItemRequest 订单行请求，空字段表示该维度不限
type OrderLineItemRequest struct {
	MaterialType     string          `json:"material_type"`
	BasisWeight      *models.Measure `json:"basis_weight"`
	Width            *models.Measure `json:"width"`
	RequiredQuantity int             `json:"required_quantity" binding:"required,min=1"`
	UnitLength       *models.Measure `json:"unit_length"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	OrderNo    string                 `json:"order_no" binding:"required"`
	CustomerID uint                   `json:"customer_id" binding:"required"`
	Notes      string                 `json:"notes"`
	LineItems  []OrderLineItemRequest `json:"line_items" binding:"required,min=1,dive"`
}

// CreateOrder 创建销售订单及订单行
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	lineItems := make([]service.LineItemInput, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		lineItems = append(lineItems, service.LineItemInput{
			MaterialType:     item.MaterialType,
			BasisWeight:      item.BasisWeight,
			Width:            item.Width,
			RequiredQuantity: item.RequiredQuantity,
			UnitLength:       item.UnitLength,
		})
	}

	order, err := h.OrderService.Create(service.CreateOrderInput{
		OrderNo:    req.OrderNo,
		CustomerID: req.CustomerID,
		Notes:      req.Notes,
		LineItems:  lineItems,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderInvalid):
			respondError(c, response.CodeBadRequest, "error.order_invalid", nil)
		case errors.Is(err, service.ErrOrderNoExists):
			respondError(c, response.CodeConflict, "error.order_no_exists", nil)
		case errors.Is(err, service.ErrCustomerNotFound):
			respondError(c, response.CodeNotFound, "error.customer_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	requestLog(c).Infow("order_created", "order_id", order.ID, "order_no", order.OrderNo)
	response.Success(c, order)
}

// GetOrder 查询订单详情（含客户、订单行与出库单）
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	order, err := h.OrderService.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, order)
}

// ListOrders 查询订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	filter, ok := buildOrderListFilter(c)
	if !ok {
		return
	}

	orders, total, err := h.OrderService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, orders, buildPagination(filter.Page, filter.PageSize, total))
}

// ListOutstandingOrders 查询未发货订单列表（扫描工位看板）
func (h *Handler) ListOutstandingOrders(c *gin.Context) {
	filter, ok := buildOrderListFilter(c)
	if !ok {
		return
	}

	orders, total, err := h.OrderService.ListOutstanding(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, orders, buildPagination(filter.Page, filter.PageSize, total))
}

// GetOrderProgress 查询订单发货进度
func (h *Handler) GetOrderProgress(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	progress, err := h.ProgressService.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, progress)
}

func buildOrderListFilter(c *gin.Context) (repository.OrderListFilter, bool) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		OrderNo:  strings.TrimSpace(c.Query("order_no")),
	}
	if raw := strings.TrimSpace(c.Query("customer_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return filter, false
		}
		filter.CustomerID = uint(parsed)
	}

	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return filter, false
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return filter, false
	}
	filter.CreatedFrom = createdFrom
	filter.CreatedTo = createdTo
	return filter, true
}
