package ops

import (
	"errors"
	"strconv"
	"strings"

	"github.com/rollstock-erp/internal/http/response"
	"github.com/rollstock-erp/internal/repository"
	"github.com/rollstock-erp/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateCustomerRequest 创建客户请求
type CreateCustomerRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CreateCustomer 创建客户
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	customer, err := h.CustomerService.Create(service.CreateCustomerInput{
		Code:    req.Code,
		Name:    req.Name,
		Contact: req.Contact,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCustomerInvalid):
			respondError(c, response.CodeBadRequest, "error.customer_invalid", nil)
		case errors.Is(err, service.ErrCustomerCodeExists):
			respondError(c, response.CodeConflict, "error.customer_code_exists", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, customer)
}

// GetCustomer 查询客户详情
func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	customer, err := h.CustomerService.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCustomerNotFound):
			respondError(c, response.CodeNotFound, "error.customer_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, customer)
}

// ListCustomers 查询客户列表
func (h *Handler) ListCustomers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	customers, total, err := h.CustomerService.List(repository.CustomerListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, customers, buildPagination(page, pageSize, total))
}
