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

// IntakeUnitRequest 母卷入库请求
type IntakeUnitRequest struct {
	Barcode       string         `json:"barcode" binding:"required"`
	MaterialType  string         `json:"material_type" binding:"required"`
	BasisWeight   models.Measure `json:"basis_weight"`
	Width         models.Measure `json:"width"`
	TotalLength   models.Measure `json:"total_length"`
	BatchNo       string         `json:"batch_no"`
	WarehouseCode string         `json:"warehouse_code"`
}

func (r IntakeUnitRequest) toServiceInput() service.IntakeInput {
	return service.IntakeInput{
		Barcode:       r.Barcode,
		MaterialType:  r.MaterialType,
		BasisWeight:   r.BasisWeight,
		Width:         r.Width,
		TotalLength:   r.TotalLength,
		BatchNo:       r.BatchNo,
		WarehouseCode: r.WarehouseCode,
	}
}

// IntakeUnit 母卷入库
func (h *Handler) IntakeUnit(c *gin.Context) {
	var req IntakeUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	unit, err := h.InventoryService.Intake(req.toServiceInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnitInvalid):
			respondError(c, response.CodeBadRequest, "error.unit_invalid", nil)
		case errors.Is(err, service.ErrBarcodeExists):
			respondError(c, response.CodeConflict, "error.barcode_exists", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, unit)
}

// IntakeBatchRequest 批量入库请求
type IntakeBatchRequest struct {
	Units []IntakeUnitRequest `json:"units" binding:"required,min=1,dive"`
}

// IntakeBatch 批量母卷入库，任一条失败则整批回滚
func (h *Handler) IntakeBatch(c *gin.Context) {
	var req IntakeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	inputs := make([]service.IntakeInput, 0, len(req.Units))
	for _, u := range req.Units {
		inputs = append(inputs, u.toServiceInput())
	}

	units, err := h.InventoryService.IntakeBatch(inputs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnitInvalid):
			respondError(c, response.CodeBadRequest, "error.unit_invalid", nil)
		case errors.Is(err, service.ErrBarcodeExists):
			respondError(c, response.CodeConflict, "error.barcode_exists", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, units)
}

// CutUnitRequest 分切请求
type CutUnitRequest struct {
	ParentUnitID uint           `json:"parent_unit_id" binding:"required"`
	Barcode      string         `json:"barcode" binding:"required"`
	Width        models.Measure `json:"width"`
	Length       models.Measure `json:"length"`
}

// CutUnit 从母卷分切子卷
func (h *Handler) CutUnit(c *gin.Context) {
	var req CutUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	unit, err := h.InventoryService.Cut(service.CutInput{
		ParentUnitID: req.ParentUnitID,
		Barcode:      req.Barcode,
		Width:        req.Width,
		Length:       req.Length,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnitInvalid):
			respondError(c, response.CodeBadRequest, "error.unit_invalid", nil)
		case errors.Is(err, service.ErrUnitNotFound):
			respondError(c, response.CodeNotFound, "error.unit_not_found", nil)
		case errors.Is(err, service.ErrBarcodeExists):
			respondError(c, response.CodeConflict, "error.barcode_exists", nil)
		case errors.Is(err, service.ErrInsufficientRemainingLength):
			respondError(c, response.CodeUnprocessable, "error.insufficient_remaining_length", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, unit)
}

// DeletePrimaryUnit 删除母卷（有子卷、有扫描流水或已售出时拒绝）
func (h *Handler) DeletePrimaryUnit(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.InventoryService.DeletePrimary(id); err != nil {
		respondUnitDeleteError(c, err)
		return
	}
	response.Success(c, nil)
}

// DeleteDerivedUnit 删除子卷并将长度回补母卷
func (h *Handler) DeleteDerivedUnit(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.InventoryService.DeleteDerived(id); err != nil {
		respondUnitDeleteError(c, err)
		return
	}
	response.Success(c, nil)
}

func respondUnitDeleteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnitNotFound):
		respondError(c, response.CodeNotFound, "error.unit_not_found", nil)
	case errors.Is(err, service.ErrUnitReferenced):
		respondError(c, response.CodeConflict, "error.unit_referenced", nil)
	case errors.Is(err, service.ErrUnitInvalid):
		respondError(c, response.CodeConflict, "error.unit_invalid", nil)
	default:
		respondError(c, response.CodeInternal, "error.internal", err)
	}
}

// ListPrimaryUnits 查询母卷列表
func (h *Handler) ListPrimaryUnits(c *gin.Context) {
	filter, ok := buildUnitListFilter(c)
	if !ok {
		return
	}

	units, total, err := h.InventoryService.ListPrimary(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, units, buildPagination(filter.Page, filter.PageSize, total))
}

// ListDerivedUnits 查询子卷列表
func (h *Handler) ListDerivedUnits(c *gin.Context) {
	filter, ok := buildUnitListFilter(c)
	if !ok {
		return
	}

	units, total, err := h.InventoryService.ListDerived(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, units, buildPagination(filter.Page, filter.PageSize, total))
}

// LookupBarcode 按条码检索库存单元（母卷优先）
func (h *Handler) LookupBarcode(c *gin.Context) {
	barcode := strings.TrimSpace(c.Param("barcode"))
	if barcode == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	primary, derived, err := h.InventoryService.LookupBarcode(barcode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBarcodeNotFound):
			respondError(c, response.CodeNotFound, "error.barcode_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	if primary != nil {
		response.Success(c, gin.H{"unit_type": "primary", "unit": primary})
		return
	}
	response.Success(c, gin.H{"unit_type": "derived", "unit": derived})
}

func buildUnitListFilter(c *gin.Context) (repository.UnitListFilter, bool) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.UnitListFilter{
		Page:          page,
		PageSize:      pageSize,
		MaterialType:  strings.TrimSpace(c.Query("material_type")),
		BatchNo:       strings.TrimSpace(c.Query("batch_no")),
		WarehouseCode: strings.TrimSpace(c.Query("warehouse_code")),
		Search:        strings.TrimSpace(c.Query("search")),
		OnlyAvailable: c.Query("only_available") == "true",
	}
	if raw := strings.TrimSpace(c.Query("sold_for_order")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return filter, false
		}
		filter.SoldForOrder = uint(parsed)
	}
	return filter, true
}

func buildPagination(page, pageSize int, total int64) response.Pagination {
	return response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return 0, false
	}
	return uint(parsed), true
}
