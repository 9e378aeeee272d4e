package service

import (
	"context"
	"strconv"
	"time"

	"github.com/rollstock-erp/internal/cache"
	"github.com/rollstock-erp/internal/constants"
	"github.com/rollstock-erp/internal/logger"
	"github.com/rollstock-erp/internal/models"
	"github.com/rollstock-erp/internal/repository"
)

// LineProgress 单个订单行的扫描进度
type LineProgress struct {
	LineItemID       uint            `json:"line_item_id"`
	Position         int             `json:"position"`
	MaterialType     string          `json:"material_type"`
	BasisWeight      *models.Measure `json:"basis_weight"`
	Width            *models.Measure `json:"width"`
	RequiredQuantity int             `json:"required_quantity"`
	ScannedCount     int             `json:"scanned_count"`
	Remaining        int             `json:"remaining"`
	Complete         bool            `json:"complete"`
}

// OrderProgress 订单级扫描进度，完全由持久化状态推导
// 客户端刷新或换设备后凭此恢复现场
type OrderProgress struct {
	OrderID        uint           `json:"order_id"`
	ShipmentID     *uint          `json:"shipment_id"`
	ShipmentStatus string         `json:"shipment_status"`
	TotalRequired  int            `json:"total_required"`
	TotalScanned   int            `json:"total_scanned"`
	Complete       bool           `json:"complete"`
	Lines          []LineProgress `json:"lines"`
}

// ProgressService 进度服务
type ProgressService struct {
	orderRepo    repository.OrderRepository
	shipmentRepo repository.ShipmentRepository
	cacheTTL     time.Duration
}

// NewProgressService 创建进度服务
func NewProgressService(orderRepo repository.OrderRepository, shipmentRepo repository.ShipmentRepository, cacheTTLSeconds int) *ProgressService {
	ttl := time.Duration(cacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ProgressService{
		orderRepo:    orderRepo,
		shipmentRepo: shipmentRepo,
		cacheTTL:     ttl,
	}
}

// Compute 从数据库重建订单进度
func (s *ProgressService) Compute(orderID uint) (*OrderProgress, error) {
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	items, err := s.orderRepo.ListLineItems(orderID)
	if err != nil {
		return nil, err
	}
	shipment, err := s.shipmentRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}

	progress := &OrderProgress{
		OrderID:  orderID,
		Complete: len(items) > 0,
		Lines:    make([]LineProgress, 0, len(items)),
	}
	if shipment != nil {
		progress.ShipmentID = &shipment.ID
		progress.ShipmentStatus = shipment.Status
	}
	for _, item := range items {
		remaining := item.RequiredQuantity - item.ScannedCount
		if remaining < 0 {
			remaining = 0
		}
		complete := item.Full()
		if !complete {
			progress.Complete = false
		}
		progress.TotalRequired += item.RequiredQuantity
		progress.TotalScanned += item.ScannedCount
		progress.Lines = append(progress.Lines, LineProgress{
			LineItemID:       item.ID,
			Position:         item.Position,
			MaterialType:     item.MaterialType,
			BasisWeight:      item.BasisWeight,
			Width:            item.Width,
			RequiredQuantity: item.RequiredQuantity,
			ScannedCount:     item.ScannedCount,
			Remaining:        remaining,
			Complete:         complete,
		})
	}
	return progress, nil
}

// Get 查询订单进度，优先读缓存
func (s *ProgressService) Get(ctx context.Context, orderID uint) (*OrderProgress, error) {
	key := progressCacheKey(orderID)
	var cached OrderProgress
	found, err := cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warnw("order_progress_cache_read_failed", "order_id", orderID, "error", err)
	}
	if found {
		return &cached, nil
	}

	progress, err := s.Compute(orderID)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, key, progress, s.cacheTTL); err != nil {
		logger.Warnw("order_progress_cache_write_failed", "order_id", orderID, "error", err)
	}
	return progress, nil
}

// Refresh 重算进度并刷新缓存，扫描与发货后调用
func (s *ProgressService) Refresh(ctx context.Context, orderID uint) (*OrderProgress, error) {
	progress, err := s.Compute(orderID)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, progressCacheKey(orderID), progress, s.cacheTTL); err != nil {
		logger.Warnw("order_progress_cache_write_failed", "order_id", orderID, "error", err)
	}
	return progress, nil
}

// Invalidate 删除进度缓存
func (s *ProgressService) Invalidate(ctx context.Context, orderID uint) {
	if err := cache.Del(ctx, progressCacheKey(orderID)); err != nil {
		logger.Warnw("order_progress_cache_del_failed", "order_id", orderID, "error", err)
	}
}

func progressCacheKey(orderID uint) string {
	return constants.CacheKeyOrderProgress + strconv.FormatUint(uint64(orderID), 10)
}
