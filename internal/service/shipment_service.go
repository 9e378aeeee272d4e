package service

import (
	"context"
	"time"

	"github.com/rollstock-erp/internal/constants"
	"github.com/rollstock-erp/internal/logger"
	"github.com/rollstock-erp/internal/models"
	"github.com/rollstock-erp/internal/queue"
	"github.com/rollstock-erp/internal/repository"

	"gorm.io/gorm"
)

// ShipmentService 出库单服务：发货确认与出库单查询
type ShipmentService struct {
	orderRepo    repository.OrderRepository
	shipmentRepo repository.ShipmentRepository
	scanSvc      *ScanService
	progress     *ProgressService
	queueClient  *queue.Client
}

// NewShipmentService 创建出库单服务
func NewShipmentService(
	orderRepo repository.OrderRepository,
	shipmentRepo repository.ShipmentRepository,
	scanSvc *ScanService,
	progress *ProgressService,
	queueClient *queue.Client,
) *ShipmentService {
	return &ShipmentService{
		orderRepo:    orderRepo,
		shipmentRepo: shipmentRepo,
		scanSvc:      scanSvc,
		progress:     progress,
		queueClient:  queueClient,
	}
}

// ExplicitScan 发货时随单补录的扫描项
type ExplicitScan struct {
	Barcode  string
	Quantity *models.Measure
}

// FinalizeInput 发货确认输入
// ExplicitScans 非空时为显式清单形态：先逐条补录（幂等），
// 再执行与台账形态完全相同的逐行数量校验
type FinalizeInput struct {
	OrderID       uint
	ShippedBy     uint
	Notes         string
	ExplicitScans []ExplicitScan
}

// Finalize 确认发货：出库单提升与订单关单在同一事务内完成
// 状态机 无出库单 → 进行中 → 已完成，已完成为终态，重复确认返回 ErrOrderAlreadyShipped
func (s *ShipmentService) Finalize(ctx context.Context, input FinalizeInput) (*models.Shipment, error) {
	if input.OrderID == 0 || input.ShippedBy == 0 {
		return nil, ErrScanInvalid
	}

	order, err := s.orderRepo.GetByID(input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status == constants.OrderStatusShipped {
		return nil, ErrOrderAlreadyShipped
	}
	if order.Status != constants.OrderStatusOpen {
		return nil, ErrOrderNotOpen
	}

	// 显式清单形态：缺失的扫描先补录，已有的幂等跳过
	for _, scan := range input.ExplicitScans {
		if _, err := s.scanSvc.RecordScan(ctx, RecordScanInput{
			OrderID:    input.OrderID,
			Barcode:    scan.Barcode,
			Quantity:   scan.Quantity,
			OperatorID: &input.ShippedBy,
		}); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	var finalized *models.Shipment
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		shipmentTx := s.shipmentRepo.WithTx(tx)
		orderTx := s.orderRepo.WithTx(tx)

		shipment, err := shipmentTx.GetByOrderID(input.OrderID)
		if err != nil {
			return err
		}
		if shipment == nil {
			return ErrShipmentNotFound
		}
		if shipment.Status == constants.ShipmentStatusCompleted {
			return ErrOrderAlreadyShipped
		}

		items, err := orderTx.ListLineItems(input.OrderID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrShipmentIncomplete
		}
		for _, item := range items {
			if item.ScannedCount != item.RequiredQuantity {
				return ErrShipmentIncomplete
			}
		}

		affected, err := shipmentTx.Promote(input.OrderID, input.ShippedBy, now, input.Notes)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrOrderAlreadyShipped
		}
		affected, err = orderTx.MarkShipped(input.OrderID, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrOrderAlreadyShipped
		}

		finalized, err = shipmentTx.GetByID(shipment.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("shipment_finalized",
		"order_id", input.OrderID,
		"shipment_id", finalized.ID,
		"shipped_by", input.ShippedBy,
		"record_count", len(finalized.Records),
	)

	if s.queueClient != nil {
		if err := s.queueClient.EnqueueShipmentStatusNotify(queue.ShipmentStatusNotifyPayload{
			OrderID:    input.OrderID,
			ShipmentID: finalized.ID,
			Status:     finalized.Status,
		}); err != nil {
			logger.Warnw("shipment_status_notify_enqueue_failed",
				"order_id", input.OrderID,
				"shipment_id", finalized.ID,
				"error", err,
			)
		}
	}

	if _, err := s.progress.Refresh(ctx, input.OrderID); err != nil {
		logger.Warnw("shipment_progress_refresh_failed", "order_id", input.OrderID, "error", err)
	}
	return finalized, nil
}

// Get 查询出库单详情
func (s *ShipmentService) Get(id uint) (*models.Shipment, error) {
	shipment, err := s.shipmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}
	return shipment, nil
}

// GetByOrder 查询订单对应的出库单
func (s *ShipmentService) GetByOrder(orderID uint) (*models.Shipment, error) {
	shipment, err := s.shipmentRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}
	return shipment, nil
}

// List 查询出库单列表
func (s *ShipmentService) List(filter repository.ShipmentListFilter) ([]models.Shipment, int64, error) {
	return s.shipmentRepo.List(filter)
}
