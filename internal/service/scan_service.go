package service

import (
	"context"
	"strings"
	"time"

	"github.com/rollstock-erp/internal/constants"
	"github.com/rollstock-erp/internal/logger"
	"github.com/rollstock-erp/internal/models"
	"github.com/rollstock-erp/internal/repository"

	"gorm.io/gorm"
)

// ScanService 扫描台账服务：记录、补录与撤销扫描
type ScanService struct {
	orderRepo    repository.OrderRepository
	shipmentRepo repository.ShipmentRepository
	scanRepo     repository.ScanRecordRepository
	primaryRepo  repository.PrimaryUnitRepository
	derivedRepo  repository.DerivedUnitRepository
	matcher      *SpecMatcher
	progress     *ProgressService
}

// NewScanService 创建扫描服务
func NewScanService(
	orderRepo repository.OrderRepository,
	shipmentRepo repository.ShipmentRepository,
	scanRepo repository.ScanRecordRepository,
	primaryRepo repository.PrimaryUnitRepository,
	derivedRepo repository.DerivedUnitRepository,
	matcher *SpecMatcher,
	progress *ProgressService,
) *ScanService {
	return &ScanService{
		orderRepo:    orderRepo,
		shipmentRepo: shipmentRepo,
		scanRepo:     scanRepo,
		primaryRepo:  primaryRepo,
		derivedRepo:  derivedRepo,
		matcher:      matcher,
		progress:     progress,
	}
}

// RecordScanInput 记录扫描输入
type RecordScanInput struct {
	OrderID    uint
	Barcode    string
	Quantity   *models.Measure // 本次扣减长度，nil 时取订单行默认值，再退整卷剩余
	OperatorID *uint
}

// ScanResult 扫描结果
type ScanResult struct {
	AlreadyRecorded bool               `json:"already_recorded"`
	Record          *models.ScanRecord `json:"record"`
	Progress        *OrderProgress     `json:"progress"`
}

// RecordScan 记录一次条码扫描
// 出库单创建、流水写入、计数自增与库存扣减在同一事务内完成，
// 同一订单内重复扫描同一条码幂等返回，不产生任何二次变更
func (s *ScanService) RecordScan(ctx context.Context, input RecordScanInput) (*ScanResult, error) {
	barcode := strings.TrimSpace(input.Barcode)
	if input.OrderID == 0 || barcode == "" {
		return nil, ErrScanInvalid
	}
	if input.Quantity != nil && !input.Quantity.IsPositive() {
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

	primary, derived, err := s.lookupUnit(barcode)
	if err != nil {
		return nil, err
	}

	// 被其他订单占用的单元立即拒绝，不改动本订单任何状态
	soldFor, remaining := unitSaleState(primary, derived)
	if soldFor != nil && *soldFor != input.OrderID {
		return nil, ErrUnitSoldConflict
	}

	items, err := s.orderRepo.ListOpenLineItems(input.OrderID)
	if err != nil {
		return nil, err
	}
	spec := specOf(primary, derived)
	line, matchedIDs := s.matcher.Match(spec, items)
	if line == nil {
		return nil, s.classifyNoMatch(input.OrderID, spec)
	}
	if len(matchedIDs) > 1 {
		logger.Warnw("scan_spec_ambiguous_match",
			"order_id", input.OrderID,
			"barcode", barcode,
			"matched_line_item_ids", matchedIDs,
			"chosen_line_item_id", line.ID,
		)
	}

	quantity := resolveQuantity(input.Quantity, line, remaining)
	now := time.Now()

	result := &ScanResult{}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		scanTx := s.scanRepo.WithTx(tx)
		shipmentTx := s.shipmentRepo.WithTx(tx)
		orderTx := s.orderRepo.WithTx(tx)

		existing, err := scanTx.GetByOrderAndBarcode(input.OrderID, barcode)
		if err != nil {
			return err
		}
		if existing != nil {
			result.AlreadyRecorded = true
			result.Record = existing
			return nil
		}

		shipment, err := shipmentTx.EnsureInProgress(input.OrderID)
		if err != nil {
			return err
		}
		if shipment == nil {
			return ErrShipmentNotFound
		}
		if shipment.Status != constants.ShipmentStatusInProgress {
			return ErrOrderAlreadyShipped
		}

		unitType, unitID, err := s.consumeUnit(tx, primary, derived, input.OrderID, quantity, now)
		if err != nil {
			return err
		}

		affected, err := orderTx.IncrementScanned(line.ID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrLineItemFull
		}

		record := &models.ScanRecord{
			ShipmentID:      shipment.ID,
			OrderLineItemID: line.ID,
			Barcode:         &barcode,
			UnitType:        unitType,
			UnitID:          &unitID,
			ConsumedLength:  quantity,
			OperatorID:      input.OperatorID,
			ScannedAt:       now,
		}
		if err := scanTx.Create(record); err != nil {
			return err
		}
		result.Record = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyRecorded {
		logger.Infow("scan_recorded",
			"order_id", input.OrderID,
			"line_item_id", line.ID,
			"barcode", barcode,
			"unit_type", result.Record.UnitType,
			"consumed_length", quantity.String(),
		)
	}

	progress, err := s.progress.Refresh(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	result.Progress = progress
	return result, nil
}

// RecordUncodedInput 无条码补录输入
type RecordUncodedInput struct {
	OrderID    uint
	LineItemID uint
	Count      int
	OperatorID *uint
}

// RecordUncoded 无条码计数补录：只推进计数，不关联也不扣减任何库存单元
// 流水条码置空，不虚构占位条码
func (s *ScanService) RecordUncoded(ctx context.Context, input RecordUncodedInput) (*OrderProgress, error) {
	if input.OrderID == 0 || input.LineItemID == 0 {
		return nil, ErrScanInvalid
	}
	if input.Count <= 0 {
		input.Count = 1
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

	line, err := s.orderRepo.GetLineItem(input.LineItemID)
	if err != nil {
		return nil, err
	}
	if line == nil || line.OrderID != input.OrderID {
		return nil, ErrLineItemNotFound
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		scanTx := s.scanRepo.WithTx(tx)
		shipmentTx := s.shipmentRepo.WithTx(tx)
		orderTx := s.orderRepo.WithTx(tx)

		shipment, err := shipmentTx.EnsureInProgress(input.OrderID)
		if err != nil {
			return err
		}
		if shipment.Status != constants.ShipmentStatusInProgress {
			return ErrOrderAlreadyShipped
		}

		for i := 0; i < input.Count; i++ {
			affected, err := orderTx.IncrementScanned(line.ID)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrLineItemFull
			}
			record := &models.ScanRecord{
				ShipmentID:      shipment.ID,
				OrderLineItemID: line.ID,
				UnitType:        constants.UnitTypeNone,
				OperatorID:      input.OperatorID,
				ScannedAt:       now,
			}
			if err := scanTx.Create(record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("scan_uncoded_recorded",
		"order_id", input.OrderID,
		"line_item_id", input.LineItemID,
		"count", input.Count,
	)
	return s.progress.Refresh(ctx, input.OrderID)
}

// UndoScan 撤销一条扫描流水：删除流水、回退计数并返还库存扣减
// 出库单一旦完成即不可撤销
func (s *ScanService) UndoScan(ctx context.Context, recordID uint) (*OrderProgress, error) {
	record, err := s.scanRepo.GetByID(recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrScanRecordNotFound
	}

	shipment, err := s.shipmentRepo.GetByID(record.ShipmentID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}
	if shipment.Status != constants.ShipmentStatusInProgress {
		return nil, ErrScanRecordLocked
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		scanTx := s.scanRepo.WithTx(tx)
		orderTx := s.orderRepo.WithTx(tx)

		if err := scanTx.Delete(record.ID); err != nil {
			return err
		}
		if _, err := orderTx.DecrementScanned(record.OrderLineItemID); err != nil {
			return err
		}
		if record.UnitID == nil {
			return nil
		}

		// 该单元不再被任何流水引用时清除售出标记
		refs, err := scanTx.CountByUnit(record.UnitType, *record.UnitID)
		if err != nil {
			return err
		}
		clearSold := refs == 0

		var affected int64
		switch record.UnitType {
		case constants.UnitTypePrimary:
			affected, err = s.primaryRepo.WithTx(tx).Restore(*record.UnitID, record.ConsumedLength, clearSold)
		case constants.UnitTypeDerived:
			affected, err = s.derivedRepo.WithTx(tx).Restore(*record.UnitID, record.ConsumedLength, clearSold)
		default:
			return nil
		}
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrUnitInvalid
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("scan_undone",
		"record_id", record.ID,
		"shipment_id", record.ShipmentID,
		"line_item_id", record.OrderLineItemID,
	)
	return s.progress.Refresh(ctx, shipment.OrderID)
}

// lookupUnit 按条码查找库存单元，母卷优先
func (s *ScanService) lookupUnit(barcode string) (*models.PrimaryUnit, *models.DerivedUnit, error) {
	primary, err := s.primaryRepo.GetByBarcode(barcode)
	if err != nil {
		return nil, nil, err
	}
	if primary != nil {
		return primary, nil, nil
	}
	derived, err := s.derivedRepo.GetByBarcode(barcode)
	if err != nil {
		return nil, nil, err
	}
	if derived == nil {
		return nil, nil, ErrBarcodeNotFound
	}
	return nil, derived, nil
}

// consumeUnit 条件扣减库存单元，失败时回查区分占用冲突与长度不足
func (s *ScanService) consumeUnit(tx *gorm.DB, primary *models.PrimaryUnit, derived *models.DerivedUnit, orderID uint, quantity models.Measure, now time.Time) (string, uint, error) {
	if primary != nil {
		primaryTx := s.primaryRepo.WithTx(tx)
		affected, err := primaryTx.Consume(primary.ID, orderID, quantity, now)
		if err != nil {
			return "", 0, err
		}
		if affected == 0 {
			current, err := primaryTx.GetByID(primary.ID)
			if err != nil {
				return "", 0, err
			}
			if current != nil && current.Sold && current.SoldForOrderID != nil && *current.SoldForOrderID != orderID {
				return "", 0, ErrUnitSoldConflict
			}
			return "", 0, ErrInsufficientRemainingLength
		}
		return constants.UnitTypePrimary, primary.ID, nil
	}

	derivedTx := s.derivedRepo.WithTx(tx)
	affected, err := derivedTx.Consume(derived.ID, orderID, quantity, now)
	if err != nil {
		return "", 0, err
	}
	if affected == 0 {
		current, err := derivedTx.GetByID(derived.ID)
		if err != nil {
			return "", 0, err
		}
		if current != nil && current.Sold && current.SoldForOrderID != nil && *current.SoldForOrderID != orderID {
			return "", 0, ErrUnitSoldConflict
		}
		return "", 0, ErrInsufficientRemainingLength
	}
	return constants.UnitTypeDerived, derived.ID, nil
}

// classifyNoMatch 区分「没有任何行匹配」与「匹配的行都已扫满」
func (s *ScanService) classifyNoMatch(orderID uint, spec UnitSpec) error {
	items, err := s.orderRepo.ListLineItems(orderID)
	if err != nil {
		return err
	}
	for i := range items {
		if s.matcher.Matches(spec, &items[i]) {
			return ErrLineItemFull
		}
	}
	return ErrScanNoMatch
}

func specOf(primary *models.PrimaryUnit, derived *models.DerivedUnit) UnitSpec {
	if primary != nil {
		return UnitSpec{
			MaterialType: primary.MaterialType,
			BasisWeight:  primary.BasisWeight,
			Width:        primary.Width,
		}
	}
	return UnitSpec{
		MaterialType: derived.MaterialType,
		BasisWeight:  derived.BasisWeight,
		Width:        derived.Width,
	}
}

func unitSaleState(primary *models.PrimaryUnit, derived *models.DerivedUnit) (*uint, models.Measure) {
	if primary != nil {
		if primary.Sold {
			return primary.SoldForOrderID, primary.RemainingLength
		}
		return nil, primary.RemainingLength
	}
	if derived.Sold {
		return derived.SoldForOrderID, derived.RemainingLength
	}
	return nil, derived.RemainingLength
}

// resolveQuantity 本次扣减长度：显式数量 > 订单行默认 > 整卷剩余
func resolveQuantity(explicit *models.Measure, line *models.OrderLineItem, remaining models.Measure) models.Measure {
	if explicit != nil && explicit.IsPositive() {
		return *explicit
	}
	if line.UnitLength != nil && line.UnitLength.IsPositive() {
		return *line.UnitLength
	}
	return remaining
}
