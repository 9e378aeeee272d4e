package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rollstock-erp/internal/constants"
	"github.com/rollstock-erp/internal/models"
	"github.com/rollstock-erp/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db        *gorm.DB
	inventory *InventoryService
	order     *OrderService
	progress  *ProgressService
	scan      *ScanService
	shipment  *ShipmentService
}

func setupServiceTestEnv(t *testing.T, name string) *serviceTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Operator{},
		&models.Customer{},
		&models.SalesOrder{},
		&models.OrderLineItem{},
		&models.PrimaryUnit{},
		&models.DerivedUnit{},
		&models.Shipment{},
		&models.ScanRecord{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	prev := models.DB
	models.DB = db
	t.Cleanup(func() { models.DB = prev })

	orderRepo := repository.NewOrderRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	primaryRepo := repository.NewPrimaryUnitRepository(db)
	derivedRepo := repository.NewDerivedUnitRepository(db)
	scanRepo := repository.NewScanRecordRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)

	matcher := NewSpecMatcher("0.01")
	progress := NewProgressService(orderRepo, shipmentRepo, 0)
	scan := NewScanService(orderRepo, shipmentRepo, scanRepo, primaryRepo, derivedRepo, matcher, progress)
	return &serviceTestEnv{
		db:        db,
		inventory: NewInventoryService(primaryRepo, derivedRepo, scanRepo),
		order:     NewOrderService(orderRepo, customerRepo),
		progress:  progress,
		scan:      scan,
		shipment:  NewShipmentService(orderRepo, shipmentRepo, scan, progress, nil),
	}
}

func (e *serviceTestEnv) createCustomer(t *testing.T, code string) *models.Customer {
	t.Helper()
	customer := &models.Customer{Code: code, Name: code}
	if err := e.db.Create(customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	return customer
}

func (e *serviceTestEnv) createOrder(t *testing.T, orderNo string, lines []models.OrderLineItem) *models.SalesOrder {
	t.Helper()
	customer := e.createCustomer(t, "cust-"+orderNo)
	order := &models.SalesOrder{
		OrderNo:    orderNo,
		CustomerID: customer.ID,
		Status:     constants.OrderStatusOpen,
		LineItems:  lines,
	}
	if err := e.db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func (e *serviceTestEnv) createPrimary(t *testing.T, barcode, material, basisWeight, width, length string) *models.PrimaryUnit {
	t.Helper()
	unit := &models.PrimaryUnit{
		Barcode:         barcode,
		MaterialType:    material,
		BasisWeight:     mv(t, basisWeight),
		Width:           mv(t, width),
		TotalLength:     mv(t, length),
		RemainingLength: mv(t, length),
	}
	if err := e.db.Create(unit).Error; err != nil {
		t.Fatalf("create primary unit failed: %v", err)
	}
	return unit
}

func (e *serviceTestEnv) reloadLine(t *testing.T, id uint) *models.OrderLineItem {
	t.Helper()
	var line models.OrderLineItem
	if err := e.db.First(&line, id).Error; err != nil {
		t.Fatalf("reload line item failed: %v", err)
	}
	return &line
}

func (e *serviceTestEnv) reloadPrimary(t *testing.T, id uint) *models.PrimaryUnit {
	t.Helper()
	var unit models.PrimaryUnit
	if err := e.db.First(&unit, id).Error; err != nil {
		t.Fatalf("reload primary unit failed: %v", err)
	}
	return &unit
}

func (e *serviceTestEnv) countScanRecords(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := e.db.Model(&models.ScanRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("count scan records failed: %v", err)
	}
	return count
}

func TestRecordScanConsumesUnitAndAdvancesLine(t *testing.T) {
	env := setupServiceTestEnv(t, "scan_record")
	order := env.createOrder(t, "SO-001", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", BasisWeight: mvp(t, "80"), Width: mvp(t, "787"), RequiredQuantity: 2},
	})
	unit := env.createPrimary(t, "JR001", "双胶纸", "80", "787", "6000")

	result, err := env.scan.RecordScan(context.Background(), RecordScanInput{
		OrderID: order.ID,
		Barcode: "JR001",
	})
	if err != nil {
		t.Fatalf("RecordScan error: %v", err)
	}
	if result.AlreadyRecorded {
		t.Fatalf("expected fresh scan, got already recorded")
	}
	if result.Record == nil || result.Record.UnitType != constants.UnitTypePrimary {
		t.Fatalf("unexpected record: %+v", result.Record)
	}

	line := env.reloadLine(t, order.LineItems[0].ID)
	if line.ScannedCount != 1 {
		t.Fatalf("expected scanned count 1, got %d", line.ScannedCount)
	}

	// 无显式数量且订单行无单卷长度时，整卷剩余全部扣减
	reloaded := env.reloadPrimary(t, unit.ID)
	if !reloaded.Sold || reloaded.SoldForOrderID == nil || *reloaded.SoldForOrderID != order.ID {
		t.Fatalf("expected unit sold for order %d, got %+v", order.ID, reloaded)
	}
	if reloaded.RemainingLength.IsPositive() {
		t.Fatalf("expected remaining length 0, got %s", reloaded.RemainingLength.String())
	}

	if result.Progress == nil || result.Progress.TotalScanned != 1 || result.Progress.Complete {
		t.Fatalf("unexpected progress: %+v", result.Progress)
	}
}

func TestRecordScanIdempotentWithinOrder(t *testing.T) {
	env := setupServiceTestEnv(t, "scan_idempotent")
	order := env.createOrder(t, "SO-002", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 2},
	})
	env.createPrimary(t, "JR002", "双胶纸", "80", "787", "6000")

	first, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: order.ID, Barcode: "JR002"})
	if err != nil {
		t.Fatalf("first RecordScan error: %v", err)
	}
	second, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: order.ID, Barcode: "JR002"})
	if err != nil {
		t.Fatalf("second RecordScan error: %v", err)
	}
	if !second.AlreadyRecorded {
		t.Fatalf("expected duplicate scan to be reported as already recorded")
	}
	if second.Record.ID != first.Record.ID {
		t.Fatalf("expected same record returned, got %d and %d", first.Record.ID, second.Record.ID)
	}

	line := env.reloadLine(t, order.LineItems[0].ID)
	if line.ScannedCount != 1 {
		t.Fatalf("expected scanned count to stay 1, got %d", line.ScannedCount)
	}
	if count := env.countScanRecords(t); count != 1 {
		t.Fatalf("expected 1 scan record, got %d", count)
	}
}

func TestRecordScanLineFull(t *testing.T) {
	env := setupServiceTestEnv(t, "scan_line_full")
	order := env.createOrder(t, "SO-003", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 1},
	})
	env.createPrimary(t, "JR003A", "双胶纸", "80", "787", "6000")
	env.createPrimary(t, "JR003B", "双胶纸", "80", "787", "6000")

	if _, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: order.ID, Barcode: "JR003A"}); err != nil {
		t.Fatalf("RecordScan error: %v", err)
	}
	_, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: order.ID, Barcode: "JR003B"})
	if !errors.Is(err, ErrLineItemFull) {
		t.Fatalf("expected ErrLineItemFull, got: %v", err)
	}
}

func TestRecordScanNoMatch(t *testing.T) {
	env := setupServiceTestEnv(t, "scan_no_match")
	order := env.createOrder(t, "SO-004", []models.OrderLineItem{
		{Position: 0, MaterialType: "铜版纸", RequiredQuantity: 1},
	})
	env.createPrimary(t, "JR004", "双胶纸", "80", "787", "6000")

	_, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: order.ID, Barcode: "JR004"})
	if !errors.Is(err, ErrScanNoMatch) {
		t.Fatalf("expected ErrScanNoMatch, got: %v", err)
	}
	if count := env.countScanRecords(t); count != 0 {
		t.Fatalf("expected no scan record, got %d", count)
	}
}

func TestRecordScanCrossOrderConflict(t *testing.T) {
	env := setupServiceTestEnv(t, "scan_conflict")
	orderA := env.createOrder(t, "SO-005A", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 1},
	})
	orderB := env.createOrder(t, "SO-005B", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 1},
	})
	unit := env.createPrimary(t, "JR005", "双胶纸", "80", "787", "6000")

	if _, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: orderA.ID, Barcode: "JR005"}); err != nil {
		t.Fatalf("RecordScan for order A error: %v", err)
	}
	_, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: orderB.ID, Barcode: "JR005"})
	if !errors.Is(err, ErrUnitSoldConflict) {
		t.Fatalf("expected ErrUnitSoldConflict, got: %v", err)
	}

	// 冲突不能改动第二个订单的任何状态
	line := env.reloadLine(t, orderB.LineItems[0].ID)
	if line.ScannedCount != 0 {
		t.Fatalf("expected order B line untouched, got scanned count %d", line.ScannedCount)
	}
	reloaded := env.reloadPrimary(t, unit.ID)
	if reloaded.SoldForOrderID == nil || *reloaded.SoldForOrderID != orderA.ID {
		t.Fatalf("expected unit to stay with order A, got %+v", reloaded)
	}
}

func TestRecordScanInsufficientRemainingLength(t *testing.T) {
	env := setupServiceTestEnv(t, "scan_insufficient")
	order := env.createOrder(t, "SO-006", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 1},
	})
	env.createPrimary(t, "JR006", "双胶纸", "80", "787", "1000")

	_, err := env.scan.RecordScan(context.Background(), RecordScanInput{
		OrderID:  order.ID,
		Barcode:  "JR006",
		Quantity: mvp(t, "1500"),
	})
	if !errors.Is(err, ErrInsufficientRemainingLength) {
		t.Fatalf("expected ErrInsufficientRemainingLength, got: %v", err)
	}

	// 扣减失败时整个事务回滚，计数与流水均不产生
	line := env.reloadLine(t, order.LineItems[0].ID)
	if line.ScannedCount != 0 {
		t.Fatalf("expected scanned count 0 after rollback, got %d", line.ScannedCount)
	}
	if count := env.countScanRecords(t); count != 0 {
		t.Fatalf("expected no scan record after rollback, got %d", count)
	}
}

func TestRecordScanRejectsShippedOrder(t *testing.T) {
	env := setupServiceTestEnv(t, "scan_shipped")
	order := env.createOrder(t, "SO-007", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 1},
	})
	env.createPrimary(t, "JR007", "双胶纸", "80", "787", "6000")
	if err := env.db.Model(&models.SalesOrder{}).Where("id = ?", order.ID).
		Update("status", constants.OrderStatusShipped).Error; err != nil {
		t.Fatalf("mark order shipped failed: %v", err)
	}

	_, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: order.ID, Barcode: "JR007"})
	if !errors.Is(err, ErrOrderAlreadyShipped) {
		t.Fatalf("expected ErrOrderAlreadyShipped, got: %v", err)
	}
}

func TestRecordScanUsesLineUnitLength(t *testing.T) {
	env := setupServiceTestEnv(t, "scan_unit_length")
	order := env.createOrder(t, "SO-008", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 1, UnitLength: mvp(t, "1500")},
	})
	unit := env.createPrimary(t, "JR008", "双胶纸", "80", "787", "6000")

	result, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: order.ID, Barcode: "JR008"})
	if err != nil {
		t.Fatalf("RecordScan error: %v", err)
	}
	if result.Record.ConsumedLength.String() != mv(t, "1500").String() {
		t.Fatalf("expected consumed length 1500, got %s", result.Record.ConsumedLength.String())
	}
	reloaded := env.reloadPrimary(t, unit.ID)
	if reloaded.RemainingLength.String() != mv(t, "4500").String() {
		t.Fatalf("expected remaining 4500, got %s", reloaded.RemainingLength.String())
	}
}

func TestRecordUncodedAdvancesCountWithoutInventory(t *testing.T) {
	env := setupServiceTestEnv(t, "scan_uncoded")
	order := env.createOrder(t, "SO-009", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 3},
	})

	progress, err := env.scan.RecordUncoded(context.Background(), RecordUncodedInput{
		OrderID:    order.ID,
		LineItemID: order.LineItems[0].ID,
		Count:      2,
	})
	if err != nil {
		t.Fatalf("RecordUncoded error: %v", err)
	}
	if progress.TotalScanned != 2 {
		t.Fatalf("expected total scanned 2, got %d", progress.TotalScanned)
	}

	var records []models.ScanRecord
	if err := env.db.Find(&records).Error; err != nil {
		t.Fatalf("load scan records failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, record := range records {
		if record.Barcode != nil {
			t.Fatalf("expected nil barcode on uncoded record, got %v", *record.Barcode)
		}
		if record.UnitType != constants.UnitTypeNone || record.UnitID != nil {
			t.Fatalf("expected uncoded record without unit, got %+v", record)
		}
	}
}

func TestRecordUncodedOverCountRollsBack(t *testing.T) {
	env := setupServiceTestEnv(t, "scan_uncoded_over")
	order := env.createOrder(t, "SO-010", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 1},
	})

	_, err := env.scan.RecordUncoded(context.Background(), RecordUncodedInput{
		OrderID:    order.ID,
		LineItemID: order.LineItems[0].ID,
		Count:      2,
	})
	if !errors.Is(err, ErrLineItemFull) {
		t.Fatalf("expected ErrLineItemFull, got: %v", err)
	}

	line := env.reloadLine(t, order.LineItems[0].ID)
	if line.ScannedCount != 0 {
		t.Fatalf("expected whole batch rolled back, got scanned count %d", line.ScannedCount)
	}
	if count := env.countScanRecords(t); count != 0 {
		t.Fatalf("expected no records after rollback, got %d", count)
	}
}

func TestUndoScanRestoresUnitAndCount(t *testing.T) {
	env := setupServiceTestEnv(t, "scan_undo")
	order := env.createOrder(t, "SO-011", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 1, UnitLength: mvp(t, "2000")},
	})
	unit := env.createPrimary(t, "JR011", "双胶纸", "80", "787", "6000")

	result, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: order.ID, Barcode: "JR011"})
	if err != nil {
		t.Fatalf("RecordScan error: %v", err)
	}

	progress, err := env.scan.UndoScan(context.Background(), result.Record.ID)
	if err != nil {
		t.Fatalf("UndoScan error: %v", err)
	}
	if progress.TotalScanned != 0 {
		t.Fatalf("expected total scanned 0 after undo, got %d", progress.TotalScanned)
	}

	reloaded := env.reloadPrimary(t, unit.ID)
	if reloaded.Sold || reloaded.SoldForOrderID != nil {
		t.Fatalf("expected sold flag cleared, got %+v", reloaded)
	}
	if reloaded.RemainingLength.String() != mv(t, "6000").String() {
		t.Fatalf("expected remaining restored to 6000, got %s", reloaded.RemainingLength.String())
	}
	if count := env.countScanRecords(t); count != 0 {
		t.Fatalf("expected record deleted, got %d", count)
	}
}
