package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rollstock-erp/internal/constants"
	"github.com/rollstock-erp/internal/models"
)

func TestFinalizeRejectsIncompleteShipment(t *testing.T) {
	env := setupServiceTestEnv(t, "shipment_incomplete")
	order := env.createOrder(t, "SO-200", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 2},
	})
	env.createPrimary(t, "JR200", "双胶纸", "80", "787", "6000")

	if _, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: order.ID, Barcode: "JR200"}); err != nil {
		t.Fatalf("RecordScan error: %v", err)
	}

	_, err := env.shipment.Finalize(context.Background(), FinalizeInput{OrderID: order.ID, ShippedBy: 1})
	if !errors.Is(err, ErrShipmentIncomplete) {
		t.Fatalf("expected ErrShipmentIncomplete, got: %v", err)
	}

	// 校验失败不得改动订单或出库单状态
	var reloaded models.SalesOrder
	if err := env.db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusOpen {
		t.Fatalf("expected order still open, got %s", reloaded.Status)
	}
}

func TestFinalizeWithoutAnyScan(t *testing.T) {
	env := setupServiceTestEnv(t, "shipment_no_scan")
	order := env.createOrder(t, "SO-201", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 1},
	})

	// 尚未扫描时连出库单都不存在
	_, err := env.shipment.Finalize(context.Background(), FinalizeInput{OrderID: order.ID, ShippedBy: 1})
	if !errors.Is(err, ErrShipmentNotFound) {
		t.Fatalf("expected ErrShipmentNotFound, got: %v", err)
	}
}

func TestFinalizeCompletesAndClosesOrder(t *testing.T) {
	env := setupServiceTestEnv(t, "shipment_complete")
	order := env.createOrder(t, "SO-202", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 1},
	})
	env.createPrimary(t, "JR202", "双胶纸", "80", "787", "6000")

	if _, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: order.ID, Barcode: "JR202"}); err != nil {
		t.Fatalf("RecordScan error: %v", err)
	}

	shipment, err := env.shipment.Finalize(context.Background(), FinalizeInput{
		OrderID:   order.ID,
		ShippedBy: 7,
		Notes:     "整车发运",
	})
	if err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if shipment.Status != constants.ShipmentStatusCompleted {
		t.Fatalf("expected completed shipment, got %s", shipment.Status)
	}
	if shipment.ShippedBy == nil || *shipment.ShippedBy != 7 || shipment.ShipmentDate == nil {
		t.Fatalf("expected shipped_by and shipment_date recorded, got %+v", shipment)
	}
	if len(shipment.Records) != 1 {
		t.Fatalf("expected 1 scan record attached, got %d", len(shipment.Records))
	}

	var reloaded models.SalesOrder
	if err := env.db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusShipped || reloaded.ShippedAt == nil {
		t.Fatalf("expected order closed as shipped, got %+v", reloaded)
	}
}

func TestFinalizeTwiceReturnsAlreadyShipped(t *testing.T) {
	env := setupServiceTestEnv(t, "shipment_twice")
	order := env.createOrder(t, "SO-203", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 1},
	})
	env.createPrimary(t, "JR203", "双胶纸", "80", "787", "6000")

	if _, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: order.ID, Barcode: "JR203"}); err != nil {
		t.Fatalf("RecordScan error: %v", err)
	}
	if _, err := env.shipment.Finalize(context.Background(), FinalizeInput{OrderID: order.ID, ShippedBy: 1}); err != nil {
		t.Fatalf("first Finalize error: %v", err)
	}
	_, err := env.shipment.Finalize(context.Background(), FinalizeInput{OrderID: order.ID, ShippedBy: 1})
	if !errors.Is(err, ErrOrderAlreadyShipped) {
		t.Fatalf("expected ErrOrderAlreadyShipped, got: %v", err)
	}
}

func TestFinalizeWithExplicitScans(t *testing.T) {
	env := setupServiceTestEnv(t, "shipment_explicit")
	order := env.createOrder(t, "SO-204", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 2},
	})
	env.createPrimary(t, "JR204A", "双胶纸", "80", "787", "6000")
	env.createPrimary(t, "JR204B", "双胶纸", "80", "787", "6000")

	// 一条已在台账，一条随单补录；重复项幂等
	if _, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: order.ID, Barcode: "JR204A"}); err != nil {
		t.Fatalf("RecordScan error: %v", err)
	}

	shipment, err := env.shipment.Finalize(context.Background(), FinalizeInput{
		OrderID:   order.ID,
		ShippedBy: 1,
		ExplicitScans: []ExplicitScan{
			{Barcode: "JR204A"},
			{Barcode: "JR204B"},
		},
	})
	if err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if shipment.Status != constants.ShipmentStatusCompleted {
		t.Fatalf("expected completed shipment, got %s", shipment.Status)
	}
	if len(shipment.Records) != 2 {
		t.Fatalf("expected 2 scan records, got %d", len(shipment.Records))
	}
}

func TestFinalizeExplicitScanConflictAborts(t *testing.T) {
	env := setupServiceTestEnv(t, "shipment_explicit_conflict")
	other := env.createOrder(t, "SO-205X", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 1},
	})
	order := env.createOrder(t, "SO-205", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 1},
	})
	env.createPrimary(t, "JR205", "双胶纸", "80", "787", "6000")

	if _, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: other.ID, Barcode: "JR205"}); err != nil {
		t.Fatalf("RecordScan error: %v", err)
	}

	_, err := env.shipment.Finalize(context.Background(), FinalizeInput{
		OrderID:       order.ID,
		ShippedBy:     1,
		ExplicitScans: []ExplicitScan{{Barcode: "JR205"}},
	})
	if !errors.Is(err, ErrUnitSoldConflict) {
		t.Fatalf("expected ErrUnitSoldConflict, got: %v", err)
	}

	var reloaded models.SalesOrder
	if err := env.db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusOpen {
		t.Fatalf("expected order still open, got %s", reloaded.Status)
	}
}

func TestUndoScanLockedAfterFinalize(t *testing.T) {
	env := setupServiceTestEnv(t, "shipment_undo_locked")
	order := env.createOrder(t, "SO-206", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 1},
	})
	env.createPrimary(t, "JR206", "双胶纸", "80", "787", "6000")

	result, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: order.ID, Barcode: "JR206"})
	if err != nil {
		t.Fatalf("RecordScan error: %v", err)
	}
	if _, err := env.shipment.Finalize(context.Background(), FinalizeInput{OrderID: order.ID, ShippedBy: 1}); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}

	_, err = env.scan.UndoScan(context.Background(), result.Record.ID)
	if !errors.Is(err, ErrScanRecordLocked) {
		t.Fatalf("expected ErrScanRecordLocked, got: %v", err)
	}
}
