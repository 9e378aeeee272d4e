package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rollstock-erp/internal/constants"
	"github.com/rollstock-erp/internal/models"
)

func TestProgressComputedFromPersistedState(t *testing.T) {
	env := setupServiceTestEnv(t, "progress_cold")
	order := env.createOrder(t, "SO-300", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 2},
		{Position: 1, MaterialType: "铜版纸", RequiredQuantity: 1},
	})
	env.createPrimary(t, "JR300", "双胶纸", "80", "787", "6000")

	if _, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: order.ID, Barcode: "JR300"}); err != nil {
		t.Fatalf("RecordScan error: %v", err)
	}

	// 模拟换设备后的冷启动：进度完全由数据库状态重建
	progress, err := env.progress.Compute(order.ID)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	if progress.TotalRequired != 3 || progress.TotalScanned != 1 {
		t.Fatalf("unexpected totals: %+v", progress)
	}
	if progress.Complete {
		t.Fatalf("expected incomplete progress")
	}
	if progress.ShipmentID == nil || progress.ShipmentStatus != constants.ShipmentStatusInProgress {
		t.Fatalf("expected in-progress shipment in progress view, got %+v", progress)
	}
	if len(progress.Lines) != 2 {
		t.Fatalf("expected 2 line entries, got %d", len(progress.Lines))
	}
	if progress.Lines[0].Position != 0 || progress.Lines[0].ScannedCount != 1 || progress.Lines[0].Remaining != 1 {
		t.Fatalf("unexpected first line progress: %+v", progress.Lines[0])
	}
	if progress.Lines[1].ScannedCount != 0 || progress.Lines[1].Remaining != 1 {
		t.Fatalf("unexpected second line progress: %+v", progress.Lines[1])
	}
}

func TestProgressBeforeAnyScan(t *testing.T) {
	env := setupServiceTestEnv(t, "progress_empty")
	order := env.createOrder(t, "SO-301", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 1},
	})

	progress, err := env.progress.Get(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if progress.ShipmentID != nil || progress.ShipmentStatus != "" {
		t.Fatalf("expected no shipment before first scan, got %+v", progress)
	}
	if progress.TotalScanned != 0 || progress.Complete {
		t.Fatalf("unexpected progress: %+v", progress)
	}
}

func TestProgressUnknownOrder(t *testing.T) {
	env := setupServiceTestEnv(t, "progress_unknown")
	_ = env
	_, err := env.progress.Compute(9999)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got: %v", err)
	}
}
