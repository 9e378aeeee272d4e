package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rollstock-erp/internal/models"
)

func TestIntakeRejectsDuplicateBarcode(t *testing.T) {
	env := setupServiceTestEnv(t, "inventory_intake")
	input := IntakeInput{
		Barcode:      "JR100",
		MaterialType: "双胶纸",
		BasisWeight:  mv(t, "80"),
		Width:        mv(t, "787"),
		TotalLength:  mv(t, "6000"),
	}
	created, err := env.inventory.Intake(input)
	if err != nil {
		t.Fatalf("Intake error: %v", err)
	}
	if _, err := env.inventory.Intake(input); !errors.Is(err, ErrBarcodeExists) {
		t.Fatalf("expected ErrBarcodeExists, got: %v", err)
	}

	// 子卷条码同样占用命名空间
	if _, err := env.inventory.Cut(CutInput{
		ParentUnitID: created.ID,
		Barcode:      "SR100",
		Width:        mv(t, "500"),
		Length:       mv(t, "1000"),
	}); err != nil {
		t.Fatalf("Cut error: %v", err)
	}
	input.Barcode = "SR100"
	if _, err := env.inventory.Intake(input); !errors.Is(err, ErrBarcodeExists) {
		t.Fatalf("expected derived barcode to block intake, got: %v", err)
	}
}

func TestIntakeBatchAllOrNothing(t *testing.T) {
	env := setupServiceTestEnv(t, "inventory_intake_batch")
	env.createPrimary(t, "JR101", "双胶纸", "80", "787", "6000")

	_, err := env.inventory.IntakeBatch([]IntakeInput{
		{Barcode: "JR102", MaterialType: "双胶纸", TotalLength: mv(t, "6000")},
		{Barcode: "JR101", MaterialType: "双胶纸", TotalLength: mv(t, "6000")},
	})
	if !errors.Is(err, ErrBarcodeExists) {
		t.Fatalf("expected ErrBarcodeExists, got: %v", err)
	}

	var count int64
	if err := env.db.Model(&models.PrimaryUnit{}).Count(&count).Error; err != nil {
		t.Fatalf("count primary units failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected batch rolled back, got %d units", count)
	}
}

func TestCutDecrementsParentAndSnapshotsSpec(t *testing.T) {
	env := setupServiceTestEnv(t, "inventory_cut")
	parent := env.createPrimary(t, "JR103", "铜版纸", "128", "1092", "4500")

	unit, err := env.inventory.Cut(CutInput{
		ParentUnitID: parent.ID,
		Barcode:      "SR103",
		Width:        mv(t, "546"),
		Length:       mv(t, "1500"),
	})
	if err != nil {
		t.Fatalf("Cut error: %v", err)
	}
	if unit.MaterialType != "铜版纸" || unit.BasisWeight.String() != mv(t, "128").String() {
		t.Fatalf("expected spec snapshot from parent, got %+v", unit)
	}
	if unit.RemainingLength.String() != mv(t, "1500").String() {
		t.Fatalf("expected remaining length 1500, got %s", unit.RemainingLength.String())
	}

	reloaded := env.reloadPrimary(t, parent.ID)
	if reloaded.RemainingLength.String() != mv(t, "3000").String() {
		t.Fatalf("expected parent remaining 3000, got %s", reloaded.RemainingLength.String())
	}
}

func TestCutRejectsInsufficientRemaining(t *testing.T) {
	env := setupServiceTestEnv(t, "inventory_cut_short")
	parent := env.createPrimary(t, "JR104", "双胶纸", "80", "787", "1000")

	_, err := env.inventory.Cut(CutInput{
		ParentUnitID: parent.ID,
		Barcode:      "SR104",
		Width:        mv(t, "500"),
		Length:       mv(t, "1500"),
	})
	if !errors.Is(err, ErrInsufficientRemainingLength) {
		t.Fatalf("expected ErrInsufficientRemainingLength, got: %v", err)
	}

	reloaded := env.reloadPrimary(t, parent.ID)
	if reloaded.RemainingLength.String() != mv(t, "1000").String() {
		t.Fatalf("expected parent untouched, got %s", reloaded.RemainingLength.String())
	}
	var count int64
	if err := env.db.Model(&models.DerivedUnit{}).Count(&count).Error; err != nil {
		t.Fatalf("count derived units failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no derived unit created, got %d", count)
	}
}

func TestDeleteDerivedRecreditsParent(t *testing.T) {
	env := setupServiceTestEnv(t, "inventory_delete_derived")
	parent := env.createPrimary(t, "JR105", "双胶纸", "80", "787", "6000")
	unit, err := env.inventory.Cut(CutInput{
		ParentUnitID: parent.ID,
		Barcode:      "SR105",
		Width:        mv(t, "500"),
		Length:       mv(t, "2000"),
	})
	if err != nil {
		t.Fatalf("Cut error: %v", err)
	}

	if err := env.inventory.DeleteDerived(unit.ID); err != nil {
		t.Fatalf("DeleteDerived error: %v", err)
	}
	reloaded := env.reloadPrimary(t, parent.ID)
	if reloaded.RemainingLength.String() != mv(t, "6000").String() {
		t.Fatalf("expected length recredited to 6000, got %s", reloaded.RemainingLength.String())
	}
}

func TestDeleteRefusedWhenReferenced(t *testing.T) {
	env := setupServiceTestEnv(t, "inventory_delete_refused")
	order := env.createOrder(t, "SO-100", []models.OrderLineItem{
		{Position: 0, MaterialType: "双胶纸", RequiredQuantity: 1},
	})
	unit := env.createPrimary(t, "JR106", "双胶纸", "80", "787", "6000")

	if _, err := env.scan.RecordScan(context.Background(), RecordScanInput{OrderID: order.ID, Barcode: "JR106"}); err != nil {
		t.Fatalf("RecordScan error: %v", err)
	}
	if err := env.inventory.DeletePrimary(unit.ID); !errors.Is(err, ErrUnitReferenced) {
		t.Fatalf("expected ErrUnitReferenced, got: %v", err)
	}

	// 有子卷的母卷同样不可删除
	parent := env.createPrimary(t, "JR107", "双胶纸", "80", "787", "6000")
	if _, err := env.inventory.Cut(CutInput{
		ParentUnitID: parent.ID,
		Barcode:      "SR107",
		Width:        mv(t, "500"),
		Length:       mv(t, "1000"),
	}); err != nil {
		t.Fatalf("Cut error: %v", err)
	}
	if err := env.inventory.DeletePrimary(parent.ID); !errors.Is(err, ErrUnitReferenced) {
		t.Fatalf("expected ErrUnitReferenced for parent with children, got: %v", err)
	}
}

func TestLookupBarcodePrimaryFirst(t *testing.T) {
	env := setupServiceTestEnv(t, "inventory_lookup")
	parent := env.createPrimary(t, "JR108", "双胶纸", "80", "787", "6000")
	if _, err := env.inventory.Cut(CutInput{
		ParentUnitID: parent.ID,
		Barcode:      "SR108",
		Width:        mv(t, "500"),
		Length:       mv(t, "1000"),
	}); err != nil {
		t.Fatalf("Cut error: %v", err)
	}

	primary, derived, err := env.inventory.LookupBarcode("JR108")
	if err != nil || primary == nil || derived != nil {
		t.Fatalf("expected primary hit, got primary=%v derived=%v err=%v", primary, derived, err)
	}
	primary, derived, err = env.inventory.LookupBarcode("SR108")
	if err != nil || primary != nil || derived == nil {
		t.Fatalf("expected derived hit, got primary=%v derived=%v err=%v", primary, derived, err)
	}
	if _, _, err := env.inventory.LookupBarcode("NOPE"); !errors.Is(err, ErrBarcodeNotFound) {
		t.Fatalf("expected ErrBarcodeNotFound, got: %v", err)
	}
}
