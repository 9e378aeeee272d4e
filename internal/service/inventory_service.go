package service

import (
	"strings"

	"github.com/rollstock-erp/internal/constants"
	"github.com/rollstock-erp/internal/logger"
	"github.com/rollstock-erp/internal/models"
	"github.com/rollstock-erp/internal/repository"

	"gorm.io/gorm"
)

// InventoryService 库存单元服务：母卷入库、分切、删除与查询
type InventoryService struct {
	primaryRepo repository.PrimaryUnitRepository
	derivedRepo repository.DerivedUnitRepository
	scanRepo    repository.ScanRecordRepository
}

// NewInventoryService 创建库存服务
func NewInventoryService(primaryRepo repository.PrimaryUnitRepository, derivedRepo repository.DerivedUnitRepository, scanRepo repository.ScanRecordRepository) *InventoryService {
	return &InventoryService{
		primaryRepo: primaryRepo,
		derivedRepo: derivedRepo,
		scanRepo:    scanRepo,
	}
}

// IntakeInput 母卷入库输入
type IntakeInput struct {
	Barcode       string
	MaterialType  string
	BasisWeight   models.Measure
	Width         models.Measure
	TotalLength   models.Measure
	BatchNo       string
	WarehouseCode string
}

// Intake 母卷入库
func (s *InventoryService) Intake(input IntakeInput) (*models.PrimaryUnit, error) {
	barcode := strings.TrimSpace(input.Barcode)
	if barcode == "" || input.MaterialType == "" {
		return nil, ErrUnitInvalid
	}
	if !input.TotalLength.IsPositive() {
		return nil, ErrUnitInvalid
	}
	taken, err := s.barcodeTaken(barcode)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrBarcodeExists
	}

	unit := &models.PrimaryUnit{
		Barcode:         barcode,
		MaterialType:    input.MaterialType,
		BasisWeight:     input.BasisWeight,
		Width:           input.Width,
		TotalLength:     input.TotalLength,
		RemainingLength: input.TotalLength,
		BatchNo:         input.BatchNo,
		WarehouseCode:   input.WarehouseCode,
	}
	if err := s.primaryRepo.Create(unit); err != nil {
		return nil, err
	}
	logger.Infow("primary_unit_intake",
		"unit_id", unit.ID,
		"barcode", unit.Barcode,
		"material_type", unit.MaterialType,
		"total_length", unit.TotalLength.String(),
	)
	return unit, nil
}

// IntakeBatch 批量入库，整批一个事务，任一条码冲突则整批失败
func (s *InventoryService) IntakeBatch(inputs []IntakeInput) ([]models.PrimaryUnit, error) {
	if len(inputs) == 0 {
		return nil, ErrUnitInvalid
	}
	units := make([]models.PrimaryUnit, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, input := range inputs {
		barcode := strings.TrimSpace(input.Barcode)
		if barcode == "" || input.MaterialType == "" || !input.TotalLength.IsPositive() {
			return nil, ErrUnitInvalid
		}
		if _, dup := seen[barcode]; dup {
			return nil, ErrBarcodeExists
		}
		seen[barcode] = struct{}{}
		units = append(units, models.PrimaryUnit{
			Barcode:         barcode,
			MaterialType:    input.MaterialType,
			BasisWeight:     input.BasisWeight,
			Width:           input.Width,
			TotalLength:     input.TotalLength,
			RemainingLength: input.TotalLength,
			BatchNo:         input.BatchNo,
			WarehouseCode:   input.WarehouseCode,
		})
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		primaryTx := s.primaryRepo.WithTx(tx)
		derivedTx := s.derivedRepo.WithTx(tx)
		for i := range units {
			exists, err := primaryTx.BarcodeExists(units[i].Barcode)
			if err != nil {
				return err
			}
			if !exists {
				exists, err = derivedTx.BarcodeExists(units[i].Barcode)
				if err != nil {
					return err
				}
			}
			if exists {
				return ErrBarcodeExists
			}
		}
		return primaryTx.CreateBatch(units)
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("primary_unit_intake_batch", "count", len(units))
	return units, nil
}

// CutInput 分切输入
type CutInput struct {
	ParentUnitID uint
	Barcode      string
	Width        models.Measure
	Length       models.Measure
}

// Cut 从母卷分切子卷：扣减母卷剩余长度与创建子卷在同一事务内完成
func (s *InventoryService) Cut(input CutInput) (*models.DerivedUnit, error) {
	barcode := strings.TrimSpace(input.Barcode)
	if input.ParentUnitID == 0 || barcode == "" {
		return nil, ErrUnitInvalid
	}
	if !input.Length.IsPositive() || !input.Width.IsPositive() {
		return nil, ErrUnitInvalid
	}

	parent, err := s.primaryRepo.GetByID(input.ParentUnitID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, ErrUnitNotFound
	}

	var created *models.DerivedUnit
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		primaryTx := s.primaryRepo.WithTx(tx)
		derivedTx := s.derivedRepo.WithTx(tx)

		exists, err := primaryTx.BarcodeExists(barcode)
		if err != nil {
			return err
		}
		if !exists {
			exists, err = derivedTx.BarcodeExists(barcode)
			if err != nil {
				return err
			}
		}
		if exists {
			return ErrBarcodeExists
		}

		affected, err := primaryTx.DecrementForCut(parent.ID, input.Length)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInsufficientRemainingLength
		}

		unit := &models.DerivedUnit{
			Barcode:      barcode,
			ParentUnitID: parent.ID,
			// 纸种与克重从母卷快照，分切后不随母卷变化
			MaterialType:    parent.MaterialType,
			BasisWeight:     parent.BasisWeight,
			Width:           input.Width,
			CutLength:       input.Length,
			RemainingLength: input.Length,
		}
		if err := derivedTx.Create(unit); err != nil {
			return err
		}
		created = unit
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("derived_unit_cut",
		"unit_id", created.ID,
		"parent_unit_id", parent.ID,
		"barcode", created.Barcode,
		"length", created.CutLength.String(),
	)
	return created, nil
}

// DeleteDerived 删除子卷并把长度返还母卷，被扫描流水引用时拒绝
func (s *InventoryService) DeleteDerived(id uint) error {
	unit, err := s.derivedRepo.GetByID(id)
	if err != nil {
		return err
	}
	if unit == nil {
		return ErrUnitNotFound
	}
	refs, err := s.scanRepo.CountByUnit(constants.UnitTypeDerived, id)
	if err != nil {
		return err
	}
	if refs > 0 || unit.Sold {
		return ErrUnitReferenced
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		primaryTx := s.primaryRepo.WithTx(tx)
		derivedTx := s.derivedRepo.WithTx(tx)
		if err := derivedTx.Delete(unit.ID); err != nil {
			return err
		}
		affected, err := primaryTx.Recredit(unit.ParentUnitID, unit.CutLength)
		if err != nil {
			return err
		}
		if affected == 0 {
			// 返还会超出母卷总长，说明数据已不一致，回滚删除
			return ErrUnitInvalid
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Infow("derived_unit_deleted",
		"unit_id", unit.ID,
		"parent_unit_id", unit.ParentUnitID,
		"recredited", unit.CutLength.String(),
	)
	return nil
}

// DeletePrimary 删除母卷，有子卷或被扫描流水引用时拒绝
func (s *InventoryService) DeletePrimary(id uint) error {
	unit, err := s.primaryRepo.GetByID(id)
	if err != nil {
		return err
	}
	if unit == nil {
		return ErrUnitNotFound
	}
	children, err := s.derivedRepo.CountByParent(id)
	if err != nil {
		return err
	}
	refs, err := s.scanRepo.CountByUnit(constants.UnitTypePrimary, id)
	if err != nil {
		return err
	}
	if children > 0 || refs > 0 || unit.Sold {
		return ErrUnitReferenced
	}
	if err := s.primaryRepo.Delete(id); err != nil {
		return err
	}
	logger.Infow("primary_unit_deleted", "unit_id", id, "barcode", unit.Barcode)
	return nil
}

// LookupBarcode 按条码查找库存单元，母卷优先
func (s *InventoryService) LookupBarcode(barcode string) (*models.PrimaryUnit, *models.DerivedUnit, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, nil, ErrUnitInvalid
	}
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

// ListPrimary 查询母卷列表
func (s *InventoryService) ListPrimary(filter repository.UnitListFilter) ([]models.PrimaryUnit, int64, error) {
	return s.primaryRepo.List(filter)
}

// ListDerived 查询子卷列表
func (s *InventoryService) ListDerived(filter repository.UnitListFilter) ([]models.DerivedUnit, int64, error) {
	return s.derivedRepo.List(filter)
}

func (s *InventoryService) barcodeTaken(barcode string) (bool, error) {
	exists, err := s.primaryRepo.BarcodeExists(barcode)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}
	return s.derivedRepo.BarcodeExists(barcode)
}
