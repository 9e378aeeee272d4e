package service

import (
	"github.com/rollstock-erp/internal/models"
)

// 默认规格比较容差，吸收物理测量的浮点噪声
const defaultToleranceAbs = "0.01"

// UnitSpec 待匹配库存单元的规格
type UnitSpec struct {
	MaterialType string
	BasisWeight  models.Measure
	Width        models.Measure
}

// SpecMatcher 规格匹配器：把库存单元的规格匹配到订单中未扫满的订单行
// 订单行的空字段视为不限；数值字段按绝对容差比较
type SpecMatcher struct {
	tolerance models.Measure
}

// NewSpecMatcher 创建规格匹配器，容差非法时回退默认值
func NewSpecMatcher(toleranceAbs string) *SpecMatcher {
	tol, err := models.NewMeasureFromString(toleranceAbs)
	if err != nil || !tol.IsPositive() {
		tol, _ = models.NewMeasureFromString(defaultToleranceAbs)
	}
	return &SpecMatcher{tolerance: tol}
}

// Tolerance 当前容差
func (m *SpecMatcher) Tolerance() models.Measure {
	return m.tolerance
}

// Match 在订单行中查找与规格匹配的行
// 返回第一个命中的行（按传入顺序，即订单行声明顺序）以及全部命中行的 ID，
// 命中多于一行时由调用方记录歧义日志
func (m *SpecMatcher) Match(spec UnitSpec, items []models.OrderLineItem) (*models.OrderLineItem, []uint) {
	var first *models.OrderLineItem
	var matchedIDs []uint
	for i := range items {
		item := &items[i]
		if item.Full() {
			continue
		}
		if !m.matches(spec, item) {
			continue
		}
		matchedIDs = append(matchedIDs, item.ID)
		if first == nil {
			first = item
		}
	}
	return first, matchedIDs
}

// Matches 规格与单个订单行是否匹配，不考虑该行是否已扫满
func (m *SpecMatcher) Matches(spec UnitSpec, item *models.OrderLineItem) bool {
	return m.matches(spec, item)
}

func (m *SpecMatcher) matches(spec UnitSpec, item *models.OrderLineItem) bool {
	if item.MaterialType != "" && item.MaterialType != spec.MaterialType {
		return false
	}
	if item.BasisWeight != nil && !spec.BasisWeight.WithinTolerance(*item.BasisWeight, m.tolerance) {
		return false
	}
	if item.Width != nil && !spec.Width.WithinTolerance(*item.Width, m.tolerance) {
		return false
	}
	return true
}
