package service

import (
	"testing"

	"github.com/rollstock-erp/internal/models"
)

func mv(t *testing.T, s string) models.Measure {
	t.Helper()
	m, err := models.NewMeasureFromString(s)
	if err != nil {
		t.Fatalf("parse measure %q failed: %v", s, err)
	}
	return m
}

func mvp(t *testing.T, s string) *models.Measure {
	m := mv(t, s)
	return &m
}

func TestSpecMatcherTolerance(t *testing.T) {
	matcher := NewSpecMatcher("0.01")
	spec := UnitSpec{
		MaterialType: "双胶纸",
		BasisWeight:  mv(t, "80"),
		Width:        mv(t, "787.005"),
	}
	items := []models.OrderLineItem{
		{
			ID:               1,
			MaterialType:     "双胶纸",
			BasisWeight:      mvp(t, "80"),
			Width:            mvp(t, "787"),
			RequiredQuantity: 1,
		},
	}

	line, _ := matcher.Match(spec, items)
	if line == nil {
		t.Fatalf("expected width 787.005 to match 787 within tolerance")
	}

	// 偏差恰好等于容差时不命中
	spec.Width = mv(t, "787.01")
	line, _ = matcher.Match(spec, items)
	if line != nil {
		t.Fatalf("expected width 787.01 to miss 787 at exact tolerance boundary")
	}

	spec.Width = mv(t, "787.02")
	line, _ = matcher.Match(spec, items)
	if line != nil {
		t.Fatalf("expected width 787.02 to miss 787")
	}
}

func TestSpecMatcherWildcardFields(t *testing.T) {
	matcher := NewSpecMatcher("0.01")
	spec := UnitSpec{
		MaterialType: "铜版纸",
		BasisWeight:  mv(t, "128"),
		Width:        mv(t, "1092"),
	}
	items := []models.OrderLineItem{
		{ID: 1, RequiredQuantity: 1}, // 全部不限
	}

	line, _ := matcher.Match(spec, items)
	if line == nil {
		t.Fatalf("expected empty line item spec to match anything")
	}

	items[0].MaterialType = "双胶纸"
	line, _ = matcher.Match(spec, items)
	if line != nil {
		t.Fatalf("expected material type mismatch to miss")
	}
}

func TestSpecMatcherSkipsFullLines(t *testing.T) {
	matcher := NewSpecMatcher("0.01")
	spec := UnitSpec{MaterialType: "双胶纸", BasisWeight: mv(t, "80"), Width: mv(t, "787")}
	items := []models.OrderLineItem{
		{ID: 1, MaterialType: "双胶纸", RequiredQuantity: 2, ScannedCount: 2},
		{ID: 2, MaterialType: "双胶纸", RequiredQuantity: 2, ScannedCount: 1},
	}

	line, matchedIDs := matcher.Match(spec, items)
	if line == nil || line.ID != 2 {
		t.Fatalf("expected full line to be skipped, got %+v", line)
	}
	if len(matchedIDs) != 1 {
		t.Fatalf("expected 1 matched id, got %v", matchedIDs)
	}
}

func TestSpecMatcherDeclarationOrderWins(t *testing.T) {
	matcher := NewSpecMatcher("0.01")
	spec := UnitSpec{MaterialType: "双胶纸", BasisWeight: mv(t, "80"), Width: mv(t, "787")}
	items := []models.OrderLineItem{
		{ID: 7, Position: 0, MaterialType: "双胶纸", RequiredQuantity: 1},
		{ID: 8, Position: 1, RequiredQuantity: 1}, // 不限规格，同样命中
	}

	line, matchedIDs := matcher.Match(spec, items)
	if line == nil || line.ID != 7 {
		t.Fatalf("expected first declared line to win, got %+v", line)
	}
	if len(matchedIDs) != 2 {
		t.Fatalf("expected both lines reported as matched, got %v", matchedIDs)
	}
}

func TestSpecMatcherInvalidToleranceFallsBack(t *testing.T) {
	matcher := NewSpecMatcher("not-a-number")
	want := mv(t, "0.01")
	if !matcher.Tolerance().Decimal.Equal(want.Decimal) {
		t.Fatalf("expected fallback tolerance 0.01, got %s", matcher.Tolerance().String())
	}
}
