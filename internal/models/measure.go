package models

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// measurePrecision 物理量统一保留 3 位小数（米 / 毫米 / 克每平方米）
const measurePrecision = 3

// Measure 物理量类型，封装 decimal 保证长度与克重运算不丢失精度
type Measure struct {
	decimal.Decimal
}

// NewMeasure 从 decimal 构造物理量，按统一精度取整
func NewMeasure(d decimal.Decimal) Measure {
	return Measure{Decimal: d.Round(measurePrecision)}
}

// NewMeasureFromFloat 从 float64 构造物理量
func NewMeasureFromFloat(f float64) Measure {
	return NewMeasure(decimal.NewFromFloat(f))
}

// NewMeasureFromString 从字符串构造物理量
func NewMeasureFromString(s string) (Measure, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Measure{}, fmt.Errorf("invalid measure value %q: %w", s, err)
	}
	return NewMeasure(d), nil
}

// ZeroMeasure 零值物理量
func ZeroMeasure() Measure {
	return Measure{Decimal: decimal.Zero}
}

// Add 加法
func (m Measure) Add(other Measure) Measure {
	return NewMeasure(m.Decimal.Add(other.Decimal))
}

// Sub 减法
func (m Measure) Sub(other Measure) Measure {
	return NewMeasure(m.Decimal.Sub(other.Decimal))
}

// LessThan 是否小于
func (m Measure) LessThan(other Measure) bool {
	return m.Decimal.Cmp(other.Decimal) < 0
}

// IsPositive 是否大于零
func (m Measure) IsPositive() bool {
	return m.Decimal.IsPositive()
}

// WithinTolerance 与目标值之差是否在容差范围内
func (m Measure) WithinTolerance(target, tolerance Measure) bool {
	return m.Decimal.Sub(target.Decimal).Abs().Cmp(tolerance.Decimal) < 0
}

// String 字符串表示
func (m Measure) String() string {
	return m.Decimal.StringFixed(measurePrecision)
}

// MarshalJSON 序列化为定点字符串，避免浮点精度问题
func (m Measure) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.Decimal.StringFixed(measurePrecision) + `"`), nil
}

// UnmarshalJSON 同时接受字符串与数字形式
func (m *Measure) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		m.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid measure value %q: %w", s, err)
	}
	m.Decimal = d.Round(measurePrecision)
	return nil
}

// Value 实现 driver.Valuer
func (m Measure) Value() (driver.Value, error) {
	return m.Decimal.Value()
}

// Scan 实现 sql.Scanner
func (m *Measure) Scan(value interface{}) error {
	if value == nil {
		m.Decimal = decimal.Zero
		return nil
	}
	return m.Decimal.Scan(value)
}
