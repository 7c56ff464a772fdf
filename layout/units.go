package layout

import (
	"strconv"
	"strings"
)

// Unit 表示 DSL 中长度值的原始单位。
type Unit int

const (
	UnitNone Unit = iota // 无单位（例如倍数）
	UnitMM
	UnitCM
	UnitIN
	UnitPT
)

// pt 与 mm 的换算系数。
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// defaultFontSize 是未声明 size 时的字号（12pt，单位 mm）。
const defaultFontSize = 12 * PtToMm

// defaultLineHeightFactor 是未声明 line-height 时的倍数。
const defaultLineHeightFactor = 1.4

var unitSuffixes = []struct {
	suffix string
	unit   Unit
	mm     float64
}{
	{"mm", UnitMM, 1},
	{"cm", UnitCM, 10},
	{"in", UnitIN, 25.4},
	{"pt", UnitPT, PtToMm},
}

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	for _, s := range unitSuffixes {
		if s.unit == u {
			return s.suffix
		}
	}
	return ""
}

func mmPerUnit(u Unit) float64 {
	for _, s := range unitSuffixes {
		if s.unit == u {
			return s.mm
		}
	}
	return 1
}

// Length 保留数值与原始单位。
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// To 换算到 UnitMM 或 UnitPT；无单位数值按毫米处理。
func (l Length) To(target Unit) float64 {
	mm := l.Value * mmPerUnit(l.Unit)
	if target == UnitPT {
		return mm * MmToPt
	}
	return mm
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }

// ParseRawLengthStr 解析带单位的长度字符串并保留单位；无法解析时返回零值。
func ParseRawLengthStr(value string) Length {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return Length{}
	}
	unit, num := UnitNone, lower
	for _, s := range unitSuffixes {
		if strings.HasSuffix(lower, s.suffix) {
			unit = s.unit
			num = strings.TrimSpace(strings.TrimSuffix(lower, s.suffix))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}
	}
	return Length{Value: f, Unit: unit}
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec 保留作者意图：倍数（1.2x）或绝对长度（18pt）。
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight 解析 line-height 属性；ok 为 false 表示未声明或无法解析。
func ParseLineHeight(value string) (LineHeightSpec, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return LineHeightSpec{}, false
	}
	if factor, found := strings.CutSuffix(v, "x"); found {
		f, err := strconv.ParseFloat(factor, 64)
		if err != nil || f <= 0 {
			return LineHeightSpec{}, false
		}
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}, true
	}
	l := ParseRawLengthStr(v)
	if l.Value <= 0 {
		return LineHeightSpec{}, false
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, true
}

// Resolve 以 fontSize 为基准计算目标单位下的行高。
func (s LineHeightSpec) Resolve(fontSize Length, target Unit) float64 {
	switch s.Kind {
	case LineHeightFactor:
		return fontSize.To(target) * s.Factor
	case LineHeightAbsolute:
		return s.Len.To(target)
	default:
		return fontSize.To(target) * defaultLineHeightFactor
	}
}
