package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		back := pt * PtToMm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt back=%g diff=%g", pt, back, diff)
		}
	}
}

// TestLengthToConversions 覆盖常见单位到 mm/pt 的转换。
func TestLengthToConversions(t *testing.T) {
	cases := []struct {
		in   string
		mm   float64
		unit Unit
	}{
		{"1in", 25.4, UnitIN},
		{"2.54cm", 25.4, UnitCM},
		{"12pt", 12 * PtToMm, UnitPT},
		{"10mm", 10, UnitMM},
		{" 7 ", 7, UnitNone},
	}
	for _, c := range cases {
		l := ParseRawLengthStr(c.in)
		if l.Unit != c.unit {
			t.Fatalf("%q 单位错误: got=%v want=%v", c.in, l.Unit, c.unit)
		}
		if got := l.ToMM(); math.Abs(got-c.mm) > 1e-9 {
			t.Fatalf("%q 转 mm 期望 %g，实际 %g", c.in, c.mm, got)
		}
		if got := l.ToPT(); math.Abs(got-c.mm*MmToPt) > 1e-9 {
			t.Fatalf("%q 转 pt 期望 %g，实际 %g", c.in, c.mm*MmToPt, got)
		}
	}
	if l := ParseRawLengthStr("abc"); !l.IsZero() {
		t.Fatalf("非法长度应返回零值，实际 %+v", l)
	}
}

// TestLineHeightResolve 验证倍数与绝对值两种行高语义。
func TestLineHeightResolve(t *testing.T) {
	fontSizePT := Length{Value: 12, Unit: UnitPT}
	cases := []struct {
		in   string
		want float64
	}{
		{"1.2x", 12 * 1.2 * PtToMm},
		{"18pt", 18 * PtToMm},
		{"6mm", 6},
	}
	for _, c := range cases {
		spec, ok := ParseLineHeight(c.in)
		if !ok {
			t.Fatalf("%q 应可解析", c.in)
		}
		if got := spec.Resolve(fontSizePT, UnitMM); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("%q 解析为 mm 错误: got=%g want=%g", c.in, got, c.want)
		}
	}
	for _, bad := range []string{"", "0x", "-1x", "abc"} {
		if _, ok := ParseLineHeight(bad); ok {
			t.Fatalf("%q 不应被接受", bad)
		}
	}
}
