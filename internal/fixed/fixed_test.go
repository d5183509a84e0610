package fixed

import (
	"errors"
	"math"
	"testing"
)

func fix(t *testing.T, f Format, x float64) Fixed {
	t.Helper()
	v, ok := f.FromFloat(x)
	if !ok {
		t.Fatalf("%v not representable in %v", x, f)
	}
	return v
}

func TestNewFormat(t *testing.T) {
	if _, err := NewFormat(31); err != nil {
		t.Errorf("Q31 should be valid: %v", err)
	}
	if _, err := NewFormat(32); !errors.Is(err, ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}
	if Default.Q() != 14 {
		t.Errorf("expected default Q14, got %v", Default)
	}
	if Q14.String() != "Q18.14" {
		t.Errorf("unexpected name %s", Q14.String())
	}
}

func TestFromFloatWords(t *testing.T) {
	tests := []struct {
		x    float64
		want uint32
	}{
		{1, 0x00010000},
		{-24, 0xFFE80000},
		{2.5, 0x00028000},
		{21.3, 0x00154CCD},
	}

	for _, tt := range tests {
		got := fix(t, Q16, tt.x)
		if uint32(got) != tt.want {
			t.Errorf("FromFloat(%v): expected %08X, got %08X", tt.x, tt.want, uint32(got))
		}
	}
}

func TestFromFloatRoundsHalfAwayFromZero(t *testing.T) {
	half := Q14.Resolution() / 2

	if got := fix(t, Q14, half); got != 1 {
		t.Errorf("expected +half LSB to round to 1, got %d", got)
	}
	if got := fix(t, Q14, -half); got != -1 {
		t.Errorf("expected -half LSB to round to -1, got %d", got)
	}
	if got := fix(t, Q14, 0.4*Q14.Resolution()); got != 0 {
		t.Errorf("expected 0.4 LSB to round to 0, got %d", got)
	}
}

func TestFromFloatRange(t *testing.T) {
	if _, ok := Q14.FromFloat(200000); ok {
		t.Error("expected 200000 to be out of range for Q14")
	}
	if _, ok := Q14.FromFloat(-200000); ok {
		t.Error("expected -200000 to be out of range for Q14")
	}
	if _, ok := Q14.FromFloat(math.NaN()); ok {
		t.Error("expected NaN to be rejected")
	}
	if _, ok := Q14.FromFloat(-Q14.MaxFloat() - 1); ok {
		t.Error("expected value below Min to be rejected")
	}
}

func TestRoundTrip(t *testing.T) {
	values := []float64{0, 1, -1, 0.1, -0.1, 3.14159, -2.71828, 1234.5678, -99999.25, 0.00006}

	for _, f := range []Format{Q8, Q14, Q16} {
		for _, x := range values {
			v, ok := f.FromFloat(x)
			if !ok {
				if math.Abs(x) <= f.MaxFloat() {
					t.Errorf("%v: %v should be representable", f, x)
				}
				continue
			}
			if got := f.ToFloat(v); math.Abs(got-x) > f.Resolution() {
				t.Errorf("%v: round trip of %v gave %v", f, x, got)
			}
		}
	}
}

func TestAdd(t *testing.T) {
	f := Q16
	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{"both positive", 123, 362, 485},
		{"both negative", -827, -21, -848},
		{"negative and positive", -389, 2379, 1990},
		{"positive and negative", -2379, 389, -1990},
		{"decimals", 32.25, 9766.125, 9798.375},
		{"negative decimals", -92.0625, -18.0078125, -110.0703125},
		{"rounded decimals", 1.3, 1.7, 3},
	}

	for _, tt := range tests {
		got, ok := Add(fix(t, f, tt.x), fix(t, f, tt.y))
		if !ok {
			t.Errorf("%s: unexpected overflow", tt.name)
			continue
		}
		if got != fix(t, f, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, f.ToFloat(got))
		}
	}
}

func TestAddOverflow(t *testing.T) {
	if _, ok := Add(fix(t, Q16, 30000), fix(t, Q16, 30000)); ok {
		t.Error("expected positive overflow")
	}
	if _, ok := Add(fix(t, Q16, -30000), fix(t, Q16, -30000)); ok {
		t.Error("expected negative overflow")
	}
	if _, ok := Add(fix(t, Q14, 70000), fix(t, Q14, 70000)); ok {
		t.Error("expected Q14 overflow")
	}
	if _, ok := Add(fix(t, Q14, 30000), fix(t, Q14, 30000)); !ok {
		t.Error("30000+30000 fits in Q14")
	}
}

func TestAddNeverReturnsOverflowWord(t *testing.T) {
	half := Fixed(math.MinInt32 / 2)
	if _, ok := Add(half, half); ok {
		t.Error("sum equal to the reserved word must be reported as overflow")
	}
	if _, ok := Add(Overflow, 0); ok {
		t.Error("reserved operand must be rejected")
	}
}

func TestSub(t *testing.T) {
	f := Q16
	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{"both positive", 123, 362, -239},
		{"both negative", -827, -21, -806},
		{"negative and positive", -389, 2379, -2768},
		{"positive and negative", 389, -2379, 2768},
		{"decimals", 32.25, 0.03125, 32.21875},
		{"negative decimals", -92.0625, -18.0078125, -74.0546875},
		{"rounded decimals", 1.3, 1.7, -0.4},
	}

	for _, tt := range tests {
		got, ok := Sub(fix(t, f, tt.x), fix(t, f, tt.y))
		if !ok {
			t.Errorf("%s: unexpected overflow", tt.name)
			continue
		}
		if got != fix(t, f, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, f.ToFloat(got))
		}
	}
}

func TestSubOverflow(t *testing.T) {
	if _, ok := Sub(fix(t, Q16, 30000), fix(t, Q16, -30000)); ok {
		t.Error("expected positive overflow")
	}
	if _, ok := Sub(fix(t, Q16, -30000), fix(t, Q16, 30000)); ok {
		t.Error("expected negative overflow")
	}
	if _, ok := Sub(-1, Q16.Max()); ok {
		t.Error("difference equal to the reserved word must be reported as overflow")
	}
}

func TestMul(t *testing.T) {
	f := Q16
	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{"both positive", 36, 29, 1044},
		{"both negative", -100, -100, 10000},
		{"positive and negative", 324, -89, -28836},
		{"big and small", 15000, 2, 30000},
		{"decimals", 0.25, 23.5, 5.875},
		{"truncated decimals", 100, 0.1, 10.0006103515625},
	}

	for _, tt := range tests {
		got, ok := f.Mul(fix(t, f, tt.x), fix(t, f, tt.y))
		if !ok {
			t.Errorf("%s: unexpected overflow", tt.name)
			continue
		}
		if got != fix(t, f, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, f.ToFloat(got))
		}
	}
}

func TestMulTruncatesQ14(t *testing.T) {
	got, ok := Q14.Mul(fix(t, Q14, 100), fix(t, Q14, 0.1))
	if !ok {
		t.Fatal("unexpected overflow")
	}
	if Q14.ToFloat(got) != 9.99755859375 {
		t.Errorf("expected 9.99755859375, got %v", Q14.ToFloat(got))
	}
	if got == fix(t, Q14, 10) {
		t.Error("product should differ from the exact FIX(10)")
	}
}

func TestMulRoundsTowardNegativeInfinity(t *testing.T) {
	half := fix(t, Q14, 0.5)

	if got, _ := Q14.Mul(3, half); got != 1 {
		t.Errorf("expected 1.5 LSB to truncate to 1, got %d", got)
	}
	if got, _ := Q14.Mul(-3, half); got != -2 {
		t.Errorf("expected -1.5 LSB to truncate to -2, got %d", got)
	}
}

func TestMulOverflow(t *testing.T) {
	if _, ok := Q16.Mul(fix(t, Q16, 2000), fix(t, Q16, 5000)); ok {
		t.Error("expected positive overflow")
	}
	if _, ok := Q16.Mul(fix(t, Q16, -2000), fix(t, Q16, 5000)); ok {
		t.Error("expected negative overflow")
	}
	if _, ok := Q14.Mul(fix(t, Q14, 2000), fix(t, Q14, 5000)); ok {
		t.Error("expected Q14 overflow")
	}
	if _, ok := Q14.Mul(Q14.Max(), fix(t, Q14, 1)); !ok {
		t.Error("Max*1 should not overflow")
	}
}

func TestClamp(t *testing.T) {
	lo, hi := fix(t, Q14, -12), fix(t, Q14, 12)
	if Clamp(fix(t, Q14, 20), lo, hi) != hi {
		t.Error("expected clamp to upper bound")
	}
	if Clamp(fix(t, Q14, -20), lo, hi) != lo {
		t.Error("expected clamp to lower bound")
	}
	if Clamp(fix(t, Q14, 3), lo, hi) != fix(t, Q14, 3) {
		t.Error("expected value inside bounds to pass through")
	}
}
