package fixed

import (
	"errors"
	"fmt"
	"math"
)

// Width is the number of bits in a fixed-point word.
const Width = 32

// Fixed is a fixed-point value. Its meaning depends on the Format that
// produced it.
type Fixed int32

// Overflow is the reserved most-negative word. Successful operations never
// return it.
const Overflow Fixed = math.MinInt32

var (
	// ErrOverflow indicates a result outside the representable range.
	ErrOverflow = errors.New("fixed: overflow")

	// ErrFormat indicates an unsupported number of fractional bits.
	ErrFormat = errors.New("fixed: fractional bits out of range")
)

// OverflowError reports which operation overflowed.
type OverflowError struct {
	Op string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("fixed: %s overflow", e.Op)
}

func (e *OverflowError) Unwrap() error {
	return ErrOverflow
}

// Format describes the position of the binary point in a 32-bit word.
type Format struct {
	q uint
}

var (
	Q8  = Format{q: 8}
	Q14 = Format{q: 14}
	Q16 = Format{q: 16}
)

// Default is the format the controller firmware was built with.
var Default = Q14

// NewFormat returns a format with q fractional bits, 0 <= q < Width.
func NewFormat(q uint) (Format, error) {
	if q >= Width {
		return Format{}, fmt.Errorf("%w: %d", ErrFormat, q)
	}
	return Format{q: q}, nil
}

// Q returns the number of fractional bits.
func (f Format) Q() uint { return f.q }

// Scale is 2^Q.
func (f Format) Scale() float64 { return float64(uint64(1) << f.q) }

// Resolution is the real value of one least significant bit.
func (f Format) Resolution() float64 { return 1 / f.Scale() }

// Max is the largest representable value.
func (f Format) Max() Fixed { return math.MaxInt32 }

// Min is the smallest representable value. It is -Max, not Overflow.
func (f Format) Min() Fixed { return -math.MaxInt32 }

// MaxFloat is the real value of Max.
func (f Format) MaxFloat() float64 { return f.ToFloat(f.Max()) }

func (f Format) String() string {
	return fmt.Sprintf("Q%d.%d", Width-f.q, f.q)
}

// FromFloat converts a real number, rounding half away from zero. It reports
// false when the rounded value is not representable or x is NaN.
func (f Format) FromFloat(x float64) (Fixed, bool) {
	if math.IsNaN(x) {
		return 0, false
	}
	scaled := x * f.Scale()
	if scaled >= 0 {
		scaled += 0.5
	} else {
		scaled -= 0.5
	}
	// Truncation toward zero completes the rounding.
	scaled = math.Trunc(scaled)
	if scaled > math.MaxInt32 || scaled < -math.MaxInt32 {
		return 0, false
	}
	return Fixed(scaled), true
}

// ToFloat returns the real value of x.
func (f Format) ToFloat(x Fixed) float64 {
	return float64(x) / f.Scale()
}

// Add returns x+y. Overflow is detected from the operand and result sign bits
// alone: it occurs when both operands share a sign the sum does not.
func Add(x, y Fixed) (Fixed, bool) {
	if x == Overflow || y == Overflow {
		return 0, false
	}
	r := Fixed(uint32(x) + uint32(y))
	if (x^y) >= 0 && (x^r) < 0 {
		return 0, false
	}
	if r == Overflow {
		return 0, false
	}
	return r, true
}

// Sub returns x-y. Overflow occurs when the operands differ in sign and the
// difference differs in sign from x.
func Sub(x, y Fixed) (Fixed, bool) {
	if x == Overflow || y == Overflow {
		return 0, false
	}
	r := Fixed(uint32(x) - uint32(y))
	if (x^y) < 0 && (x^r) < 0 {
		return 0, false
	}
	if r == Overflow {
		return 0, false
	}
	return r, true
}

// Mul returns x*y rescaled by 2^-Q. The double-width product is shifted right
// arithmetically, so the result is truncated toward negative infinity. The
// bits discarded above the word, together with the sign bit of the result,
// must all equal the sign of the product.
func (f Format) Mul(x, y Fixed) (Fixed, bool) {
	if x == Overflow || y == Overflow {
		return 0, false
	}
	p := int64(x) * int64(y)
	hi := p >> (Width + f.q - 1)
	if hi != 0 && hi != -1 {
		return 0, false
	}
	r := Fixed(p >> f.q)
	if r == Overflow {
		return 0, false
	}
	return r, true
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi Fixed) Fixed {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
