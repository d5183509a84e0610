// Package fixed implements signed two's-complement fixed-point arithmetic on
// 32-bit words with a configurable number of fractional bits.
//
// Every operation is pure and allocation free. Overflow is never wrapped or
// saturated: the arithmetic functions return a tagged result
//
//	v, ok := fixed.Add(x, y)
//	if !ok {
//	    // x+y is not representable
//	}
//
// The most negative word ([Overflow]) is reserved and never produced by a
// successful operation, so the representable range is symmetric:
// [-Max, Max].
//
// There is no division. Quotients are expressed as multiplication by a
// reciprocal constant computed with [Format.FromFloat].
//
// # Rounding
//
// [Format.FromFloat] rounds half away from zero. [Format.Mul] truncates toward
// negative infinity after rescaling; it does not round to nearest.
package fixed
