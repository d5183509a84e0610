package fixed

import (
	"fmt"
	"strings"
)

// Hex formats the raw word as eight upper-case hex digits split into two
// groups of four, e.g. "0001_0000".
func Hex(x Fixed) string {
	s := fmt.Sprintf("%08X", uint32(x))
	return s[:4] + "_" + s[4:]
}

// Verilog renders a constant as a signed wire declaration with the real value
// in a trailing comment. Gain names containing an underscore are sized by the
// datapath parameter W; other names get a fixed 32-bit range.
func (f Format) Verilog(name string, x Fixed) string {
	msb := fmt.Sprint(Width - 1)
	if strings.Contains(name, "_") {
		msb = "W-1"
	}
	return fmt.Sprintf("wire signed [%s:0] %s = %d'h%s;\t\t// %.6g", msb, name, Width, Hex(x), f.ToFloat(x))
}
