package fixed

// Expr evaluates a chain of operations in one format and remembers the first
// overflow. Once an operation fails every later operation returns zero, so a
// whole expression can be written without checking each step.
//
//	e := fixed.NewExpr(fixed.Q14)
//	v := e.Add(e.Mul(a, b), c)
//	if err := e.Err(); err != nil {
//	    ...
//	}
type Expr struct {
	f   Format
	err *OverflowError
}

// Op names reported by OverflowError.
const (
	OpAdd = "add"
	OpSub = "sub"
	OpMul = "mul"
)

var (
	addOverflow = &OverflowError{Op: OpAdd}
	subOverflow = &OverflowError{Op: OpSub}
	mulOverflow = &OverflowError{Op: OpMul}
)

func NewExpr(f Format) Expr {
	return Expr{f: f}
}

func (e *Expr) Add(x, y Fixed) Fixed {
	if e.err != nil {
		return 0
	}
	r, ok := Add(x, y)
	if !ok {
		e.err = addOverflow
	}
	return r
}

func (e *Expr) Sub(x, y Fixed) Fixed {
	if e.err != nil {
		return 0
	}
	r, ok := Sub(x, y)
	if !ok {
		e.err = subOverflow
	}
	return r
}

func (e *Expr) Mul(x, y Fixed) Fixed {
	if e.err != nil {
		return 0
	}
	r, ok := e.f.Mul(x, y)
	if !ok {
		e.err = mulOverflow
	}
	return r
}

// Err returns the first overflow, or nil.
func (e *Expr) Err() error {
	if e.err == nil {
		return nil
	}
	return e.err
}
