package exprvm

import "math"

// Evaluate runs the compiled bytecode against params, which must have
// exactly Arity() elements. Evaluate allocates no memory and is safe to
// call concurrently from multiple goroutines against distinct params
// slices, since the CompiledExpression is immutable after Compile returns.
func (c *CompiledExpression) Evaluate(params []float64) (float64, error) {
	if len(params) != c.arity {
		return 0, &EvalError{Reason: "parameter count mismatch"}
	}

	var stack [MaxStackDepth]float64
	sp := 0

	for _, instr := range c.instructions {
		switch instr.Op {
		case OpLoadParam:
			stack[sp] = params[instr.Operand]
			sp++
		case OpLoadConst:
			stack[sp] = c.constants[instr.Operand]
			sp++
		case OpAdd, OpSub, OpMul, OpDiv, OpPow:
			if sp < 2 {
				return 0, ErrMalformed
			}
			b := stack[sp-1]
			a := stack[sp-2]
			sp -= 2
			var r float64
			switch instr.Op {
			case OpAdd:
				r = a + b
			case OpSub:
				r = a - b
			case OpMul:
				r = a * b
			case OpDiv:
				if b == 0 {
					return 0, ErrDivByZero
				}
				r = a / b
			case OpPow:
				r = math.Pow(a, b)
			}
			stack[sp] = r
			sp++
		}
	}

	if sp != 1 {
		return 0, ErrMalformed
	}
	return stack[0], nil
}

// IsSatisfied reports whether |Evaluate(params)-target| <= tol.
func (c *CompiledExpression) IsSatisfied(params []float64, target, tol float64) bool {
	v, err := c.Evaluate(params)
	if err != nil {
		return false
	}
	d := v - target
	if d < 0 {
		d = -d
	}
	return d <= tol
}
