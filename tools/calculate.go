package tools

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Operations accepted by calculate.
const (
	OpAdd      = "add"
	OpSubtract = "subtract"
	OpMultiply = "multiply"
	OpDivide   = "divide"
)

// ErrDivisionByZero is returned by calculate when b is zero.
var ErrDivisionByZero = errors.New("division by zero is not allowed")

// ErrUnknownOperation is returned by calculate for an operation outside the enum.
var ErrUnknownOperation = errors.New("unknown operation")

// CalculateInput is the argument bag of the calculate tool.
// a and b accept anything convertible to a finite number.
type CalculateInput struct {
	Operation string  `json:"operation" jsonschema:"required,description=The mathematical operation to perform,enum=add|subtract|multiply|divide"`
	A         float64 `json:"a" jsonschema:"required,description=First number"`
	B         float64 `json:"b" jsonschema:"required,description=Second number"`
}

// Calculate applies the operation to a and b and renders "Result: <value>".
func Calculate(in CalculateInput) (string, error) {
	var v float64
	switch in.Operation {
	case OpAdd:
		v = in.A + in.B
	case OpSubtract:
		v = in.A - in.B
	case OpMultiply:
		v = in.A * in.B
	case OpDivide:
		if in.B == 0 {
			return "", ErrDivisionByZero
		}
		v = in.A / in.B
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownOperation, in.Operation)
	}
	return "Result: " + FormatNumber(v), nil
}

// FormatNumber renders v the way ECMAScript's Number::toString does:
// integral values have no fraction, other values use the shortest decimal
// that round-trips, and magnitudes outside [1e-6, 1e21) switch to exponent
// form ("1e+21", "1.5e-7"). Negative zero prints as "0".
func FormatNumber(v float64) string {
	switch {
	case v == 0:
		return "0"
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		return exponent(strconv.FormatFloat(v, 'e', -1, 64))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// exponent rewrites Go's "1.5e-07" as "1.5e-7".
func exponent(s string) string {
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}
