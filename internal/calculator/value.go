package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrDivisionByZero is carried by a Value produced by dividing by zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrInvalidKey is returned for tokens the calculator does not understand.
	ErrInvalidKey = errors.New("invalid key")
)

// errorText is what the display shows while the machine holds an error.
const errorText = "Error"

// Operator is a pending binary operator.
type Operator byte

const (
	OpNone Operator = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
)

// ParseOperator maps an operator symbol to its Operator.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "+":
		return OpAdd, nil
	case "-":
		return OpSubtract, nil
	case "*":
		return OpMultiply, nil
	case "/":
		return OpDivide, nil
	}
	return OpNone, fmt.Errorf("operator %q: %w", s, ErrInvalidKey)
}

// String returns the operator symbol, or "" for OpNone.
func (o Operator) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	}
	return ""
}

// Name is the operation name used in metrics and spans.
func (o Operator) Name() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	}
	return "none"
}

// Value is the outcome of a calculation: a number or an error kind.
// The zero Value is the number 0.
type Value struct {
	num float64
	err error
}

// Number wraps a float64 as a Value.
func Number(f float64) Value {
	return Value{num: f}
}

// Failed returns a Value carrying err.
func Failed(err error) Value {
	return Value{err: err}
}

// Float returns the numeric value, or the error the Value carries.
func (v Value) Float() (float64, error) {
	if v.err != nil {
		return 0, v.err
	}
	return v.num, nil
}

// Err returns the error kind, nil for numbers.
func (v Value) Err() error {
	return v.err
}

func (v Value) String() string {
	if v.err != nil {
		return errorText
	}
	return FormatNumber(v.num)
}

// Calculate applies op to a and b. Dividing by zero yields a Value carrying
// ErrDivisionByZero. An unknown operator yields b unchanged.
func Calculate(a, b float64, op Operator) Value {
	switch op {
	case OpAdd:
		return Number(a + b)
	case OpSubtract:
		return Number(a - b)
	case OpMultiply:
		return Number(a * b)
	case OpDivide:
		if b == 0 {
			return Failed(ErrDivisionByZero)
		}
		return Number(a / b)
	}
	return Number(b)
}
