package calculator

import (
	"fmt"
	"math"
	"strings"
)

// DefaultMaxDigits bounds how many digits an operand may be typed with.
const DefaultMaxDigits = 16

// Machine is the calculator state machine. It holds one operand being
// typed, an optional first operand with its pending operator, and the last
// computed result.
//
// A Machine is not safe for concurrent use.
type Machine struct {
	entry       string
	previous    float64
	hasPrevious bool
	operator    Operator
	result      Value
	waiting     bool

	maxDigits int
}

// Option configures a Machine.
type Option func(*Machine)

// WithMaxDigits bounds typed operands to n digits. Zero means unbounded.
func WithMaxDigits(n int) Option {
	return func(m *Machine) {
		if n >= 0 {
			m.maxDigits = n
		}
	}
}

// New returns a Machine in its initial state.
func New(opts ...Option) *Machine {
	m := &Machine{maxDigits: DefaultMaxDigits}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Digit types d, which must be '0' through '9'.
func (m *Machine) Digit(d byte) error {
	if d < '0' || d > '9' {
		return fmt.Errorf("digit %q: %w", d, ErrInvalidKey)
	}
	if m.Errored() {
		return nil
	}

	switch {
	case m.waiting:
		m.entry = string(d)
		m.waiting = false
	case m.entry == "0":
		m.entry = string(d)
	default:
		if m.maxDigits > 0 && digitCount(m.entry) >= m.maxDigits {
			return nil
		}
		m.entry += string(d)
	}
	return nil
}

// DecimalPoint adds a decimal point unless the entry already has one.
func (m *Machine) DecimalPoint() {
	if m.Errored() || strings.Contains(m.entry, ".") {
		return
	}
	if m.waiting {
		m.entry = "0."
		m.waiting = false
		return
	}
	m.entry += "."
}

// OperatorPressed records op as the pending operator. When a first operand
// and operator are already set and a second operand has been typed, the
// pending operation is evaluated first, so operations chain left to right.
func (m *Machine) OperatorPressed(op Operator) error {
	if op == OpNone || op > OpDivide {
		return fmt.Errorf("operator %d: %w", op, ErrInvalidKey)
	}
	if m.Errored() {
		return nil
	}

	// Substitution: operator chosen, nothing typed since.
	if m.operator != OpNone && m.waiting {
		m.operator = op
		return nil
	}

	if !m.hasPrevious {
		first := m.result.num
		if m.entry != "" {
			first = parseEntry(m.entry)
		}
		m.result = Number(first)
		m.previous = first
		m.hasPrevious = true
	} else {
		m.result = Calculate(m.previous, parseEntry(m.entry), m.operator)
		if m.fail() {
			return nil
		}
		m.previous = m.result.num
	}

	m.operator = op
	m.waiting = true
	m.entry = ""
	return nil
}

// Equals evaluates the pending operation. It does nothing when no operator
// is pending or no second operand has been typed yet.
func (m *Machine) Equals() {
	if m.Errored() || m.operator == OpNone || m.waiting {
		return
	}

	m.result = Calculate(m.previous, parseEntry(m.entry), m.operator)
	if m.fail() {
		return
	}
	m.entry = m.result.String()
	m.previous = 0
	m.hasPrevious = false
	m.operator = OpNone
	m.waiting = true
}

// Negate flips the sign of the entry.
func (m *Machine) Negate() {
	if m.Errored() || m.entry == "" {
		return
	}
	m.entry = FormatNumber(-parseEntry(m.entry))
}

// Percent divides the entry by 100.
func (m *Machine) Percent() {
	if m.Errored() || m.entry == "" {
		return
	}
	m.entry = FormatNumber(parseEntry(m.entry) / 100)
}

// Backspace removes the last typed character. An emptied entry becomes "0".
func (m *Machine) Backspace() {
	if m.Errored() {
		return
	}
	if m.entry != "" {
		m.entry = m.entry[:len(m.entry)-1]
	}
	if m.entry == "" || m.entry == "-" {
		m.entry = "0"
	}
}

// Clear returns the machine to its initial state. It is the only input
// accepted while the machine holds an error.
func (m *Machine) Clear() {
	*m = Machine{maxDigits: m.maxDigits}
}

// Errored reports whether the last calculation failed.
func (m *Machine) Errored() bool {
	return m.result.err != nil
}

// Result returns the last computed value.
func (m *Machine) Result() Value {
	return m.result
}

// Entry returns the operand being typed.
func (m *Machine) Entry() string {
	return m.entry
}

// Waiting reports whether the next digit starts a fresh operand.
func (m *Machine) Waiting() bool {
	return m.waiting
}

// Operator returns the pending operator.
func (m *Machine) Operator() Operator {
	return m.operator
}

// fail moves the machine into its error state when the last result carries
// an error kind.
func (m *Machine) fail() bool {
	if m.result.err == nil {
		return false
	}
	m.entry = ""
	m.previous = 0
	m.hasPrevious = false
	m.operator = OpNone
	m.waiting = false
	return true
}

// Display is the two-line readout.
type Display struct {
	// Expression is the first operand followed by the pending operator.
	Expression string `json:"expression"`
	// Value is the operand being typed or the last result.
	Value string `json:"value"`
}

// Display renders the current state.
func (m *Machine) Display() Display {
	var previous string
	if m.hasPrevious {
		previous = FormatNumber(m.previous)
	}
	d := Display{Expression: previous + " " + m.operator.String()}

	switch {
	case m.Errored():
		d.Value = errorText
	case m.entry != "":
		d.Value = m.entry
	case m.result.num != 0 && !math.IsNaN(m.result.num):
		d.Value = FormatNumber(m.result.num)
	default:
		d.Value = "0"
	}
	return d
}

// State is an exported snapshot of a Machine.
type State struct {
	CurrentInput            string `json:"current_input"`
	PreviousInput           string `json:"previous_input"`
	Operator                string `json:"operator"`
	Result                  string `json:"result"`
	WaitingForSecondOperand bool   `json:"waiting_for_second_operand"`
	Error                   string `json:"error,omitempty"`
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() State {
	s := State{
		CurrentInput:            m.entry,
		Operator:                m.operator.String(),
		Result:                  m.result.String(),
		WaitingForSecondOperand: m.waiting,
	}
	if m.hasPrevious {
		s.PreviousInput = FormatNumber(m.previous)
	}
	if m.result.err != nil {
		s.Error = m.result.err.Error()
	}
	return s
}
