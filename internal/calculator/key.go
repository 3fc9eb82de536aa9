package calculator

import "fmt"

// KeyKind classifies an input token.
type KeyKind int

const (
	KeyDigit KeyKind = iota + 1
	KeyDecimal
	KeyOperator
	KeyAction
	KeyBackspace
)

// Action is a named calculator action.
type Action string

const (
	ActionClear   Action = "clear"
	ActionNegate  Action = "negate"
	ActionPercent Action = "percent"
	ActionEquals  Action = "equals"
)

// Key is a classified input token.
type Key struct {
	Kind     KeyKind
	Digit    byte
	Operator Operator
	Action   Action
}

// String returns a label for the key, used for metrics and span names.
func (k Key) String() string {
	switch k.Kind {
	case KeyDigit:
		return "digit"
	case KeyDecimal:
		return "decimal"
	case KeyOperator:
		return k.Operator.Name()
	case KeyAction:
		return string(k.Action)
	case KeyBackspace:
		return "backspace"
	}
	return "unknown"
}

// ParseKey classifies a token. Tokens are button values and action names
// ("7", ".", "+", "negate") or keyboard key names ("Enter", "Escape",
// "Backspace").
func ParseKey(token string) (Key, error) {
	switch token {
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return Key{Kind: KeyDigit, Digit: token[0]}, nil
	case ".":
		return Key{Kind: KeyDecimal}, nil
	case "+", "-", "*", "/":
		op, _ := ParseOperator(token)
		return Key{Kind: KeyOperator, Operator: op}, nil
	case "=", "Enter", string(ActionEquals):
		return Key{Kind: KeyAction, Action: ActionEquals}, nil
	case "Escape", string(ActionClear):
		return Key{Kind: KeyAction, Action: ActionClear}, nil
	case string(ActionNegate):
		return Key{Kind: KeyAction, Action: ActionNegate}, nil
	case string(ActionPercent):
		return Key{Kind: KeyAction, Action: ActionPercent}, nil
	case "Backspace":
		return Key{Kind: KeyBackspace}, nil
	}
	return Key{}, fmt.Errorf("key %q: %w", token, ErrInvalidKey)
}

// Action applies a named action.
func (m *Machine) Action(a Action) error {
	switch a {
	case ActionClear:
		m.Clear()
	case ActionNegate:
		m.Negate()
	case ActionPercent:
		m.Percent()
	case ActionEquals:
		m.Equals()
	default:
		return fmt.Errorf("action %q: %w", a, ErrInvalidKey)
	}
	return nil
}

// Press applies a classified key.
func (m *Machine) Press(k Key) error {
	switch k.Kind {
	case KeyDigit:
		return m.Digit(k.Digit)
	case KeyDecimal:
		m.DecimalPoint()
		return nil
	case KeyOperator:
		return m.OperatorPressed(k.Operator)
	case KeyAction:
		return m.Action(k.Action)
	case KeyBackspace:
		m.Backspace()
		return nil
	}
	return fmt.Errorf("key kind %d: %w", k.Kind, ErrInvalidKey)
}

// PressAll parses and applies tokens in order. It stops at the first
// invalid token and returns how many tokens were applied.
func (m *Machine) PressAll(tokens ...string) (int, error) {
	for i, token := range tokens {
		k, err := ParseKey(token)
		if err != nil {
			return i, err
		}
		if err := m.Press(k); err != nil {
			return i, err
		}
	}
	return len(tokens), nil
}
