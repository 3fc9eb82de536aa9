package tui

import (
	"fmt"
	"io"
	"strings"

	"go-chi-calculator/internal/calculator"
)

// SplitTokens breaks batch input into calculator tokens. Fields that are
// tokens on their own ("negate", "Enter", "7") are kept; any other field is
// split into single characters, so "12+3=" reads as six keys.
func SplitTokens(input string) []string {
	var tokens []string
	for _, field := range strings.Fields(input) {
		if _, err := calculator.ParseKey(field); err == nil {
			tokens = append(tokens, field)
			continue
		}
		for _, r := range field {
			tokens = append(tokens, string(r))
		}
	}
	return tokens
}

// RunBatch presses tokens on machine and writes the two display lines to w.
func RunBatch(w io.Writer, machine *calculator.Machine, tokens []string) error {
	if n, err := machine.PressAll(tokens...); err != nil {
		return fmt.Errorf("key %d: %w", n+1, err)
	}

	d := machine.Display()
	_, err := fmt.Fprintf(w, "%s\n%s\n", d.Expression, d.Value)
	return err
}
