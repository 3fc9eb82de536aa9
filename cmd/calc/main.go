// calc is the terminal calculator. Interactive by default; with --keys it
// presses the given keys, prints the two display lines and exits.
package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var keys string
	var maxDigits int
	var logOutput string

	flagSet := pflag.NewFlagSet("calc", pflag.ContinueOnError)
	flagSet.StringVar(&keys, "keys", "", `keys to press without a UI, e.g. "12+3=" or "7 negate"`)
	flagSet.IntVar(&maxDigits, "max-digits", calculator.DefaultMaxDigits, "digits accepted per operand (0 = unbounded)")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if maxDigits < 0 {
		return fmt.Errorf("--max-digits must not be negative")
	}

	logger, err := newLogger(logOutput)
	if err != nil {
		return err
	}
	defer logger.Sync()

	machine := calculator.New(calculator.WithMaxDigits(maxDigits))

	if flagSet.Changed("keys") {
		return tui.RunBatch(os.Stdout, machine, tui.SplitTokens(keys))
	}

	logger.Info("calculator started", zap.Int("max_digits", maxDigits))
	program := tea.NewProgram(tui.NewModel(machine, logger))
	_, err = program.Run()
	return err
}

// newLogger writes to path, or discards when path is empty; stderr would
// corrupt the terminal UI.
func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("open log output %s: %w", path, err)
	}
	return logger, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `calc — keypad calculator for the terminal.

Keys: 0-9 . + - * /, enter or = to evaluate, backspace, esc or c to
clear, n to negate, %% for percent, q to quit. Operations chain left to
right: 2+3*4= shows 20.

Usage:
  calc [flags]

Examples:
  # Interactive
  calc

  # One-shot
  calc --keys "5 / 0 ="

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
