// Package tui is a terminal front end for the calculator: key presses are
// translated into calculator tokens and the two-line display is drawn with
// lipgloss.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
)

const displayWidth = 26

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#52525b")).
			Padding(0, 1)

	expressionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa")).
			Width(displayWidth).
			Align(lipgloss.Right)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f4f4f5")).
			Bold(true).
			Width(displayWidth).
			Align(lipgloss.Right)

	errorStyle = valueStyle.
			Foreground(lipgloss.Color("#fca5a5"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))
)

// Model is the Bubble Tea model wrapping one calculator Machine.
type Model struct {
	machine *calculator.Machine
	keys    KeyMap
	logger  *zap.Logger
}

// NewModel returns a model driving machine. logger may be nil.
func NewModel(machine *calculator.Machine, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Model{machine: machine, keys: DefaultKeyMap, logger: logger}
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := message.(tea.KeyMsg)
	if !ok {
		return model, nil
	}

	if key.Matches(keyMsg, model.keys.Quit) {
		return model, tea.Quit
	}

	token, ok := model.keys.Token(keyMsg)
	if !ok {
		return model, nil
	}

	k, err := calculator.ParseKey(token)
	if err == nil {
		err = model.machine.Press(k)
	}
	if err != nil {
		model.logger.Warn("key rejected", zap.String("token", token), zap.Error(err))
		return model, nil
	}

	d := model.machine.Display()
	model.logger.Debug("key pressed",
		zap.String("token", token),
		zap.String("expression", d.Expression),
		zap.String("value", d.Value),
	)
	return model, nil
}

// View implements tea.Model.
func (model Model) View() string {
	d := model.machine.Display()

	value := valueStyle.Render(d.Value)
	if model.machine.Errored() {
		value = errorStyle.Render(d.Value)
	}

	screen := frameStyle.Render(lipgloss.JoinVertical(lipgloss.Right,
		expressionStyle.Render(d.Expression),
		value,
	))
	return lipgloss.JoinVertical(lipgloss.Left, screen, model.helpView()) + "\n"
}

func (model Model) helpView() string {
	parts := make([]string, 0, len(model.keys.bindings()))
	for _, b := range model.keys.bindings() {
		h := b.Help()
		parts = append(parts, helpKeyStyle.Render(h.Key)+" "+helpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, helpDescStyle.Render(" • "))
}
