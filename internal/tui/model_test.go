package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"go-chi-calculator/internal/calculator"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds messages through Update the way the Bubble Tea runtime would.
func send(model tea.Model, messages ...tea.Msg) tea.Model {
	for _, message := range messages {
		model, _ = model.Update(message)
	}
	return model
}

func TestKeyMapToken(t *testing.T) {
	tests := []struct {
		name  string
		msg   tea.KeyMsg
		token string
		ok    bool
	}{
		{name: "digit", msg: runes("7"), token: "7", ok: true},
		{name: "point", msg: runes("."), token: ".", ok: true},
		{name: "operator", msg: runes("/"), token: "/", ok: true},
		{name: "enter", msg: tea.KeyMsg{Type: tea.KeyEnter}, token: "=", ok: true},
		{name: "equals sign", msg: runes("="), token: "=", ok: true},
		{name: "backspace", msg: tea.KeyMsg{Type: tea.KeyBackspace}, token: "Backspace", ok: true},
		{name: "escape", msg: tea.KeyMsg{Type: tea.KeyEsc}, token: "clear", ok: true},
		{name: "negate", msg: runes("n"), token: "negate", ok: true},
		{name: "percent", msg: runes("%"), token: "percent", ok: true},
		{name: "letter", msg: runes("x"), ok: false},
		{name: "arrow", msg: tea.KeyMsg{Type: tea.KeyUp}, ok: false},
		{name: "paste", msg: runes("12"), ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token, ok := DefaultKeyMap.Token(tc.msg)
			if ok != tc.ok || token != tc.token {
				t.Fatalf("expected (%q, %t), got (%q, %t)", tc.token, tc.ok, token, ok)
			}
		})
	}
}

func TestModelDrivesMachine(t *testing.T) {
	machine := calculator.New()
	model := send(NewModel(machine, nil),
		runes("2"), runes("+"), runes("3"), runes("*"), runes("4"),
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	if got := machine.Display().Value; got != "20" {
		t.Fatalf("expected %q, got %q", "20", got)
	}
	if view := model.View(); !strings.Contains(view, "20") {
		t.Fatalf("expected view to show 20, got:\n%s", view)
	}
}

func TestModelShowsPendingExpression(t *testing.T) {
	machine := calculator.New()
	model := send(NewModel(machine, nil), runes("1"), runes("2"), runes("-"))

	view := model.View()
	if !strings.Contains(view, "12 -") {
		t.Fatalf("expected expression line %q in view:\n%s", "12 -", view)
	}
}

func TestModelErrorAndClear(t *testing.T) {
	machine := calculator.New()
	model := send(NewModel(machine, nil), runes("5"), runes("/"), runes("0"), tea.KeyMsg{Type: tea.KeyEnter})

	if !strings.Contains(model.View(), "Error") {
		t.Fatalf("expected Error in view:\n%s", model.View())
	}

	model = send(model, tea.KeyMsg{Type: tea.KeyEsc})
	if machine.Errored() {
		t.Fatal("expected esc to clear the error")
	}
	if got := machine.Display().Value; got != "0" {
		t.Fatalf("expected %q after clear, got %q", "0", got)
	}
}

func TestModelIgnoresUnmappedInput(t *testing.T) {
	machine := calculator.New()
	model := send(NewModel(machine, nil), runes("4"), runes("x"), tea.WindowSizeMsg{Width: 80, Height: 24})

	if got := machine.Entry(); got != "4" {
		t.Fatalf("expected entry %q, got %q", "4", got)
	}
	_ = model
}

func TestModelQuit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := NewModel(calculator.New(), nil).Update(msg)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", msg)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s: expected tea.QuitMsg", msg)
		}
	}
}
