package tui

import (
	"unicode"

	"phichain/internal/action"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

var quitKey = key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("ctrl+q", "quit"))

// chordFromKey translates a terminal key press into a chord. Upper-case letters are
// reported as shift plus the lower-case key.
func chordFromKey(msg tea.KeyMsg) (action.Hotkey, bool) {
	s := msg.String()
	switch s {
	case " ":
		return action.Hotkey{Key: "space"}, true
	case "+":
		return action.Hotkey{Key: "plus"}, true
	case "":
		return action.Hotkey{}, false
	}
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		r := msg.Runes[0]
		h := action.Hotkey{Key: action.NormalizeKey(string(r))}
		if unicode.IsUpper(r) {
			h.Mods |= action.Shift
		}
		if msg.Alt {
			h.Mods |= action.Alt
		}
		return h, true
	}
	h, err := action.ParseHotkey(s)
	if err != nil {
		return action.Hotkey{}, false
	}
	return h, true
}

// helpBindings builds the footer key map from the registered actions that apply in ctx.
func helpBindings(reg *action.Registry, ctx action.Context) []key.Binding {
	out := []key.Binding{quitKey}
	for _, a := range reg.Actions() {
		if a.Binding == nil {
			continue
		}
		if a.Binding.Context != action.Global && a.Binding.Context != ctx {
			continue
		}
		out = append(out, key.NewBinding(key.WithKeys(a.Hotkey), key.WithHelp(a.Hotkey, a.Title)))
	}
	return out
}

type keyMap struct{ bindings []key.Binding }

func (k keyMap) ShortHelp() []key.Binding {
	if len(k.bindings) > 8 {
		return k.bindings[:8]
	}
	return k.bindings
}

func (k keyMap) FullHelp() [][]key.Binding {
	var cols [][]key.Binding
	for i := 0; i < len(k.bindings); i += 6 {
		cols = append(cols, k.bindings[i:min(i+6, len(k.bindings))])
	}
	return cols
}
