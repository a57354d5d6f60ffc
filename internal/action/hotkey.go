package action

import (
	"fmt"
	"strings"
)

type Modifier uint8

const (
	Ctrl Modifier = 1 << iota
	Alt
	Shift
)

func (m Modifier) Count() int {
	n := 0
	for _, bit := range []Modifier{Ctrl, Alt, Shift} {
		if m&bit != 0 {
			n++
		}
	}
	return n
}

// Key is a primary key name: a lower-case letter or digit, or a named key such as
// "space", "delete", "enter", "up", "f1".
type Key string

// Hotkey is a chord: a primary key plus an exact modifier set.
type Hotkey struct {
	Key  Key
	Mods Modifier
}

func (h Hotkey) String() string {
	var parts []string
	if h.Mods&Ctrl != 0 {
		parts = append(parts, "ctrl")
	}
	if h.Mods&Alt != 0 {
		parts = append(parts, "alt")
	}
	if h.Mods&Shift != 0 {
		parts = append(parts, "shift")
	}
	return strings.Join(append(parts, string(h.Key)), "+")
}

var keyAliases = map[string]Key{
	"del":    "delete",
	"esc":    "escape",
	"return": "enter",
	" ":      "space",
	"bksp":   "backspace",
}

// NormalizeKey lower-cases a key name and resolves aliases.
func NormalizeKey(s string) Key {
	if s == " " {
		return "space"
	}
	k := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := keyAliases[k]; ok {
		return alias
	}
	return Key(k)
}

// ParseHotkey parses "ctrl+shift+z" style chords. Modifier order does not matter.
func ParseHotkey(s string) (Hotkey, error) {
	parts := strings.Split(strings.TrimSpace(s), "+")
	var h Hotkey
	for i, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			return Hotkey{}, fmt.Errorf("hotkey %q: empty part", s)
		}
		if i == len(parts)-1 {
			h.Key = NormalizeKey(p)
			break
		}
		switch p {
		case "ctrl", "control", "cmd":
			h.Mods |= Ctrl
		case "alt", "option":
			h.Mods |= Alt
		case "shift":
			h.Mods |= Shift
		default:
			return Hotkey{}, fmt.Errorf("hotkey %q: unknown modifier %q", s, p)
		}
	}
	switch h.Key {
	case "ctrl", "control", "alt", "shift":
		return Hotkey{}, fmt.Errorf("hotkey %q: missing primary key", s)
	}
	return h, nil
}

func MustHotkey(s string) Hotkey {
	h, err := ParseHotkey(s)
	if err != nil {
		panic(err)
	}
	return h
}

// Context is the part of the editor that has focus. Bindings in Global apply everywhere.
type Context int

const (
	Global Context = iota
	Timeline
	Game
	Inspector
)

var contextNames = map[Context]string{
	Global:    "global",
	Timeline:  "timeline",
	Game:      "game",
	Inspector: "inspector",
}

func (c Context) String() string {
	if s, ok := contextNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Context(%d)", int(c))
}

func ParseContext(s string) (Context, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range contextNames {
		if name == s {
			return c, nil
		}
	}
	return Global, fmt.Errorf("unknown context %q", s)
}

// Binding attaches a hotkey to an action within a context.
type Binding struct {
	Hotkey  Hotkey
	Context Context
}

func (b Binding) String() string {
	if b.Context == Global {
		return b.Hotkey.String()
	}
	return b.Hotkey.String() + " (" + b.Context.String() + ")"
}

// ParseBinding accepts "chord" or "context:chord", e.g. "timeline:ctrl+c".
func ParseBinding(s string) (Binding, error) {
	ctx := Global
	if i := strings.Index(s, ":"); i >= 0 {
		c, err := ParseContext(s[:i])
		if err != nil {
			return Binding{}, err
		}
		ctx = c
		s = s[i+1:]
	}
	h, err := ParseHotkey(s)
	if err != nil {
		return Binding{}, err
	}
	return Binding{Hotkey: h, Context: ctx}, nil
}
