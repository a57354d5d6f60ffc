// Package tui is the terminal front end. It turns key and mouse messages into editor
// input and drives the editor loop from a frame ticker.
package tui

import (
	"time"

	"phichain/internal/editor"
	"phichain/internal/timeline"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Each terminal cell stands for this many timeline pixels.
const (
	cellWidth  = 10
	cellHeight = 30
)

const frameInterval = 33 * time.Millisecond

type frameMsg time.Time

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

type appModel struct {
	ed     *editor.Editor
	toasts *editor.Toasts
	help   help.Model

	width, height int
	lastFrame     time.Time
	confirmQuit   bool

	// Pointer state in timeline pixels.
	mouseDown     bool
	dragStartX    float32
	dragStartY    float32
	lastMouseY    float32
	selectingArea bool
}

func newModel(ed *editor.Editor, toasts *editor.Toasts) appModel {
	return appModel{ed: ed, toasts: toasts, help: help.New()}
}

// Run starts the full-screen editor and blocks until the user quits.
func Run(ed *editor.Editor, toasts *editor.Toasts) error {
	applyColorProfilePreference()
	m := newModel(ed, toasts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(frame(), tea.SetWindowTitle(m.ed.Status().Title()))
}

func (m appModel) timelineRows() int {
	return max(1, m.height-3)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.ed.Resize(float32(m.width*cellWidth), float32(m.timelineRows()*cellHeight))
		return m, nil

	case frameMsg:
		now := time.Time(msg)
		if clock, ok := m.ed.Audio().(*editor.SilentClock); ok && !m.lastFrame.IsZero() {
			clock.Advance(now.Sub(m.lastFrame))
		}
		m.lastFrame = now
		_ = m.ed.Tick()
		return m, tea.Batch(frame(), tea.SetWindowTitle(m.ed.Status().Title()))

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	}
	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, quitKey) {
		if m.ed.IsDirty() && !m.confirmQuit {
			m.confirmQuit = true
			m.ed.Notifier().Error("Unsaved changes. Press ctrl+q again to quit.")
			return m, nil
		}
		return m, tea.Quit
	}
	m.confirmQuit = false
	if msg.String() == "?" {
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	h, ok := chordFromKey(msg)
	if !ok {
		return m, nil
	}
	m.ed.Input.Tap(h.Key, h.Mods)
	_ = m.ed.Tick()
	return m, nil
}

func (m appModel) handleMouse(msg tea.MouseMsg) appModel {
	x := float32(msg.X*cellWidth) + cellWidth/2
	y := float32((msg.Y-1)*cellHeight) + cellHeight/2
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m
		}
		m.ed.CursorX, m.ed.CursorY = x, y
		m.mouseDown = true
		m.dragStartX, m.dragStartY, m.lastMouseY = x, y, y
		m.selectingArea = !m.ed.BeginDrag(x, y)
	case tea.MouseActionMotion:
		if !m.mouseDown {
			return m
		}
		if m.ed.Dragging() {
			_ = m.ed.DragBy(y - m.lastMouseY)
		}
		m.lastMouseY = y
	case tea.MouseActionRelease:
		if !m.mouseDown {
			return m
		}
		m.mouseDown = false
		if m.ed.Dragging() {
			if err := m.ed.EndDrag(); err != nil {
				m.ed.Notifier().Error(err.Error())
			}
		} else if m.selectingArea && (x != m.dragStartX || y != m.dragStartY) {
			m.ed.SelectRegion(timeline.NewRect(m.dragStartX, m.dragStartY, x, y))
		}
		m.selectingArea = false
	}
	return m
}
