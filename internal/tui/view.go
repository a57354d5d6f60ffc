package tui

import (
	"fmt"
	"strings"

	"phichain/internal/chart"
	"phichain/internal/model"
	"phichain/internal/timeline"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type cell struct {
	r     rune
	style lipgloss.Style
}

type canvas struct {
	rows [][]cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{rows: make([][]cell, h)}
	for y := range c.rows {
		c.rows[y] = make([]cell, w)
		for x := range c.rows[y] {
			c.rows[y][x] = cell{r: ' ', style: lipgloss.NewStyle()}
		}
	}
	return c
}

func (c *canvas) set(x, y int, r rune, st lipgloss.Style) {
	if y < 0 || y >= len(c.rows) || x < 0 || x >= len(c.rows[y]) {
		return
	}
	c.rows[y][x] = cell{r: r, style: st}
}

// fill paints the cells a pixel rect touches, at least one.
func (c *canvas) fill(rect timeline.Rect, r rune, st lipgloss.Style) {
	x0 := int(rect.MinX / cellWidth)
	x1 := max(x0, int((rect.MaxX-1)/cellWidth))
	y0 := int(rect.MinY / cellHeight)
	y1 := max(y0, int((rect.MaxY-1)/cellHeight))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c.set(x, y, r, st)
		}
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for i, row := range c.rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, cl := range row {
			b.WriteString(cl.style.Render(string(cl.r)))
		}
	}
	return b.String()
}

func noteGlyph(n model.Note) (rune, lipgloss.TerminalColor) {
	switch n.Kind {
	case model.NoteDrag:
		return '▬', colorDrag
	case model.NoteHold:
		return '┃', colorHold
	case model.NoteFlick:
		return '▲', colorFlick
	default:
		return '█', colorTap
	}
}

func (m appModel) View() string {
	if m.width == 0 {
		return ""
	}
	header := m.headerView()
	body := m.timelineView()
	footer := m.footerView()
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m appModel) headerView() string {
	s := m.ed.Status()
	play := "paused"
	if s.Playing {
		play = "playing"
	}
	left := styleHeader().Render(s.Title())
	right := fmt.Sprintf(" %s  %.2fs  beat %s  %.0f bpm  lines %d  notes %d (%d sel)  events %d (%d sel)",
		play, s.Time, s.Beat, s.Bpm, s.Lines, s.Notes, s.SelectedNotes, s.Events, s.SelectedEvents)
	return xansi.Truncate(left+styleMuted().Render(right), m.width, "…")
}

func (m appModel) footerView() string {
	toast := ""
	if t, ok := m.toasts.Last(); ok {
		st := lipgloss.NewStyle().Foreground(colorOK)
		if t.Error {
			st = lipgloss.NewStyle().Foreground(colorError)
		}
		toast = st.Render(t.Message)
	}
	helpView := m.help.View(keyMap{bindings: helpBindings(m.ed.Actions, m.ed.Focus)})
	return xansi.Truncate(toast, m.width, "…") + "\n" + xansi.Truncate(helpView, m.width, "…")
}

func (m appModel) timelineView() string {
	rows := m.timelineRows()
	cv := newCanvas(m.width, rows)
	ed := m.ed
	tl := &ed.Timeline

	// Grid: a row per grid step that falls inside it, whole beats stronger.
	gridStyle := lipgloss.NewStyle().Foreground(colorGrid)
	beatStyle := lipgloss.NewStyle().Foreground(colorGridBeat)
	for y := 0; y < rows; y++ {
		top := tl.Attach(tl.YToBeat(float32(y * cellHeight)))
		mid := tl.BeatToY(top)
		if mid < float32(y*cellHeight) || mid >= float32((y+1)*cellHeight) {
			continue
		}
		r, st := '·', gridStyle
		if top.Num() == 0 {
			r, st = '─', beatStyle
		}
		for x := 0; x < m.width; x++ {
			cv.set(x, y, r, st)
		}
		label := top.String()
		for i, ch := range label {
			cv.set(i, y, ch, beatStyle)
		}
	}

	selected := map[chart.EntityID]bool{}
	for _, id := range ed.Selected() {
		selected[id] = true
	}
	for _, col := range ed.Columns() {
		divider := int(col.MinX / cellWidth)
		for y := 0; y < rows && divider > 0; y++ {
			cv.set(divider, y, '│', styleMuted())
		}
		switch col.Kind {
		case timeline.NoteColumn:
			for _, id := range ed.World.NotesOf(col.Line) {
				n, err := ed.World.Note(id)
				if err != nil {
					continue
				}
				r, fg := noteGlyph(n)
				if selected[id] {
					fg = colorSelected
				}
				st := lipgloss.NewStyle().Foreground(fg)
				if ed.World.HasTag(id, chart.Pending) {
					st = st.Faint(true)
				}
				cv.fill(tl.NoteRect(col, n), r, st)
			}
		case timeline.EventColumn:
			for _, id := range ed.World.EventsOf(col.Line) {
				e, err := ed.World.Event(id)
				if err != nil {
					continue
				}
				lane := 0
				for i, k := range model.LineEventKinds {
					if k == e.Kind {
						lane = i
					}
				}
				fg := laneColors[lane%len(laneColors)]
				if selected[id] {
					fg = colorSelected
				}
				st := lipgloss.NewStyle().Foreground(fg)
				if ed.World.HasTag(id, chart.Pending) {
					st = st.Faint(true)
				}
				cv.fill(tl.EventRect(col, e), '░', st)
			}
		}
	}

	indicator := int(tl.TimeToY(tl.Current) / cellHeight)
	for x := 0; x < m.width; x++ {
		if cv.rows[min(max(indicator, 0), rows-1)][x].r == ' ' {
			cv.set(x, indicator, '━', lipgloss.NewStyle().Foreground(colorIndicator))
		}
	}
	cv.set(int(ed.CursorX/cellWidth), int(ed.CursorY/cellHeight), '+', lipgloss.NewStyle().Reverse(true))
	return cv.String()
}
