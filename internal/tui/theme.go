package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted     lipgloss.TerminalColor = ac("240", "243")
	colorAccent    lipgloss.TerminalColor = ac("27", "62")
	colorAccentFg  lipgloss.TerminalColor = ac("255", "235")
	colorError     lipgloss.TerminalColor = ac("196", "160")
	colorOK        lipgloss.TerminalColor = ac("28", "42")
	colorGrid      lipgloss.TerminalColor = ac("252", "237")
	colorGridBeat  lipgloss.TerminalColor = ac("246", "241")
	colorIndicator lipgloss.TerminalColor = ac("160", "203")
	colorSelected  lipgloss.TerminalColor = ac("130", "220")

	// Note colors follow the in-game palette.
	colorTap   lipgloss.TerminalColor = ac("33", "75")
	colorDrag  lipgloss.TerminalColor = ac("136", "227")
	colorHold  lipgloss.TerminalColor = ac("33", "117")
	colorFlick lipgloss.TerminalColor = ac("160", "204")

	// One color per event lane: x, y, rotation, opacity, speed.
	laneColors = []lipgloss.TerminalColor{
		ac("25", "69"), ac("29", "78"), ac("94", "179"), ac("90", "176"), ac("238", "250"),
	}
)

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleHeader() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorAccentFg).Background(colorAccent).Padding(0, 1)
}

// applyColorProfilePreference honors NO_COLOR and otherwise trusts TERM/COLORTERM over
// termenv's detection when they claim more colors.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	term := strings.ToLower(os.Getenv("TERM"))
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	switch {
	case profile == termenv.Ascii:
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		profile = termenv.TrueColor
	case strings.Contains(term, "256color") && profile == termenv.ANSI:
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}
