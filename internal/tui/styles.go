// Package tui is the terminal front end: a scrolling transcript rendered as
// markdown above a one-line input.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("#7D56F4")
	colorSecondary = lipgloss.Color("#5DADE2")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorDanger    = lipgloss.Color("#E74C3C")
	colorMuted     = lipgloss.Color("#7F8C8D")
	colorBorder    = lipgloss.Color("#3D3D3D")
)

// Styles holds all TUI styles
type Styles struct {
	Header      lipgloss.Style
	Badge       lipgloss.Style
	BadgeOff    lipgloss.Style
	StatusBar   lipgloss.Style
	Busy        lipgloss.Style
	ChatPane    lipgloss.Style
	InputBox    lipgloss.Style
	UserMsg     lipgloss.Style
	BotMsg      lipgloss.Style
	Notice      lipgloss.Style
	Error       lipgloss.Style
	Interrupted lipgloss.Style
}

// DefaultStyles returns the default style configuration
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorBorder).
			Padding(0, 1),

		Badge: lipgloss.NewStyle().
			Foreground(colorSuccess).
			Padding(0, 1),

		BadgeOff: lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1),

		Busy: lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true),

		ChatPane: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),

		InputBox: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1),

		UserMsg: lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true),

		BotMsg: lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true),

		Notice: lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true),

		Error: lipgloss.NewStyle().
			Foreground(colorDanger),

		Interrupted: lipgloss.NewStyle().
			Foreground(colorWarning),
	}
}
