package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/utntracker/internal/status"
)

// Color palette
var (
	Primary   = lipgloss.Color("#3B82F6") // Blue
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Status colors
var (
	Promoted    = lipgloss.Color("#16A34A")
	Approved    = lipgloss.Color("#22C55E")
	Regularized = lipgloss.Color("#EAB308")
	InProgress  = lipgloss.Color("#38BDF8")
	NotRegular  = lipgloss.Color("#FB923C")
	Failed      = lipgloss.Color("#F43F5E")
)

// StatusColor returns the foreground color of a status.
func StatusColor(t status.Tag) color.Color {
	switch t {
	case status.Promocionada:
		return Promoted
	case status.Aprobada:
		return Approved
	case status.Regularizada:
		return Regularized
	case status.FaltanNotas:
		return InProgress
	case status.NoRegularizada:
		return NotRegular
	case status.Desaprobada:
		return Failed
	}
	return TextDim
}

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Section = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Warning = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	Danger = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)
