package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette shared by every funchost surface.
var (
	// Brand colors
	PrimaryColor = lipgloss.Color("#0078D4") // azure blue
	AccentColor  = lipgloss.Color("#FFB900") // lightning yellow

	// Status colors
	SuccessColor = lipgloss.Color("#22C55E")
	ErrorColor   = lipgloss.Color("#EF4444")
	WarningColor = lipgloss.Color("#F59E0B")
	InfoColor    = lipgloss.Color("#38BDF8")

	// Text colors
	headerColor   = lipgloss.Color("#F8FAFC")
	textColor     = lipgloss.Color("#E2E8F0")
	dimColor      = lipgloss.Color("#94A3B8")
	disabledColor = lipgloss.Color("#64748B")
	stripeColor   = lipgloss.Color("#1E293B")
)

// Style definitions
var (
	HeaderStyle   = lipgloss.NewStyle().Foreground(headerColor).Bold(true)
	TitleStyle    = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	SubtitleStyle = lipgloss.NewStyle().Foreground(dimColor)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor)
	DimStyle     = lipgloss.NewStyle().Foreground(dimColor)

	tableHeaderStyle = lipgloss.NewStyle().Foreground(headerColor).Bold(true)
	tableRowStyle    = lipgloss.NewStyle().Foreground(textColor)
	tableStripeStyle = lipgloss.NewStyle().Foreground(textColor).Background(stripeColor)
)

// functionStates maps a function state to its glyph and style.
var functionStates = map[string]struct {
	glyph string
	style lipgloss.Style
}{
	"ready":    {SuccessSymbol, lipgloss.NewStyle().Foreground(SuccessColor)},
	"error":    {ErrorSymbol, lipgloss.NewStyle().Foreground(ErrorColor)},
	"disabled": {"⊘", lipgloss.NewStyle().Foreground(disabledColor)},
}

// StyleStatusValue renders a function state with its status glyph.
// Unknown states pass through unstyled.
func StyleStatusValue(state string) string {
	rendering, ok := functionStates[strings.ToLower(state)]
	if !ok {
		return state
	}
	return rendering.style.Render(rendering.glyph + " " + state)
}

// TerminalWidth reports the stdout width, falling back to 80 columns
// when stdout is not a terminal.
func TerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// CenterText pads a line so it sits centered in the terminal.
func CenterText(text string) string {
	pad := (TerminalWidth() - lipgloss.Width(text)) / 2
	if pad <= 0 {
		return text
	}
	return strings.Repeat(" ", pad) + text
}
