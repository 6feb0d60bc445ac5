package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Symbols with consistent appearance across terminals.
const (
	SuccessSymbol = "✓"
	ErrorSymbol   = "✗"
	WarningSymbol = "⚠"
	BulletSymbol  = "•"
)

// PrintLogo prints the funchost banner.
func PrintLogo() {
	if TerminalWidth() < 80 {
		fmt.Println(TitleStyle.Render("⚡ funchost"))
		return
	}

	banner := []string{
		"█▀▀ █░█ █▄░█ █▀▀ █░█ █▀█ █▀▀ ▀█▀",
		"█▀░ █▄█ █░▀█ █▄▄ █▀█ █▄█ ▄▄█ ░█░",
	}
	styles := []lipgloss.Style{
		lipgloss.NewStyle().Foreground(AccentColor),
		lipgloss.NewStyle().Foreground(PrimaryColor),
	}
	for i, line := range banner {
		fmt.Println(styles[i%len(styles)].Render(line))
	}
	fmt.Println()
	fmt.Println(CenterText(SubtitleStyle.Render("Serverless Function Host")))
}

// PrintSuccess prints a success message.
func PrintSuccess(message string) {
	fmt.Println(SuccessStyle.Bold(true).Render(SuccessSymbol + " " + message))
}

// PrintError prints an error message inside a visible box.
func PrintError(message string) {
	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ErrorColor).
		Padding(0, 1)
	fmt.Println(box.Render(ErrorStyle.Bold(true).Render(ErrorSymbol + " Error: " + message)))
}

// PrintWarning prints a warning message.
func PrintWarning(message string) {
	fmt.Println(WarningStyle.Bold(true).Render(WarningSymbol + " " + message))
}

// PrintInfo prints a label and value pair.
func PrintInfo(label, value string) {
	fmt.Printf("%s %s\n", DimStyle.Bold(true).Render(label+":"), InfoStyle.Render(value))
}

// PrintEmptyState shows a dimmed placeholder when there is nothing to list.
func PrintEmptyState(message string) {
	fmt.Println(DimStyle.Render(message))
}
