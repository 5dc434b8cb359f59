package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// ANSI 256 palette for terminal output.
var (
	colorAccent  = lipgloss.Color("36")
	colorSuccess = lipgloss.Color("35")
	colorError   = lipgloss.Color("167")
	colorCommand = lipgloss.Color("75")
	colorValue   = lipgloss.Color("255")
	colorLabel   = lipgloss.Color("245")
	colorMuted   = lipgloss.Color("240")
)

var (
	// StyleTitle for headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorMuted)

	styleValue       = lipgloss.NewStyle().Foreground(colorValue)
	styleLabel       = lipgloss.NewStyle().Foreground(colorLabel).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorCommand)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
)

// status prints a line prefixed with a colored icon.
func status(icon string, color lipgloss.Color, format string, args ...any) {
	badge := lipgloss.NewStyle().Foreground(color).Render(icon)
	fmt.Println(badge + " " + fmt.Sprintf(format, args...))
}

// printSuccess prints a success line.
func printSuccess(format string, args ...any) {
	status("✓", colorSuccess, format, args...)
}

// printError prints an error line.
func printError(format string, args ...any) {
	status("✗", colorError, format, args...)
}

// printInfo prints a neutral status line.
func printInfo(format string, args ...any) {
	status("›", colorLabel, format, args...)
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path an output was written to.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + styleValue.Render(path))
}

// printKeyValue prints a label column followed by a value.
func printKeyValue(key, value string) {
	fmt.Println(styleLabel.Render(key) + " " + styleValue.Render(value))
}

// printStats prints node and edge counts on one dim line.
func printStats(nodeCount, edgeCount int) {
	counts := fmt.Sprintf("%d nodes · %d edges", nodeCount, edgeCount)
	fmt.Println("  " + StyleDim.Render(counts))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}
