package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	out          io.Writer = os.Stdout
	colorEnabled           = IsTerminal(os.Stdout)
)

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// SetOutput redirects the package level Print functions
func SetOutput(w io.Writer) {
	out = w
}

// SetColor turns coloured output on or off
func SetColor(enabled bool) {
	colorEnabled = enabled
}

// ColorEnabled reports whether output is coloured
func ColorEnabled() bool {
	return colorEnabled
}

// Color functions for terminal output
var (
	Cyan    = colorize(lipgloss.NewStyle().Foreground(lipgloss.Color("6")))
	Yellow  = colorize(lipgloss.NewStyle().Foreground(lipgloss.Color("3")))
	Red     = colorize(lipgloss.NewStyle().Foreground(lipgloss.Color("1")))
	Green   = colorize(lipgloss.NewStyle().Foreground(lipgloss.Color("2")))
	Magenta = colorize(lipgloss.NewStyle().Foreground(lipgloss.Color("5")))
	Dim     = colorize(lipgloss.NewStyle().Faint(true))
	Bold    = colorize(lipgloss.NewStyle().Bold(true))
)

// colorize returns a function that renders text with style when colour is on
func colorize(style lipgloss.Style) func(string) string {
	return func(text string) string {
		if !colorEnabled {
			return text
		}
		return style.Render(text)
	}
}

// PrintBanner prints the program name and version
func PrintBanner(version string) {
	fmt.Fprintf(out, "%s %s\n", Bold(Cyan("redditgrab")), Dim(version))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(out, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(out, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(out, Green(msg))
}

// PrintInfo prints an info message in cyan
func PrintInfo(label string, value string) {
	fmt.Fprintf(out, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(out, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(out, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Fprintln(out, Magenta(msg))
}
