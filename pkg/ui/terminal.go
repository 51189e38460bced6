// Package ui renders the parser's terminal output: colored status lines,
// stage progress, the run summary panel and the interactive tag prompt.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// ASCIILogo is printed at the start of an interactive run
const ASCIILogo = `
   ___ _                                        
  / __| |__ _ _ _ ___ _ __  __ _ _ _ ___ ___ _ _ 
 | _|| / _' | '_/ -_) '_ \/ _' | '_(_-</ -_) '_|
 |_| |_\__,_|_| \___| .__/\__,_|_| /__/\___|_|  
                    |_|   wallpaperflare parser
`

// Output is where the Print helpers write; tests may replace it
var Output io.Writer = os.Stdout

// Color functions for terminal output. lipgloss drops the escape codes when
// the output is not a terminal.
var (
	Cyan    = colorize("6")
	Yellow  = colorize("3")
	Red     = colorize("1")
	Green   = colorize("2")
	Magenta = colorize("5")
	Dim     = func(text string) string { return lipgloss.NewStyle().Faint(true).Render(text) }
)

func colorize(ansi string) func(string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(ansi))
	return func(text string) string {
		return style.Render(text)
	}
}

// PrintLogo prints the ASCII logo
func PrintLogo() {
	fmt.Fprint(Output, Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Output, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Output, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(Output, Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	fmt.Fprintf(Output, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Output, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Output, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Fprintln(Output, Magenta(msg))
}
