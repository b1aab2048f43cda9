package handlers

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Faint(true).Width(20)
	urlStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
)

// isTerminal reports whether stdout is attached to a terminal. Overridable
// in tests.
var isTerminal = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func printTitle(s string) {
	fmt.Println(titleStyle.Render(s))
}

func printField(label, value string) {
	fmt.Printf("%s %s\n", labelStyle.Render(label), value)
}

func printURL(label, url string) {
	fmt.Printf("%s %s\n", labelStyle.Render(label), urlStyle.Render(url))
}
