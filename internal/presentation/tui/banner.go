package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the pkiviz ASCII banner, coloured along the category palette.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"        _    _         _      ", "#e74c3c"},
		{"  _ __ | | _(_)_   __ (_) ____", "#f39c12"},
		{" | '_ \\| |/ / \\ \\ / / | ||_  /", "#2ecc71"},
		{" | |_) |   <| |\\ V /  | | / / ", "#1abc9c"},
		{" | .__/|_|\\_\\_| \\_/   |_|/___|", "#3498db"},
		{" |_|                          ", "#9b59b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
