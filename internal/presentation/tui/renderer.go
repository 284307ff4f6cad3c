package tui

import (
	"github.com/charmbracelet/glamour"
)

// Renderer turns panel Markdown into styled terminal text.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour renderer for the given theme, wrapping at width.
// A width of zero or less keeps glamour's default.
func NewRenderer(dark bool, width int) (Renderer, error) {
	style := "light"
	if dark {
		style = "dark"
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

// PlainRenderer returns the Markdown unchanged, for non-terminal output.
func PlainRenderer() Renderer {
	return func(markdown string) (string, error) {
		return markdown, nil
	}
}
