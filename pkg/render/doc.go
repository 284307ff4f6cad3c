// Package render turns the view state and node positions into a drawable
// scene and writes it out as SVG frames.
package render
