package render

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/aretw0/pkiviz/pkg/layout"
	"github.com/valyala/bytebufferpool"
)

// approximate glyph width as a fraction of the font size, for label boxes.
const glyphWidth = 0.6

// SVGOptions controls SVG output.
type SVGOptions struct {
	// Standalone adds the XML prolog.
	Standalone bool
}

// SVG writes the scene as one SVG document. Coordinates are transformed by
// the scene's viewport so the output matches what the camera sees.
func SVG(w io.Writer, scene *Scene, opts SVGOptions) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	vp := scene.Viewport
	if vp.Zoom <= 0 {
		vp.Zoom = 1
	}

	if opts.Standalone {
		buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	}
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(vp.Width), num(vp.Height), num(vp.Width), num(vp.Height))
	fmt.Fprintf(buf, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", scene.Background)

	// Same transform as Viewport.ToScreen.
	fmt.Fprintf(buf, `<g transform="translate(%s %s) scale(%s) translate(%s %s)">`+"\n",
		num(vp.Width/2), num(vp.Height/2), num(vp.Zoom), num(-vp.CenterX), num(-vp.CenterY))

	for _, l := range scene.Links {
		writeLink(buf, l)
	}
	for _, n := range scene.Nodes {
		writeNode(buf, n)
	}

	buf.WriteString("</g>\n</svg>\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func writeLink(buf *bytebufferpool.ByteBuffer, l SceneLink) {
	s := l.Style
	fmt.Fprintf(buf, `<g class="link" data-source="%s" data-target="%s">`, attr(l.Source), attr(l.Target))
	fmt.Fprintf(buf, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"/>`,
		num(s.Line[0].X), num(s.Line[0].Y), num(s.Line[1].X), num(s.Line[1].Y), attr(s.LineColor), num(s.Width))
	fmt.Fprintf(buf, `<polygon points="%s" fill="%s"/>`, points(s.Arrow[:]), attr(s.ArrowColor))

	boxW := float64(len([]rune(l.Label)))*s.LabelFontSize*glyphWidth + s.LabelPadding
	boxH := s.LabelFontSize + 4
	fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`,
		num(s.LabelAt.X-boxW/2), num(s.LabelAt.Y-boxH/2), num(boxW), num(boxH), attr(s.LabelBackground))
	writeText(buf, s.LabelAt, l.Label, s.LabelFontSize, s.LabelBold, s.LabelColor, "middle")
	buf.WriteString("</g>\n")
}

func writeNode(buf *bytebufferpool.ByteBuffer, n SceneNode) {
	s := n.Style
	p := n.Pos
	fmt.Fprintf(buf, `<g class="node" data-id="%s">`, attr(n.ID))
	if s.Glow {
		fmt.Fprintf(buf, `<circle cx="%s" cy="%s" r="%s" fill="%s"/>`, num(p.X), num(p.Y), num(s.GlowRadius), attr(s.GlowFill))
	}
	fmt.Fprintf(buf, `<circle cx="%s" cy="%s" r="%s" fill="%s"`, num(p.X), num(p.Y), num(s.Radius), attr(s.Fill))
	if s.Stroke != "" {
		fmt.Fprintf(buf, ` stroke="%s" stroke-width="%s"`, attr(s.Stroke), num(s.StrokeWidth))
	}
	buf.WriteString("/>")

	if s.Check {
		c := s.CheckSize
		fmt.Fprintf(buf, `<polyline class="check" points="%s" fill="none" stroke="#fff" stroke-width="%s"/>`,
			points([]layout.Point{
				{X: p.X - c/2, Y: p.Y},
				{X: p.X - c/6, Y: p.Y + c/3},
				{X: p.X + c/2, Y: p.Y - c/3},
			}), num(s.CheckWidth))
	}

	switch {
	case s.LabelBelow:
		at := layout.Point{X: p.X, Y: p.Y + s.Radius + 2}
		writeText(buf, at, strings.Join(s.LabelLines, " "), s.FontSize, s.Bold, s.LabelColor, "hanging")
	case len(s.LabelLines) == 2:
		writeText(buf, layout.Point{X: p.X, Y: p.Y - s.FontSize*0.7}, s.LabelLines[0], s.FontSize, s.Bold, s.LabelColor, "middle")
		writeText(buf, layout.Point{X: p.X, Y: p.Y + s.FontSize*0.7}, s.LabelLines[1], s.FontSize, s.Bold, s.LabelColor, "middle")
	default:
		writeText(buf, p, strings.Join(s.LabelLines, " "), s.FontSize, s.Bold, s.LabelColor, "middle")
	}
	buf.WriteString("</g>\n")
}

func writeText(buf *bytebufferpool.ByteBuffer, at layout.Point, text string, size float64, bold bool, color, baseline string) {
	weight := ""
	if bold {
		weight = ` font-weight="bold"`
	}
	fmt.Fprintf(buf, `<text x="%s" y="%s" font-family="Sans-Serif" font-size="%s"%s text-anchor="middle" dominant-baseline="%s" fill="%s">%s</text>`,
		num(at.X), num(at.Y), num(size), weight, baseline, attr(color), html.EscapeString(text))
}

func points(ps []layout.Point) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	return strings.Join(parts, " ")
}

func num(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}

func attr(s string) string {
	return html.EscapeString(s)
}
