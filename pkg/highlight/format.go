package highlight

import (
	"html"
	"strings"

	"github.com/muesli/termenv"
)

// Palette maps token kinds to hex colours.
type Palette map[Kind]string

// DarkPalette suits dark terminal backgrounds.
var DarkPalette = Palette{
	KindCommand:    "#ff79c6",
	KindSubcommand: "#8be9fd",
	KindFlag:       "#ffb86c",
	KindFile:       "#50fa7b",
	KindString:     "#f1fa8c",
	KindNumber:     "#bd93f9",
	KindOperator:   "#ff5555",
}

// LightPalette suits light terminal backgrounds.
var LightPalette = Palette{
	KindCommand:    "#d73a49",
	KindSubcommand: "#005cc5",
	KindFlag:       "#e36209",
	KindFile:       "#22863a",
	KindString:     "#032f62",
	KindNumber:     "#6f42c1",
	KindOperator:   "#b31d28",
}

// PaletteFor picks the palette for the theme.
func PaletteFor(dark bool) Palette {
	if dark {
		return DarkPalette
	}
	return LightPalette
}

// ANSI renders tokens with terminal colours for the given colour profile.
// The Ascii profile yields the plain command text.
func ANSI(tokens []Token, profile termenv.Profile, palette Palette) string {
	var sb strings.Builder
	for _, t := range tokens {
		hex, ok := palette[t.Kind]
		if !ok {
			sb.WriteString(t.Value)
			continue
		}
		s := profile.String(t.Value).Foreground(profile.Color(hex))
		if t.Kind == KindCommand {
			s = s.Bold()
		}
		sb.WriteString(s.String())
	}
	return sb.String()
}

// HTML renders tokens as escaped spans with "hl-<kind>" classes. Plain text
// and spaces are wrapped in classless spans.
func HTML(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		switch t.Kind {
		case KindText, KindSpace:
			sb.WriteString("<span>")
		default:
			sb.WriteString(`<span class="hl-` + string(t.Kind) + `">`)
		}
		sb.WriteString(html.EscapeString(t.Value))
		sb.WriteString("</span>")
	}
	return sb.String()
}
