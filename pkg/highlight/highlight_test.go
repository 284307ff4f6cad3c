package highlight

import (
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Part
	}{
		{
			name:  "Simple",
			input: "openssl genrsa 2048",
			want: []Part{
				{KindText, "openssl"}, {KindSpace, " "}, {KindText, "genrsa"}, {KindSpace, " "}, {KindText, "2048"},
			},
		},
		{
			name:  "Double quoted run keeps spaces",
			input: `-subj "/CN=Root CA"`,
			want: []Part{
				{KindText, "-subj"}, {KindSpace, " "}, {KindString, `"/CN=Root CA"`},
			},
		},
		{
			name:  "Other quote inside quote",
			input: `'a "b" c'`,
			want:  []Part{{KindString, `'a "b" c'`}},
		},
		{
			name:  "Quote glued to a word",
			input: `x="y"`,
			want:  []Part{{KindText, "x="}, {KindString, `"y"`}},
		},
		{
			name:  "Unterminated quote is text",
			input: `echo "abc`,
			want:  []Part{{KindText, "echo"}, {KindSpace, " "}, {KindText, `"abc`}},
		},
		{
			name:  "Double space",
			input: "a  b",
			want:  []Part{{KindText, "a"}, {KindSpace, " "}, {KindSpace, " "}, {KindText, "b"}},
		},
		{
			name:  "Empty",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func kinds(tokens []Token) []Kind {
	var out []Kind
	for _, t := range tokens {
		if t.Kind != KindSpace {
			out = append(out, t.Kind)
		}
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  []Kind
	}{
		{
			input: "openssl genrsa -aes256 -out root-ca.key 4096",
			want:  []Kind{KindCommand, KindSubcommand, KindFlag, KindFlag, KindFile, KindNumber},
		},
		{
			// The command after a pipe is not recognised: its previous part is a space.
			input: "openssl ecparam -genkey | openssl ec",
			want:  []Kind{KindCommand, KindSubcommand, KindFlag, KindOperator, KindText, KindSubcommand},
		},
		{
			input: `openssl req -subj "/CN=x" > out.csr`,
			want:  []Kind{KindCommand, KindSubcommand, KindFlag, KindString, KindOperator, KindFile},
		},
		{
			// Subcommand words are classified wherever they appear.
			input: "cat ca crl",
			want:  []Kind{KindCommand, KindSubcommand, KindSubcommand},
		},
		{
			input: "echo $( ) && || < hello",
			want:  []Kind{KindText, KindOperator, KindOperator, KindOperator, KindOperator, KindOperator, KindText},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(Highlight(tt.input)))
		})
	}
}

func TestHTML(t *testing.T) {
	out := HTML(Highlight(`openssl x509 -in a.crt > "<b>"`))
	assert.True(t, strings.HasPrefix(out, `<span class="hl-command">openssl</span><span> </span>`))
	assert.Contains(t, out, `<span class="hl-file">a.crt</span>`)
	assert.Contains(t, out, `<span class="hl-operator">&gt;</span>`)
	assert.Contains(t, out, `<span class="hl-string">&#34;&lt;b&gt;&#34;</span>`)
}

func TestANSI(t *testing.T) {
	cmd := "openssl verify -CAfile ca.crt server.crt"
	tokens := Highlight(cmd)

	plain := ANSI(tokens, termenv.Ascii, DarkPalette)
	assert.Equal(t, cmd, plain)

	colored := ANSI(tokens, termenv.TrueColor, DarkPalette)
	require.NotEqual(t, cmd, colored)
	assert.Contains(t, colored, "\x1b[")
	assert.Contains(t, colored, "server.crt")

	assert.NotEqual(t, colored, ANSI(tokens, termenv.TrueColor, LightPalette))
	assert.Equal(t, DarkPalette, PaletteFor(true))
}
