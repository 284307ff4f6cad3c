// Package highlight tokenizes shell command lines and classifies each token
// for syntax colouring.
package highlight

import (
	"regexp"
	"slices"
)

// Kind is the syntactic class of a token.
type Kind string

const (
	KindText       Kind = "text"
	KindSpace      Kind = "space"
	KindString     Kind = "string"
	KindCommand    Kind = "command"
	KindSubcommand Kind = "subcommand"
	KindFlag       Kind = "flag"
	KindFile       Kind = "file"
	KindNumber     Kind = "number"
	KindOperator   Kind = "operator"
)

// Part is a raw lexical unit produced by Tokenize.
type Part struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// Token is a classified Part.
type Token struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

var (
	commands = []string{"openssl", "cat", "curl", "diff", "csplit", "ssh-keygen", "security", "sudo", "ls"}

	subcommands = []string{
		"genrsa", "req", "x509", "rsa", "ec", "ecparam", "pkcs12", "crl", "ocsp",
		"verify", "s_client", "ca", "crl2pkcs7", "pkcs7", "dgst",
	}

	operators = []string{"|", ">", "<", "&&", "||", "$(", ")"}

	fileRe   = regexp.MustCompile(`\.(pem|crt|key|csr|der|p12|pfx|pub|cnf)$`)
	numberRe = regexp.MustCompile(`^\d+$`)
)

// Tokenize splits command on spaces outside quotes. Quoted runs (single or
// double) become string parts including their quotes; every space becomes its
// own space part. An unterminated quote is kept as a text part.
func Tokenize(command string) []Part {
	var (
		parts     []Part
		current   []rune
		inQuote   bool
		quoteChar rune
	)
	flush := func() {
		if len(current) > 0 {
			parts = append(parts, Part{Kind: KindText, Value: string(current)})
		}
		current = current[:0]
	}

	for _, ch := range command {
		switch {
		case (ch == '"' || ch == '\'') && !inQuote:
			flush()
			current = append(current, ch)
			inQuote, quoteChar = true, ch
		case inQuote && ch == quoteChar:
			current = append(current, ch)
			parts = append(parts, Part{Kind: KindString, Value: string(current)})
			current = current[:0]
			inQuote, quoteChar = false, 0
		case ch == ' ' && !inQuote:
			flush()
			parts = append(parts, Part{Kind: KindSpace, Value: " "})
		default:
			current = append(current, ch)
		}
	}
	flush()
	return parts
}

// Classify assigns a Kind to every part. The command rule only looks at the
// immediately preceding part, which for a word is always a space, so in
// practice only the first token is ever classified as a command.
func Classify(parts []Part) []Token {
	out := make([]Token, len(parts))
	for i, p := range parts {
		out[i] = Token{Kind: classify(parts, i), Value: p.Value}
	}
	return out
}

func classify(parts []Part, i int) Kind {
	p := parts[i]
	switch p.Kind {
	case KindSpace, KindString:
		return p.Kind
	}
	v := p.Value

	if i == 0 || parts[i-1].Value == "|" || parts[i-1].Value == "&&" {
		if slices.Contains(commands, v) {
			return KindCommand
		}
	}
	switch {
	case slices.Contains(subcommands, v):
		return KindSubcommand
	case len(v) > 0 && v[0] == '-':
		return KindFlag
	case fileRe.MatchString(v):
		return KindFile
	case numberRe.MatchString(v):
		return KindNumber
	case slices.Contains(operators, v):
		return KindOperator
	}
	return KindText
}

// Highlight tokenizes and classifies command.
func Highlight(command string) []Token {
	return Classify(Tokenize(command))
}
