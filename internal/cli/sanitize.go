package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxLineSize bounds one explorer command line.
const DefaultMaxLineSize = 4096

// EnvMaxLineSize overrides DefaultMaxLineSize.
const EnvMaxLineSize = "PKIVIZ_MAX_INPUT_SIZE"

var (
	ErrLineTooLong = errors.New("input line exceeds maximum allowed size")
	ErrInvalidUTF8 = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeLine rejects oversized or malformed command lines and strips
// control characters, so pasted escape sequences never reach the terminal
// or the logs. Tabs are kept as separators.
func SanitizeLine(line string) (string, error) {
	if limit := maxLineSize(); len(line) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrLineTooLong, len(line), limit)
	}
	if !utf8.ValidString(line) {
		return "", ErrInvalidUTF8
	}

	if strings.IndexFunc(line, isUnsafeControl) < 0 {
		return line, nil
	}
	return strings.Map(func(r rune) rune {
		if isUnsafeControl(r) {
			return -1
		}
		return r
	}, line), nil
}

func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\t'
}

func maxLineSize() int {
	if val := os.Getenv(EnvMaxLineSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxLineSize
}
