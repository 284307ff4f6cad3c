// Package clipboard writes command text to the user's clipboard.
package clipboard

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/aymanbagabas/go-osc52/v2"
	"golang.org/x/term"
)

// Clipboard accepts text to copy.
type Clipboard interface {
	Copy(ctx context.Context, text string) error
}

// Terminal copies through the OSC52 escape sequence, which most modern
// terminal emulators (and tmux/screen with passthrough) forward to the
// system clipboard.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
	fd  int
	env func(string) string
	// isTerminal is swapped in tests.
	isTerminal func(int) bool
}

// NewTerminal returns a clipboard writing to f.
func NewTerminal(f *os.File) *Terminal {
	return &Terminal{
		out:        f,
		fd:         int(f.Fd()),
		env:        os.Getenv,
		isTerminal: term.IsTerminal,
	}
}

// Copy writes the OSC52 sequence for text. It refuses non-terminal outputs
// because the escape would end up as garbage in a file or pipe.
func (t *Terminal) Copy(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !t.isTerminal(t.fd) {
		return fmt.Errorf("%w: output is not a terminal", domain.ErrClipboardUnavailable)
	}

	seq := osc52.New(text)
	switch {
	case t.env("TMUX") != "":
		seq = seq.Tmux()
	case strings.HasPrefix(t.env("TERM"), "screen"):
		seq = seq.Screen()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := seq.WriteTo(t.out); err != nil {
		return fmt.Errorf("failed to write clipboard sequence: %w", err)
	}
	return nil
}

// Memory keeps copied text in memory. The HTTP surface uses it to hand the
// text back to the browser, and tests use it to observe copies.
type Memory struct {
	mu      sync.Mutex
	history []string
	err     error
}

// NewMemory returns an empty in-memory clipboard.
func NewMemory() *Memory {
	return &Memory{}
}

// Copy records text, or returns the configured failure.
func (m *Memory) Copy(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.history = append(m.history, text)
	return nil
}

// FailWith makes subsequent copies fail with err. A nil err restores success.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Last returns the most recent copied text.
func (m *Memory) Last() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.history) == 0 {
		return "", false
	}
	return m.history[len(m.history)-1], true
}

// History returns every copied text in order.
func (m *Memory) History() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.history...)
}

// Unavailable always fails; it stands in when no clipboard can be reached.
type Unavailable struct{}

func (Unavailable) Copy(context.Context, string) error {
	return domain.ErrClipboardUnavailable
}
