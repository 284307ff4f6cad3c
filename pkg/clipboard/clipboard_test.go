package clipboard

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTerminal(tty bool, env map[string]string) (*Terminal, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Terminal{
		out:        &buf,
		env:        func(k string) string { return env[k] },
		isTerminal: func(int) bool { return tty },
	}, &buf
}

func TestTerminal_WritesOSC52(t *testing.T) {
	tc, buf := newTestTerminal(true, nil)
	require.NoError(t, tc.Copy(context.Background(), "openssl version"))

	out := buf.String()
	assert.Contains(t, out, "\x1b]52;c;")
	assert.Contains(t, out, base64.StdEncoding.EncodeToString([]byte("openssl version")))
}

func TestTerminal_Tmux(t *testing.T) {
	tc, buf := newTestTerminal(true, map[string]string{"TMUX": "/tmp/tmux-1/default"})
	require.NoError(t, tc.Copy(context.Background(), "x"))
	assert.Contains(t, buf.String(), "\x1bPtmux;")
}

func TestTerminal_RefusesNonTerminal(t *testing.T) {
	tc, buf := newTestTerminal(false, nil)
	err := tc.Copy(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrClipboardUnavailable)
	assert.Zero(t, buf.Len())
}

func TestTerminal_CancelledContext(t *testing.T) {
	tc, _ := newTestTerminal(true, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tc.Copy(ctx, "x"), context.Canceled)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	_, ok := m.Last()
	assert.False(t, ok)

	require.NoError(t, m.Copy(context.Background(), "a"))
	require.NoError(t, m.Copy(context.Background(), "b"))
	last, ok := m.Last()
	assert.True(t, ok)
	assert.Equal(t, "b", last)
	assert.Equal(t, []string{"a", "b"}, m.History())

	boom := errors.New("denied")
	m.FailWith(boom)
	assert.ErrorIs(t, m.Copy(context.Background(), "c"), boom)
	assert.Len(t, m.History(), 2)

	m.FailWith(nil)
	assert.NoError(t, m.Copy(context.Background(), "c"))
}

func TestUnavailable(t *testing.T) {
	var c Clipboard = Unavailable{}
	assert.ErrorIs(t, c.Copy(context.Background(), "x"), domain.ErrClipboardUnavailable)
}
