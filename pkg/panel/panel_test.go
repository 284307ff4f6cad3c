package panel

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/pkiviz/pkg/catalog"
	"github.com/aretw0/pkiviz/pkg/clipboard"
	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectNode(t *testing.T, id string) *domain.Selection {
	t.Helper()
	sel, err := catalog.Default().Select(id)
	require.NoError(t, err)
	return sel
}

func TestDisplayLabel(t *testing.T) {
	tests := map[string]string{
		"Root CA":       "Root CA",
		"1. Key":        "Key",
		"2. Sub CA":     "Sub CA",
		"example.com":   "example.com",
		"a. b. c":       "b",
		"3. ":           "3. ",
		"Version 1.0 x": "Version 1.0 x",
	}
	for in, want := range tests {
		assert.Equal(t, want, DisplayLabel(in), in)
	}
}

func TestExampleOutput_OrderedLookup(t *testing.T) {
	out, ok := ExampleOutput("openssl x509 -in server.crt -text -noout")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(out, "Certificate:"))

	out, ok = ExampleOutput("openssl verify -CAfile ca.crt server.crt")
	require.True(t, ok)
	assert.Equal(t, "server.crt: OK", out)

	// "openssl req -in" precedes "openssl rsa -in" in the table.
	out, ok = ExampleOutput("openssl req -in a.csr && openssl rsa -in a.key")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(out, "Certificate Request:"))

	_, ok = ExampleOutput("cat a.crt b.crt > chain.crt")
	assert.False(t, ok)
}

func TestView_Empty(t *testing.T) {
	p := New(catalog.Default())
	v := p.View()
	assert.True(t, v.Empty)
	assert.Equal(t, EmptyTitle, v.Title)
	assert.Len(t, v.Legend, 7)
	assert.Equal(t, "Certificate Authority", v.Legend[0].Label)
	assert.Len(t, v.Tips, 4)

	md := v.Markdown()
	assert.Contains(t, md, "# PKI Component Visualizer")
	assert.Contains(t, md, "- **Trust Store** `#1abc9c`")
	assert.Contains(t, md, "- Use Auto-Play for presentations")
}

func TestView_Node(t *testing.T) {
	p := New(catalog.Default())
	p.Show(selectNode(t, "root-ca"))

	v := p.View()
	assert.False(t, v.Empty)
	assert.Equal(t, "Root CA", v.Title)
	assert.Equal(t, "Certificate Authority", v.CategoryLabel)
	assert.Equal(t, "#e74c3c", v.CategoryColor)
	require.NotEmpty(t, v.Commands)
	assert.Equal(t, "openssl genrsa -aes256 -out root-ca.key 4096", v.Commands[0].Command)
	assert.True(t, v.Commands[0].HasOutput)
	assert.False(t, v.Commands[0].Expanded)
	assert.NotEmpty(t, v.Commands[0].Tokens)

	md := v.Markdown()
	assert.Contains(t, md, "## OpenSSL Commands")
	assert.Contains(t, md, "```sh\nopenssl genrsa -aes256 -out root-ca.key 4096\n```")
}

func TestView_StepLabel(t *testing.T) {
	c := catalog.Default()
	f, _ := c.Flow("trust-chain")
	sel, err := c.ResolveStep(f, 1)
	require.NoError(t, err)

	p := New(c)
	p.Show(sel)
	assert.Equal(t, "Sub CA", p.View().Title)
}

func TestToggleOutput(t *testing.T) {
	p := New(catalog.Default())

	_, err := p.ToggleOutput(0)
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)

	p.Show(selectNode(t, "root-ca"))
	on, err := p.ToggleOutput(0)
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, p.View().Commands[0].Expanded)
	assert.Contains(t, p.View().Markdown(), "**Example Output:**")

	on, err = p.ToggleOutput(0)
	require.NoError(t, err)
	assert.False(t, on)

	_, err = p.ToggleOutput(99)
	assert.ErrorIs(t, err, domain.ErrCommandNotFound)
}

func TestToggleOutput_NoExample(t *testing.T) {
	p := New(catalog.Default())
	p.Show(selectNode(t, "cert-chain"))
	v := p.View()
	for _, c := range v.Commands {
		if !c.HasOutput {
			_, err := p.ToggleOutput(c.Index)
			assert.ErrorIs(t, err, ErrNoExampleOutput)
			return
		}
	}
	t.Skip("every cert-chain command has an example output")
}

func TestShow_ResetsStateOnNewNode(t *testing.T) {
	mem := clipboard.NewMemory()
	p := New(catalog.Default(), WithClipboard(mem), WithConfirmDuration(time.Hour))
	defer p.Close()

	p.Show(selectNode(t, "root-ca"))
	_, _ = p.ToggleOutput(0)
	require.NoError(t, p.Copy(context.Background(), 0))

	p.Show(selectNode(t, "root-ca"))
	assert.Equal(t, 0, p.Copied(), "same node keeps state")

	p.Show(selectNode(t, "csr"))
	assert.Equal(t, -1, p.Copied())
	for _, c := range p.View().Commands {
		assert.False(t, c.Expanded)
	}
}

func TestCopy_ConfirmationExpires(t *testing.T) {
	mem := clipboard.NewMemory()
	p := New(catalog.Default(), WithClipboard(mem), WithConfirmDuration(30*time.Millisecond))
	defer p.Close()
	p.Show(selectNode(t, "root-ca"))

	require.NoError(t, p.Copy(context.Background(), 1))
	last, _ := mem.Last()
	assert.Equal(t, p.View().Commands[1].Command, last)
	assert.True(t, p.View().Commands[1].Copied)
	assert.Contains(t, p.View().Markdown(), "(Copied!)")

	assert.Eventually(t, func() bool { return p.Copied() == -1 }, time.Second, 5*time.Millisecond)
}

func TestCopy_OnlyOneConfirmation(t *testing.T) {
	p := New(catalog.Default(), WithClipboard(clipboard.NewMemory()), WithConfirmDuration(50*time.Millisecond))
	defer p.Close()
	p.Show(selectNode(t, "root-ca"))

	require.NoError(t, p.Copy(context.Background(), 0))
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, p.Copy(context.Background(), 1))
	assert.Equal(t, 1, p.Copied())

	// The first timer fires here but must not clear the second confirmation.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, p.Copied())

	assert.Eventually(t, func() bool { return p.Copied() == -1 }, time.Second, 5*time.Millisecond)
}

func TestCopyShown(t *testing.T) {
	mem := clipboard.NewMemory()
	p := New(catalog.Default(), WithClipboard(mem), WithConfirmDuration(time.Hour))
	defer p.Close()
	ctx := context.Background()

	_, shown, err := p.CopyShown(ctx, "csr", 0)
	require.NoError(t, err)
	assert.False(t, shown, "nothing displayed")

	p.Show(selectNode(t, "root-ca"))
	_, shown, err = p.CopyShown(ctx, "csr", 0)
	require.NoError(t, err)
	assert.False(t, shown)
	assert.Empty(t, mem.History())

	cmd, shown, err := p.CopyShown(ctx, "root-ca", 1)
	require.NoError(t, err)
	assert.True(t, shown)
	last, _ := mem.Last()
	assert.Equal(t, cmd.Command, last)
	assert.Equal(t, 1, p.Copied())

	_, shown, err = p.CopyShown(ctx, "root-ca", 99)
	assert.True(t, shown)
	assert.ErrorIs(t, err, domain.ErrCommandNotFound)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestCopy_FailureIsLoggedAndStateless(t *testing.T) {
	var logs syncBuffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	mem := clipboard.NewMemory()
	boom := errors.New("permission denied")
	mem.FailWith(boom)

	var events []*domain.CopyEvent
	p := New(catalog.Default(),
		WithClipboard(mem),
		WithLogger(logger),
		WithSessionID("s1"),
		WithCopyHook(func(_ context.Context, e *domain.CopyEvent) { events = append(events, e) }),
	)
	p.Show(selectNode(t, "root-ca"))
	before := p.View()

	err := p.Copy(context.Background(), 0)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, before, p.View())
	assert.Contains(t, logs.String(), "Failed to copy")
	assert.Contains(t, logs.String(), "permission denied")

	require.Len(t, events, 1)
	assert.Equal(t, "s1", events[0].SessionID)
	assert.Equal(t, "root-ca", events[0].NodeID)
	assert.ErrorIs(t, events[0].Err, boom)

	// The panel stays usable after a failure.
	mem.FailWith(nil)
	require.NoError(t, p.Copy(context.Background(), 0))
	assert.Equal(t, 0, p.Copied())
	p.Close()
}

func TestCopy_DefaultClipboardUnavailable(t *testing.T) {
	p := New(catalog.Default())
	p.Show(selectNode(t, "csr"))
	assert.ErrorIs(t, p.Copy(context.Background(), 0), domain.ErrClipboardUnavailable)
	assert.ErrorIs(t, p.Copy(context.Background(), -1), domain.ErrCommandNotFound)
}
