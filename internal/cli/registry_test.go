package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	var got []string
	r.Register("echo", "echo <words>", "repeat words", func(_ context.Context, args []string) error {
		got = append(got, strings.Join(args, " "))
		return nil
	}, "say")
	r.Register("noop", "noop", "do nothing", func(context.Context, []string) error { return nil })

	ctx := context.Background()
	require.NoError(t, r.Execute(ctx, "echo", []string{"a", "b"}))
	require.NoError(t, r.Execute(ctx, "SAY", []string{"c"}))
	assert.Equal(t, []string{"a b", "c"}, got)

	assert.ErrorIs(t, r.Execute(ctx, "nope", nil), ErrUnknownCommand)

	help := r.Help()
	assert.True(t, strings.HasPrefix(help, "Commands:\n  echo <words>"))
	assert.Less(t, strings.Index(help, "echo"), strings.Index(help, "noop"), "registration order is kept")

	// Re-registering replaces without duplicating the help line.
	r.Register("echo", "echo", "replaced", func(context.Context, []string) error { return nil })
	assert.Equal(t, 1, strings.Count(r.Help(), "  echo"))
}
