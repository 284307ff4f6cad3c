package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, slog.LevelInfo, FormatJSON)
	logger.Error("boom", "error", errors.New("denied"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "denied", rec["err"])
	assert.NotContains(t, rec, "error")
}

func TestNewWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf, slog.LevelWarn, FormatText).Info("hidden")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := Hooks(NewWriter(&buf, slog.LevelDebug, FormatText))
	ctx := context.Background()

	e := domain.NewViewEvent(domain.EventSelect, "s1")
	e.NodeID = "csr"
	hooks.OnSelect(ctx, e)
	assert.Contains(t, buf.String(), "node_select")
	assert.Contains(t, buf.String(), "node_id=csr")

	buf.Reset()
	hooks.OnCopy(ctx, &domain.CopyEvent{NodeID: "crl", Err: errors.New("no tty")})
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), `err="no tty"`)
}
