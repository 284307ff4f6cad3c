package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/pkiviz/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodesTable(t *testing.T) {
	out, err := NodesTable(catalog.Default())
	require.NoError(t, err)
	assert.Contains(t, out, "root-ca")
	assert.Contains(t, out, "Certificate Authority")
	for _, n := range catalog.Default().Nodes() {
		assert.Contains(t, out, n.ID)
	}
}

func TestFlowsTable(t *testing.T) {
	out, err := FlowsTable(catalog.Default())
	require.NoError(t, err)
	assert.Contains(t, out, "1. Key → 2. CSR → 3. CA → 4. Cert")
	assert.Contains(t, out, "branching")
}

func TestPlainRenderer(t *testing.T) {
	out, err := PlainRenderer()("# Title")
	require.NoError(t, err)
	assert.Equal(t, "# Title", out)
}

func TestNewRenderer(t *testing.T) {
	for _, dark := range []bool{true, false} {
		r, err := NewRenderer(dark, 60)
		require.NoError(t, err)
		out, err := r("# CSR\n\nCertificate Signing Request")
		require.NoError(t, err)
		assert.NotEmpty(t, strings.TrimSpace(out))
	}
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_|")
}
