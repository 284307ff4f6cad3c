package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/pkiviz/pkg/catalog"
	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer() *Server {
	return NewServer(catalog.Default())
}

func TestListNodes(t *testing.T) {
	s := newServer()
	ctx := context.Background()

	all, err := s.handleListNodes(ctx, mcp.CallToolRequest{}, map[string]any{})
	require.NoError(t, err)
	assert.Len(t, all.Nodes, 11)

	keys, err := s.handleListNodes(ctx, mcp.CallToolRequest{}, map[string]any{"category": "key"})
	require.NoError(t, err)
	require.Len(t, keys.Nodes, 2)
	assert.Equal(t, "private-key", keys.Nodes[0].ID)

	none, err := s.handleListNodes(ctx, mcp.CallToolRequest{}, map[string]any{"category": "nope"})
	require.NoError(t, err)
	assert.Empty(t, none.Nodes)
}

func TestDescribeNode(t *testing.T) {
	s := newServer()
	ctx := context.Background()

	d, err := s.handleDescribeNode(ctx, mcp.CallToolRequest{}, map[string]any{"id": "intermediate-ca"})
	require.NoError(t, err)
	assert.Equal(t, "Intermediate CA", d.Label)
	assert.Equal(t, "Certificate Authority", d.CategoryLabel)
	assert.NotEmpty(t, d.Commands)

	var outgoing []string
	for _, l := range d.Outgoing {
		outgoing = append(outgoing, l.Target)
	}
	assert.Contains(t, outgoing, "server-cert")
	assert.Contains(t, outgoing, "crl")

	var incoming []string
	for _, l := range d.Incoming {
		incoming = append(incoming, l.Source)
	}
	assert.Contains(t, incoming, "root-ca")

	_, err = s.handleDescribeNode(ctx, mcp.CallToolRequest{}, map[string]any{"id": "nope"})
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestListFlows(t *testing.T) {
	out, err := newServer().handleListFlows(context.Background(), mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	require.Len(t, out.Flows, 7)
	assert.Equal(t, "cert-issuance", out.Flows[0].ID)
	assert.Equal(t, domain.LayoutHorizontal, out.Flows[0].Layout)
}

func TestWalkFlow(t *testing.T) {
	s := newServer()
	ctx := context.Background()

	walk, err := s.handleWalkFlow(ctx, mcp.CallToolRequest{}, map[string]any{"flow_id": "revocation"})
	require.NoError(t, err)
	assert.Equal(t, 4, walk.Total)
	require.Len(t, walk.Steps, 4)
	first := walk.Steps[0]
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, "step1", first.ID)
	assert.Equal(t, "1. CA", first.Label)
	assert.Equal(t, "CA", first.Title)
	assert.Equal(t, "intermediate-ca", first.NodeID)
	assert.Len(t, first.Next, 2, "branching flow fans out from the CA")

	// JSON numbers arrive as float64.
	one, err := s.handleWalkFlow(ctx, mcp.CallToolRequest{}, map[string]any{"flow_id": "mtls", "step": float64(3)})
	require.NoError(t, err)
	require.Len(t, one.Steps, 1)
	assert.Equal(t, "cert-chain", one.Steps[0].NodeID)

	_, err = s.handleWalkFlow(ctx, mcp.CallToolRequest{}, map[string]any{"flow_id": "mtls", "step": 9})
	assert.ErrorContains(t, err, "out of range")

	_, err = s.handleWalkFlow(ctx, mcp.CallToolRequest{}, map[string]any{"flow_id": "nope"})
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

func TestHighlightCommand(t *testing.T) {
	s := newServer()
	out, err := s.handleHighlight(context.Background(), mcp.CallToolRequest{}, map[string]any{"command": "openssl x509 -in cert.pem"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Tokens)
	assert.Equal(t, "openssl", out.Tokens[0].Value)
	assert.Contains(t, out.HTML, "hl-flag")

	_, err = s.handleHighlight(context.Background(), mcp.CallToolRequest{}, map[string]any{})
	assert.Error(t, err)
}

func TestGraph(t *testing.T) {
	g := newServer().Graph()
	assert.Len(t, g.Nodes, 11)
	assert.Len(t, g.Links, 16)
	assert.Len(t, g.Categories, 7)
}
