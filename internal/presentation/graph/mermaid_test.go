package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/pkiviz/internal/presentation/graph"
	"github.com/aretw0/pkiviz/pkg/catalog"
	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(catalog.Default(), "")

	tests := []struct {
		name     string
		contains string
	}{
		{"header", "graph TD\n"},
		{"CA circle", `root_ca(("Root CA"))`},
		{"key parallelogram", `private_key[/"Private Key"/]`},
		{"revocation hexagon", `ocsp{{"OCSP Responder"}}`},
		{"store cylinder", `trust_store[("Trust Store")]`},
		{"chain subroutine", `cert_chain[["Certificate Chain"]]`},
		{"default rectangle", `csr["CSR"]`},
		{"labelled link", `root_ca -- "signs" --> intermediate_ca`},
		{"category class", "classDef ca fill:#e74c3c"},
		{"class binding", "class ocsp revocation;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, out, tt.contains)
		})
	}
	assert.NotContains(t, out, "classDef selected")

	sel := graph.GenerateMermaid(catalog.Default(), "csr")
	assert.Contains(t, sel, "class csr selected;")
}

func TestGenerateFlowMermaid(t *testing.T) {
	c := catalog.Default()

	issuance, err := c.Flow("cert-issuance")
	require.NoError(t, err)
	out := graph.GenerateFlowMermaid(issuance, nil)
	assert.True(t, strings.HasPrefix(out, "graph LR\n"))
	assert.Contains(t, out, `step1(["1. Key"])`)
	assert.Contains(t, out, `step1 -- "generates" --> step2`)
	assert.Contains(t, out, "stroke:#3498db")
	assert.NotContains(t, out, "Overlay Styles")

	trust, err := c.Flow("trust-chain")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(graph.GenerateFlowMermaid(trust, nil), "graph TD\n"))
}

func TestOverlay(t *testing.T) {
	c := catalog.Default()
	flow, err := c.Flow("revocation")
	require.NoError(t, err)

	state := domain.NewViewState("s", "revocation", 600, 800)
	assert.Nil(t, graph.OverlayFor(flow, state), "full mode has no overlay")

	state.BeginnerMode = true
	state.Playing = true
	state.CurrentStep = 2
	state.Selected, err = c.ResolveStep(flow, 2)
	require.NoError(t, err)

	o := graph.OverlayFor(flow, state)
	require.NotNil(t, o)
	assert.Equal(t, []string{"step1", "step2"}, o.PastSteps)
	assert.Equal(t, "step3", o.CurrentStep)

	out := graph.GenerateFlowMermaid(flow, o)
	assert.Contains(t, out, "class step1 past;")
	assert.Contains(t, out, "class step2 past;")
	assert.Contains(t, out, "class step3 current;")
	assert.NotContains(t, out, "class step4")

	state.FlowID = "mtls"
	assert.Nil(t, graph.OverlayFor(flow, state))
}

func TestViewMermaid(t *testing.T) {
	c := catalog.Default()

	full := domain.NewViewState("s", "mtls", 800, 600)
	full.Selected = &domain.Selection{Node: domain.Node{ID: "crl"}, StepIndex: -1}
	out := graph.ViewMermaid(c, full)
	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, "class crl selected;")

	beginner := domain.NewViewState("s", "mtls", 800, 600)
	beginner.BeginnerMode = true
	beginner.CurrentStep = 1
	out = graph.ViewMermaid(c, beginner)
	assert.True(t, strings.HasPrefix(out, "graph LR\n"))
	assert.Contains(t, out, "class step1 past;")
	assert.Contains(t, out, "class step2 current;")
}
