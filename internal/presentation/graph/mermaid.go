package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/pkiviz/pkg/catalog"
	"github.com/aretw0/pkiviz/pkg/domain"
)

// GraphOverlay contains dynamic view state to visualize on a flow chart.
type GraphOverlay struct {
	PastSteps   []string
	CurrentStep string
	Selected    string
}

// OverlayFor derives the overlay of flow from a view state. It returns nil
// outside beginner mode or when state shows another flow.
func OverlayFor(flow domain.Flow, state *domain.ViewState) *GraphOverlay {
	if state == nil || !state.BeginnerMode || state.FlowID != flow.ID {
		return nil
	}
	o := &GraphOverlay{Selected: state.SelectedID()}
	if state.CurrentStep >= 0 && state.CurrentStep < len(flow.Steps) {
		for _, s := range flow.Steps[:state.CurrentStep] {
			o.PastSteps = append(o.PastSteps, s.ID)
		}
		o.CurrentStep = flow.Steps[state.CurrentStep].ID
	}
	return o
}

// ViewMermaid charts what a viewer in state shows: the active flow with its
// autoplay overlay in beginner mode, the full catalog graph otherwise.
func ViewMermaid(c *catalog.Catalog, state *domain.ViewState) string {
	if state.BeginnerMode {
		if flow, err := c.Flow(state.FlowID); err == nil {
			return GenerateFlowMermaid(flow, OverlayFor(flow, state))
		}
	}
	return GenerateMermaid(c, state.SelectedID())
}

// GenerateMermaid produces a Mermaid flowchart of the full catalog graph.
// Node shapes follow the category:
// - CA: ((Circle))
// - Key: [/Parallelogram/]
// - Revocation: {{Hexagon}}
// - Trust store: [(Cylinder)]
// - Chain: [[Subroutine]]
// - Default: [Rectangle]
// Each category gets a classDef filled with its colour.
func GenerateMermaid(c *catalog.Catalog, selected string) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range c.Nodes() {
		safeID := sanitizeMermaidID(node.ID)
		opener, closer := shape(node.Category)
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(node.Label), closer))
	}
	for _, l := range c.Links() {
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n",
			sanitizeMermaidID(l.Source), escapeLabel(l.Label), sanitizeMermaidID(l.Target)))
	}

	sb.WriteString("\n    %% Category Styles\n")
	for _, cat := range c.Categories() {
		sb.WriteString(fmt.Sprintf("    classDef %s fill:%s,stroke:#333,color:#fff;\n", sanitizeMermaidID(string(cat.ID)), cat.Color))
	}
	for _, node := range c.Nodes() {
		sb.WriteString(fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(node.ID), sanitizeMermaidID(string(node.Category))))
	}
	if selected != "" {
		sb.WriteString("    classDef selected stroke:#ffd700,stroke-width:4px;\n")
		sb.WriteString(fmt.Sprintf("    class %s selected;\n", sanitizeMermaidID(selected)))
	}

	return sb.String()
}

// GenerateFlowMermaid produces a Mermaid flowchart of one beginner flow.
// Vertical flows run top-down, the others left to right. Overlay styles mark
// past and current autoplay steps when overlay is not nil.
func GenerateFlowMermaid(flow domain.Flow, overlay *GraphOverlay) string {
	var sb strings.Builder
	dir := "LR"
	if flow.Pattern() == domain.LayoutVertical {
		dir = "TD"
	}
	sb.WriteString(fmt.Sprintf("graph %s\n", dir))

	for _, s := range flow.Steps {
		sb.WriteString(fmt.Sprintf("    %s([\"%s\"])\n", sanitizeMermaidID(s.ID), escapeLabel(s.Label)))
	}
	for _, l := range flow.Links {
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n",
			sanitizeMermaidID(l.Source), escapeLabel(l.Label), sanitizeMermaidID(l.Target)))
	}
	sb.WriteString(fmt.Sprintf("    linkStyle default stroke:%s,stroke-width:2px;\n", flow.FlowColor()))

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef past fill:#bdc3c7,stroke:#7f8c8d,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffd700,stroke:#f39c12,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef selected stroke:#ffd700,stroke-width:4px;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.PastSteps {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s past;\n", safeID))
			}
		}
		switch {
		case overlay.CurrentStep != "":
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentStep)))
		case overlay.Selected != "":
			sb.WriteString(fmt.Sprintf("    class %s selected;\n", sanitizeMermaidID(overlay.Selected)))
		}
	}

	return sb.String()
}

func shape(cat domain.Category) (string, string) {
	switch cat {
	case domain.CategoryCA:
		return "((", "))"
	case domain.CategoryKey:
		return "[/", "/]"
	case domain.CategoryRevocation:
		return "{{", "}}"
	case domain.CategoryStore:
		return "[(", ")]"
	case domain.CategoryChain:
		return "[[", "]]"
	}
	return "[", "]"
}

// escapeLabel swaps double quotes, which end a Mermaid label.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
