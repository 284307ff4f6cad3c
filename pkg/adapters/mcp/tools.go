package mcp

import (
	"context"
	"fmt"

	"github.com/aretw0/pkiviz/pkg/catalog"
	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/aretw0/pkiviz/pkg/highlight"
	"github.com/aretw0/pkiviz/pkg/panel"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mitchellh/mapstructure"
)

// GraphDocument is the pki://graph resource.
type GraphDocument struct {
	Nodes      []domain.Node          `json:"nodes"`
	Links      []domain.Link          `json:"links"`
	Categories []catalog.CategoryInfo `json:"categories"`
}

// NodeSummary is one row of list_nodes.
type NodeSummary struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Category domain.Category `json:"category"`
	Commands int             `json:"commands"`
}

// NodeList is the result of list_nodes.
type NodeList struct {
	Nodes []NodeSummary `json:"nodes" jsonschema_description:"Catalog nodes, in catalog order"`
}

// CommandDetail is a command with its example output, when one exists.
type CommandDetail struct {
	domain.Command
	Output string `json:"output,omitempty"`
}

// NodeDetail is the result of describe_node.
type NodeDetail struct {
	ID            string          `json:"id"`
	Label         string          `json:"label"`
	Category      domain.Category `json:"category"`
	CategoryLabel string          `json:"category_label"`
	Description   string          `json:"description"`
	Commands      []CommandDetail `json:"commands"`
	Outgoing      []domain.Link   `json:"outgoing" jsonschema_description:"Links leaving this node"`
	Incoming      []domain.Link   `json:"incoming" jsonschema_description:"Links entering this node"`
}

// FlowSummary is one row of list_flows.
type FlowSummary struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Layout      domain.LayoutPattern `json:"layout"`
	Steps       int                  `json:"steps"`
}

// FlowList is the result of list_flows.
type FlowList struct {
	Flows []FlowSummary `json:"flows"`
}

// WalkStep is one step of a flow walkthrough.
type WalkStep struct {
	Index       int              `json:"index"`
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	NodeID      string           `json:"node_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Commands    []domain.Command `json:"commands"`
	// Next lists the labelled links leaving this step.
	Next []domain.FlowLink `json:"next,omitempty"`
}

// FlowWalk is the result of walk_flow.
type FlowWalk struct {
	FlowID      string     `json:"flow_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Total       int        `json:"total"`
	Steps       []WalkStep `json:"steps"`
}

// HighlightResult is the result of highlight_command.
type HighlightResult struct {
	Tokens []highlight.Token `json:"tokens"`
	HTML   string            `json:"html"`
}

type listNodesArgs struct {
	Category string `mapstructure:"category"`
}

type describeNodeArgs struct {
	ID string `mapstructure:"id"`
}

type walkFlowArgs struct {
	FlowID string `mapstructure:"flow_id"`
	// Step is 1-based; nil walks the whole flow.
	Step *int `mapstructure:"step"`
}

type highlightArgs struct {
	Command string `mapstructure:"command"`
}

func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_nodes",
		mcp.WithDescription("List the PKI entities of the catalog, optionally filtered by category."),
		mcp.WithString("category", mcp.Description("Category filter: ca, cert, key, request, revocation, store or chain (optional)")),
		mcp.WithOutputSchema[NodeList](),
	), mcp.NewStructuredToolHandler(s.handleListNodes))

	s.mcpServer.AddTool(mcp.NewTool("describe_node",
		mcp.WithDescription("Describe one PKI entity: explanation, OpenSSL commands with example output, and relationships."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node ID, e.g. root-ca or csr")),
		mcp.WithOutputSchema[NodeDetail](),
	), mcp.NewStructuredToolHandler(s.handleDescribeNode))

	s.mcpServer.AddTool(mcp.NewTool("list_flows",
		mcp.WithDescription("List the guided beginner flows."),
		mcp.WithOutputSchema[FlowList](),
	), mcp.NewStructuredToolHandler(s.handleListFlows))

	s.mcpServer.AddTool(mcp.NewTool("walk_flow",
		mcp.WithDescription("Walk a beginner flow step by step, resolving each step to its PKI entity."),
		mcp.WithString("flow_id", mcp.Required(), mcp.Description("Flow ID, e.g. cert-issuance")),
		mcp.WithNumber("step", mcp.Description("1-based step to show (optional, defaults to every step)")),
		mcp.WithOutputSchema[FlowWalk](),
	), mcp.NewStructuredToolHandler(s.handleWalkFlow))

	s.mcpServer.AddTool(mcp.NewTool("highlight_command",
		mcp.WithDescription("Classify the tokens of a shell command (command, subcommand, flag, file, string, number, operator)."),
		mcp.WithString("command", mcp.Required(), mcp.Description("Shell command line")),
		mcp.WithOutputSchema[HighlightResult](),
	), mcp.NewStructuredToolHandler(s.handleHighlight))
}

// Graph returns the pki://graph document.
func (s *Server) Graph() GraphDocument {
	return GraphDocument{
		Nodes:      s.catalog.Nodes(),
		Links:      s.catalog.Links(),
		Categories: s.catalog.Categories(),
	}
}

func (s *Server) handleListNodes(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (NodeList, error) {
	var in listNodesArgs
	if err := decodeArgs(args, &in); err != nil {
		return NodeList{}, err
	}
	out := NodeList{Nodes: []NodeSummary{}}
	for _, n := range s.catalog.Nodes() {
		if in.Category != "" && string(n.Category) != in.Category {
			continue
		}
		out.Nodes = append(out.Nodes, NodeSummary{
			ID:       n.ID,
			Label:    n.Label,
			Category: n.Category,
			Commands: len(n.Commands),
		})
	}
	return out, nil
}

func (s *Server) handleDescribeNode(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (NodeDetail, error) {
	var in describeNodeArgs
	if err := decodeArgs(args, &in); err != nil {
		return NodeDetail{}, err
	}
	n, err := s.catalog.Node(in.ID)
	if err != nil {
		s.logger.Debug("MCP describe_node: lookup failed", "node_id", in.ID, "error", err)
		return NodeDetail{}, err
	}

	d := NodeDetail{
		ID:            n.ID,
		Label:         n.Label,
		Category:      n.Category,
		CategoryLabel: s.catalog.CategoryLabel(n.Category),
		Description:   n.Description,
		Commands:      make([]CommandDetail, len(n.Commands)),
		Outgoing:      []domain.Link{},
		Incoming:      []domain.Link{},
	}
	for i, cmd := range n.Commands {
		out, _ := panel.ExampleOutput(cmd.Command)
		d.Commands[i] = CommandDetail{Command: cmd, Output: out}
	}
	for _, l := range s.catalog.Links() {
		switch n.ID {
		case l.Source:
			d.Outgoing = append(d.Outgoing, l)
		case l.Target:
			d.Incoming = append(d.Incoming, l)
		}
	}
	return d, nil
}

func (s *Server) handleListFlows(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (FlowList, error) {
	out := FlowList{Flows: []FlowSummary{}}
	for _, f := range s.catalog.Flows() {
		out.Flows = append(out.Flows, FlowSummary{
			ID:          f.ID,
			Name:        f.Name,
			Description: f.Description,
			Layout:      f.Pattern(),
			Steps:       len(f.Steps),
		})
	}
	return out, nil
}

func (s *Server) handleWalkFlow(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (FlowWalk, error) {
	var in walkFlowArgs
	if err := decodeArgs(args, &in); err != nil {
		return FlowWalk{}, err
	}
	f, err := s.catalog.Flow(in.FlowID)
	if err != nil {
		return FlowWalk{}, err
	}

	from, to := 0, len(f.Steps)
	if in.Step != nil {
		if *in.Step < 1 || *in.Step > len(f.Steps) {
			return FlowWalk{}, fmt.Errorf("step %d out of range 1..%d", *in.Step, len(f.Steps))
		}
		from, to = *in.Step-1, *in.Step
	}

	walk := FlowWalk{
		FlowID:      f.ID,
		Name:        f.Name,
		Description: f.Description,
		Total:       len(f.Steps),
	}
	for i := from; i < to; i++ {
		sel, err := s.catalog.ResolveStep(f, i)
		if err != nil {
			return FlowWalk{}, err
		}
		step := WalkStep{
			Index:       i + 1,
			ID:          sel.ID,
			Label:       sel.Label,
			NodeID:      sel.FullID,
			Title:       panel.DisplayLabel(sel.Label),
			Description: sel.Description,
			Commands:    sel.Commands,
		}
		for _, l := range f.Links {
			if l.Source == sel.ID {
				step.Next = append(step.Next, l)
			}
		}
		walk.Steps = append(walk.Steps, step)
	}
	return walk, nil
}

func (s *Server) handleHighlight(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (HighlightResult, error) {
	var in highlightArgs
	if err := decodeArgs(args, &in); err != nil {
		return HighlightResult{}, err
	}
	if in.Command == "" {
		return HighlightResult{}, fmt.Errorf("command is required")
	}
	tokens := highlight.Highlight(in.Command)
	return HighlightResult{Tokens: tokens, HTML: highlight.HTML(tokens)}, nil
}
