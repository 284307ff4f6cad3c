package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/pkiviz/internal/cli"
	"github.com/aretw0/pkiviz/internal/presentation/graph"
	"github.com/aretw0/pkiviz/pkg/adapters/mcp"
	"github.com/aretw0/pkiviz/pkg/render"
	"github.com/aretw0/pkiviz/pkg/session"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the PKI graph",
		Long: `Exports the full PKI graph, or one beginner flow with --flow, as an SVG
frame, a Mermaid diagram or a JSON document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd, nil)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			flowID, _ := cmd.Flags().GetString("flow")
			selected, _ := cmd.Flags().GetString("select")
			outPath, _ := cmd.Flags().GetString("output")

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "mermaid", "mmd":
				return writeMermaid(w, env, flowID, selected)
			case "svg":
				return writeSVG(w, env, flowID, selected)
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(mcp.NewServer(env.Catalog).Graph())
			}
			return fmt.Errorf("unknown format %q: use svg, mermaid or json", format)
		},
	}
	cmd.Flags().String("format", "mermaid", "Output format: svg, mermaid or json")
	cmd.Flags().String("flow", "", "Export one beginner flow instead of the full graph")
	cmd.Flags().String("select", "", "Highlight a node (a step ID with --flow)")
	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func writeMermaid(w io.Writer, env *cli.Env, flowID, selected string) error {
	if flowID == "" {
		if selected != "" {
			if _, err := env.Catalog.Node(selected); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(w, graph.GenerateMermaid(env.Catalog, selected))
		return err
	}

	flow, err := env.Catalog.Flow(flowID)
	if err != nil {
		return err
	}
	var overlay *graph.GraphOverlay
	if selected != "" {
		if flow.StepIndex(selected) < 0 {
			return fmt.Errorf("step %q is not part of flow %q", selected, flowID)
		}
		overlay = &graph.GraphOverlay{Selected: selected}
	}
	_, err = fmt.Fprint(w, graph.GenerateFlowMermaid(flow, overlay))
	return err
}

func writeSVG(w io.Writer, env *cli.Env, flowID, selected string) error {
	var opts []session.Option
	if flowID != "" {
		opts = append(opts, session.WithBeginnerMode(true), session.WithFlow(flowID))
	}
	v, err := cli.NewViewer(env, opts...)
	if err != nil {
		return err
	}
	defer v.Close()

	if selected != "" {
		if err := v.SelectNode(context.Background(), selected); err != nil {
			return err
		}
	}
	if err := render.SVG(w, v.Scene(time.Now()), render.SVGOptions{Standalone: true}); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}
