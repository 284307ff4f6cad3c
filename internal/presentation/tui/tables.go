package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/pkiviz/pkg/catalog"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

func markdownTable(header []string, rows [][]string) (string, error) {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return "", err
	}
	if err := table.Render(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// NodesTable lists every catalog node with its category and command count.
func NodesTable(c *catalog.Catalog) (string, error) {
	var rows [][]string
	for _, n := range c.Nodes() {
		rows = append(rows, []string{
			n.ID,
			n.Label,
			c.CategoryLabel(n.Category),
			fmt.Sprintf("%d", len(n.Commands)),
		})
	}
	return markdownTable([]string{"ID", "Label", "Category", "Commands"}, rows)
}

// FlowsTable lists every beginner flow with its steps.
func FlowsTable(c *catalog.Catalog) (string, error) {
	var rows [][]string
	for _, f := range c.Flows() {
		steps := make([]string, len(f.Steps))
		for i, s := range f.Steps {
			steps[i] = s.Label
		}
		rows = append(rows, []string{
			f.ID,
			f.Name,
			string(f.Pattern()),
			strings.Join(steps, " → "),
		})
	}
	return markdownTable([]string{"ID", "Name", "Layout", "Steps"}, rows)
}
