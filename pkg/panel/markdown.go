package panel

import (
	"fmt"
	"strings"
)

// Markdown renders the view as Markdown for terminal display.
func (v View) Markdown() string {
	var sb strings.Builder
	if v.Empty {
		fmt.Fprintf(&sb, "# %s\n\n%s\n\n## Legend\n\n", v.Title, v.Instructions)
		for _, l := range v.Legend {
			fmt.Fprintf(&sb, "- **%s** `%s`\n", l.Label, l.Color)
		}
		sb.WriteString("\n## Tips\n\n")
		for _, t := range v.Tips {
			fmt.Fprintf(&sb, "- %s\n", t)
		}
		return sb.String()
	}

	if v.CategoryLabel != "" {
		fmt.Fprintf(&sb, "`%s`\n\n", v.CategoryLabel)
	}
	fmt.Fprintf(&sb, "# %s\n\n", v.Title)
	if v.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", v.Description)
	}
	if len(v.Commands) == 0 {
		return sb.String()
	}

	fmt.Fprintf(&sb, "## %s\n\n", CommandsHeading)
	for _, c := range v.Commands {
		fmt.Fprintf(&sb, "### %d. %s", c.Index+1, c.Title)
		if c.Copied {
			fmt.Fprintf(&sb, " (%s)", CopiedLabel)
		}
		sb.WriteString("\n\n")
		if c.Description != "" {
			fmt.Fprintf(&sb, "%s\n\n", c.Description)
		}
		fmt.Fprintf(&sb, "```sh\n%s\n```\n\n", c.Command)
		if c.Expanded {
			fmt.Fprintf(&sb, "**Example Output:**\n\n```text\n%s\n```\n\n", c.Output)
		} else if c.HasOutput {
			fmt.Fprintf(&sb, "_Example output available: `output %d`_\n\n", c.Index+1)
		}
	}
	return sb.String()
}
