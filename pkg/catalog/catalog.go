package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aretw0/pkiviz/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml
var defaultData []byte

// CategoryInfo carries the legend label and colour of a category.
type CategoryInfo struct {
	ID    domain.Category `json:"id" yaml:"id" validate:"required"`
	Label string          `json:"label" yaml:"label" validate:"required"`
	Color string          `json:"color" yaml:"color" validate:"required,hexcolor"`
}

// document mirrors the on-disk layout of a catalog file.
type document struct {
	Categories []CategoryInfo `yaml:"categories" validate:"required,min=1,dive"`
	Nodes      []domain.Node  `yaml:"nodes" validate:"required,min=1,dive"`
	Links      []domain.Link  `yaml:"links" validate:"dive"`
	Flows      []domain.Flow  `yaml:"flows" validate:"dive"`
}

// Catalog is the immutable reference dataset: nodes, links, flows and categories.
// It is safe for concurrent use since nothing mutates it after Parse.
type Catalog struct {
	categories []CategoryInfo
	nodes      []domain.Node
	links      []domain.Link
	flows      []domain.Flow

	nodeIndex     map[string]int
	flowIndex     map[string]int
	categoryIndex map[domain.Category]int
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Parse(defaultData)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
})

// Default returns the embedded reference catalog.
func Default() *Catalog {
	return defaultCatalog()
}

// LoadFile reads and validates a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Load reads and validates a catalog from r.
func Load(r io.Reader) (*Catalog, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(buf.Bytes())
}

// Parse decodes a YAML catalog and validates it in three passes:
// JSON Schema shape, struct constraints, then referential integrity.
func Parse(data []byte) (*Catalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid catalog yaml: %w", err)
	}
	if err := checkSchema(raw); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid catalog yaml: %w", err)
	}
	if err := checkStruct(&doc); err != nil {
		return nil, err
	}

	c := &Catalog{
		categories:    doc.Categories,
		nodes:         doc.Nodes,
		links:         doc.Links,
		flows:         doc.Flows,
		nodeIndex:     make(map[string]int, len(doc.Nodes)),
		flowIndex:     make(map[string]int, len(doc.Flows)),
		categoryIndex: make(map[domain.Category]int, len(doc.Categories)),
	}
	for i, cat := range c.categories {
		c.categoryIndex[cat.ID] = i
	}
	for i, n := range c.nodes {
		c.nodeIndex[n.ID] = i
	}
	for i, f := range c.flows {
		c.flowIndex[f.ID] = i
	}

	if err := c.checkIntegrity(); err != nil {
		return nil, err
	}
	return c, nil
}

// Nodes returns all nodes in catalog order.
func (c *Catalog) Nodes() []domain.Node {
	return append([]domain.Node(nil), c.nodes...)
}

// Links returns all links in catalog order.
func (c *Catalog) Links() []domain.Link {
	return append([]domain.Link(nil), c.links...)
}

// Flows returns all beginner flows in catalog order.
func (c *Catalog) Flows() []domain.Flow {
	return append([]domain.Flow(nil), c.flows...)
}

// Categories returns the legend entries in catalog order.
func (c *Catalog) Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), c.categories...)
}

// Isolated returns the IDs of nodes no link touches. They are valid but
// drift away from the rest of the full graph.
func (c *Catalog) Isolated() []string {
	linked := make(map[string]bool, len(c.nodes))
	for _, l := range c.links {
		linked[l.Source] = true
		linked[l.Target] = true
	}
	var out []string
	for _, n := range c.nodes {
		if !linked[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}

// Node looks up a node by ID.
func (c *Catalog) Node(id string) (domain.Node, error) {
	i, ok := c.nodeIndex[id]
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
	}
	return c.nodes[i], nil
}

// Flow looks up a flow by ID.
func (c *Catalog) Flow(id string) (domain.Flow, error) {
	i, ok := c.flowIndex[id]
	if !ok {
		return domain.Flow{}, fmt.Errorf("%w: %q", domain.ErrFlowNotFound, id)
	}
	return c.flows[i], nil
}

// FirstFlow returns the first flow, used as the initial beginner selection.
func (c *Catalog) FirstFlow() (domain.Flow, bool) {
	if len(c.flows) == 0 {
		return domain.Flow{}, false
	}
	return c.flows[0], true
}

// CategoryColor returns the colour of a category, or a neutral grey.
func (c *Catalog) CategoryColor(cat domain.Category) string {
	if i, ok := c.categoryIndex[cat]; ok {
		return c.categories[i].Color
	}
	return "#999999"
}

// CategoryLabel returns the legend label of a category, or the raw ID.
func (c *Catalog) CategoryLabel(cat domain.Category) string {
	if i, ok := c.categoryIndex[cat]; ok {
		return c.categories[i].Label
	}
	return string(cat)
}

// Select resolves a catalog node into a panel selection.
func (c *Catalog) Select(id string) (*domain.Selection, error) {
	n, err := c.Node(id)
	if err != nil {
		return nil, err
	}
	return &domain.Selection{Node: n, StepIndex: domain.NoStep}, nil
}

// ResolveStep merges the i-th step of flow with its full node.
// The step ID and step label override the node's own ID and label.
func (c *Catalog) ResolveStep(flow domain.Flow, i int) (*domain.Selection, error) {
	if i < 0 || i >= len(flow.Steps) {
		return nil, fmt.Errorf("%w: step %d of flow %q", domain.ErrNodeNotFound, i, flow.ID)
	}
	step := flow.Steps[i]
	n, err := c.Node(step.FullID)
	if err != nil {
		return nil, err
	}
	n.ID = step.ID
	n.Label = step.Label
	return &domain.Selection{Node: n, FullID: step.FullID, StepIndex: i}, nil
}

// ResolveStepID is ResolveStep addressed by step ID.
func (c *Catalog) ResolveStepID(flow domain.Flow, stepID string) (*domain.Selection, error) {
	i := flow.StepIndex(stepID)
	if i < 0 {
		return nil, fmt.Errorf("%w: step %q in flow %q", domain.ErrNodeNotFound, stepID, flow.ID)
	}
	return c.ResolveStep(flow, i)
}
