package domain

// Category groups PKI entities for colouring and the legend.
type Category string

const (
	CategoryCA         Category = "ca"
	CategoryCert       Category = "cert"
	CategoryKey        Category = "key"
	CategoryRequest    Category = "request"
	CategoryRevocation Category = "revocation"
	CategoryStore      Category = "store"
	CategoryChain      Category = "chain"
)

// Command is an illustrative command-line invocation attached to a node.
// Commands are static strings; nothing is ever executed.
type Command struct {
	Title       string `json:"title" yaml:"title" validate:"required"`
	Command     string `json:"command" yaml:"command" validate:"required"`
	Description string `json:"description" yaml:"description"`
}

// Node represents a PKI entity in the reference graph.
type Node struct {
	ID          string    `json:"id" yaml:"id" validate:"required"`
	Label       string    `json:"label" yaml:"label" validate:"required"`
	Category    Category  `json:"category" yaml:"category" validate:"required"`
	Description string    `json:"description" yaml:"description"`
	Commands    []Command `json:"commands" yaml:"commands" validate:"dive"`
}

// Selection is the node shown in the detail panel.
// In beginner mode it is a flow step merged over its full catalog node:
// the step ID and step label win, everything else comes from the node.
type Selection struct {
	Node

	// FullID is the catalog node ID behind a flow step. Empty outside flows.
	FullID string `json:"full_id,omitempty"`

	// StepIndex is the position of the step in its flow, or -1.
	StepIndex int `json:"step_index"`
}

// CatalogID returns the ID of the underlying catalog node.
func (s *Selection) CatalogID() string {
	if s.FullID != "" {
		return s.FullID
	}
	return s.ID
}
