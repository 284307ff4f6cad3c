package domain

// Link is a directed, labelled edge between two nodes.
type Link struct {
	Source      string `json:"source" yaml:"source" validate:"required"`
	Target      string `json:"target" yaml:"target" validate:"required"`
	Label       string `json:"label" yaml:"label" validate:"required"`
	Description string `json:"description" yaml:"description"`
}
