package domain

// LayoutPattern selects the fixed choreography used to place flow steps.
type LayoutPattern string

const (
	LayoutHorizontal LayoutPattern = "horizontal"
	LayoutVertical   LayoutPattern = "vertical"
	LayoutBranching  LayoutPattern = "branching"
	LayoutParallel   LayoutPattern = "parallel"
)

// DefaultFlowColor is used when a flow does not declare its own colour.
const DefaultFlowColor = "#3498db"

// FlowStep is one stop of a beginner flow. FullID references a catalog node.
type FlowStep struct {
	ID     string `json:"id" yaml:"id" validate:"required"`
	Label  string `json:"label" yaml:"label" validate:"required"`
	FullID string `json:"full_id" yaml:"full_id" validate:"required"`
}

// FlowLink connects two steps of the same flow.
type FlowLink struct {
	Source string `json:"source" yaml:"source" validate:"required"`
	Target string `json:"target" yaml:"target" validate:"required"`
	Label  string `json:"label" yaml:"label" validate:"required"`
}

// Flow is a named, ordered walkthrough used by beginner mode.
type Flow struct {
	ID          string        `json:"id" yaml:"id" validate:"required"`
	Name        string        `json:"name" yaml:"name" validate:"required"`
	Description string        `json:"description" yaml:"description"`
	Color       string        `json:"color,omitempty" yaml:"color,omitempty" validate:"omitempty,hexcolor"`
	Layout      LayoutPattern `json:"layout,omitempty" yaml:"layout,omitempty" validate:"omitempty,oneof=horizontal vertical branching parallel"`
	Steps       []FlowStep    `json:"steps" yaml:"steps" validate:"required,min=1,dive"`
	Links       []FlowLink    `json:"links" yaml:"links" validate:"dive"`
}

// Pattern returns the layout pattern, defaulting to horizontal.
func (f *Flow) Pattern() LayoutPattern {
	if f.Layout == "" {
		return LayoutHorizontal
	}
	return f.Layout
}

// FlowColor returns the flow colour, defaulting to DefaultFlowColor.
func (f *Flow) FlowColor() string {
	if f.Color == "" {
		return DefaultFlowColor
	}
	return f.Color
}

// StepIndex returns the position of the step with the given ID, or -1.
func (f *Flow) StepIndex(stepID string) int {
	for i, s := range f.Steps {
		if s.ID == stepID {
			return i
		}
	}
	return -1
}
