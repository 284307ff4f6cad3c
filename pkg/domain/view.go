package domain

// NoStep is the CurrentStep value when autoplay is not running.
const NoStep = -1

// ViewState is the transient state of one interactive viewer.
// It lives only in memory for the duration of a session.
type ViewState struct {
	// SessionID identifies the viewer instance in change streams.
	SessionID string `json:"session_id"`

	// Selected is the node shown in the detail panel, nil when nothing is selected.
	Selected *Selection `json:"selected,omitempty"`

	// BeginnerMode switches the graph from the full catalog to the active flow.
	BeginnerMode bool `json:"beginner_mode"`

	// FlowID is the active beginner flow.
	FlowID string `json:"flow_id"`

	DarkMode bool `json:"dark_mode"`

	// Playing is true while the autoplay sequencer is running.
	Playing bool `json:"playing"`

	// CurrentStep is the autoplay step index, NoStep when idle.
	CurrentStep int `json:"current_step"`

	// Width and Height are the graph viewport dimensions.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewViewState creates the initial view: full mode, nothing selected.
func NewViewState(sessionID, flowID string, width, height float64) *ViewState {
	return &ViewState{
		SessionID:   sessionID,
		FlowID:      flowID,
		CurrentStep: NoStep,
		Width:       width,
		Height:      height,
	}
}

// Snapshot returns a deep copy of the state.
func (v *ViewState) Snapshot() *ViewState {
	if v == nil {
		return nil
	}
	cp := *v
	if v.Selected != nil {
		sel := *v.Selected
		sel.Commands = append([]Command(nil), v.Selected.Commands...)
		cp.Selected = &sel
	}
	return &cp
}

// SelectedID returns the ID of the selected node, or "".
func (v *ViewState) SelectedID() string {
	if v.Selected == nil {
		return ""
	}
	return v.Selected.ID
}
