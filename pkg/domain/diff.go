package domain

// ViewDiff represents the changes between two view states.
// It is designed to be serialized to JSON for partial updates on the client.
type ViewDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	// Selected holds the new selection. SelectionCleared is set instead when
	// the selection went away, because a nil pointer cannot say both.
	Selected         *Selection `json:"selected,omitempty"`
	SelectionCleared bool       `json:"selection_cleared,omitempty"`

	BeginnerMode *bool    `json:"beginner_mode,omitempty"`
	FlowID       *string  `json:"flow_id,omitempty"`
	DarkMode     *bool    `json:"dark_mode,omitempty"`
	Playing      *bool    `json:"playing,omitempty"`
	CurrentStep  *int     `json:"current_step,omitempty"`
	Width        *float64 `json:"width,omitempty"`
	Height       *float64 `json:"height,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *ViewState) *ViewDiff {
	if newState == nil {
		return nil
	}

	diff := &ViewDiff{SessionID: newState.SessionID}
	changed := false

	if oldState == nil {
		oldState = &ViewState{CurrentStep: NoStep}
		// Force every scalar into the initial payload.
		diff.BeginnerMode = ptr(newState.BeginnerMode)
		diff.FlowID = ptr(newState.FlowID)
		diff.DarkMode = ptr(newState.DarkMode)
		diff.Playing = ptr(newState.Playing)
		diff.CurrentStep = ptr(newState.CurrentStep)
		diff.Width = ptr(newState.Width)
		diff.Height = ptr(newState.Height)
		changed = true
	}

	if oldState.SelectedID() != newState.SelectedID() {
		changed = true
		if newState.Selected == nil {
			diff.SelectionCleared = true
		} else {
			sel := *newState.Selected
			diff.Selected = &sel
		}
	}
	if oldState.BeginnerMode != newState.BeginnerMode {
		diff.BeginnerMode = ptr(newState.BeginnerMode)
		changed = true
	}
	if oldState.FlowID != newState.FlowID {
		diff.FlowID = ptr(newState.FlowID)
		changed = true
	}
	if oldState.DarkMode != newState.DarkMode {
		diff.DarkMode = ptr(newState.DarkMode)
		changed = true
	}
	if oldState.Playing != newState.Playing {
		diff.Playing = ptr(newState.Playing)
		changed = true
	}
	if oldState.CurrentStep != newState.CurrentStep {
		diff.CurrentStep = ptr(newState.CurrentStep)
		changed = true
	}
	if oldState.Width != newState.Width {
		diff.Width = ptr(newState.Width)
		changed = true
	}
	if oldState.Height != newState.Height {
		diff.Height = ptr(newState.Height)
		changed = true
	}

	if !changed {
		return nil
	}
	return diff
}

func ptr[T any](v T) *T {
	return &v
}
