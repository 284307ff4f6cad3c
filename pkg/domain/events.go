package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSelect       EventType = "select"
	EventModeChange   EventType = "mode_change"
	EventFlowChange   EventType = "flow_change"
	EventStep         EventType = "step"
	EventPlaybackStop EventType = "playback_stop"
	EventCopy         EventType = "copy"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// ViewEvent describes a change of the viewer.
type ViewEvent struct {
	EventBase
	NodeID       string `json:"node_id,omitempty"`
	FlowID       string `json:"flow_id,omitempty"`
	Step         int    `json:"step"`
	BeginnerMode bool   `json:"beginner_mode"`
	// Completed is set on playback stop when the flow ran to its last step.
	Completed bool `json:"completed,omitempty"`
}

// CopyEvent describes a clipboard copy attempt.
type CopyEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	Index  int    `json:"index"`
	Err    error  `json:"-"`
}

// LifecycleHooks defines callbacks for viewer observability.
// Every field is optional.
type LifecycleHooks struct {
	OnSelect       func(context.Context, *ViewEvent)
	OnModeChange   func(context.Context, *ViewEvent)
	OnFlowChange   func(context.Context, *ViewEvent)
	OnStep         func(context.Context, *ViewEvent)
	OnPlaybackStop func(context.Context, *ViewEvent)
	OnCopy         func(context.Context, *CopyEvent)
}

// NewViewEvent stamps a view event with the current time.
func NewViewEvent(t EventType, sessionID string) *ViewEvent {
	return &ViewEvent{
		EventBase: EventBase{Timestamp: time.Now(), Type: t, SessionID: sessionID},
		Step:      NoStep,
	}
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnSelect:       chain(h.OnSelect, other.OnSelect),
		OnModeChange:   chain(h.OnModeChange, other.OnModeChange),
		OnFlowChange:   chain(h.OnFlowChange, other.OnFlowChange),
		OnStep:         chain(h.OnStep, other.OnStep),
		OnPlaybackStop: chain(h.OnPlaybackStop, other.OnPlaybackStop),
		OnCopy:         chain(h.OnCopy, other.OnCopy),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
