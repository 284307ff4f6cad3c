package logging

import (
	"context"
	"log/slog"

	"github.com/aretw0/pkiviz/pkg/domain"
)

// Hooks returns lifecycle hooks that log every viewer event at debug level,
// and copy failures at error level.
func Hooks(logger *slog.Logger) domain.LifecycleHooks {
	view := func(msg string) func(context.Context, *domain.ViewEvent) {
		return func(ctx context.Context, e *domain.ViewEvent) {
			logger.DebugContext(ctx, msg,
				"session_id", e.SessionID,
				"node_id", e.NodeID,
				"flow_id", e.FlowID,
				"step", e.Step,
				"beginner", e.BeginnerMode,
			)
		}
	}
	return domain.LifecycleHooks{
		OnSelect:     view("node_select"),
		OnModeChange: view("mode_change"),
		OnFlowChange: view("flow_change"),
		OnStep:       view("flow_step"),
		OnPlaybackStop: func(ctx context.Context, e *domain.ViewEvent) {
			logger.DebugContext(ctx, "playback_stop",
				"session_id", e.SessionID,
				"flow_id", e.FlowID,
				"completed", e.Completed,
			)
		},
		OnCopy: func(ctx context.Context, e *domain.CopyEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "copy_failed", "node_id", e.NodeID, "index", e.Index, "error", e.Err)
				return
			}
			logger.DebugContext(ctx, "copy", "node_id", e.NodeID, "index", e.Index)
		},
	}
}
