package domain

import "errors"

// ErrNodeNotFound is returned when a node (or flow step) ID is unknown.
var ErrNodeNotFound = errors.New("node not found")

// ErrFlowNotFound is returned when a flow ID is unknown.
var ErrFlowNotFound = errors.New("flow not found")

// ErrCommandNotFound is returned when a command index is out of range for a node.
var ErrCommandNotFound = errors.New("command not found")

// ErrNotBeginnerMode is returned when an operation requires an active beginner flow.
var ErrNotBeginnerMode = errors.New("beginner mode with an active flow is required")

// ErrEmptyFlow is returned when a flow has no steps to play.
var ErrEmptyFlow = errors.New("flow has no steps")

// ErrClipboardUnavailable is returned when no clipboard can be written.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")
