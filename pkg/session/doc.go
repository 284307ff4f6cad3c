/*
Package session holds the single in-memory viewer of the PKI graph.

The Viewer is the state machine behind every surface (terminal explorer,
HTTP, MCP). It owns the view state, the autoplay player, the detail panel and
the full-graph force simulation, and publishes a ViewDiff for every change.

Concurrency: user commands and the autoplay goroutine are serialised by the
viewer mutex. Autoplay callbacks carry a generation number so ticks from a
cancelled sequence are ignored.
*/
package session
