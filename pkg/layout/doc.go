/*
Package layout computes node coordinates for the two graph modes.

Full mode runs a deterministic force simulation in the style of d3-force
(many-body charge, link springs, centring, velocity decay). Beginner mode
places flow steps on fixed choreographies (horizontal, vertical, branching,
parallel) centred on the viewport. Viewport converts between graph and
screen coordinates and performs pointer hit-testing.
*/
package layout
