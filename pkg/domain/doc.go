/*
Package domain contains the reference models of the PKI visualizer.

It defines the static catalog entities (Nodes, Links, Flows), the in-memory
view state of a single interactive session, and the lifecycle hooks used for
logging and metrics. The package is free of I/O and rendering concerns.

# Key Entities

  - Node: A PKI entity (CA, certificate, key, request, revocation, store, chain) with example commands.
  - Link: A directed, labelled relationship between two nodes.
  - Flow: A guided beginner walkthrough made of ordered steps that reference nodes.
  - ViewState: The transient state of the viewer (selection, mode, flow, autoplay step).
*/
package domain
