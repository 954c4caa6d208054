// Package graph owns the nodes of a visual script and the two disjoint edge
// sets between them.
//
// # Edge kinds
//
// Data connections carry a value from an output pin to an input pin; an
// input has at most one incoming data connection. Sequence connections are
// control-flow edges leaving one of a node's named paths (plain nodes have
// the single unnamed path) and entering another node.
//
// # Invariants
//
//   - Node identifiers are unique and assigned in non-decreasing order.
//   - No connection references a node that is not in the graph: RemoveNode
//     removes every connection touching the node before the node itself.
//   - Connection state is annotation only. ValidateDataConnections re-derives
//     it after structural edits without deleting anything.
//
// # Thread-Safety
//
// None. A graph is either being edited or being evaluated, never both, and
// callers serialize those phases. Lookups are linear scans over small
// insertion-ordered slices.
package graph
