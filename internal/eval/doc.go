// Package eval runs graphs.
//
// DataFlow computes a single output by pulling values from upstream nodes on
// demand. Sequence walks the control-flow edges from the graph's entry node,
// evaluating each node once per visit and caching the outputs other nodes
// pull from. Both are single-threaded; callers must not edit a graph while
// it is being evaluated.
package eval
