// Package node defines the contract every graph node implements: ordered
// input and output pins, an Evaluate operation and the optional hooks the
// engine looks for (control flow, iteration, custom data, dynamic shape).
//
// Concrete nodes embed Base, which provides pin storage, graph identity and
// the structural-change notification, and implement Evaluate themselves.
//
// # Categories
//
// The evaluator dispatches on a closed set of categories, derived from the
// interfaces a node implements:
//
//   - Standard: a pure function from inputs to outputs.
//   - Sink: a node with no outputs; reached through control flow or as the
//     root of a data-flow request with an empty output name.
//   - ControlFlow: Evaluate selects one of the node's named paths by writing
//     SelectedOutputPath.
//   - Iteration: a ControlFlow node re-evaluated until IsDone; each
//     evaluation also writes ContinueIteration.
package node
