// Package registry maps node class names to the Go constructors that build
// them.
//
// A class is identified by its type name and an optional variant, the same
// pair the graph stores in node.TypeInfo and persistence writes to disk.
// Node libraries contribute classes through the Module interface. After
// startup the registry is validated by instantiating every class once and
// checking the resulting node against the engine's contracts, so a broken
// constructor fails at boot rather than in the middle of a run.
package registry
