// Package persist saves graphs to and restores them from documents.
//
// A document lists nodes by identifier and class, the constants of their
// inputs, any custom data, and both connection sets. Two encodings are
// supported: HCL, written with hclwrite and read with gohcl, and JSON with
// values encoded by go-cty's json package.
//
// Restoring is tolerant. A node whose class is not registered becomes a
// node.Missing placeholder that keeps the pin names its connections use,
// and connections that cannot be re-established are reported as problems
// instead of failing the load.
package persist
