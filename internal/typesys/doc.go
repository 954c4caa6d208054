// Package typesys defines the type tags carried by node pins and the rules
// that decide whether a value produced by one pin may feed another.
//
// A type tag is a cty.Type. Pins wrap it in a DataType, which may carry an
// extended Compatibility object for dynamically shaped pins ("any list",
// "any collection") whose static tag is not precise enough.
//
// The Converters registry is the single source of truth for the
// "can connect" predicate and for the runtime conversion step applied by the
// evaluators when a value's runtime type differs from an input's declared
// type.
package typesys
