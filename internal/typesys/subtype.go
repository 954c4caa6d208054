package typesys

import "github.com/zclconf/go-cty/cty"

// IsSubtype reports whether every value of type from is also a valid value
// of type to without conversion.
func IsSubtype(from, to cty.Type) bool {
	if from == cty.NilType || to == cty.NilType {
		return false
	}
	if to.Equals(cty.DynamicPseudoType) || from.Equals(to) {
		return true
	}

	switch {
	case from.IsObjectType() && to.IsObjectType():
		fromAttrs := from.AttributeTypes()
		for name, toAttr := range to.AttributeTypes() {
			fromAttr, ok := fromAttrs[name]
			if !ok || !IsSubtype(fromAttr, toAttr) {
				return false
			}
		}
		return true
	case from.IsListType() && to.IsListType(),
		from.IsSetType() && to.IsSetType(),
		from.IsMapType() && to.IsMapType():
		return IsSubtype(from.ElementType(), to.ElementType())
	case from.IsTupleType() && to.IsTupleType():
		fromElems, toElems := from.TupleElementTypes(), to.TupleElementTypes()
		if len(fromElems) != len(toElems) {
			return false
		}
		for i := range fromElems {
			if !IsSubtype(fromElems[i], toElems[i]) {
				return false
			}
		}
		return true
	}
	return false
}
