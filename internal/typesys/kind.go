package typesys

import "github.com/zclconf/go-cty/cty"

// Kind is the closed set of type categories a pin type can belong to.
type Kind int

const (
	KindInvalid Kind = iota
	KindAny
	KindBool
	KindNumber
	KindString
	KindList
	KindSet
	KindMap
	KindTuple
	KindObject
	KindCapsule
)

var kindNames = map[Kind]string{
	KindInvalid: "invalid",
	KindAny:     "any",
	KindBool:    "bool",
	KindNumber:  "number",
	KindString:  "string",
	KindList:    "list",
	KindSet:     "set",
	KindMap:     "map",
	KindTuple:   "tuple",
	KindObject:  "object",
	KindCapsule: "capsule",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// KindOf classifies a cty type.
func KindOf(ty cty.Type) Kind {
	switch {
	case ty == cty.NilType:
		return KindInvalid
	case ty.Equals(cty.DynamicPseudoType):
		return KindAny
	case ty.Equals(cty.Bool):
		return KindBool
	case ty.Equals(cty.Number):
		return KindNumber
	case ty.Equals(cty.String):
		return KindString
	case ty.IsListType():
		return KindList
	case ty.IsSetType():
		return KindSet
	case ty.IsMapType():
		return KindMap
	case ty.IsTupleType():
		return KindTuple
	case ty.IsObjectType():
		return KindObject
	case ty.IsCapsuleType():
		return KindCapsule
	default:
		return KindInvalid
	}
}

// IsEnumerable reports whether values of the kind can be iterated element
// by element.
func (k Kind) IsEnumerable() bool {
	switch k {
	case KindList, KindSet, KindTuple, KindMap, KindObject:
		return true
	}
	return false
}
