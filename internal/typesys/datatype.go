package typesys

import (
	"github.com/zclconf/go-cty/cty"
)

// DataType is the declared type of a pin: a base type tag plus optional
// extended compatibility information for dynamically shaped pins.
type DataType struct {
	Base     cty.Type
	Extended Compatibility
}

// Of returns a DataType with no extended information.
func Of(ty cty.Type) DataType {
	return DataType{Base: ty}
}

// Dynamic returns a DataType whose compatibility is decided by c. The base
// tag is "any" because the static type is not known.
func Dynamic(c Compatibility) DataType {
	return DataType{Base: cty.DynamicPseudoType, Extended: c}
}

// Any is the DataType accepting every value.
var Any = Of(cty.DynamicPseudoType)

// IsDynamic reports whether the type carries extended compatibility info.
func (d DataType) IsDynamic() bool {
	return d.Extended != nil
}

// Kind returns the category of the base tag.
func (d DataType) Kind() Kind {
	return KindOf(d.Base)
}

// Equals reports whether two data types are the same declaration.
func (d DataType) Equals(other DataType) bool {
	if d.Extended != nil || other.Extended != nil {
		if d.Extended == nil || other.Extended == nil {
			return false
		}
		return d.Extended.Name() == other.Extended.Name()
	}
	if d.Base == cty.NilType || other.Base == cty.NilType {
		return d.Base == cty.NilType && other.Base == cty.NilType
	}
	return d.Base.Equals(other.Base)
}

// String renders the type the way it is written in graph documents.
func (d DataType) String() string {
	if d.Extended != nil {
		return d.Extended.Name()
	}
	return TypeString(d.Base)
}
